package crypto

import "encoding/base32"

// base32Encoding is RFC 4648 base32 without padding, uppercase, matching the
// conventional TOTP secret representation used by authenticator apps.
var base32Encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// EncodeBase32 renders data as an unpadded, uppercase RFC 4648 base32 string.
func EncodeBase32(data []byte) string {
	return base32Encoding.EncodeToString(data)
}

// DecodeBase32 parses a case-insensitive RFC 4648 base32 string, padded or
// unpadded, back into bytes, accepting lowercase input since users often
// retype TOTP secrets by hand.
func DecodeBase32(s string) ([]byte, error) {
	return base32Encoding.DecodeString(normalizeBase32(s))
}

func normalizeBase32(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, byte(r-'a'+'A'))
		case r == ' ' || r == '-' || r == '=':
			continue
		default:
			out = append(out, byte(r))
		}
	}
	return string(out)
}
