package crypto

import "encoding/base64"

// EncodeBase64 renders data as standard padded base64, used for persisted
// wrapped keys and hashed recovery codes.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 parses standard padded base64 back into bytes.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
