// Package mfa orchestrates TOTP enrollment and combined TOTP/recovery-code
// verification on top of the totp and recovery packages.
package mfa

import (
	"time"

	gocrypto "github.com/ol-s-cloud/circle-core-sub001/crypto"
	"github.com/ol-s-cloud/circle-core-sub001/internal/obslog"
	"github.com/ol-s-cloud/circle-core-sub001/recovery"
	"github.com/ol-s-cloud/circle-core-sub001/totp"
)

// DefaultBackupCodeCount is how many recovery codes SetupMFAForUser mints
// when the caller doesn't specify a count.
const DefaultBackupCodeCount = 10

// Enrollment is everything SetupMFAForUser produces for one account. Secret,
// BackupCodes, and URI are ephemeral — see ToPersisted.
type Enrollment struct {
	Type              string               `json:"type"`
	Secret            string               `json:"secret"` // base64(raw), not persisted
	FormattedSecret   string               `json:"formatted_secret"`
	BackupCodes       []string             `json:"backup_codes"` // plaintext, not persisted
	HashedBackupCodes []recovery.HashedCode `json:"hashed_backup_codes"`
	URI               string               `json:"uri"` // not persisted
	Config            totp.TOTPConfig      `json:"config"`
}

// PersistedEnrollment is the subset of Enrollment safe to store: it drops
// Secret, BackupCodes, and URI.
type PersistedEnrollment struct {
	Type              string               `json:"type"`
	FormattedSecret   string               `json:"formatted_secret"`
	HashedBackupCodes []recovery.HashedCode `json:"hashed_backup_codes"`
	Config            totp.TOTPConfig      `json:"config"`
}

// ToPersisted strips the fields that must never reach durable storage.
func (e Enrollment) ToPersisted() PersistedEnrollment {
	return PersistedEnrollment{
		Type:              e.Type,
		FormattedSecret:   e.FormattedSecret,
		HashedBackupCodes: e.HashedBackupCodes,
		Config:            e.Config,
	}
}

// MFAService combines a TOTPEngine and the recovery-code functions into
// enrollment and combined verification operations. It holds no mutable
// state of its own; every mutation is returned to the caller.
type MFAService struct {
	Engine          *totp.TOTPEngine
	BackupCodeCount int
}

// NewMFAService returns a service driving TOTP through engine, minting
// backupCodeCount recovery codes per enrollment (DefaultBackupCodeCount if
// backupCodeCount <= 0).
func NewMFAService(engine *totp.TOTPEngine, backupCodeCount int) *MFAService {
	if backupCodeCount <= 0 {
		backupCodeCount = DefaultBackupCodeCount
	}
	return &MFAService{Engine: engine, BackupCodeCount: backupCodeCount}
}

// SetupMFAForUser provisions a new TOTP secret and a batch of hashed
// recovery codes for account.
func (s *MFAService) SetupMFAForUser(account string) (Enrollment, error) {
	logger := obslog.New("mfa", "SetupMFAForUser").WithField("account", account)
	logger.Entry("enrolling account in mfa")
	defer logger.Exit()

	secret, err := s.Engine.GenerateSecret()
	if err != nil {
		return Enrollment{}, err
	}

	codes, err := recovery.Generate(s.BackupCodeCount)
	if err != nil {
		return Enrollment{}, err
	}
	hashed, err := recovery.HashAll(codes)
	if err != nil {
		return Enrollment{}, err
	}

	enrollment := Enrollment{
		Type:              "totp",
		Secret:            gocrypto.EncodeBase64(secret),
		FormattedSecret:   s.Engine.FormatSecret(secret),
		BackupCodes:       codes,
		HashedBackupCodes: hashed,
		URI:               s.Engine.ProvisioningURI(account, secret),
		Config:            s.Engine.Config,
	}

	logger.Info("mfa enrollment created")
	return enrollment, nil
}

// VerifyMFA checks submittedCode against enrollment: if it has the shape of
// a TOTP code it's tried against the TOTP secret first; otherwise (or on
// TOTP failure) it's tried against the hashed recovery codes. On a
// recovery-code match the returned Enrollment carries the mutated
// HashedBackupCodes; enrollment itself is never modified.
func (s *MFAService) VerifyMFA(enrollment Enrollment, submittedCode string) (bool, *Enrollment) {
	logger := obslog.New("mfa", "VerifyMFA")
	logger.Entry("verifying submitted code")
	defer logger.Exit()

	if totp.LooksLikeTOTPCode(submittedCode, enrollment.Config.Digits) {
		secret, err := gocrypto.DecodeBase64(enrollment.Secret)
		if err == nil && s.Engine.VerifyTOTP(secret, submittedCode, time.Time{}) {
			logger.Info("totp verification succeeded")
			return true, nil
		}
		logger.Debug("totp verification failed, falling through to recovery codes")
	}

	matched, updated := recovery.Verify(submittedCode, enrollment.HashedBackupCodes)
	if !matched {
		logger.Warn("mfa verification failed")
		return false, nil
	}

	result := enrollment
	result.HashedBackupCodes = updated
	logger.Info("recovery code verification succeeded")
	return true, &result
}
