package keys

import (
	"fmt"

	"github.com/ol-s-cloud/circle-core-sub001/errs"
)

// RotationPolicy selects how CheckRotationNeeded evaluates the active key.
type RotationPolicy string

const (
	RotationNone       RotationPolicy = "NONE"
	RotationTimeBased  RotationPolicy = "TIME_BASED"
	RotationUsageBased RotationPolicy = "USAGE_BASED"
	RotationCombined   RotationPolicy = "COMBINED"
)

// RotationConfig declares when a KeyManager considers its active key due
// for rotation. MaxAgeDays and MaxUses are pointers so "unset" is
// distinguishable from "zero".
type RotationConfig struct {
	Policy     RotationPolicy
	MaxAgeDays *uint32
	MaxUses    *uint64
}

// NewRotationConfig validates policy/threshold combinations at
// construction time: a COMBINED policy without both thresholds, or an
// unrecognized policy, is a configuration error rather than a silent no-op.
func NewRotationConfig(policy RotationPolicy, maxAgeDays *uint32, maxUses *uint64) (RotationConfig, error) {
	switch policy {
	case RotationNone:
		return RotationConfig{Policy: RotationNone}, nil
	case RotationTimeBased:
		if maxAgeDays == nil {
			return RotationConfig{}, fmt.Errorf("%w: TIME_BASED policy requires max_age_days", errs.ErrConfiguration)
		}
		return RotationConfig{Policy: policy, MaxAgeDays: maxAgeDays}, nil
	case RotationUsageBased:
		if maxUses == nil {
			return RotationConfig{}, fmt.Errorf("%w: USAGE_BASED policy requires max_uses", errs.ErrConfiguration)
		}
		return RotationConfig{Policy: policy, MaxUses: maxUses}, nil
	case RotationCombined:
		if maxAgeDays == nil || maxUses == nil {
			return RotationConfig{}, fmt.Errorf("%w: COMBINED policy requires both max_age_days and max_uses", errs.ErrConfiguration)
		}
		return RotationConfig{Policy: policy, MaxAgeDays: maxAgeDays, MaxUses: maxUses}, nil
	default:
		return RotationConfig{}, fmt.Errorf("%w: unknown rotation policy %q", errs.ErrConfiguration, policy)
	}
}

// DefaultRotationConfig never requires rotation.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{Policy: RotationNone}
}
