package crypto

import "time"

// UnixCounter computes the RFC 6238 step counter T = floor(unix/interval)
// for t, rejecting negative POSIX timestamps rather than silently wrapping
// them into a huge unsigned counter.
func UnixCounter(t time.Time, interval time.Duration) (uint64, error) {
	unix, err := safeInt64ToUint64(t.Unix())
	if err != nil {
		return 0, err
	}
	step, err := safeInt64ToUint64(int64(interval.Seconds()))
	if err != nil || step == 0 {
		return 0, ErrInvalidSize
	}
	return unix / step, nil
}
