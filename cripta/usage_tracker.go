package cripta

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

const (
	DefaultWarnLimit = 10 * 1024
	DefaultMaxLimit  = 20 * 1024
)

type UsageStatus int

const (
	UsageOK UsageStatus = iota
	UsageWarning
)

func (s UsageStatus) String() string {
	if s == UsageWarning {
		return "warning"
	}
	return "ok"
}

type UsageLimits struct {
	Warn    int `validate:"gt=0,ltfield=Ceiling"`
	Ceiling int `validate:"gt=0"`
}

func DefaultUsageLimits() UsageLimits {
	return UsageLimits{
		Warn:    DefaultWarnLimit,
		Ceiling: DefaultMaxLimit,
	}
}

// UsageTracker counts bytes encrypted under each key identifier.
type UsageTracker struct {
	mutex  sync.Mutex
	limits UsageLimits
	used   map[string]int
	logger *zerolog.Logger
}

func NewUsageTracker(limits UsageLimits, logger *zerolog.Logger) (*UsageTracker, error) {
	if limits.Warn <= 0 || limits.Ceiling <= 0 || limits.Warn >= limits.Ceiling {
		return nil, fmt.Errorf("usage limits must satisfy 0 < warn < ceiling: got warn=%d ceiling=%d",
			limits.Warn, limits.Ceiling)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &UsageTracker{
		limits: limits,
		used:   make(map[string]int),
		logger: logger,
	}, nil
}

// Record adds byteCount to the key's total. A call that would push the total
// past the ceiling is rejected with ErrKeyExhausted and leaves the total as is.
func (ut *UsageTracker) Record(keyID string, byteCount int) (UsageStatus, error) {
	if byteCount < 0 {
		return UsageOK, fmt.Errorf("byte count cannot be negative: %d", byteCount)
	}

	ut.mutex.Lock()
	defer ut.mutex.Unlock()

	total := ut.used[keyID] + byteCount
	if total > ut.limits.Ceiling {
		ut.logger.Error().
			Str("key", keyID).
			Int("used", ut.used[keyID]).
			Int("requested", byteCount).
			Int("ceiling", ut.limits.Ceiling).
			Msg("Key usage limit exceeded, rotate the key")
		return UsageOK, fmt.Errorf("%w: key %q has %d of %d bytes left, %d requested",
			ErrKeyExhausted, keyID, ut.limits.Ceiling-ut.used[keyID], ut.limits.Ceiling, byteCount)
	}
	ut.used[keyID] = total

	if total > ut.limits.Warn {
		ut.logger.Warn().
			Str("key", keyID).
			Int("used", total).
			Int("threshold", ut.limits.Warn).
			Msg("Key lifetime threshold passed, consider rotating the key")
		return UsageWarning, nil
	}

	return UsageOK, nil
}

func (ut *UsageTracker) Used(keyID string) int {
	ut.mutex.Lock()
	defer ut.mutex.Unlock()
	return ut.used[keyID]
}

func (ut *UsageTracker) Limits() UsageLimits {
	return ut.limits
}

// Reset forgets the total of a single key, e.g. after it has been rotated.
func (ut *UsageTracker) Reset(keyID string) {
	ut.mutex.Lock()
	defer ut.mutex.Unlock()
	delete(ut.used, keyID)
}
