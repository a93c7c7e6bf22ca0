// Package timeauth is the single source of "now" for game logic.
//
// Every component that needs the current time, a reset instant, or a
// remaining duration goes through an Authority instead of reading the wall
// clock, so a remote clock offset or a fixed test clock applies everywhere.
package timeauth

import (
	"sync"
	"time"

	"github.com/AccelByte/extend-rpg-localserver/pkg/common"
	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
)

// Clock supplies the raw current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host wall clock.
type SystemClock struct{}

// Now returns the host time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Authority computes the current instant and limit-policy reset instants.
// All returned instants are in UTC.
type Authority struct {
	clock Clock

	mu     sync.RWMutex
	offset time.Duration
}

// New creates an Authority over clock. A nil clock uses the system clock.
func New(clock Clock) *Authority {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Authority{clock: clock}
}

// Now returns the adjusted current instant in UTC.
func (a *Authority) Now() time.Time {
	a.mu.RLock()
	offset := a.offset
	a.mu.RUnlock()
	return a.clock.Now().Add(offset).UTC()
}

// Offset returns the signed adjustment applied to the clock.
func (a *Authority) Offset() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.offset
}

// SetOffset sets the signed adjustment applied to the clock.
func (a *Authority) SetOffset(offset time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offset = offset
}

// SyncWith aligns Now with a remote clock reading taken at the current local instant.
func (a *Authority) SyncWith(remote time.Time) {
	a.SetOffset(remote.Sub(a.clock.Now()))
}

// NextReset returns the next reset instant for policy, strictly after Now.
// Policies that never reset on a calendar cadence (none, permanent,
// event_period) return the zero time, meaning "no reset".
func (a *Authority) NextReset(policy domain.LimitPolicy) time.Time {
	now := a.Now()
	switch policy {
	case domain.LimitPolicyDaily:
		return common.NextDailyReset(now)
	case domain.LimitPolicyWeekly:
		return common.NextWeeklyReset(now)
	case domain.LimitPolicyMonthly:
		return common.NextMonthlyReset(now)
	default:
		return time.Time{}
	}
}

// HasElapsed reports whether a recorded reset instant has passed under policy.
// Non-calendar policies never elapse. A zero instant under a calendar policy
// counts as elapsed: the record predates the policy and has no reset scheduled.
func (a *Authority) HasElapsed(resetTime time.Time, policy domain.LimitPolicy) bool {
	if !policy.IsCalendar() {
		return false
	}
	if resetTime.IsZero() {
		return true
	}
	return !a.Now().Before(resetTime)
}

// RemainingSeconds returns whole seconds until future, never negative.
func (a *Authority) RemainingSeconds(future time.Time) int64 {
	d := future.Sub(a.Now())
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// ElapsedSeconds returns whole seconds since past, never negative.
func (a *Authority) ElapsedSeconds(past time.Time) int64 {
	d := a.Now().Sub(past)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// RemainingDays returns the days until future, counting a partial day as one.
func (a *Authority) RemainingDays(future time.Time) int {
	d := future.Sub(a.Now())
	if d <= 0 {
		return 0
	}
	return common.CeilDays(int64((d + time.Second - 1) / time.Second))
}
