// Package limit decides whether a recurring-limit action may proceed and
// produces the next counter record. Shop purchases and stage entries share
// this one implementation.
package limit

import (
	"math"
	"time"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/timeauth"
)

// Unlimited is reported as the remaining count when an action has no limit.
const Unlimited = math.MaxInt32

// Validator evaluates counter records against a limit policy.
type Validator struct {
	time *timeauth.Authority
}

// NewValidator creates a Validator that reads time from auth.
func NewValidator(auth *timeauth.Authority) *Validator {
	return &Validator{time: auth}
}

// CanProceed reports whether one more action is admissible and how many
// remain before it is. A nil record means the action was never taken.
//
// An elapsed reset instant counts the record as zero for this check only;
// the stored counter is rewritten by UpdateRecord.
//
// A policy of none, or a non-positive limitCount, is unlimited.
func (v *Validator) CanProceed(policy domain.LimitPolicy, limitCount int, record *domain.CounterRecord) (bool, int) {
	return v.CanProceedBy(policy, limitCount, record, 1)
}

// CanProceedBy is CanProceed for an action that consumes n uses at once.
func (v *Validator) CanProceedBy(policy domain.LimitPolicy, limitCount int, record *domain.CounterRecord, n int) (bool, int) {
	if policy == domain.LimitPolicyNone || limitCount <= 0 {
		return true, Unlimited
	}

	remaining := limitCount - v.effectiveCount(policy, record)
	if remaining < 0 {
		remaining = 0
	}
	return remaining >= n, remaining
}

// Remaining returns the uses left before the limit is hit.
func (v *Validator) Remaining(policy domain.LimitPolicy, limitCount int, record *domain.CounterRecord) int {
	_, remaining := v.CanProceed(policy, limitCount, record)
	return remaining
}

// UpdateRecord returns the record after one more action on subjectID.
// The input record is not modified.
func (v *Validator) UpdateRecord(subjectID string, policy domain.LimitPolicy, record *domain.CounterRecord) domain.CounterRecord {
	return v.UpdateRecordBy(subjectID, policy, record, 1)
}

// UpdateRecordBy returns the record after n more actions on subjectID.
// When the record is missing or its reset instant has elapsed, counting
// restarts at n with a freshly computed reset instant; otherwise the count
// is incremented and the reset instant kept.
func (v *Validator) UpdateRecordBy(subjectID string, policy domain.LimitPolicy, record *domain.CounterRecord, n int) domain.CounterRecord {
	now := v.time.Now()

	if record == nil || v.needsReset(policy, record) {
		return domain.CounterRecord{
			SubjectID:      subjectID,
			Count:          n,
			LastActionTime: now,
			ResetTime:      v.time.NextReset(policy),
		}
	}

	next := *record
	next.SubjectID = subjectID
	next.Count += n
	next.LastActionTime = now
	if !policy.IsCalendar() {
		next.ResetTime = time.Time{}
	}
	return next
}

func (v *Validator) effectiveCount(policy domain.LimitPolicy, record *domain.CounterRecord) int {
	if record == nil || v.needsReset(policy, record) {
		return 0
	}
	return record.Count
}

func (v *Validator) needsReset(policy domain.LimitPolicy, record *domain.CounterRecord) bool {
	return v.time.HasElapsed(record.ResetTime, policy)
}
