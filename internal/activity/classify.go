package activity

import "time"

// DefaultDueSoonDays is the canonical due-soon horizon.
const DefaultDueSoonDays = 3

// Classify derives the lifecycle status of a record at date precision.
// Precedence: a completion date wins over everything, including a due date
// already in the past. The reference date is always supplied by the caller;
// this function never reads the wall clock.
func Classify(r Record, now time.Time, dueSoonDays int) Status {
	if r.CompletionDate != nil {
		return StatusCompleted
	}
	if r.DueDate == nil {
		return StatusNoDueDate
	}
	due := DateOnly(*r.DueDate)
	today := DateOnly(now)
	if due.Before(today) {
		return StatusOverdue
	}
	if int(due.Sub(today).Hours()/24) <= dueSoonDays {
		return StatusDueSoon
	}
	return StatusOnTime
}
