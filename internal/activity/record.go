package activity

import "time"

// Status is the derived lifecycle state of a tracked activity.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusOnTime    Status = "on_time"
	StatusDueSoon   Status = "due_soon"
	StatusOverdue   Status = "overdue"
	StatusNoDueDate Status = "no_due_date"
)

// Statuses lists every status in stacked-chart order: completed first,
// overdue always last so overdue segments line up across charts.
// NoDueDate is excluded from stacks but present in tables.
func Statuses() []Status {
	return []Status{StatusCompleted, StatusOnTime, StatusDueSoon, StatusOverdue, StatusNoDueDate}
}

// StackOrder is the status order used for stacked bar series.
func StackOrder() []Status {
	return []Status{StatusCompleted, StatusOnTime, StatusDueSoon, StatusOverdue}
}

// Record is one tracked activity after field mapping, team resolution and
// classification. It is immutable within a pipeline run: each refresh
// materializes a fresh slice of records.
type Record struct {
	ActivityType string `json:"activity_type"`
	Client       string `json:"client,omitempty"`
	Operator     string `json:"operator"`
	Issuer       string `json:"issuer,omitempty"`

	IssueDate      *time.Time `json:"issue_date,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`

	InvoiceNumber string `json:"invoice_number,omitempty"`
	Quantity      string `json:"quantity,omitempty"`
	Description   string `json:"description,omitempty"`

	// Derived fields, absent in the raw source.
	Team   string `json:"team"`
	Status Status `json:"status"`
}

// Open reports whether the record still needs work.
func (r Record) Open() bool {
	return r.Status != StatusCompleted
}
