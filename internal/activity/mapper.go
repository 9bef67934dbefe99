package activity

import (
	"strconv"
	"strings"
	"time"
)

// Canonical field names produced by the mapper. The raw SharePoint list
// exposes positional column identifiers (field_2, field_3, ...); the mapping
// table in the reference store renames them to these keys.
const (
	FieldActivityType   = "activity_type"
	FieldClient         = "client"
	FieldIssueDate      = "issue_date"
	FieldStartDate      = "start_date"
	FieldCompletionDate = "completion_date"
	FieldDueDate        = "due_date"
	FieldDescription    = "description"
	FieldIssuer         = "issuer"
	FieldInvoiceNumber  = "invoice_number"
	FieldQuantity       = "quantity"
	FieldOperator       = "operator"
)

// MapFields renames opaque keys to canonical names per the mapping table.
// Keys without a mapping pass through unchanged, so running the mapper over
// an already-canonical item is a no-op. No key is dropped or duplicated;
// a mapped key wins over a passthrough collision.
func MapFields(raw map[string]any, mapping map[string]string) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if canonical, ok := mapping[k]; ok {
			out[canonical] = v
		}
	}
	// Passthrough never shadows a mapped value.
	for k, v := range raw {
		if _, mapped := mapping[k]; mapped {
			continue
		}
		if _, taken := out[k]; !taken {
			out[k] = v
		}
	}
	return out
}

// NewRecord builds a Record from a canonically-keyed item. Team and Status
// stay zero: they are derived later by the pipeline.
func NewRecord(item map[string]any) Record {
	return Record{
		ActivityType:   stringField(item, FieldActivityType),
		Client:         stringField(item, FieldClient),
		Operator:       stringField(item, FieldOperator),
		Issuer:         stringField(item, FieldIssuer),
		IssueDate:      dateField(item, FieldIssueDate),
		StartDate:      dateField(item, FieldStartDate),
		DueDate:        dateField(item, FieldDueDate),
		CompletionDate: dateField(item, FieldCompletionDate),
		InvoiceNumber:  stringField(item, FieldInvoiceNumber),
		Quantity:       stringField(item, FieldQuantity),
		Description:    stringField(item, FieldDescription),
	}
}

// stringField reads a scalar as text. Graph returns numeric columns as JSON
// numbers, so those format rather than vanish; non-scalar values coerce to "".
func stringField(item map[string]any, key string) string {
	v, ok := item[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// dateField parses a nullable Graph timestamp down to date-only precision.
// Unparseable values coerce to nil rather than failing the record.
func dateField(item map[string]any, key string) *time.Time {
	s := stringField(item, key)
	if s == "" {
		return nil
	}
	var parsed time.Time
	var err error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		parsed, err = time.Parse(layout, s)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil
	}
	d := DateOnly(parsed)
	return &d
}

// DateOnly truncates a timestamp to midnight UTC. All classification
// comparisons happen at date precision.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
