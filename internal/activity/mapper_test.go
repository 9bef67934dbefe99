package activity

import (
	"reflect"
	"testing"
	"time"
)

var testMapping = map[string]string{
	"field_2":  FieldActivityType,
	"field_3":  FieldClient,
	"field_7":  FieldCompletionDate,
	"field_8":  FieldDueDate,
	"field_19": FieldOperator,
}

func TestMapFieldsRenames(t *testing.T) {
	raw := map[string]any{
		"field_2":  "Coleta",
		"field_3":  "ACME",
		"field_19": "Daniela",
		"id":       "42",
	}

	got := MapFields(raw, testMapping)

	want := map[string]any{
		FieldActivityType: "Coleta",
		FieldClient:       "ACME",
		FieldOperator:     "Daniela",
		"id":              "42",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MapFields() = %v, want %v", got, want)
	}
}

func TestMapFieldsNoDropNoDuplicate(t *testing.T) {
	raw := map[string]any{
		"field_2":   "Coleta",
		"field_99":  "unmapped",
		"@odata.id": "x",
	}

	got := MapFields(raw, testMapping)
	if len(got) != len(raw) {
		t.Fatalf("MapFields() produced %d keys, want %d", len(got), len(raw))
	}
	if got["field_99"] != "unmapped" {
		t.Errorf("unmapped key not passed through: %v", got["field_99"])
	}
}

func TestMapFieldsCanonicalNoOp(t *testing.T) {
	canonical := map[string]any{
		FieldActivityType: "Coleta",
		FieldOperator:     "Daniela",
		FieldDueDate:      "2024-06-10",
	}

	got := MapFields(canonical, testMapping)
	if !reflect.DeepEqual(got, canonical) {
		t.Errorf("MapFields() on canonical input = %v, want unchanged %v", got, canonical)
	}
}

func TestNewRecordDates(t *testing.T) {
	rec := NewRecord(map[string]any{
		FieldOperator:       "Daniela",
		FieldDueDate:        "2024-06-10T00:00:00Z",
		FieldCompletionDate: "2024-06-08T14:30:00Z",
	})

	wantDue := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	if rec.DueDate == nil || !rec.DueDate.Equal(wantDue) {
		t.Errorf("DueDate = %v, want %v", rec.DueDate, wantDue)
	}
	// Time of day is truncated away.
	wantDone := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
	if rec.CompletionDate == nil || !rec.CompletionDate.Equal(wantDone) {
		t.Errorf("CompletionDate = %v, want %v", rec.CompletionDate, wantDone)
	}
}

func TestNewRecordCoercesBadValues(t *testing.T) {
	rec := NewRecord(map[string]any{
		FieldOperator: "Daniela",
		FieldDueDate:  "not-a-date",
		FieldClient:   map[string]any{"name": "ACME"}, // non-scalar
	})

	if rec.DueDate != nil {
		t.Errorf("DueDate = %v, want nil for unparseable input", rec.DueDate)
	}
	if rec.Client != "" {
		t.Errorf("Client = %q, want empty for non-scalar input", rec.Client)
	}
	if rec.Team != "" || rec.Status != "" {
		t.Errorf("derived fields must stay zero: team=%q status=%q", rec.Team, rec.Status)
	}
}

func TestNewRecordNumericScalars(t *testing.T) {
	// Numeric list columns arrive as JSON numbers, not strings.
	rec := NewRecord(map[string]any{
		FieldOperator:      "Daniela",
		FieldQuantity:      float64(25),
		FieldInvoiceNumber: float64(10437),
	})

	if rec.Quantity != "25" {
		t.Errorf("Quantity = %q, want %q", rec.Quantity, "25")
	}
	if rec.InvoiceNumber != "10437" {
		t.Errorf("InvoiceNumber = %q, want %q", rec.InvoiceNumber, "10437")
	}

	rec = NewRecord(map[string]any{FieldQuantity: 2.5})
	if rec.Quantity != "2.5" {
		t.Errorf("Quantity = %q, want %q", rec.Quantity, "2.5")
	}
}
