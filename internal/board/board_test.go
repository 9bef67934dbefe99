package board

import (
	"testing"
	"time"

	"github.com/gfbarros/vistaboard/internal/activity"
	"github.com/gfbarros/vistaboard/internal/pipeline"
	"github.com/gfbarros/vistaboard/internal/rotation"
)

var boardNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func testBuilder() *Builder {
	return NewBuilder(
		map[string]string{
			rotation.Overview:     "#31333F",
			"Operação - Salvador": "#00CC96",
		},
		map[int]string{6: "Junho"},
		3,
	)
}

func scopedRec(team, operator, actType string, status activity.Status, due *time.Time) activity.Record {
	return activity.Record{
		Team:         team,
		Operator:     operator,
		ActivityType: actType,
		Status:       status,
		DueDate:      due,
	}
}

func testDataset() *pipeline.Dataset {
	return &pipeline.Dataset{
		Records: []activity.Record{
			scopedRec("Operação - Salvador", "Daniela", "NF-e", activity.StatusOnTime, date(2024, 6, 20)),
			scopedRec("Operação - Salvador", "Daniela", "CT-e", activity.StatusOverdue, date(2024, 5, 1)),
			scopedRec("Frota", "Adriano", "NF-e", activity.StatusCompleted, date(2024, 6, 5)),
			scopedRec("Frota", "Adriano", "NF-e", activity.StatusNoDueDate, nil),
		},
		Teams: []string{"Frota", "Operação - Salvador"},
		Stats: pipeline.Stats{SnapshotID: "snap-1"},
	}
}

func TestScope(t *testing.T) {
	records := []activity.Record{
		// Due this month: in.
		scopedRec("", "", "", activity.StatusOnTime, date(2024, 6, 25)),
		// Overdue from a prior month: stays in regardless of age.
		scopedRec("", "", "", activity.StatusOverdue, date(2024, 1, 10)),
		// Completed in a prior month: ages out.
		scopedRec("", "", "", activity.StatusCompleted, date(2024, 5, 5)),
		// Due next month: out.
		scopedRec("", "", "", activity.StatusOnTime, date(2024, 7, 2)),
		// Same month, previous year: out.
		scopedRec("", "", "", activity.StatusCompleted, date(2023, 6, 15)),
		// No due date at all: out.
		scopedRec("", "", "", activity.StatusNoDueDate, nil),
	}

	got := Scope(records, boardNow)
	if len(got) != 2 {
		t.Fatalf("got %d records in scope, want 2", len(got))
	}
	if got[0].Status != activity.StatusOnTime || got[1].Status != activity.StatusOverdue {
		t.Errorf("scope = %v", got)
	}
}

func TestScopedTeams(t *testing.T) {
	records := []activity.Record{
		scopedRec("Frota", "", "", activity.StatusOnTime, date(2024, 6, 25)),
		scopedRec("Operação - Salvador", "", "", activity.StatusOverdue, date(2024, 1, 10)),
		// Entirely out of the window: holds no rotation slot.
		scopedRec("Arquivo", "", "", activity.StatusCompleted, date(2023, 12, 1)),
	}

	got := ScopedTeams(records, boardNow)
	want := []string{"Frota", "Operação - Salvador"}
	if len(got) != len(want) {
		t.Fatalf("ScopedTeams() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScopedTeams()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildOverview(t *testing.T) {
	v := testBuilder().Build(testDataset(), rotation.Overview, boardNow)

	if v.State != StateOK {
		t.Errorf("State = %q", v.State)
	}
	if v.Team != rotation.Overview || v.TeamColor != "#31333F" {
		t.Errorf("Team = %q color %q", v.Team, v.TeamColor)
	}
	if v.SnapshotID != "snap-1" {
		t.Errorf("SnapshotID = %q", v.SnapshotID)
	}
	if v.Period.Label != "Junho de 2024" {
		t.Errorf("Period.Label = %q, want Junho de 2024", v.Period.Label)
	}

	// The no-due-date record falls outside the monthly scope.
	if v.KPIs.Total != 3 {
		t.Errorf("KPIs.Total = %d, want 3", v.KPIs.Total)
	}
	if v.KPIs.Open != 2 {
		t.Errorf("KPIs.Open = %d, want 2", v.KPIs.Open)
	}

	// Overview distributes by team, with no operator sections.
	if len(v.Distribution) != 2 {
		t.Fatalf("got %d distribution rows, want 2", len(v.Distribution))
	}
	for _, row := range v.Distribution {
		if row.Label != "Frota" && row.Label != "Operação - Salvador" {
			t.Errorf("distribution label = %q, want a team", row.Label)
		}
	}
	if v.OperatorStatus != nil || v.OperatorActivity != nil {
		t.Error("overview must not carry operator sections")
	}
}

func TestBuildTeam(t *testing.T) {
	v := testBuilder().Build(testDataset(), "Operação - Salvador", boardNow)

	if v.TeamColor != "#00CC96" {
		t.Errorf("TeamColor = %q", v.TeamColor)
	}
	if v.KPIs.Total != 2 || v.KPIs.Overdue != 1 {
		t.Errorf("KPIs = %+v", v.KPIs)
	}

	// Per-team boards distribute by activity type.
	if len(v.Distribution) != 2 {
		t.Fatalf("got %d distribution rows, want 2", len(v.Distribution))
	}
	for _, row := range v.Distribution {
		if row.Label != "NF-e" && row.Label != "CT-e" {
			t.Errorf("distribution label = %q, want an activity type", row.Label)
		}
	}
	if len(v.OperatorStatus) != 1 || v.OperatorStatus[0].Label != "Daniela" {
		t.Errorf("OperatorStatus = %v", v.OperatorStatus)
	}
	if len(v.OperatorActivity) != 1 || v.OperatorActivity[0].Cells["NF-e"] != 1 {
		t.Errorf("OperatorActivity = %v", v.OperatorActivity)
	}
	if len(v.OverdueRanking) != 1 || v.OverdueRanking[0].Operator != "Daniela" {
		t.Errorf("OverdueRanking = %v", v.OverdueRanking)
	}
}

func TestBuildUnknownTeamColor(t *testing.T) {
	v := testBuilder().Build(testDataset(), "Frota", boardNow)
	if v.TeamColor != defaultColor {
		t.Errorf("TeamColor = %q, want fallback %q", v.TeamColor, defaultColor)
	}
}

func TestNoDataView(t *testing.T) {
	v := testBuilder().NoDataView(boardNow)
	if v.State != StateNoData {
		t.Errorf("State = %q", v.State)
	}
	if v.Team != rotation.Overview {
		t.Errorf("Team = %q", v.Team)
	}
	if v.KPIs.Total != 0 || v.KPIs.CompletionRate != 100.0 || v.KPIs.OverdueRate != 0.0 {
		t.Errorf("KPIs = %+v", v.KPIs)
	}
}

func TestPerformanceColor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{100, colorGood},
		{90, colorGood},
		{89.9, colorWarn},
		{70, colorWarn},
		{69.9, colorBad},
		{0, colorBad},
	}
	for _, tt := range tests {
		if got := performanceColor(tt.rate); got != tt.want {
			t.Errorf("performanceColor(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestPeriodUnknownMonth(t *testing.T) {
	b := NewBuilder(nil, nil, 0)
	p := b.period(boardNow)
	if p.Month != 6 || p.Year != 2024 {
		t.Errorf("period = %+v", p)
	}
	if p.Label != "" {
		t.Errorf("Label = %q, want empty without a month table", p.Label)
	}
}
