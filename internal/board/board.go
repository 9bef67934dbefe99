// Package board assembles the per-team dashboard views the presentation
// layer consumes, and runs the carousel that rotates through them.
package board

import (
	"fmt"
	"sort"
	"time"

	"github.com/gfbarros/vistaboard/internal/activity"
	"github.com/gfbarros/vistaboard/internal/aggregate"
	"github.com/gfbarros/vistaboard/internal/pipeline"
	"github.com/gfbarros/vistaboard/internal/rotation"
)

// View states. NoData is a terminal state of its own, not an error: the
// fetch worked but nothing survived team resolution.
const (
	StateOK     = "ok"
	StateNoData = "no_data"
)

// Performance color thresholds for the header gauge.
const (
	colorGood    = "#00CC96"
	colorWarn    = "#FFD700"
	colorBad     = "#EF553B"
	defaultColor = "#262730"
)

// Period is the month scope of the board.
type Period struct {
	Month int    `json:"month"`
	Year  int    `json:"year"`
	Label string `json:"label"`
}

// KPIs are the headline numbers for the selected scope.
type KPIs struct {
	Total            int     `json:"total"`
	Completed        int     `json:"completed"`
	OnTime           int     `json:"on_time"`
	DueSoon          int     `json:"due_soon"`
	Overdue          int     `json:"overdue"`
	NoDueDate        int     `json:"no_due_date"`
	Open             int     `json:"open"`
	CompletionRate   float64 `json:"completion_rate"`
	OverdueRate      float64 `json:"overdue_rate"`
	PerformanceColor string  `json:"performance_color"`
}

// View is everything the presentation layer needs to draw one board.
// Distribution rows are by team on the overview and by activity type on a
// single-team board; the operator sections only apply to the latter.
type View struct {
	State         string    `json:"state"`
	Team          string    `json:"team"`
	TeamColor     string    `json:"team_color"`
	NextTeam      string    `json:"next_team,omitempty"`
	SecondsToNext int       `json:"seconds_to_next,omitempty"`
	Period        Period    `json:"period"`
	SnapshotID    string    `json:"snapshot_id,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`

	KPIs             KPIs                        `json:"kpis"`
	StackOrder       []activity.Status           `json:"stack_order"`
	Distribution     []aggregate.Row             `json:"distribution"`
	OperatorStatus   []aggregate.Row             `json:"operator_status,omitempty"`
	OperatorActivity []aggregate.PivotRow        `json:"operator_activity,omitempty"`
	OverdueRanking   []aggregate.OperatorOverdue `json:"overdue_ranking"`
	ClientTable      []aggregate.Row             `json:"client_table"`
	ClientPie        []aggregate.PieSlice        `json:"client_pie"`
}

// Builder turns a dataset into Views using the display reference data.
type Builder struct {
	colors    map[string]string
	months    map[int]string
	threshold int
}

// NewBuilder creates a Builder. colors and months come from the reference
// store; threshold is the minor-client pie bucketing cutoff.
func NewBuilder(colors map[string]string, months map[int]string, threshold int) *Builder {
	if threshold <= 0 {
		threshold = aggregate.DefaultMinorClientThreshold
	}
	return &Builder{colors: colors, months: months, threshold: threshold}
}

// Scope narrows a dataset to the board's reporting window: records due in
// the current month, plus every overdue record regardless of age. Completed
// work from prior months ages out; late work never does.
func Scope(records []activity.Record, now time.Time) []activity.Record {
	out := make([]activity.Record, 0, len(records))
	for _, rec := range records {
		if rec.Status == activity.StatusOverdue {
			out = append(out, rec)
			continue
		}
		if rec.DueDate != nil && rec.DueDate.Month() == now.Month() && rec.DueDate.Year() == now.Year() {
			out = append(out, rec)
		}
	}
	return out
}

// ScopedTeams lists the distinct teams with records in the current reporting
// window, sorted. The rotation sequence derives from this rather than from
// the full dataset, so a team whose work sits entirely outside the window
// gives up its slot until it has something to show.
func ScopedTeams(records []activity.Record, now time.Time) []string {
	set := make(map[string]struct{})
	for _, rec := range Scope(records, now) {
		set[rec.Team] = struct{}{}
	}
	teams := make([]string, 0, len(set))
	for t := range set {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	return teams
}

// Build assembles the view for one team (or rotation.Overview) at now.
func (b *Builder) Build(ds *pipeline.Dataset, team string, now time.Time) View {
	scoped := Scope(ds.Records, now)

	inScope := scoped
	if team != rotation.Overview {
		inScope = aggregate.FilterTeam(scoped, team)
	}

	v := View{
		State:       StateOK,
		Team:        team,
		TeamColor:   b.teamColor(team),
		Period:      b.period(now),
		SnapshotID:  ds.Stats.SnapshotID,
		GeneratedAt: now,
		StackOrder:  activity.StackOrder(),
		KPIs:        buildKPIs(inScope),

		OverdueRanking: aggregate.OverdueRanking(inScope),
		ClientTable:    aggregate.ClientTable(inScope),
		ClientPie:      aggregate.ClientPie(inScope, b.threshold),
	}

	if team == rotation.Overview {
		v.Distribution = aggregate.StatusCrosstab(inScope, aggregate.ByTeam)
	} else {
		v.Distribution = aggregate.StatusCrosstab(inScope, aggregate.ByActivityType)
		v.OperatorStatus = aggregate.StatusCrosstab(inScope, aggregate.ByOperator)
		v.OperatorActivity = aggregate.Pivot(inScope, aggregate.ByOperator, aggregate.ByActivityType)
	}

	return v
}

// NoDataView is the view served when the pipeline reports an empty dataset.
func (b *Builder) NoDataView(now time.Time) View {
	return View{
		State:       StateNoData,
		Team:        rotation.Overview,
		TeamColor:   b.teamColor(rotation.Overview),
		Period:      b.period(now),
		GeneratedAt: now,
		StackOrder:  activity.StackOrder(),
		KPIs:        buildKPIs(nil),
	}
}

func buildKPIs(records []activity.Record) KPIs {
	k := KPIs{
		Total:          len(records),
		Completed:      aggregate.CountStatus(records, activity.StatusCompleted),
		OnTime:         aggregate.CountStatus(records, activity.StatusOnTime),
		DueSoon:        aggregate.CountStatus(records, activity.StatusDueSoon),
		Overdue:        aggregate.CountStatus(records, activity.StatusOverdue),
		NoDueDate:      aggregate.CountStatus(records, activity.StatusNoDueDate),
		CompletionRate: aggregate.CompletionRate(records),
		OverdueRate:    aggregate.OverdueRate(records),
	}
	k.Open = k.Total - k.Completed
	k.PerformanceColor = performanceColor(k.CompletionRate)
	return k
}

func performanceColor(rate float64) string {
	switch {
	case rate >= 90:
		return colorGood
	case rate >= 70:
		return colorWarn
	default:
		return colorBad
	}
}

func (b *Builder) teamColor(team string) string {
	if c, ok := b.colors[team]; ok {
		return c
	}
	return defaultColor
}

func (b *Builder) period(now time.Time) Period {
	p := Period{Month: int(now.Month()), Year: now.Year()}
	if name, ok := b.months[p.Month]; ok {
		p.Label = fmt.Sprintf("%s de %d", name, p.Year)
	}
	return p
}
