// Package aggregate computes the view-ready aggregates consumed by the
// presentation layer: status crosstabs, performance rates, client
// breakdowns and operator rankings over a classified dataset.
package aggregate

import (
	"sort"

	"github.com/gfbarros/vistaboard/internal/activity"
)

// OtherClient is the pseudo-client that absorbs minor clients in the pie
// view. Labeled in the source data's language, like team names.
const OtherClient = "Outros"

// DefaultMinorClientThreshold is the minimum number of open activities a
// client needs to stay out of the OtherClient bucket.
const DefaultMinorClientThreshold = 3

// Row is one row of a status crosstab: absolute counts plus row-normalized
// percentages, so stacked percentage bars never depend on other rows.
type Row struct {
	Label   string                      `json:"label"`
	Counts  map[activity.Status]int     `json:"counts"`
	Percent map[activity.Status]float64 `json:"percent"`
	Total   int                         `json:"total"`
}

// KeyFunc extracts the grouping label from a record.
type KeyFunc func(activity.Record) string

func ByTeam(r activity.Record) string         { return r.Team }
func ByActivityType(r activity.Record) string { return r.ActivityType }
func ByOperator(r activity.Record) string     { return r.Operator }
func ByClient(r activity.Record) string       { return r.Client }

// StatusCrosstab groups records by key and counts each status per group.
// Rows come back ordered by total descending (label ascending on ties), the
// order bar charts want.
func StatusCrosstab(records []activity.Record, key KeyFunc) []Row {
	byLabel := make(map[string]*Row)
	for _, rec := range records {
		label := key(rec)
		row, ok := byLabel[label]
		if !ok {
			row = &Row{Label: label, Counts: make(map[activity.Status]int)}
			byLabel[label] = row
		}
		row.Counts[rec.Status]++
		row.Total++
	}

	rows := make([]Row, 0, len(byLabel))
	for _, row := range byLabel {
		row.Percent = make(map[activity.Status]float64, len(row.Counts))
		for st, n := range row.Counts {
			row.Percent[st] = float64(n) / float64(row.Total) * 100
		}
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

// PivotRow is one row of a categorical pivot (e.g. operator × activity type).
type PivotRow struct {
	Label string         `json:"label"`
	Cells map[string]int `json:"cells"`
	Total int            `json:"total"`
}

// Pivot counts records per (rowKey, colKey) pair, rows ordered by total
// descending.
func Pivot(records []activity.Record, rowKey, colKey KeyFunc) []PivotRow {
	byLabel := make(map[string]*PivotRow)
	for _, rec := range records {
		label := rowKey(rec)
		row, ok := byLabel[label]
		if !ok {
			row = &PivotRow{Label: label, Cells: make(map[string]int)}
			byLabel[label] = row
		}
		row.Cells[colKey(rec)]++
		row.Total++
	}

	rows := make([]PivotRow, 0, len(byLabel))
	for _, row := range byLabel {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

// CountStatus counts records carrying the given status.
func CountStatus(records []activity.Record, status activity.Status) int {
	n := 0
	for _, rec := range records {
		if rec.Status == status {
			n++
		}
	}
	return n
}

// CompletionRate is (completed + on-time) / total, as a 0–100 percentage.
// An empty scope counts as fully on track: 100.
func CompletionRate(records []activity.Record) float64 {
	if len(records) == 0 {
		return 100.0
	}
	done := CountStatus(records, activity.StatusCompleted) + CountStatus(records, activity.StatusOnTime)
	return float64(done) / float64(len(records)) * 100
}

// OverdueRate is overdue / (total - completed), as a 0–100 percentage.
// When everything is completed (or the scope is empty) nothing can be late: 0.
func OverdueRate(records []activity.Record) float64 {
	open := len(records) - CountStatus(records, activity.StatusCompleted)
	if open <= 0 {
		return 0.0
	}
	return float64(CountStatus(records, activity.StatusOverdue)) / float64(open) * 100
}

// ClientTable is the per-client status crosstab for the detail table,
// ordered by overdue count descending. Records without a client are skipped.
// No bucketing happens here; the table always shows every client.
func ClientTable(records []activity.Record) []Row {
	withClient := make([]activity.Record, 0, len(records))
	for _, rec := range records {
		if rec.Client != "" {
			withClient = append(withClient, rec)
		}
	}
	rows := StatusCrosstab(withClient, ByClient)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Counts[activity.StatusOverdue] > rows[j].Counts[activity.StatusOverdue]
	})
	return rows
}

// PieSlice is one slice of the open-activities-by-client pie.
type PieSlice struct {
	Client string `json:"client"`
	Count  int    `json:"count"`
}

// ClientPie counts open (non-completed) activities per client and merges
// clients below threshold into the OtherClient slice. A client with exactly
// threshold open activities keeps its own slice. threshold <= 0 falls back
// to the default.
func ClientPie(records []activity.Record, threshold int) []PieSlice {
	if threshold <= 0 {
		threshold = DefaultMinorClientThreshold
	}

	counts := make(map[string]int)
	for _, rec := range records {
		if !rec.Open() || rec.Client == "" {
			continue
		}
		counts[rec.Client]++
	}

	other := 0
	slices := make([]PieSlice, 0, len(counts))
	for client, n := range counts {
		if n < threshold {
			other += n
			continue
		}
		slices = append(slices, PieSlice{Client: client, Count: n})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Count != slices[j].Count {
			return slices[i].Count > slices[j].Count
		}
		return slices[i].Client < slices[j].Client
	})
	if other > 0 {
		slices = append(slices, PieSlice{Client: OtherClient, Count: other})
	}
	return slices
}

// OperatorOverdue is one entry of the overdue ranking.
type OperatorOverdue struct {
	Operator string `json:"operator"`
	Overdue  int    `json:"overdue"`
}

// OverdueRanking orders operators by overdue count descending. An empty
// ranking is a valid result and means nobody is late.
func OverdueRanking(records []activity.Record) []OperatorOverdue {
	counts := make(map[string]int)
	for _, rec := range records {
		if rec.Status == activity.StatusOverdue {
			counts[rec.Operator]++
		}
	}

	ranking := make([]OperatorOverdue, 0, len(counts))
	for op, n := range counts {
		ranking = append(ranking, OperatorOverdue{Operator: op, Overdue: n})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Overdue != ranking[j].Overdue {
			return ranking[i].Overdue > ranking[j].Overdue
		}
		return ranking[i].Operator < ranking[j].Operator
	})
	return ranking
}

// FilterTeam keeps records belonging to team. An empty team selects nothing;
// board callers pass the full set for the overview instead of filtering.
func FilterTeam(records []activity.Record, team string) []activity.Record {
	out := make([]activity.Record, 0, len(records))
	for _, rec := range records {
		if rec.Team == team {
			out = append(out, rec)
		}
	}
	return out
}
