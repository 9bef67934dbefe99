package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gfbarros/vistaboard/internal/activity"
	"github.com/gfbarros/vistaboard/internal/graph"
)

// ItemFetcher fetches one page of raw list items.
type ItemFetcher interface {
	ListItems(ctx context.Context) (graph.Page, error)
}

// ReferenceData provides the versioned lookup tables the pipeline needs.
type ReferenceData interface {
	FieldMap() (map[string]string, error)
	OperatorTeams() (map[string]string, error)
}

// Stats describes one refresh for logging and the /stats endpoint.
type Stats struct {
	SnapshotID      string    `json:"snapshot_id"`
	FetchedAt       time.Time `json:"fetched_at"`
	Fetched         int       `json:"fetched"`
	Kept            int       `json:"kept"`
	DroppedUnmapped int       `json:"dropped_unmapped"`
	Truncated       bool      `json:"truncated"`
}

// Dataset is the classified, team-resolved output of one refresh. It is
// replaced wholesale on the next cache miss and never mutated in between.
type Dataset struct {
	Records []activity.Record
	Teams   []string // distinct teams, sorted
	Stats   Stats
}

// Empty reports the no-data terminal state: the fetch succeeded but zero
// records survived team resolution. Not a failure — an empty dataset is
// cached like any other, so the no-data board holds for the full TTL window
// instead of refetching on every read.
func (d *Dataset) Empty() bool {
	return len(d.Records) == 0
}

// Refresher runs the transformation pipeline: fetch, field mapping, team
// resolution, classification. Order is strict within a run: the fetch
// completes fully before any record is classified.
type Refresher struct {
	fetcher     ItemFetcher
	refdata     ReferenceData
	dueSoonDays int
	logger      *slog.Logger

	droppedTotal atomic.Int64
}

// NewRefresher creates a Refresher. dueSoonDays <= 0 falls back to the
// canonical 3-day horizon.
func NewRefresher(fetcher ItemFetcher, refdata ReferenceData, dueSoonDays int) *Refresher {
	if dueSoonDays <= 0 {
		dueSoonDays = activity.DefaultDueSoonDays
	}
	return &Refresher{
		fetcher:     fetcher,
		refdata:     refdata,
		dueSoonDays: dueSoonDays,
		logger:      slog.Default(),
	}
}

// Refresh fetches the remote list and materializes a fresh Dataset,
// classifying every record against the supplied reference date. Records
// whose operator is not in the team table are excluded and counted, not
// treated as failures.
func (r *Refresher) Refresh(ctx context.Context, now time.Time) (*Dataset, error) {
	page, err := r.fetcher.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	fieldMap, err := r.refdata.FieldMap()
	if err != nil {
		return nil, fmt.Errorf("loading field map: %w", err)
	}
	teams, err := r.refdata.OperatorTeams()
	if err != nil {
		return nil, fmt.Errorf("loading operator teams: %w", err)
	}

	stats := Stats{
		SnapshotID: uuid.New().String(),
		FetchedAt:  now,
		Fetched:    len(page.Items),
		Truncated:  page.Truncated,
	}
	if page.Truncated {
		r.logger.Warn("list page at item cap, dataset may be truncated",
			"snapshot_id", stats.SnapshotID, "limit", graph.PageLimit)
	}

	records := make([]activity.Record, 0, len(page.Items))
	teamSet := make(map[string]struct{})
	for _, item := range page.Items {
		rec := activity.NewRecord(activity.MapFields(item, fieldMap))

		team, ok := teams[rec.Operator]
		if !ok {
			stats.DroppedUnmapped++
			continue
		}
		rec.Team = team
		rec.Status = activity.Classify(rec, now, r.dueSoonDays)

		records = append(records, rec)
		teamSet[team] = struct{}{}
	}
	stats.Kept = len(records)
	r.droppedTotal.Add(int64(stats.DroppedUnmapped))

	if stats.DroppedUnmapped > 0 {
		r.logger.Debug("dropped records with unmapped operators",
			"snapshot_id", stats.SnapshotID, "dropped", stats.DroppedUnmapped)
	}

	if len(records) == 0 {
		r.logger.Warn("fetched dataset yielded no usable records",
			"snapshot_id", stats.SnapshotID, "fetched", stats.Fetched)
		return &Dataset{Stats: stats}, nil
	}

	names := make([]string, 0, len(teamSet))
	for t := range teamSet {
		names = append(names, t)
	}
	sort.Strings(names)

	r.logger.Info("dataset refreshed",
		"snapshot_id", stats.SnapshotID,
		"fetched", stats.Fetched,
		"kept", stats.Kept,
		"teams", len(names))

	return &Dataset{Records: records, Teams: names, Stats: stats}, nil
}

// DroppedTotal returns the number of records excluded for unmapped operators
// across the life of the process.
func (r *Refresher) DroppedTotal() int64 {
	return r.droppedTotal.Load()
}
