package board

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gfbarros/vistaboard/internal/cache"
	"github.com/gfbarros/vistaboard/internal/pipeline"
	"github.com/gfbarros/vistaboard/internal/rotation"
)

// DefaultInterval is the wall-clock time each team's board stays up.
const DefaultInterval = 15 * time.Second

const pollEvery = time.Second

// Carousel owns the rotation state and serves the currently-displayed view.
// It is the single writer of the state; readers go through Current.
type Carousel struct {
	data     *cache.TTL[*pipeline.Dataset]
	builder  *Builder
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu    sync.Mutex
	state rotation.State
}

// NewCarousel creates a Carousel over the cached dataset. interval <= 0
// falls back to DefaultInterval.
func NewCarousel(data *cache.TTL[*pipeline.Dataset], builder *Builder, interval time.Duration) *Carousel {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Carousel{
		data:     data,
		builder:  builder,
		interval: interval,
		now:      time.Now,
		logger:   slog.Default(),
	}
}

// Run drives the rotation until ctx is cancelled. Each poll checks elapsed
// wall-clock time and advances the index once the interval has passed;
// consumers pick up the new team on their next Current call.
func (c *Carousel) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(pollEvery):
		}

		ds, err := c.data.Get(ctx)
		if err != nil {
			c.logger.Error("carousel refresh failed", "error", err)
			continue
		}

		now := c.now()
		seq := rotation.Sequence(ScopedTeams(ds.Records, now))

		c.mu.Lock()
		next, redraw := rotation.Advance(c.state, now, len(seq), c.interval)
		c.state = next
		c.mu.Unlock()

		if redraw {
			c.logger.Info("rotated to next board", "team", seq[next.Index], "index", next.Index)
		}
	}
}

// Current builds the view for the team the carousel is showing right now.
// An empty dataset yields a no-data view, not an error.
func (c *Carousel) Current(ctx context.Context) (View, error) {
	now := c.now()

	ds, err := c.data.Get(ctx)
	if err != nil {
		return View{}, err
	}
	if ds.Empty() {
		return c.builder.NoDataView(now), nil
	}

	seq := rotation.Sequence(ScopedTeams(ds.Records, now))

	c.mu.Lock()
	st := c.state
	st.Index %= len(seq)
	c.mu.Unlock()

	v := c.builder.Build(ds, seq[st.Index], now)
	v.NextTeam = rotation.Next(seq, st.Index)
	v.SecondsToNext = int(rotation.Remaining(st, now, c.interval).Seconds())
	return v, nil
}

// ViewFor builds the view for an explicitly selected team, bypassing the
// rotation. The team must be rotation.Overview or hold records in the
// current reporting window.
func (c *Carousel) ViewFor(ctx context.Context, team string) (View, bool, error) {
	now := c.now()

	ds, err := c.data.Get(ctx)
	if err != nil {
		return View{}, false, err
	}
	if ds.Empty() {
		return c.builder.NoDataView(now), team == rotation.Overview, nil
	}

	if team != rotation.Overview {
		known := false
		for _, t := range ScopedTeams(ds.Records, now) {
			if t == team {
				known = true
				break
			}
		}
		if !known {
			return View{}, false, nil
		}
	}

	return c.builder.Build(ds, team, now), true, nil
}

// Teams returns the current rotation sequence.
func (c *Carousel) Teams(ctx context.Context) ([]string, error) {
	ds, err := c.data.Get(ctx)
	if err != nil {
		return nil, err
	}
	if ds.Empty() {
		return []string{rotation.Overview}, nil
	}
	return rotation.Sequence(ScopedTeams(ds.Records, c.now())), nil
}

// Dataset exposes the cached dataset for the records and stats endpoints.
func (c *Carousel) Dataset(ctx context.Context) (*pipeline.Dataset, error) {
	return c.data.Get(ctx)
}
