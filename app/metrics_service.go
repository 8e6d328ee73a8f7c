package app

import (
	"context"
	"log"
	"time"

	"bookbridge/domain/activity"
	"bookbridge/domain/core"
	"bookbridge/internal/cache"
	"bookbridge/internal/config"
	"bookbridge/internal/dataset"
	"bookbridge/internal/errors"
	"bookbridge/ports"

	mstats "github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

const (
	cacheKeyActivity = "activity"
	cacheKeyLegacy   = "legacy"
)

// MetricsService loads program-activity records, merges the legacy era, and
// exposes the aggregated dataset to the dashboard and report paths
type MetricsService struct {
	source    ports.RecordSource
	snapshots ports.SnapshotStore // nil disables snapshot persistence
	cache     *cache.RecordCache
	cfg       *config.Config
}

// NewMetricsService creates a metrics service
func NewMetricsService(source ports.RecordSource, snapshots ports.SnapshotStore, recordCache *cache.RecordCache, cfg *config.Config) *MetricsService {
	return &MetricsService{
		source:    source,
		snapshots: snapshots,
		cache:     recordCache,
		cfg:       cfg,
	}
}

// LoadDataset fetches current and legacy records concurrently and builds the
// merged, normalized dataset. A legacy fetch failure degrades to current-era
// data only.
func (s *MetricsService) LoadDataset(ctx context.Context) (*dataset.Dataset, error) {
	var current, legacy []map[string]any

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.fetchCached(gctx, cacheKeyActivity, s.cfg.Fieldbook.ActivityAppID, s.cfg.Data.CacheTTL)
		if err != nil {
			return errors.Wrap(err, "failed to fetch activity records")
		}
		current = records
		return nil
	})
	if s.cfg.Fieldbook.LegacyAppID != "" {
		g.Go(func() error {
			records, err := s.fetchCached(gctx, cacheKeyLegacy, s.cfg.Fieldbook.LegacyAppID, s.cfg.Data.LegacyCacheTTL)
			if err != nil {
				// Legacy history is optional context, not worth failing the dashboard
				log.Printf("[MetricsService] Legacy fetch failed, continuing with current era only: %v", err)
				return nil
			}
			legacy = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// The last persisted snapshot lets reports keep running through a
		// record-store outage
		snap := s.latestSnapshot(ctx)
		if snap == nil {
			return nil, err
		}
		log.Printf("[MetricsService] Fetch failed, falling back to snapshot from %s: %v",
			snap.TakenAt.Format(time.RFC3339), err)
		current = snap.Records
	} else {
		s.persistSnapshot(ctx, current)
	}

	combined := dataset.Combine(current, legacy, s.cfg.Data.LegacyCutoff)
	ds := dataset.New(combined)
	log.Printf("[MetricsService] Built dataset: %d current + %d legacy records -> %d rows",
		len(current), len(legacy), ds.Len())
	return ds, nil
}

func (s *MetricsService) fetchCached(ctx context.Context, key, appID string, ttl time.Duration) ([]map[string]any, error) {
	if records, ok := s.cache.Get(key); ok {
		return records, nil
	}
	records, err := s.source.FetchAll(ctx, appID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, records, ttl)
	return records, nil
}

// persistSnapshot saves the fetched records when a store is configured.
// Snapshot failures are logged, never fatal.
func (s *MetricsService) persistSnapshot(ctx context.Context, records []map[string]any) {
	if s.snapshots == nil || len(records) == 0 {
		return
	}
	snap := activity.NewSnapshot(cacheKeyActivity, records)
	if err := s.snapshots.Save(ctx, snap); err != nil {
		log.Printf("[MetricsService] Snapshot save failed: %v", err)
	}
}

// latestSnapshot loads the most recent persisted record set, nil when no
// store is configured or none exists
func (s *MetricsService) latestSnapshot(ctx context.Context) *activity.Snapshot {
	if s.snapshots == nil {
		return nil
	}
	snap, err := s.snapshots.Latest(ctx, cacheKeyActivity)
	if err != nil {
		if !core.IsNotFoundError(err) {
			log.Printf("[MetricsService] Snapshot lookup failed: %v", err)
		}
		return nil
	}
	return snap
}

// ActiveEnrollments returns the current active enrollment count, or 0 when
// no enrollment app is configured
func (s *MetricsService) ActiveEnrollments(ctx context.Context) (int, error) {
	if s.cfg.Fieldbook.EnrollmentAppID == "" {
		return 0, nil
	}
	return s.source.CountActiveEnrollments(ctx, s.cfg.Fieldbook.EnrollmentAppID)
}

// TrendResult describes a least-squares trendline fitted over time buckets
type TrendResult struct {
	Metric    string  `json:"metric"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Periods   int     `json:"periods"`
	Direction string  `json:"direction"`
}

// Trend fits a linear trendline to a metric across time buckets
func Trend(periods []dataset.PeriodRow, metric string) TrendResult {
	result := TrendResult{Metric: metric, Periods: len(periods), Direction: "flat"}
	if len(periods) < 2 {
		return result
	}

	xs := make([]float64, len(periods))
	ys := make([]float64, len(periods))
	for i, p := range periods {
		xs[i] = float64(i)
		ys[i] = p.Values[metric]
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	result.Intercept = alpha
	result.Slope = beta
	switch {
	case beta > 0:
		result.Direction = "up"
	case beta < 0:
		result.Direction = "down"
	}
	return result
}

// DistributionResult summarizes the spread of a metric across time buckets
type DistributionResult struct {
	Metric string  `json:"metric"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Distribution computes summary statistics over a metric's bucket values
func Distribution(periods []dataset.PeriodRow, metric string) DistributionResult {
	result := DistributionResult{Metric: metric}
	if len(periods) == 0 {
		return result
	}

	values := make(mstats.Float64Data, 0, len(periods))
	for _, p := range periods {
		values = append(values, p.Values[metric])
	}

	// Errors only occur on empty input, which is handled above
	result.Mean, _ = mstats.Mean(values)
	result.Median, _ = mstats.Median(values)
	result.P25, _ = mstats.Percentile(values, 25)
	result.P75, _ = mstats.Percentile(values, 75)
	result.Min, _ = mstats.Min(values)
	result.Max, _ = mstats.Max(values)
	return result
}
