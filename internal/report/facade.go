// Package report assembles cohort snapshots and recommendations into the
// tables consumed by the dashboard, the digests and the exports.
package report

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"RetentionSentinel/internal/cohort"
	"RetentionSentinel/internal/model"
	"RetentionSentinel/internal/recommend"
)

// UnassignedKey groups orders whose dimension value is empty.
const UnassignedKey = "Unassigned"

// Facade fans aggregation and comparison out over months and ledger slices.
// A nil Cache disables memoization.
type Facade struct {
	RevenueWindow int
	Cache         *SnapshotCache
}

// NewFacade creates a Facade.
func NewFacade(revenueWindow int, cache *SnapshotCache) *Facade {
	return &Facade{RevenueWindow: revenueWindow, Cache: cache}
}

// DimensionRow is a cohort row tagged with the slice it was computed on.
type DimensionRow struct {
	Key string
	model.CohortRow
}

// Snapshot returns the snapshot for ym, through the cache when set.
func (f *Facade) Snapshot(l *model.Ledger, ym model.YearMonth) *model.Snapshot {
	if f.Cache != nil {
		return f.Cache.Get(l, ym, f.RevenueWindow)
	}
	return cohort.AggregateWindow(l, ym, f.RevenueWindow)
}

// Retention builds the long-format table: four rows per month, months in
// the order given, segments in display order.
func (f *Facade) Retention(ctx context.Context, l *model.Ledger, months []model.YearMonth) ([]model.CohortRow, error) {
	snaps := make([]*model.Snapshot, len(months))
	g, ctx := errgroup.WithContext(ctx)
	for i, ym := range months {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			snaps[i] = f.Snapshot(l, ym)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]model.CohortRow, 0, len(months)*model.SegmentCount)
	for _, s := range snaps {
		rows = append(rows, s.Rows[:]...)
	}
	return rows, nil
}

// RetentionBy runs Retention on every slice and concatenates the results
// sorted by key.
func (f *Facade) RetentionBy(ctx context.Context, parts map[string]*model.Ledger, months []model.YearMonth) ([]DimensionRow, error) {
	keys := sortedKeys(parts)
	results := make([][]model.CohortRow, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	for i, k := range keys {
		g.Go(func() error {
			rows, err := f.Retention(ctx, parts[k], months)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []DimensionRow
	for i, k := range keys {
		for _, r := range results[i] {
			out = append(out, DimensionRow{Key: k, CohortRow: r})
		}
	}
	return out, nil
}

// Recommendations compares from and to on the ledger. Both snapshots are
// computed before the comparison starts.
func (f *Facade) Recommendations(ctx context.Context, l *model.Ledger, from, to model.YearMonth) (*model.RecommendationSet, error) {
	var a, b *model.Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		a = f.Snapshot(l, from)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b = f.Snapshot(l, to)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := recommend.Compare(a.Customers, b.Customers)
	set.From, set.To = from, to
	for i := range set.Records {
		set.Records[i].From, set.Records[i].To = from, to
	}
	return set, nil
}

// RecommendationsBy runs Recommendations on every slice.
func (f *Facade) RecommendationsBy(ctx context.Context, parts map[string]*model.Ledger, from, to model.YearMonth) (map[string]*model.RecommendationSet, error) {
	var mu sync.Mutex
	out := make(map[string]*model.RecommendationSet, len(parts))

	g, ctx := errgroup.WithContext(ctx)
	for k, l := range parts {
		g.Go(func() error {
			set, err := f.Recommendations(ctx, l, from, to)
			if err != nil {
				return err
			}
			mu.Lock()
			out[k] = set
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ByCountry splits the ledger by country code.
func ByCountry(l *model.Ledger) map[string]*model.Ledger {
	return l.Partition(func(o model.Order) string { return keyOrUnassigned(o.Country) })
}

// ByAccountManager splits the ledger by owning account manager.
func ByAccountManager(l *model.Ledger) map[string]*model.Ledger {
	return l.Partition(func(o model.Order) string { return keyOrUnassigned(o.AccountManager) })
}

// ByRegion splits the ledger by region.
func ByRegion(l *model.Ledger) map[string]*model.Ledger {
	return l.Partition(func(o model.Order) string { return keyOrUnassigned(o.Region) })
}

func keyOrUnassigned(v string) string {
	if v == "" {
		return UnassignedKey
	}
	return v
}

func sortedKeys(m map[string]*model.Ledger) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
