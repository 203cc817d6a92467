package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/storage"
)

// ErrInvalidRange is returned for report windows that end before they start.
var ErrInvalidRange = errors.New("invalid report range")

// Range is an inclusive report window in unix milliseconds.
type Range struct {
	StartTs int64
	EndTs   int64
}

func (r Range) Validate() error {
	if r.StartTs < 0 || r.EndTs < 0 {
		return fmt.Errorf("%w: negative timestamp", ErrInvalidRange)
	}
	if r.StartTs > r.EndTs {
		return fmt.Errorf("%w: start %d is after end %d", ErrInvalidRange, r.StartTs, r.EndTs)
	}
	return nil
}

// Options tunes the summary projection.
type Options struct {
	Locale       string
	TopCampaigns int
	RecentEvents int
}

// Service builds reports from the current state of storage. Every call
// reads a fresh snapshot; nothing is cached between calls.
type Service struct {
	store   storage.Store
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a reporting service. m may be nil.
func NewService(store storage.Store, opts Options, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !SupportedLocale(opts.Locale) {
		opts.Locale = DefaultLocale
	}
	return &Service{
		store:   store,
		opts:    opts,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// snapshot is everything one build reads from storage.
type snapshot struct {
	accounts  []models.AdAccount
	campaigns []models.Campaign
	groups    []models.AdGroup
	ads       []models.Ad
	stats     []models.DailyStat
	activity  []models.AdActivity
	sales     []models.Sale
	leads     []models.Lead
}

// load fetches the snapshot concurrently. Accounts are skipped unless
// withAccounts is set.
func (s *Service) load(ctx context.Context, projectID string, rng Range, withAccounts bool) (*snapshot, error) {
	snap := &snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	if withAccounts {
		s.read(g, "list_accounts", func() (err error) {
			snap.accounts, err = s.store.Hierarchy.ListAccounts(ctx, projectID)
			return err
		})
	}
	s.read(g, "list_campaigns", func() (err error) {
		snap.campaigns, err = s.store.Hierarchy.ListCampaigns(ctx, projectID)
		return err
	})
	s.read(g, "list_ad_groups", func() (err error) {
		snap.groups, err = s.store.Hierarchy.ListAdGroups(ctx, projectID)
		return err
	})
	s.read(g, "list_ads", func() (err error) {
		snap.ads, err = s.store.Hierarchy.ListAds(ctx, projectID)
		return err
	})
	s.read(g, "list_daily_stats", func() (err error) {
		snap.stats, err = s.store.Stats.ListDailyStats(ctx, projectID, rng.StartTs, rng.EndTs)
		return err
	})
	s.read(g, "list_ad_activity", func() (err error) {
		snap.activity, err = s.store.Stats.ListAdActivity(ctx, projectID)
		return err
	})
	s.read(g, "list_sales", func() (err error) {
		snap.sales, err = s.store.Sales.ListSales(ctx, projectID)
		return err
	})
	s.read(g, "list_leads", func() (err error) {
		snap.leads, err = s.store.Leads.ListLeads(ctx, projectID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// read runs fn in g, timing it under operation.
func (s *Service) read(g *errgroup.Group, operation string, fn func() error) {
	g.Go(func() error {
		start := time.Now()
		err := fn()
		if s.metrics != nil {
			s.metrics.RecordStorageRead(operation, time.Since(start))
		}
		if err != nil {
			return fmt.Errorf("failed to %s: %w", operation, err)
		}
		return nil
	})
}

// BuildTree returns the account forest of a project for rng.
func (s *Service) BuildTree(ctx context.Context, projectID string, rng Range) (rows []Row, err error) {
	start := time.Now()
	defer func() { s.record(metrics.KindTree, err, start) }()

	if err := rng.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, projectID, rng, true)
	if err != nil {
		return nil, err
	}

	rows = BuildTree(TreeInput{
		Accounts:  snap.accounts,
		Campaigns: snap.campaigns,
		AdGroups:  snap.groups,
		Ads:       snap.ads,
		Stats:     snap.stats,
		Activity:  snap.activity,
		Sales:     snap.sales,
		Leads:     snap.leads,
		Logger:    s.logger.With(zap.String("project_id", projectID)),
	})

	if s.metrics != nil {
		countByType(rows, func(t RowType, n int) { s.metrics.RecordRows(string(t), n) })
	}
	s.logger.Debug("report tree built",
		zap.String("project_id", projectID),
		zap.Int("accounts", len(rows)),
		zap.Int("rows", CountRows(rows)),
		zap.Int("daily_stats", len(snap.stats)),
		zap.Duration("duration", time.Since(start)),
	)
	return rows, nil
}

// BuildSummary returns the dashboard summary of a project for rng.
func (s *Service) BuildSummary(ctx context.Context, projectID string, rng Range) (sum Summary, err error) {
	start := time.Now()
	defer func() { s.record(metrics.KindSummary, err, start) }()

	if err := rng.Validate(); err != nil {
		return Summary{}, err
	}
	snap, err := s.load(ctx, projectID, rng, false)
	if err != nil {
		return Summary{}, err
	}

	sum = BuildSummary(SummaryInput{
		Campaigns:    snap.campaigns,
		AdGroups:     snap.groups,
		Ads:          snap.ads,
		Stats:        snap.stats,
		Activity:     snap.activity,
		Sales:        snap.sales,
		Leads:        snap.leads,
		Now:          s.now(),
		Locale:       s.opts.Locale,
		TopCampaigns: s.opts.TopCampaigns,
		RecentEvents: s.opts.RecentEvents,
	})

	if s.metrics != nil {
		t := sum.Totals
		s.metrics.RecordAttribution(
			int(t.SalesCount-t.LateSalesCount), int(t.LateSalesCount),
			t.Income-t.LateIncome, t.LateIncome,
		)
	}
	s.logger.Debug("report summary built",
		zap.String("project_id", projectID),
		zap.Int64("sales", sum.Totals.SalesCount),
		zap.Float64("income", sum.Income),
		zap.Duration("duration", time.Since(start)),
	)
	return sum, nil
}

// AttributeAd returns the per-date attribution of one ad for rng, with
// totals de-duplicated by sale id.
func (s *Service) AttributeAd(ctx context.Context, projectID, adID string, rng Range) (res AdAttribution, err error) {
	start := time.Now()
	defer func() { s.record(metrics.KindAttribution, err, start) }()

	if err := rng.Validate(); err != nil {
		return AdAttribution{}, err
	}

	var (
		stats    []models.DailyStat
		activity []models.AdActivity
		sales    []models.Sale
	)
	g, gctx := errgroup.WithContext(ctx)
	s.read(g, "list_daily_stats", func() (err error) {
		stats, err = s.store.Stats.ListDailyStats(gctx, projectID, rng.StartTs, rng.EndTs)
		return err
	})
	s.read(g, "list_ad_activity", func() (err error) {
		activity, err = s.store.Stats.ListAdActivity(gctx, projectID)
		return err
	})
	s.read(g, "list_sales", func() (err error) {
		sales, err = s.store.Sales.ListSales(gctx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return AdAttribution{}, err
	}

	adStats := make([]models.DailyStat, 0)
	for _, st := range stats {
		if st.AdID == adID {
			adStats = append(adStats, st)
		}
	}
	adActivity := make([]models.AdActivity, 0)
	for _, a := range activity {
		if a.AdID == adID {
			adActivity = append(adActivity, a)
		}
	}

	in := groupByAd(adStats, adActivity, sales, nil)
	res = in.attribute(adID)
	if s.metrics != nil {
		s.metrics.RecordAttribution(res.SalesCount-res.LateCount, res.LateCount, res.Income-res.LateIncome, res.LateIncome)
	}
	return res, nil
}

func (s *Service) record(kind string, err error, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordReportBuild(kind, err, time.Since(start))
	}
	if err != nil && !errors.Is(err, ErrInvalidRange) {
		s.logger.Warn("report build failed", zap.String("kind", kind), zap.Error(err))
	}
}

// countByType walks a forest and reports row counts per type in a fixed
// order.
func countByType(rows []Row, fn func(RowType, int)) {
	counts := make(map[RowType]int)
	var walk func([]Row)
	walk = func(rs []Row) {
		for _, r := range rs {
			counts[r.Type]++
			walk(r.Children)
		}
	}
	walk(rows)

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fn(RowType(t), counts[RowType(t)])
	}
}
