package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/radiusdt/vector-insights/internal/models"
)

// keyed keeps records in insertion order with O(1) upsert by key.
type keyed[T any] struct {
	index map[string]int
	items []T
}

func newKeyed[T any]() *keyed[T] {
	return &keyed[T]{index: make(map[string]int)}
}

func (k *keyed[T]) upsert(key string, v T) {
	if i, ok := k.index[key]; ok {
		k.items[i] = v
		return
	}
	k.index[key] = len(k.items)
	k.items = append(k.items, v)
}

// filter copies the items accepted by keep.
func (k *keyed[T]) filter(keep func(T) bool) []T {
	out := make([]T, 0)
	for _, v := range k.items {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// MemoryStore is an in-memory implementation of every repository. It is
// used for development, tests and as a fallback when PostgreSQL is down.
type MemoryStore struct {
	mu        sync.RWMutex
	accounts  *keyed[models.AdAccount]
	campaigns *keyed[models.Campaign]
	groups    *keyed[models.AdGroup]
	ads       *keyed[models.Ad]
	stats     *keyed[models.DailyStat]
	sales     *keyed[models.Sale]
	leads     *keyed[models.Lead]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:  newKeyed[models.AdAccount](),
		campaigns: newKeyed[models.Campaign](),
		groups:    newKeyed[models.AdGroup](),
		ads:       newKeyed[models.Ad](),
		stats:     newKeyed[models.DailyStat](),
		sales:     newKeyed[models.Sale](),
		leads:     newKeyed[models.Lead](),
	}
}

// Store returns a Store with every repository served by m.
func (m *MemoryStore) Store() Store {
	return Store{Stats: m, Hierarchy: m, Sales: m, Leads: m}
}

// Upserts

func (m *MemoryStore) UpsertAccount(_ context.Context, a *models.AdAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts.upsert(a.ID, *a)
	return nil
}

func (m *MemoryStore) UpsertCampaign(_ context.Context, c *models.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns.upsert(c.ID, *c)
	return nil
}

func (m *MemoryStore) UpsertAdGroup(_ context.Context, g *models.AdGroup) error {
	if err := g.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups.upsert(g.ID, *g)
	return nil
}

func (m *MemoryStore) UpsertAd(_ context.Context, ad *models.Ad) error {
	if err := ad.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ads.upsert(ad.ID, *ad)
	return nil
}

// UpsertDailyStat replaces the stat of the same (ad, date).
func (m *MemoryStore) UpsertDailyStat(_ context.Context, s *models.DailyStat) error {
	if err := s.Validate(); err != nil {
		return err
	}
	cp := *s
	if err := cp.Normalize(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.upsert(cp.ProjectID+"|"+cp.AdID+"|"+cp.Date, cp)
	return nil
}

func (m *MemoryStore) UpsertSale(_ context.Context, s *models.Sale) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales.upsert(s.ID, *s)
	return nil
}

func (m *MemoryStore) UpsertLead(_ context.Context, l *models.Lead) error {
	if err := l.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads.upsert(l.ID, *l)
	return nil
}

// Reads

func (m *MemoryStore) ListDailyStats(_ context.Context, projectID string, startTs, endTs int64) ([]models.DailyStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.stats.filter(func(s models.DailyStat) bool {
		return s.ProjectID == projectID && s.DateTs >= startTs && s.DateTs <= endTs
	})
	sortStats(out)
	return out, nil
}

func (m *MemoryStore) ListAdActivity(_ context.Context, projectID string) ([]models.AdActivity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.AdActivity, 0)
	for _, s := range m.stats.items {
		if s.ProjectID == projectID {
			out = append(out, models.AdActivity{AdID: s.AdID, Date: s.Date})
		}
	}
	return out, nil
}

func (m *MemoryStore) ListAccounts(_ context.Context, projectID string) ([]models.AdAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accounts.filter(func(a models.AdAccount) bool { return a.ProjectID == projectID }), nil
}

func (m *MemoryStore) ListCampaigns(_ context.Context, projectID string) ([]models.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.campaigns.filter(func(c models.Campaign) bool { return c.ProjectID == projectID }), nil
}

func (m *MemoryStore) ListAdGroups(_ context.Context, projectID string) ([]models.AdGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.groups.filter(func(g models.AdGroup) bool { return g.ProjectID == projectID }), nil
}

func (m *MemoryStore) ListAds(_ context.Context, projectID string) ([]models.Ad, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ads.filter(func(a models.Ad) bool { return a.ProjectID == projectID }), nil
}

func (m *MemoryStore) ListSales(_ context.Context, projectID string) ([]models.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sales.filter(func(s models.Sale) bool { return s.ProjectID == projectID }), nil
}

func (m *MemoryStore) ListLeads(_ context.Context, projectID string) ([]models.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.leads.filter(func(l models.Lead) bool { return l.ProjectID == projectID }), nil
}

// sortStats orders stats by date, then ad, the order every backend returns.
func sortStats(stats []models.DailyStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].DateTs != stats[j].DateTs {
			return stats[i].DateTs < stats[j].DateTs
		}
		return stats[i].AdID < stats[j].AdID
	})
}
