package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiusdt/vector-insights/internal/models"
)

func mustTs(t *testing.T, date string) int64 {
	t.Helper()
	ts, err := models.DateToTs(date)
	require.NoError(t, err)
	return ts
}

func TestMemoryStore_DailyStatsRangeIsInclusive(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, date := range []string{"2024-06-09", "2024-06-10", "2024-06-11", "2024-06-12"} {
		require.NoError(t, s.UpsertDailyStat(ctx, &models.DailyStat{ProjectID: "p1", AdID: "ad1", Date: date, Impressions: 10}))
	}
	require.NoError(t, s.UpsertDailyStat(ctx, &models.DailyStat{ProjectID: "p2", AdID: "ad9", Date: "2024-06-10"}))

	stats, err := s.ListDailyStats(ctx, "p1", mustTs(t, "2024-06-10"), mustTs(t, "2024-06-11"))
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "2024-06-10", stats[0].Date)
	assert.Equal(t, "2024-06-11", stats[1].Date)
	assert.Equal(t, mustTs(t, "2024-06-10"), stats[0].DateTs)
}

func TestMemoryStore_UpsertDailyStatReplacesSameDay(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.UpsertDailyStat(ctx, &models.DailyStat{ProjectID: "p1", AdID: "ad1", Date: "2024-06-10", Clicks: 1}))
	require.NoError(t, s.UpsertDailyStat(ctx, &models.DailyStat{ProjectID: "p1", AdID: "ad1", Date: "2024-06-10", Clicks: 7}))

	activity, err := s.ListAdActivity(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []models.AdActivity{{AdID: "ad1", Date: "2024-06-10"}}, activity)

	stats, err := s.ListDailyStats(ctx, "p1", 0, mustTs(t, "2030-01-01"))
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.EqualValues(t, 7, stats[0].Clicks)
}

func TestMemoryStore_RejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	assert.Error(t, s.UpsertDailyStat(ctx, &models.DailyStat{ProjectID: "p1", AdID: "ad1", Date: "10.06.2024"}))
	assert.Error(t, s.UpsertSale(ctx, &models.Sale{ID: "s1", ProjectID: "p1", RegistrationDate: ""}))
	assert.Error(t, s.UpsertCampaign(ctx, &models.Campaign{ID: "c1"}))
}

func TestMemoryStore_ListsKeepInsertionOrderPerProject(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, id := range []string{"c3", "c1", "c2"} {
		require.NoError(t, s.UpsertCampaign(ctx, &models.Campaign{ID: id, ProjectID: "p1", AccountID: "a1", Name: id}))
	}
	require.NoError(t, s.UpsertCampaign(ctx, &models.Campaign{ID: "x", ProjectID: "p2", AccountID: "a9", Name: "x"}))
	require.NoError(t, s.UpsertCampaign(ctx, &models.Campaign{ID: "c1", ProjectID: "p1", AccountID: "a1", Name: "renamed"}))

	campaigns, err := s.ListCampaigns(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, campaigns, 3)
	assert.Equal(t, "c3", campaigns[0].ID)
	assert.Equal(t, "renamed", campaigns[1].Name)
	assert.Equal(t, "c2", campaigns[2].ID)

	none, err := s.ListAds(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}
