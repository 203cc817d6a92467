package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiusdt/vector-insights/internal/models"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		ago    time.Duration
		locale string
		want   string
	}{
		{"seconds", 30 * time.Second, "en", "just now"},
		{"future", -time.Hour, "en", "just now"},
		{"minutes", 25 * time.Minute, "en", "25 min ago"},
		{"one hour", 65 * time.Minute, "en", "1 h ago"},
		{"hour and a half", 90 * time.Minute, "en", "1.5 h ago"},
		{"rounds up to two", 110 * time.Minute, "en", "2 h ago"},
		{"whole hours", 5*time.Hour + 40*time.Minute, "en", "5 h ago"},
		{"one day", 30 * time.Hour, "en", "1 day ago"},
		{"days", 3 * 24 * time.Hour, "en", "3 days ago"},
		{"thirty days", 30 * 24 * time.Hour, "en", "30 days ago"},
		{"one month", 45 * 24 * time.Hour, "en", "1 month ago"},
		{"months", 95 * 24 * time.Hour, "en", "3 months ago"},
		{"ru just now", 10 * time.Second, "ru", "только что"},
		{"ru minutes", 5 * time.Minute, "ru", "5 мин назад"},
		{"ru half hours", 90 * time.Minute, "ru", "1.5 ч назад"},
		{"ru days", 2 * 24 * time.Hour, "ru", "2 дн. назад"},
		{"ru months", 61 * 24 * time.Hour, "ru", "2 мес. назад"},
		{"unknown locale", 25 * time.Minute, "de", "25 min ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(now, now.Add(-tt.ago), tt.locale))
		})
	}
}

func TestSupportedLocale(t *testing.T) {
	assert.True(t, SupportedLocale("en"))
	assert.True(t, SupportedLocale("ru"))
	assert.False(t, SupportedLocale("fr"))
}

func TestRecentEventsOrderAndLimit(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	leads := []models.Lead{
		{ID: "L1", Name: "Anna", CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "L2", Name: "Boris", IsQualified: true, CreatedAt: now.Add(-10 * time.Minute)},
	}
	sales := []models.Sale{
		{ID: "S1", ClientName: "Anna", Amount: 400, CreatedAt: now.Add(-time.Hour)},
		{ID: "S2", ClientName: "Vera", Amount: 90, SaleDate: "2024-06-18"},
	}

	events := RecentEvents(leads, sales, now, "en", 3)

	require.Len(t, events, 3)
	assert.Equal(t, "L2", events[0].ID)
	assert.True(t, events[0].Qualified)
	assert.Equal(t, "10 min ago", events[0].TimeAgo)

	assert.Equal(t, EventSale, events[1].Type)
	assert.Equal(t, "S1", events[1].ID)
	assert.Equal(t, 400.0, events[1].Amount)
	assert.Equal(t, "1 h ago", events[1].TimeAgo)

	assert.Equal(t, "L1", events[2].ID)
}

func TestRecentEventsSaleDateFallback(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	sales := []models.Sale{{ID: "S2", ClientName: "Vera", SaleDate: "2024-06-18"}}

	events := RecentEvents(nil, sales, now, "en", DefaultRecentEvents)

	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC), events[0].Timestamp)
	assert.Equal(t, "2 days ago", events[0].TimeAgo)
}

func TestRecentEventsTiesKeepInputOrder(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	at := now.Add(-time.Hour)
	leads := []models.Lead{{ID: "L1", CreatedAt: at}, {ID: "L2", CreatedAt: at}}
	sales := []models.Sale{{ID: "S1", CreatedAt: at}}

	events := RecentEvents(leads, sales, now, "en", 10)

	ids := []string{}
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"L1", "L2", "S1"}, ids)
}

func TestRecentEventsEmpty(t *testing.T) {
	events := RecentEvents(nil, nil, time.Now(), "en", DefaultRecentEvents)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}
