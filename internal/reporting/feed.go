package reporting

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/radiusdt/vector-insights/internal/models"
)

// Feed event kinds.
const (
	EventLead = "lead"
	EventSale = "sale"
)

// FeedEvent is one entry of the recent activity feed.
type FeedEvent struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount,omitempty"`
	Qualified bool      `json:"qualified,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	TimeAgo   string    `json:"time_ago"`
}

type timeLabels struct {
	justNow string
	minutes string // %s
	hours   string // %s
	day     string // %d
	days    string // %d
	month   string // %d
	months  string // %d
}

var localeLabels = map[string]timeLabels{
	"en": {
		justNow: "just now",
		minutes: "%s min ago",
		hours:   "%s h ago",
		day:     "%d day ago",
		days:    "%d days ago",
		month:   "%d month ago",
		months:  "%d months ago",
	},
	"ru": {
		justNow: "только что",
		minutes: "%s мин назад",
		hours:   "%s ч назад",
		day:     "%d дн. назад",
		days:    "%d дн. назад",
		month:   "%d мес. назад",
		months:  "%d мес. назад",
	},
}

// DefaultLocale is used for unknown locales.
const DefaultLocale = "en"

// SupportedLocale reports whether RelativeTime has labels for locale.
func SupportedLocale(locale string) bool {
	_, ok := localeLabels[locale]
	return ok
}

// RelativeTime renders how long before now t happened. Below two hours the
// hour count moves in half-hour steps; timestamps in the future read as
// "just now".
func RelativeTime(now, t time.Time, locale string) string {
	labels, ok := localeLabels[locale]
	if !ok {
		labels = localeLabels[DefaultLocale]
	}

	minutes := now.Sub(t).Minutes()
	switch {
	case minutes < 1:
		return labels.justNow
	case minutes < 60:
		return fmt.Sprintf(labels.minutes, fmt.Sprintf("%d", int(minutes)))
	case minutes < 120:
		hours := math.Round(minutes/30) / 2
		return fmt.Sprintf(labels.hours, formatHalf(hours))
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf(labels.hours, fmt.Sprintf("%d", int(hours)))
	}

	days := int(hours / 24)
	if days <= 30 {
		if days == 1 {
			return fmt.Sprintf(labels.day, days)
		}
		return fmt.Sprintf(labels.days, days)
	}

	months := days / 30
	if months == 1 {
		return fmt.Sprintf(labels.month, months)
	}
	return fmt.Sprintf(labels.months, months)
}

func formatHalf(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// RecentEvents merges lead and sale events, newest first, and keeps the
// first limit of them. Ties keep leads before sales in input order.
func RecentEvents(leads []models.Lead, sales []models.Sale, now time.Time, locale string, limit int) []FeedEvent {
	events := make([]FeedEvent, 0, len(leads)+len(sales))
	for _, l := range leads {
		events = append(events, FeedEvent{
			Type:      EventLead,
			ID:        l.ID,
			Title:     l.Name,
			Qualified: l.IsQualified,
			Timestamp: l.CreatedAt,
		})
	}
	for _, s := range sales {
		events = append(events, FeedEvent{
			Type:      EventSale,
			ID:        s.ID,
			Title:     s.ClientName,
			Amount:    s.Amount,
			Timestamp: saleTimestamp(s),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if limit >= 0 && len(events) > limit {
		events = events[:limit]
	}
	for i := range events {
		events[i].TimeAgo = RelativeTime(now, events[i].Timestamp, locale)
	}
	return events
}

// saleTimestamp falls back to the sale date when the record has no creation
// time.
func saleTimestamp(s models.Sale) time.Time {
	if !s.CreatedAt.IsZero() {
		return s.CreatedAt
	}
	if t, err := time.Parse(models.DateLayout, s.SaleDate); err == nil {
		return t
	}
	return time.Time{}
}
