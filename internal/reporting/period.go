package reporting

import "github.com/radiusdt/vector-insights/internal/models"

// ActivePeriod is the first and last calendar day an ad had recorded stats.
type ActivePeriod struct {
	FirstDate string `json:"first_date"`
	LastDate  string `json:"last_date"`
}

// ResolveActivePeriods folds (ad, date) pairs into per-ad active periods.
// ISO dates compare lexicographically, so input order does not matter.
// Pairs with an empty ad id or date are skipped.
func ResolveActivePeriods(activity []models.AdActivity) map[string]ActivePeriod {
	periods := make(map[string]ActivePeriod)
	for _, a := range activity {
		if a.AdID == "" || a.Date == "" {
			continue
		}
		p, ok := periods[a.AdID]
		if !ok {
			periods[a.AdID] = ActivePeriod{FirstDate: a.Date, LastDate: a.Date}
			continue
		}
		if a.Date < p.FirstDate {
			p.FirstDate = a.Date
		}
		if a.Date > p.LastDate {
			p.LastDate = a.Date
		}
		periods[a.AdID] = p
	}
	return periods
}

// ActivityFromStats lists the (ad, date) pairs of a set of daily stats.
func ActivityFromStats(stats []models.DailyStat) []models.AdActivity {
	out := make([]models.AdActivity, 0, len(stats))
	for _, s := range stats {
		out = append(out, models.AdActivity{AdID: s.AdID, Date: s.Date})
	}
	return out
}
