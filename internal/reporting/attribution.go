package reporting

import (
	"time"

	"github.com/radiusdt/vector-insights/internal/models"
)

// LateSaleWindowDays is how many days after an ad's last active day a
// registration still counts as a late sale.
const LateSaleWindowDays = 7

// AttributionDetail describes one sale attributed to an ad on a report date.
type AttributionDetail struct {
	SaleID           string  `json:"sale_id"`
	Client           string  `json:"client"`
	Amount           float64 `json:"amount"`
	Status           string  `json:"status"`
	Link             string  `json:"link,omitempty"`
	SaleDate         string  `json:"sale_date"`
	RegistrationDate string  `json:"registration_date"`
	IsLateSale       bool    `json:"is_late_sale"`
}

// AttributionResult is the outcome of attributing sales to one ad on one
// report date. Sales totals include late sales; the Late* fields isolate them.
type AttributionResult struct {
	AdID            string              `json:"ad_id"`
	ReportDate      string              `json:"report_date"`
	SalesAmount     float64             `json:"sales_amount"`
	SalesCount      int                 `json:"sales_count"`
	LateSalesAmount float64             `json:"late_sales_amount"`
	LateSalesCount  int                 `json:"late_sales_count"`
	Details         []AttributionDetail `json:"details"`
}

// Attribute decides which of sales are earned by adID on reportDate.
//
// A sale registered on reportDate is direct. When reportDate is the ad's last
// active date, sales registered in the following LateSaleWindowDays days are
// late. Anything else, including sales linked to another ad, is left out.
func Attribute(adID, reportDate, lastActiveDate string, sales []models.Sale) AttributionResult {
	res := AttributionResult{
		AdID:       adID,
		ReportDate: reportDate,
		Details:    []AttributionDetail{},
	}

	windowEnd := ""
	if reportDate != "" && reportDate == lastActiveDate {
		windowEnd = addDays(reportDate, LateSaleWindowDays)
	}

	for _, s := range sales {
		if s.AdID != adID {
			continue
		}

		late := false
		switch {
		case s.RegistrationDate == reportDate:
		case windowEnd != "" && s.RegistrationDate > reportDate && s.RegistrationDate <= windowEnd:
			late = true
		default:
			continue
		}

		res.SalesAmount += s.Amount
		res.SalesCount++
		if late {
			res.LateSalesAmount += s.Amount
			res.LateSalesCount++
		}
		res.Details = append(res.Details, AttributionDetail{
			SaleID:           s.ID,
			Client:           s.ClientName,
			Amount:           s.Amount,
			Status:           s.DealStatus,
			Link:             s.DealLink,
			SaleDate:         s.SaleDate,
			RegistrationDate: s.RegistrationDate,
			IsLateSale:       late,
		})
	}
	return res
}

// addDays shifts an ISO date by n calendar days. An unparsable date yields
// an empty string, which disables the late window.
func addDays(date string, n int) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, n).Format(models.DateLayout)
}

// AttributionTracker remembers which sale ids were already counted during one
// build so a sale is never attributed twice across report dates. It is not
// safe for concurrent use and must not outlive the build.
type AttributionTracker struct {
	seen map[string]struct{}
}

// NewAttributionTracker returns an empty tracker.
func NewAttributionTracker() *AttributionTracker {
	return &AttributionTracker{seen: make(map[string]struct{})}
}

// Track records the sales of res and returns the amount and count of those
// not seen before.
func (t *AttributionTracker) Track(res AttributionResult) (float64, int) {
	var amount float64
	count := 0
	for _, d := range res.Details {
		if _, ok := t.seen[d.SaleID]; ok {
			continue
		}
		t.seen[d.SaleID] = struct{}{}
		amount += d.Amount
		count++
	}
	return amount, count
}

// Seen reports whether a sale id has already been tracked.
func (t *AttributionTracker) Seen(saleID string) bool {
	_, ok := t.seen[saleID]
	return ok
}

// AdAttribution is the attribution of one ad over all its active dates.
type AdAttribution struct {
	AdID       string              `json:"ad_id"`
	Period     ActivePeriod        `json:"period"`
	Dates      []AttributionResult `json:"dates"`
	Income     float64             `json:"income"`
	SalesCount int                 `json:"sales_count"`
	LateIncome float64             `json:"late_income"`
	LateCount  int                 `json:"late_count"`
}

// AttributeAdDates runs Attribute over every date in dates, which must be
// sorted ascending, and folds the results with a fresh tracker.
func AttributeAdDates(adID string, dates []string, period ActivePeriod, sales []models.Sale) AdAttribution {
	out := AdAttribution{
		AdID:   adID,
		Period: period,
		Dates:  make([]AttributionResult, 0, len(dates)),
	}
	tracker := NewAttributionTracker()
	for _, date := range dates {
		res := Attribute(adID, date, period.LastDate, sales)
		for _, d := range res.Details {
			if d.IsLateSale && !tracker.Seen(d.SaleID) {
				out.LateIncome += d.Amount
				out.LateCount++
			}
		}
		amount, count := tracker.Track(res)
		out.Income += amount
		out.SalesCount += count
		out.Dates = append(out.Dates, res)
	}
	return out
}
