package reporting

import "github.com/radiusdt/vector-insights/internal/models"

// MetricSet bundles the summable raw counters every derived KPI is computed
// from. The zero value is the empty set.
type MetricSet struct {
	Impressions           int64
	Clicks                int64
	Spend                 float64
	Leads                 int64
	Results               int64
	Reach                 int64
	WhatsappRequests      int64
	AppointmentsScheduled int64
	AppointmentsAttended  int64
	TreatmentsCompleted   int64
	PlansSent             int64
}

// Empty returns the all-zero metric set.
func Empty() MetricSet {
	return MetricSet{}
}

// Add returns the field-wise sum of m and o.
func (m MetricSet) Add(o MetricSet) MetricSet {
	return MetricSet{
		Impressions:           m.Impressions + o.Impressions,
		Clicks:                m.Clicks + o.Clicks,
		Spend:                 m.Spend + o.Spend,
		Leads:                 m.Leads + o.Leads,
		Results:               m.Results + o.Results,
		Reach:                 m.Reach + o.Reach,
		WhatsappRequests:      m.WhatsappRequests + o.WhatsappRequests,
		AppointmentsScheduled: m.AppointmentsScheduled + o.AppointmentsScheduled,
		AppointmentsAttended:  m.AppointmentsAttended + o.AppointmentsAttended,
		TreatmentsCompleted:   m.TreatmentsCompleted + o.TreatmentsCompleted,
		PlansSent:             m.PlansSent + o.PlansSent,
	}
}

// Sum folds sets with Add. Sum(nil) is Empty().
func Sum(sets []MetricSet) MetricSet {
	total := Empty()
	for _, s := range sets {
		total = total.Add(s)
	}
	return total
}

// FromDailyStat extracts the counters of one daily stat row.
func FromDailyStat(d models.DailyStat) MetricSet {
	return MetricSet{
		Impressions:           d.Impressions,
		Clicks:                d.Clicks,
		Spend:                 d.Spend,
		Leads:                 d.Leads,
		Results:               d.Results,
		Reach:                 d.Reach,
		WhatsappRequests:      d.WhatsappRequests,
		AppointmentsScheduled: d.AppointmentsScheduled,
		AppointmentsAttended:  d.AppointmentsAttended,
		TreatmentsCompleted:   d.TreatmentsCompleted,
		PlansSent:             d.PlansSent,
	}
}

// SumDailyStats folds a slice of daily stats into one metric set.
func SumDailyStats(stats []models.DailyStat) MetricSet {
	total := Empty()
	for _, d := range stats {
		total = total.Add(FromDailyStat(d))
	}
	return total
}

// RowToMetricSet projects an already built row back into a metric set so a
// parent can re-aggregate from its children. Rows do not carry the whatsapp,
// appointment, treatment and plan counters, so those project to 0.
func RowToMetricSet(r Row) MetricSet {
	return MetricSet{
		Impressions: r.Impressions,
		Clicks:      r.Clicks,
		Spend:       r.Expense,
		Leads:       r.Leads,
		Results:     r.Results,
		Reach:       r.Reach,
	}
}
