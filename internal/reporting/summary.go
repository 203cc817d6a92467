package reporting

import (
	"sort"
	"time"

	"github.com/radiusdt/vector-insights/internal/models"
)

// Summary defaults.
const (
	DefaultTopCampaigns = 5
	DefaultRecentEvents = 6
)

// SummaryInput is the raw material of one dashboard summary.
type SummaryInput struct {
	Campaigns []models.Campaign
	AdGroups  []models.AdGroup
	Ads       []models.Ad
	Stats     []models.DailyStat
	Activity  []models.AdActivity
	Sales     []models.Sale
	Leads     []models.Lead

	Now          time.Time
	Locale       string
	TopCampaigns int
	RecentEvents int
}

// Totals are the project-wide scalars every other part of the summary is
// derived from.
type Totals struct {
	Spend                 float64 `json:"spend"`
	Impressions           int64   `json:"impressions"`
	Clicks                int64   `json:"clicks"`
	Results               int64   `json:"results"`
	Reach                 int64   `json:"reach"`
	WhatsappRequests      int64   `json:"whatsapp_requests"`
	AppointmentsScheduled int64   `json:"appointments_scheduled"`
	AppointmentsAttended  int64   `json:"appointments_attended"`
	TreatmentsCompleted   int64   `json:"treatments_completed"`
	PlansSent             int64   `json:"plans_sent"`
	Leads                 int64   `json:"leads"`
	QualifiedLeads        int64   `json:"qualified_leads"`
	Income                float64 `json:"income"`
	SalesCount            int64   `json:"sales_count"`
	LateIncome            float64 `json:"late_income"`
	LateSalesCount        int64   `json:"late_sales_count"`
}

// FunnelStage is one step of the conversion funnel. Rate is the share of the
// previous stage in percent.
type FunnelStage struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Rate  float64 `json:"rate"`
}

// KPI is a single named figure.
type KPI struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// MetricGroup is a titled list of KPIs.
type MetricGroup struct {
	Key     string `json:"key"`
	Metrics []KPI  `json:"metrics"`
}

// CampaignSummary is one entry of the top campaigns ranking.
type CampaignSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Results     int64   `json:"results"`
	Income      float64 `json:"income"`
	SalesCount  int64   `json:"sales_count"`
	ROAS        float64 `json:"roas"`
}

// Summary is the dashboard view of a project.
type Summary struct {
	Totals       Totals            `json:"totals"`
	Funnel       []FunnelStage     `json:"funnel"`
	KPIs         []KPI             `json:"kpis"`
	Income       float64           `json:"income"`
	Expense      float64           `json:"expense"`
	ROAS         float64           `json:"roas"`
	Admin        MetricGroup       `json:"admin"`
	Doctor       MetricGroup       `json:"doctor"`
	TopCampaigns []CampaignSummary `json:"top_campaigns"`
	RecentEvents []FeedEvent       `json:"recent_events"`
}

// Units used by KPI.
const (
	UnitMoney   = "money"
	UnitPercent = "percent"
	UnitCount   = "count"
)

// BuildSummary projects the raw inputs into the dashboard summary. It does
// not look at the report tree.
func BuildSummary(in SummaryInput) Summary {
	if in.TopCampaigns <= 0 {
		in.TopCampaigns = DefaultTopCampaigns
	}
	if in.RecentEvents <= 0 {
		in.RecentEvents = DefaultRecentEvents
	}
	if in.Now.IsZero() {
		in.Now = time.Now()
	}

	byAd := groupByAd(in.Stats, in.Activity, in.Sales, in.Leads)
	t := totals(in, byAd)

	return Summary{
		Totals:       t,
		Funnel:       funnel(t),
		KPIs:         kpis(t),
		Income:       Round2(t.Income),
		Expense:      Round2(t.Spend),
		ROAS:         Round1(ROAS(t.Income, t.Spend)),
		Admin:        adminGroup(t),
		Doctor:       doctorGroup(t),
		TopCampaigns: topCampaigns(in, byAd),
		RecentEvents: RecentEvents(in.Leads, in.Sales, in.Now, in.Locale, in.RecentEvents),
	}
}

func totals(in SummaryInput, byAd adInputs) Totals {
	m := SumDailyStats(in.Stats)
	t := Totals{
		Spend:                 m.Spend,
		Impressions:           m.Impressions,
		Clicks:                m.Clicks,
		Results:               m.Results,
		Reach:                 m.Reach,
		WhatsappRequests:      m.WhatsappRequests,
		AppointmentsScheduled: m.AppointmentsScheduled,
		AppointmentsAttended:  m.AppointmentsAttended,
		TreatmentsCompleted:   m.TreatmentsCompleted,
		PlansSent:             m.PlansSent,
	}
	for _, l := range in.Leads {
		t.Leads++
		if l.IsQualified {
			t.QualifiedLeads++
		}
	}
	for _, adID := range sortedKeys(byAd.stats) {
		attr := byAd.attribute(adID)
		t.Income += attr.Income
		t.SalesCount += int64(attr.SalesCount)
		t.LateIncome += attr.LateIncome
		t.LateSalesCount += int64(attr.LateCount)
	}
	return t
}

func funnel(t Totals) []FunnelStage {
	values := []struct {
		key   string
		value float64
	}{
		{"reach", float64(t.Reach)},
		{"impressions", float64(t.Impressions)},
		{"clicks", float64(t.Clicks)},
		{"results", float64(t.Results)},
		{"leads", float64(t.Leads)},
		{"qualified_leads", float64(t.QualifiedLeads)},
	}

	stages := make([]FunnelStage, 0, len(values))
	for i, v := range values {
		var rate float64
		if i == 0 {
			if v.value > 0 {
				rate = 100
			}
		} else {
			rate = Rate(v.value, values[i-1].value)
		}
		stages = append(stages, FunnelStage{Key: v.key, Value: v.value, Rate: Round2(rate)})
	}
	return stages
}

func kpis(t Totals) []KPI {
	spend := t.Spend
	sales := float64(t.SalesCount)
	return []KPI{
		{Key: "spend", Value: Round2(spend), Unit: UnitMoney},
		{Key: "impressions", Value: float64(t.Impressions), Unit: UnitCount},
		{Key: "clicks", Value: float64(t.Clicks), Unit: UnitCount},
		{Key: "ctr", Value: Round2(CTR(float64(t.Clicks), float64(t.Impressions))), Unit: UnitPercent},
		{Key: "cpc", Value: Round2(CPC(spend, float64(t.Clicks))), Unit: UnitMoney},
		{Key: "cpm", Value: Round2(CPM(spend, float64(t.Impressions))), Unit: UnitMoney},
		{Key: "leads", Value: float64(t.Leads), Unit: UnitCount},
		{Key: "cpl", Value: Round2(CPL(spend, float64(t.Leads))), Unit: UnitMoney},
		{Key: "qualified_leads", Value: float64(t.QualifiedLeads), Unit: UnitCount},
		{Key: "cpql", Value: Round2(CPQL(spend, float64(t.QualifiedLeads))), Unit: UnitMoney},
		{Key: "sales", Value: sales, Unit: UnitCount},
		{Key: "cps", Value: Round2(CPS(spend, sales)), Unit: UnitMoney},
		{Key: "income", Value: Round2(t.Income), Unit: UnitMoney},
		{Key: "aov", Value: Round2(AOV(t.Income, sales)), Unit: UnitMoney},
		{Key: "roas", Value: Round1(ROAS(t.Income, spend)), Unit: UnitPercent},
	}
}

func adminGroup(t Totals) MetricGroup {
	return MetricGroup{
		Key: "admin",
		Metrics: []KPI{
			{Key: "lead_to_appointment", Value: Round2(Rate(float64(t.AppointmentsScheduled), float64(t.Leads))), Unit: UnitPercent},
			{Key: "show_up_rate", Value: Round2(Rate(float64(t.AppointmentsAttended), float64(t.AppointmentsScheduled))), Unit: UnitPercent},
			{Key: "whatsapp_requests", Value: float64(t.WhatsappRequests), Unit: UnitCount},
			{Key: "cpl", Value: Round2(CPL(t.Spend, float64(t.Leads))), Unit: UnitMoney},
		},
	}
}

func doctorGroup(t Totals) MetricGroup {
	return MetricGroup{
		Key: "doctor",
		Metrics: []KPI{
			{Key: "appointment_to_sale", Value: Round2(Rate(float64(t.SalesCount), float64(t.AppointmentsAttended))), Unit: UnitPercent},
			{Key: "average_check", Value: Round2(AOV(t.Income, float64(t.SalesCount))), Unit: UnitMoney},
			{Key: "treatments_completed", Value: float64(t.TreatmentsCompleted), Unit: UnitCount},
			{Key: "plans_sent", Value: float64(t.PlansSent), Unit: UnitCount},
		},
	}
}

// topCampaigns ranks campaigns with stats in the window by results. Each
// campaign's ROAS comes from its own spend and income.
func topCampaigns(in SummaryInput, byAd adInputs) []CampaignSummary {
	groupCampaign := make(map[string]string, len(in.AdGroups))
	for _, g := range in.AdGroups {
		groupCampaign[g.ID] = g.CampaignID
	}

	type acc struct {
		metrics MetricSet
		income  float64
		sales   int64
		seen    bool
	}
	perCampaign := make(map[string]*acc, len(in.Campaigns))
	for _, c := range in.Campaigns {
		perCampaign[c.ID] = &acc{}
	}

	for _, ad := range in.Ads {
		stats := byAd.stats[ad.ID]
		if len(stats) == 0 {
			continue
		}
		a, ok := perCampaign[groupCampaign[ad.AdGroupID]]
		if !ok {
			continue
		}
		attr := byAd.attribute(ad.ID)
		a.metrics = a.metrics.Add(SumDailyStats(stats))
		a.income += attr.Income
		a.sales += int64(attr.SalesCount)
		a.seen = true
	}

	out := make([]CampaignSummary, 0, len(in.Campaigns))
	for _, c := range in.Campaigns {
		a := perCampaign[c.ID]
		if !a.seen {
			continue
		}
		out = append(out, CampaignSummary{
			ID:          c.ID,
			Name:        c.Name,
			Status:      string(c.Status),
			Spend:       Round2(a.metrics.Spend),
			Impressions: a.metrics.Impressions,
			Clicks:      a.metrics.Clicks,
			Results:     a.metrics.Results,
			Income:      Round2(a.income),
			SalesCount:  a.sales,
			ROAS:        Round1(ROAS(a.income, a.metrics.Spend)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Results > out[j].Results
	})
	if len(out) > in.TopCampaigns {
		out = out[:in.TopCampaigns]
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
