package reporting

// RowType is the hierarchy level of a report row.
type RowType string

const (
	RowTypeAccount  RowType = "account"
	RowTypeCampaign RowType = "campaign"
	RowTypeGroup    RowType = "group"
	RowTypeAd       RowType = "ad"
)

// Row is one node of the account -> campaign -> group -> ad report tree.
// Raw counters are sums over the subtree; KPIs are derived from those sums.
type Row struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     RowType `json:"type"`
	IsActive bool    `json:"is_active"`
	Account  string  `json:"account"`
	AdID     string  `json:"ad_id,omitempty"`

	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Expense     float64 `json:"expense"`
	Leads       int64   `json:"leads"`
	Results     int64   `json:"results"`
	Reach       int64   `json:"reach"`

	Income         float64 `json:"income"`
	QualifiedLeads int64   `json:"qualified_leads"`
	SalesCount     int64   `json:"sales_count"`

	CTR  float64 `json:"ctr"`
	CPC  float64 `json:"cpc"`
	CPM  float64 `json:"cpm"`
	CPL  float64 `json:"cpl"`
	CPR  float64 `json:"cpr"`
	CPS  float64 `json:"cps"`
	CPQL float64 `json:"cpql"`
	AOV  float64 `json:"aov"`
	ROAS float64 `json:"roas"`

	Children []Row `json:"children,omitempty"`
}

// RowInput carries everything BuildRow needs.
type RowInput struct {
	ID             string
	Name           string
	Type           RowType
	IsActive       bool
	Account        string
	AdID           string
	Metrics        MetricSet
	Income         float64
	QualifiedLeads int64
	SalesCount     int64
	Children       []Row
}

// BuildRow derives every KPI of a row from its metric set and attribution
// figures. Expense and income are rounded to cents, ROAS to one decimal.
func BuildRow(in RowInput) Row {
	m := in.Metrics
	spend := m.Spend
	impressions := float64(m.Impressions)
	clicks := float64(m.Clicks)

	row := Row{
		ID:       in.ID,
		Name:     in.Name,
		Type:     in.Type,
		IsActive: in.IsActive,
		Account:  in.Account,
		AdID:     in.AdID,

		Impressions: m.Impressions,
		Clicks:      m.Clicks,
		Expense:     Round2(spend),
		Leads:       m.Leads,
		Results:     m.Results,
		Reach:       m.Reach,

		Income:         Round2(in.Income),
		QualifiedLeads: in.QualifiedLeads,
		SalesCount:     in.SalesCount,

		CTR:  Round2(CTR(clicks, impressions)),
		CPC:  Round2(CPC(spend, clicks)),
		CPM:  Round2(CPM(spend, impressions)),
		CPL:  Round2(CPL(spend, float64(m.Leads))),
		CPR:  Round2(CPR(spend, float64(m.Results))),
		CPS:  Round2(CPS(spend, float64(in.SalesCount))),
		CPQL: Round2(CPQL(spend, float64(in.QualifiedLeads))),
		AOV:  Round2(AOV(in.Income, float64(in.SalesCount))),
		ROAS: Round1(ROAS(in.Income, spend)),
	}
	if len(in.Children) > 0 {
		row.Children = in.Children
	}
	return row
}

// RollupInput builds the input of a parent row from its already built
// children: raw counters go through RowToMetricSet, attribution figures are
// summed directly.
func RollupInput(id, name string, typ RowType, isActive bool, account string, children []Row) RowInput {
	in := RowInput{
		ID:       id,
		Name:     name,
		Type:     typ,
		IsActive: isActive,
		Account:  account,
		Metrics:  Empty(),
		Children: children,
	}
	for _, c := range children {
		in.Metrics = in.Metrics.Add(RowToMetricSet(c))
		in.Income += c.Income
		in.QualifiedLeads += c.QualifiedLeads
		in.SalesCount += c.SalesCount
	}
	return in
}
