package reporting

import (
	"sort"

	"go.uber.org/zap"

	"github.com/radiusdt/vector-insights/internal/models"
)

// TreeInput is the raw material of one tree build. Stats are the daily
// stats inside the report window; Activity holds every (ad, date) pair the
// project ever recorded and decides each ad's last active date. When
// Activity is nil the windowed stats are used instead.
type TreeInput struct {
	Accounts  []models.AdAccount
	Campaigns []models.Campaign
	AdGroups  []models.AdGroup
	Ads       []models.Ad
	Stats     []models.DailyStat
	Activity  []models.AdActivity
	Sales     []models.Sale
	Leads     []models.Lead

	// Logger receives data-quality notes about dropped subtrees. Optional.
	Logger *zap.Logger
}

// hierarchy indexes the structural rows of a project by id.
type hierarchy struct {
	accounts  map[string]models.AdAccount
	campaigns map[string]models.Campaign
	groups    map[string]models.AdGroup
}

func indexHierarchy(accounts []models.AdAccount, campaigns []models.Campaign, groups []models.AdGroup) hierarchy {
	h := hierarchy{
		accounts:  make(map[string]models.AdAccount, len(accounts)),
		campaigns: make(map[string]models.Campaign, len(campaigns)),
		groups:    make(map[string]models.AdGroup, len(groups)),
	}
	for _, a := range accounts {
		h.accounts[a.ID] = a
	}
	for _, c := range campaigns {
		h.campaigns[c.ID] = c
	}
	for _, g := range groups {
		h.groups[g.ID] = g
	}
	return h
}

// resolveAd walks an ad up to its account. ok is false when any link is
// missing.
func (h hierarchy) resolveAd(ad models.Ad) (models.AdGroup, models.Campaign, models.AdAccount, bool) {
	g, ok := h.groups[ad.AdGroupID]
	if !ok {
		return models.AdGroup{}, models.Campaign{}, models.AdAccount{}, false
	}
	c, ok := h.campaigns[g.CampaignID]
	if !ok {
		return g, models.Campaign{}, models.AdAccount{}, false
	}
	a, ok := h.accounts[c.AccountID]
	if !ok {
		return g, c, models.AdAccount{}, false
	}
	return g, c, a, true
}

// adInputs groups the per-ad raw material shared by the tree and summary
// builds.
type adInputs struct {
	stats     map[string][]models.DailyStat
	sales     map[string][]models.Sale
	qualified map[string]int64
	periods   map[string]ActivePeriod
}

func groupByAd(stats []models.DailyStat, activity []models.AdActivity, sales []models.Sale, leads []models.Lead) adInputs {
	in := adInputs{
		stats:     make(map[string][]models.DailyStat),
		sales:     make(map[string][]models.Sale),
		qualified: make(map[string]int64),
	}
	for _, s := range stats {
		in.stats[s.AdID] = append(in.stats[s.AdID], s)
	}
	for _, s := range sales {
		if s.AdID == "" {
			continue
		}
		in.sales[s.AdID] = append(in.sales[s.AdID], s)
	}
	for _, l := range leads {
		if l.AdID != "" && l.IsQualified {
			in.qualified[l.AdID]++
		}
	}
	if activity == nil {
		activity = ActivityFromStats(stats)
	}
	in.periods = ResolveActivePeriods(activity)
	return in
}

// attribute runs attribution for one ad over its distinct stat dates.
func (in adInputs) attribute(adID string) AdAttribution {
	stats := in.stats[adID]
	dates := distinctDates(stats)
	period, ok := in.periods[adID]
	if !ok && len(dates) > 0 {
		period = ActivePeriod{FirstDate: dates[0], LastDate: dates[len(dates)-1]}
	}
	return AttributeAdDates(adID, dates, period, in.sales[adID])
}

func distinctDates(stats []models.DailyStat) []string {
	seen := make(map[string]struct{}, len(stats))
	dates := make([]string, 0, len(stats))
	for _, s := range stats {
		if _, ok := seen[s.Date]; ok {
			continue
		}
		seen[s.Date] = struct{}{}
		dates = append(dates, s.Date)
	}
	sort.Strings(dates)
	return dates
}

// BuildTree assembles the account forest bottom-up: ads with stats in the
// window, then groups, campaigns and accounts that still have children.
// Rows whose parent chain cannot be resolved are left out.
func BuildTree(in TreeInput) []Row {
	log := in.Logger
	if log == nil {
		log = zap.NewNop()
	}

	h := indexHierarchy(in.Accounts, in.Campaigns, in.AdGroups)
	byAd := groupByAd(in.Stats, in.Activity, in.Sales, in.Leads)

	adRows := make(map[string][]Row)
	for _, ad := range in.Ads {
		stats := byAd.stats[ad.ID]
		if len(stats) == 0 {
			continue
		}
		group, _, account, ok := h.resolveAd(ad)
		if !ok {
			log.Debug("dropping ad with unresolved parent",
				zap.String("ad_id", ad.ID),
				zap.String("ad_group_id", ad.AdGroupID),
			)
			continue
		}
		attr := byAd.attribute(ad.ID)
		row := BuildRow(RowInput{
			ID:             ad.ID,
			Name:           ad.Name,
			Type:           RowTypeAd,
			IsActive:       ad.Status.IsActive(),
			Account:        account.DisplayName(),
			AdID:           ad.ExternalID,
			Metrics:        SumDailyStats(stats),
			Income:         attr.Income,
			QualifiedLeads: byAd.qualified[ad.ID],
			SalesCount:     int64(attr.SalesCount),
		})
		adRows[group.ID] = append(adRows[group.ID], row)
	}

	groupRows := make(map[string][]Row)
	for _, g := range in.AdGroups {
		children := adRows[g.ID]
		if len(children) == 0 {
			continue
		}
		account := h.accounts[h.campaigns[g.CampaignID].AccountID]
		row := BuildRow(RollupInput(g.ID, g.Name, RowTypeGroup, g.Status.IsActive(), account.DisplayName(), children))
		groupRows[g.CampaignID] = append(groupRows[g.CampaignID], row)
	}

	campaignRows := make(map[string][]Row)
	for _, c := range in.Campaigns {
		children := groupRows[c.ID]
		if len(children) == 0 {
			continue
		}
		account := h.accounts[c.AccountID]
		row := BuildRow(RollupInput(c.ID, c.Name, RowTypeCampaign, c.Status.IsActive(), account.DisplayName(), children))
		campaignRows[c.AccountID] = append(campaignRows[c.AccountID], row)
	}

	forest := make([]Row, 0, len(in.Accounts))
	for _, a := range in.Accounts {
		children := campaignRows[a.ID]
		if len(children) == 0 {
			continue
		}
		name := a.DisplayName()
		forest = append(forest, BuildRow(RollupInput(a.ID, name, RowTypeAccount, a.IsActive, name, children)))
	}
	return forest
}

// CountRows returns the number of rows in a forest, children included.
func CountRows(rows []Row) int {
	n := 0
	for _, r := range rows {
		n += 1 + CountRows(r.Children)
	}
	return n
}
