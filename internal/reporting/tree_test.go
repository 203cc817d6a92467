package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiusdt/vector-insights/internal/models"
)

func stat(adID, date string, impressions, clicks int64, spend float64) models.DailyStat {
	ts, _ := models.DateToTs(date)
	return models.DailyStat{
		ProjectID:   "p1",
		AdID:        adID,
		Date:        date,
		DateTs:      ts,
		Impressions: impressions,
		Clicks:      clicks,
		Spend:       spend,
	}
}

// fixture builds a two-account hierarchy:
//
//	acc-fb (facebook)
//	  camp-1 / grp-1 / A1, A2
//	  camp-1 / grp-2 / A3 (no stats)
//	acc-gg (google)
//	  camp-2 / grp-3 / A4
func fixture() TreeInput {
	return TreeInput{
		Accounts: []models.AdAccount{
			{ID: "acc-fb", ProjectID: "p1", Name: "Main FB", Channel: "facebook", IsActive: true},
			{ID: "acc-gg", ProjectID: "p1", Name: "Search", Channel: "google", IsActive: false},
		},
		Campaigns: []models.Campaign{
			{ID: "camp-1", ProjectID: "p1", AccountID: "acc-fb", Name: "Summer", Status: models.StatusActive},
			{ID: "camp-2", ProjectID: "p1", AccountID: "acc-gg", Name: "Brand", Status: models.StatusPaused},
		},
		AdGroups: []models.AdGroup{
			{ID: "grp-1", ProjectID: "p1", CampaignID: "camp-1", Name: "Lookalike", Status: models.StatusActive},
			{ID: "grp-2", ProjectID: "p1", CampaignID: "camp-1", Name: "Retarget", Status: models.StatusActive},
			{ID: "grp-3", ProjectID: "p1", CampaignID: "camp-2", Name: "Exact", Status: models.StatusActive},
		},
		Ads: []models.Ad{
			{ID: "A1", ProjectID: "p1", AdGroupID: "grp-1", ExternalID: "fb-111", Name: "Video", Status: models.StatusActive},
			{ID: "A2", ProjectID: "p1", AdGroupID: "grp-1", ExternalID: "fb-222", Name: "Carousel", Status: models.StatusPaused},
			{ID: "A3", ProjectID: "p1", AdGroupID: "grp-2", ExternalID: "fb-333", Name: "Static", Status: models.StatusActive},
			{ID: "A4", ProjectID: "p1", AdGroupID: "grp-3", ExternalID: "gg-444", Name: "Text", Status: models.StatusActive},
		},
		Stats: []models.DailyStat{
			stat("A1", "2024-06-10", 6000, 300, 600),
			stat("A1", "2024-06-15", 4000, 200, 400),
			stat("A2", "2024-06-12", 1000, 30, 150.55),
			stat("A4", "2024-06-11", 2000, 40, 99.99),
		},
		Sales: []models.Sale{
			sale("S1", "A1", "2024-06-10", 500),
			sale("S2", "A1", "2024-06-17", 700),
			sale("S3", "A3", "2024-06-12", 999),
			sale("S4", "A4", "2024-06-11", 50),
		},
		Leads: []models.Lead{
			{ID: "L1", ProjectID: "p1", AdID: "A1", IsQualified: true},
			{ID: "L2", ProjectID: "p1", AdID: "A1", IsQualified: false},
			{ID: "L3", ProjectID: "p1", AdID: "A3", IsQualified: true},
			{ID: "L4", ProjectID: "p1", AdID: "A2", IsQualified: true},
		},
	}
}

func findRow(rows []Row, id string) (Row, bool) {
	for _, r := range rows {
		if r.ID == id {
			return r, true
		}
		if found, ok := findRow(r.Children, id); ok {
			return found, true
		}
	}
	return Row{}, false
}

func TestBuildTreeWorkedExample(t *testing.T) {
	forest := BuildTree(fixture())

	a1, ok := findRow(forest, "A1")
	require.True(t, ok)
	assert.Equal(t, RowTypeAd, a1.Type)
	assert.Equal(t, "fb-111", a1.AdID)
	assert.Equal(t, "Facebook Ads", a1.Account)
	assert.EqualValues(t, 10000, a1.Impressions)
	assert.EqualValues(t, 500, a1.Clicks)
	assert.Equal(t, 1000.0, a1.Expense)
	assert.EqualValues(t, 2, a1.SalesCount)
	assert.Equal(t, 1200.0, a1.Income)
	assert.EqualValues(t, 1, a1.QualifiedLeads)
	assert.Equal(t, 5.0, a1.CTR)
	assert.Equal(t, 2.0, a1.CPC)
	assert.Equal(t, 20.0, a1.ROAS)
	assert.Equal(t, 600.0, a1.AOV)
	assert.Nil(t, a1.Children)
}

func TestBuildTreeShape(t *testing.T) {
	forest := BuildTree(fixture())

	require.Len(t, forest, 2)
	fb, gg := forest[0], forest[1]

	assert.Equal(t, "Facebook Ads", fb.Name)
	assert.Equal(t, RowTypeAccount, fb.Type)
	assert.True(t, fb.IsActive)
	assert.Empty(t, fb.AdID)
	assert.Equal(t, "Google Ads", gg.Name)
	assert.False(t, gg.IsActive)

	require.Len(t, fb.Children, 1)
	camp := fb.Children[0]
	assert.Equal(t, "camp-1", camp.ID)
	require.Len(t, camp.Children, 1, "group without stats must be dropped")
	grp := camp.Children[0]
	assert.Equal(t, "grp-1", grp.ID)
	require.Len(t, grp.Children, 2)
	assert.Equal(t, "A1", grp.Children[0].ID)
	assert.Equal(t, "A2", grp.Children[1].ID)
}

func TestBuildTreeDropsAdsWithoutStats(t *testing.T) {
	forest := BuildTree(fixture())

	_, ok := findRow(forest, "A3")
	assert.False(t, ok, "A3 has a sale and a qualified lead but no stats")
	_, ok = findRow(forest, "grp-2")
	assert.False(t, ok)
}

func TestBuildTreeRollupConsistency(t *testing.T) {
	forest := BuildTree(fixture())

	var check func(r Row)
	check = func(r Row) {
		if len(r.Children) == 0 {
			return
		}
		sum := Empty()
		var income float64
		var qLeads, sales int64
		for _, c := range r.Children {
			sum = sum.Add(RowToMetricSet(c))
			income += c.Income
			qLeads += c.QualifiedLeads
			sales += c.SalesCount
			check(c)
		}
		assert.Equal(t, sum, RowToMetricSet(r), "counters of %s", r.ID)

		want := BuildRow(RowInput{
			ID:             r.ID,
			Name:           r.Name,
			Type:           r.Type,
			IsActive:       r.IsActive,
			Account:        r.Account,
			Metrics:        sum,
			Income:         income,
			QualifiedLeads: qLeads,
			SalesCount:     sales,
			Children:       r.Children,
		})
		assert.Equal(t, want, r, "derived KPIs of %s", r.ID)
	}
	for _, r := range forest {
		check(r)
	}

	fb := forest[0]
	assert.EqualValues(t, 11000, fb.Impressions)
	assert.EqualValues(t, 530, fb.Clicks)
	assert.Equal(t, 1150.55, fb.Expense)
	assert.Equal(t, Round2(CTR(530, 11000)), fb.CTR)
	assert.EqualValues(t, 2, fb.QualifiedLeads)
}

func TestBuildTreeParentKPIsAreNotAveraged(t *testing.T) {
	in := fixture()
	in.Stats = []models.DailyStat{
		stat("A1", "2024-06-10", 1000, 100, 10), // CTR 10
		stat("A2", "2024-06-10", 9000, 90, 90),  // CTR 1
	}
	forest := BuildTree(in)

	grp, ok := findRow(forest, "grp-1")
	require.True(t, ok)
	assert.Equal(t, 1.9, grp.CTR, "190 clicks / 10000 impressions")
	assert.NotEqual(t, 5.5, grp.CTR)
}

func TestBuildTreeSkipsOrphans(t *testing.T) {
	in := fixture()
	in.Ads = append(in.Ads, models.Ad{ID: "A9", ProjectID: "p1", AdGroupID: "ghost-group", Name: "Orphan"})
	in.AdGroups = append(in.AdGroups, models.AdGroup{ID: "grp-x", ProjectID: "p1", CampaignID: "ghost-campaign"})
	in.Ads = append(in.Ads, models.Ad{ID: "A10", ProjectID: "p1", AdGroupID: "grp-x", Name: "Orphan too"})
	in.Stats = append(in.Stats, stat("A9", "2024-06-10", 1, 1, 1), stat("A10", "2024-06-10", 1, 1, 1))

	forest := BuildTree(in)

	_, ok := findRow(forest, "A9")
	assert.False(t, ok)
	_, ok = findRow(forest, "A10")
	assert.False(t, ok)
	assert.Len(t, forest, 2)
	assert.Equal(t, CountRows(BuildTree(fixture())), CountRows(forest))
}

func TestBuildTreeUsesUnwindowedLastActiveDate(t *testing.T) {
	in := fixture()
	// Window only covers the 10th; the ad kept running until the 15th.
	in.Stats = []models.DailyStat{stat("A1", "2024-06-10", 6000, 300, 600)}
	in.Activity = []models.AdActivity{
		{AdID: "A1", Date: "2024-06-10"},
		{AdID: "A1", Date: "2024-06-15"},
	}

	a1, ok := findRow(BuildTree(in), "A1")
	require.True(t, ok)
	assert.EqualValues(t, 1, a1.SalesCount, "S2 is late relative to the 15th, not the 10th")
	assert.Equal(t, 500.0, a1.Income)
}

func TestBuildTreeEmpty(t *testing.T) {
	forest := BuildTree(TreeInput{})
	assert.NotNil(t, forest)
	assert.Empty(t, forest)
}

func TestBuildRowOmitsEmptyChildren(t *testing.T) {
	row := BuildRow(RowInput{ID: "x", Type: RowTypeGroup, Children: []Row{}})
	assert.Nil(t, row.Children)
}
