package storage

import (
	"context"

	"github.com/radiusdt/vector-insights/internal/models"
)

// =============================================
// STATS REPOSITORY
// =============================================

// StatsRepo reads daily ad statistics.
type StatsRepo interface {
	// ListDailyStats returns stats with startTs <= DateTs <= endTs (unix ms).
	ListDailyStats(ctx context.Context, projectID string, startTs, endTs int64) ([]models.DailyStat, error)
	// ListAdActivity returns every (ad, date) pair with stats, ignoring any window.
	ListAdActivity(ctx context.Context, projectID string) ([]models.AdActivity, error)
}

// StatsWriter is implemented by stats stores that accept upserts.
type StatsWriter interface {
	UpsertDailyStat(ctx context.Context, s *models.DailyStat) error
}

// =============================================
// HIERARCHY REPOSITORY
// =============================================

// HierarchyRepo lists the account -> campaign -> group -> ad structure of a
// project. Results come back in a stable order.
type HierarchyRepo interface {
	ListAccounts(ctx context.Context, projectID string) ([]models.AdAccount, error)
	ListCampaigns(ctx context.Context, projectID string) ([]models.Campaign, error)
	ListAdGroups(ctx context.Context, projectID string) ([]models.AdGroup, error)
	ListAds(ctx context.Context, projectID string) ([]models.Ad, error)
}

// =============================================
// CRM REPOSITORIES
// =============================================

// SaleRepo lists the full sale history of a project.
type SaleRepo interface {
	ListSales(ctx context.Context, projectID string) ([]models.Sale, error)
}

// LeadRepo lists every lead of a project.
type LeadRepo interface {
	ListLeads(ctx context.Context, projectID string) ([]models.Lead, error)
}

// Store bundles the repositories the reporting service reads from.
type Store struct {
	Stats     StatsRepo
	Hierarchy HierarchyRepo
	Sales     SaleRepo
	Leads     LeadRepo
}
