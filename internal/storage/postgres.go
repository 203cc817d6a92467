package storage

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radiusdt/vector-insights/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore implements every repository on PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Store returns a Store with every repository served by s.
func (s *PostgresStore) Store() Store {
	return Store{Stats: s, Hierarchy: s, Sales: s, Leads: s}
}

// Migrate creates missing tables and indexes.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// =============================================
// DAILY STATS
// =============================================

const dailyStatColumns = `project_id, ad_id, date, date_ts, impressions, clicks, spend,
	leads, results, reach, whatsapp_requests, appointments_scheduled,
	appointments_attended, treatments_completed, plans_sent`

func (s *PostgresStore) ListDailyStats(ctx context.Context, projectID string, startTs, endTs int64) ([]models.DailyStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+dailyStatColumns+`
		FROM daily_stats
		WHERE project_id = $1 AND date_ts BETWEEN $2 AND $3
		ORDER BY date_ts, ad_id
	`, projectID, startTs, endTs)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.DailyStat, 0)
	for rows.Next() {
		var d models.DailyStat
		if err := rows.Scan(
			&d.ProjectID, &d.AdID, &d.Date, &d.DateTs, &d.Impressions, &d.Clicks, &d.Spend,
			&d.Leads, &d.Results, &d.Reach, &d.WhatsappRequests, &d.AppointmentsScheduled,
			&d.AppointmentsAttended, &d.TreatmentsCompleted, &d.PlansSent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		stats = append(stats, d)
	}
	return stats, rows.Err()
}

func (s *PostgresStore) ListAdActivity(ctx context.Context, projectID string) ([]models.AdActivity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ad_id, date FROM daily_stats WHERE project_id = $1
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ad activity: %w", err)
	}
	defer rows.Close()

	activity := make([]models.AdActivity, 0)
	for rows.Next() {
		var a models.AdActivity
		if err := rows.Scan(&a.AdID, &a.Date); err != nil {
			return nil, fmt.Errorf("failed to scan ad activity: %w", err)
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

func (s *PostgresStore) UpsertDailyStat(ctx context.Context, d *models.DailyStat) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := d.Normalize(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_stats (`+dailyStatColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (project_id, ad_id, date) DO UPDATE SET
			date_ts = EXCLUDED.date_ts,
			impressions = EXCLUDED.impressions,
			clicks = EXCLUDED.clicks,
			spend = EXCLUDED.spend,
			leads = EXCLUDED.leads,
			results = EXCLUDED.results,
			reach = EXCLUDED.reach,
			whatsapp_requests = EXCLUDED.whatsapp_requests,
			appointments_scheduled = EXCLUDED.appointments_scheduled,
			appointments_attended = EXCLUDED.appointments_attended,
			treatments_completed = EXCLUDED.treatments_completed,
			plans_sent = EXCLUDED.plans_sent
	`, d.ProjectID, d.AdID, d.Date, d.DateTs, d.Impressions, d.Clicks, d.Spend,
		d.Leads, d.Results, d.Reach, d.WhatsappRequests, d.AppointmentsScheduled,
		d.AppointmentsAttended, d.TreatmentsCompleted, d.PlansSent)
	if err != nil {
		return fmt.Errorf("failed to upsert daily stat: %w", err)
	}
	return nil
}

// =============================================
// HIERARCHY
// =============================================

func (s *PostgresStore) ListAccounts(ctx context.Context, projectID string) ([]models.AdAccount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, name, channel, is_active, created_at, updated_at
		FROM ad_accounts WHERE project_id = $1 ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.AdAccount, error) {
		var a models.AdAccount
		err := row.Scan(&a.ID, &a.ProjectID, &a.Name, &a.Channel, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
		return a, err
	})
}

func (s *PostgresStore) ListCampaigns(ctx context.Context, projectID string) ([]models.Campaign, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, account_id, name, status, created_at, updated_at
		FROM campaigns WHERE project_id = $1 ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.Campaign, error) {
		var c models.Campaign
		err := row.Scan(&c.ID, &c.ProjectID, &c.AccountID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
}

func (s *PostgresStore) ListAdGroups(ctx context.Context, projectID string) ([]models.AdGroup, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, campaign_id, name, status, created_at, updated_at
		FROM ad_groups WHERE project_id = $1 ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ad groups: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.AdGroup, error) {
		var g models.AdGroup
		err := row.Scan(&g.ID, &g.ProjectID, &g.CampaignID, &g.Name, &g.Status, &g.CreatedAt, &g.UpdatedAt)
		return g, err
	})
}

func (s *PostgresStore) ListAds(ctx context.Context, projectID string) ([]models.Ad, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, ad_group_id, external_id, name, status, created_at, updated_at
		FROM ads WHERE project_id = $1 ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.Ad, error) {
		var a models.Ad
		err := row.Scan(&a.ID, &a.ProjectID, &a.AdGroupID, &a.ExternalID, &a.Name, &a.Status, &a.CreatedAt, &a.UpdatedAt)
		return a, err
	})
}

func (s *PostgresStore) UpsertAccount(ctx context.Context, a *models.AdAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ad_accounts (id, project_id, name, channel, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			channel = EXCLUDED.channel,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
	`, a.ID, a.ProjectID, a.Name, a.Channel, a.IsActive)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertCampaign(ctx context.Context, c *models.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO campaigns (id, project_id, account_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			updated_at = NOW()
	`, c.ID, c.ProjectID, c.AccountID, c.Name, c.Status)
	if err != nil {
		return fmt.Errorf("failed to upsert campaign: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertAdGroup(ctx context.Context, g *models.AdGroup) error {
	if err := g.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ad_groups (id, project_id, campaign_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			campaign_id = EXCLUDED.campaign_id,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			updated_at = NOW()
	`, g.ID, g.ProjectID, g.CampaignID, g.Name, g.Status)
	if err != nil {
		return fmt.Errorf("failed to upsert ad group: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertAd(ctx context.Context, a *models.Ad) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ads (id, project_id, ad_group_id, external_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			ad_group_id = EXCLUDED.ad_group_id,
			external_id = EXCLUDED.external_id,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			updated_at = NOW()
	`, a.ID, a.ProjectID, a.AdGroupID, a.ExternalID, a.Name, a.Status)
	if err != nil {
		return fmt.Errorf("failed to upsert ad: %w", err)
	}
	return nil
}

// =============================================
// CRM
// =============================================

func (s *PostgresStore) ListSales(ctx context.Context, projectID string) ([]models.Sale, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, ad_id, amount, registration_date, sale_date,
			   client_name, deal_status, deal_link, created_at
		FROM sales WHERE project_id = $1 ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.Sale, error) {
		var sale models.Sale
		err := row.Scan(
			&sale.ID, &sale.ProjectID, &sale.AdID, &sale.Amount, &sale.RegistrationDate, &sale.SaleDate,
			&sale.ClientName, &sale.DealStatus, &sale.DealLink, &sale.CreatedAt,
		)
		return sale, err
	})
}

func (s *PostgresStore) ListLeads(ctx context.Context, projectID string) ([]models.Lead, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, ad_id, name, is_qualified, created_at
		FROM leads WHERE project_id = $1 ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.Lead, error) {
		var l models.Lead
		err := row.Scan(&l.ID, &l.ProjectID, &l.AdID, &l.Name, &l.IsQualified, &l.CreatedAt)
		return l, err
	})
}

func (s *PostgresStore) UpsertSale(ctx context.Context, sale *models.Sale) error {
	if err := sale.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sales (id, project_id, ad_id, amount, registration_date, sale_date,
			client_name, deal_status, deal_link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))
		ON CONFLICT (id) DO UPDATE SET
			ad_id = EXCLUDED.ad_id,
			amount = EXCLUDED.amount,
			registration_date = EXCLUDED.registration_date,
			sale_date = EXCLUDED.sale_date,
			client_name = EXCLUDED.client_name,
			deal_status = EXCLUDED.deal_status,
			deal_link = EXCLUDED.deal_link
	`, sale.ID, sale.ProjectID, sale.AdID, sale.Amount, sale.RegistrationDate, sale.SaleDate,
		sale.ClientName, sale.DealStatus, sale.DealLink, nullTime(sale.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert sale: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertLead(ctx context.Context, l *models.Lead) error {
	if err := l.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leads (id, project_id, ad_id, name, is_qualified, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		ON CONFLICT (id) DO UPDATE SET
			ad_id = EXCLUDED.ad_id,
			name = EXCLUDED.name,
			is_qualified = EXCLUDED.is_qualified
	`, l.ID, l.ProjectID, l.AdID, l.Name, l.IsQualified, nullTime(l.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert lead: %w", err)
	}
	return nil
}

// collect scans every row with scan and closes rows.
func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// nullTime maps the zero time to NULL so the column default applies.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
