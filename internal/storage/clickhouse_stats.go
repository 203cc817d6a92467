package storage

import (
	"context"
	"fmt"
	"regexp"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/radiusdt/vector-insights/internal/models"
)

// ClickHouseQuerier is the part of driver.Conn the stats store needs.
type ClickHouseQuerier interface {
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ClickHouseStatsStore reads daily stats from a ClickHouse table with one row
// per (project_id, ad_id, date). Counter columns may be of any integer or
// float type; they are cast on read. The store is read-only.
type ClickHouseStatsStore struct {
	conn  ClickHouseQuerier
	table string
}

func NewClickHouseStatsStore(conn ClickHouseQuerier, table string) (*ClickHouseStatsStore, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid ClickHouse table name %q", table)
	}
	return &ClickHouseStatsStore{conn: conn, table: table}, nil
}

func (s *ClickHouseStatsStore) dailyStatsQuery() string {
	return fmt.Sprintf(`
		SELECT
			ad_id,
			toString(date) AS day,
			toInt64(toUnixTimestamp(toDateTime(date, 'UTC'))) * 1000 AS day_ts,
			toInt64(impressions),
			toInt64(clicks),
			toFloat64(spend),
			toInt64(leads),
			toInt64(results),
			toInt64(reach),
			toInt64(whatsapp_requests),
			toInt64(appointments_scheduled),
			toInt64(appointments_attended),
			toInt64(treatments_completed),
			toInt64(plans_sent)
		FROM %s
		WHERE project_id = ? AND day_ts BETWEEN ? AND ?
		ORDER BY day_ts, ad_id
	`, s.table)
}

func (s *ClickHouseStatsStore) activityQuery() string {
	return fmt.Sprintf(`SELECT DISTINCT ad_id, toString(date) FROM %s WHERE project_id = ?`, s.table)
}

func (s *ClickHouseStatsStore) ListDailyStats(ctx context.Context, projectID string, startTs, endTs int64) ([]models.DailyStat, error) {
	rows, err := s.conn.Query(ctx, s.dailyStatsQuery(), projectID, startTs, endTs)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.DailyStat, 0)
	for rows.Next() {
		d := models.DailyStat{ProjectID: projectID}
		if err := rows.Scan(
			&d.AdID, &d.Date, &d.DateTs,
			&d.Impressions, &d.Clicks, &d.Spend, &d.Leads, &d.Results, &d.Reach,
			&d.WhatsappRequests, &d.AppointmentsScheduled, &d.AppointmentsAttended,
			&d.TreatmentsCompleted, &d.PlansSent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		stats = append(stats, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily stats: %w", err)
	}
	return stats, nil
}

func (s *ClickHouseStatsStore) ListAdActivity(ctx context.Context, projectID string) ([]models.AdActivity, error) {
	rows, err := s.conn.Query(ctx, s.activityQuery(), projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ad activity: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ad activity: %w", err)
	}
	return activity, nil
}
