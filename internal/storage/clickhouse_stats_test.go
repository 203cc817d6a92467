package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRows replays fixed rows. Only the methods the store calls are
// implemented.
type fakeRows struct {
	driver.Rows
	data [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(row) != len(dest) {
		return fmt.Errorf("scan: got %d destinations for %d columns", len(dest), len(row))
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int64:
			*d = v.(int64)
		case *float64:
			*d = v.(float64)
		default:
			return fmt.Errorf("scan: unsupported destination %T", dest[i])
		}
	}
	return nil
}

func (r *fakeRows) Close() error { return nil }
func (r *fakeRows) Err() error   { return nil }

type fakeQuerier struct {
	rows  *fakeRows
	err   error
	query string
	args  []any
}

func (q *fakeQuerier) Query(_ context.Context, query string, args ...any) (driver.Rows, error) {
	q.query = query
	q.args = args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestNewClickHouseStatsStore_ValidatesTable(t *testing.T) {
	_, err := NewClickHouseStatsStore(&fakeQuerier{}, "stats; DROP TABLE x")
	assert.Error(t, err)

	s, err := NewClickHouseStatsStore(&fakeQuerier{}, "analytics.ad_daily_stats")
	require.NoError(t, err)
	assert.Contains(t, s.dailyStatsQuery(), "FROM analytics.ad_daily_stats")
}

func TestClickHouseStatsStore_ListDailyStats(t *testing.T) {
	ts := mustTs(t, "2024-06-10")
	q := &fakeQuerier{rows: &fakeRows{data: [][]any{
		{"ad1", "2024-06-10", ts, int64(10000), int64(500), 1000.0, int64(3), int64(2), int64(9000), int64(0), int64(1), int64(1), int64(0), int64(0)},
	}}}
	s, err := NewClickHouseStatsStore(q, "ad_daily_stats")
	require.NoError(t, err)

	stats, err := s.ListDailyStats(context.Background(), "p1", ts, ts+1)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "p1", stats[0].ProjectID)
	assert.Equal(t, "ad1", stats[0].AdID)
	assert.Equal(t, ts, stats[0].DateTs)
	assert.EqualValues(t, 500, stats[0].Clicks)
	assert.Equal(t, 1000.0, stats[0].Spend)
	assert.Equal(t, []any{"p1", ts, ts + 1}, q.args)
}

func TestClickHouseStatsStore_QueryError(t *testing.T) {
	s, err := NewClickHouseStatsStore(&fakeQuerier{err: errors.New("connection refused")}, "ad_daily_stats")
	require.NoError(t, err)

	_, err = s.ListAdActivity(context.Background(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
