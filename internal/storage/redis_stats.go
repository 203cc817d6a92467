package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/radiusdt/vector-insights/internal/models"
)

// RedisStatsStore keeps daily stats in Redis: one hash per (project, ad,
// date) and a per-project sorted set of "ad|date" members scored by DateTs.
//
// Keys:
//
//	stats:{project}:{ad}:{date}  hash of counters
//	stats:idx:{project}          zset, member "ad|date", score date_ts
type RedisStatsStore struct {
	client redis.UniversalClient
}

func NewRedisStatsStore(client redis.UniversalClient) *RedisStatsStore {
	return &RedisStatsStore{client: client}
}

// redisStat mirrors the hash layout.
type redisStat struct {
	Impressions           int64   `redis:"impressions"`
	Clicks                int64   `redis:"clicks"`
	Spend                 float64 `redis:"spend"`
	Leads                 int64   `redis:"leads"`
	Results               int64   `redis:"results"`
	Reach                 int64   `redis:"reach"`
	WhatsappRequests      int64   `redis:"whatsapp_requests"`
	AppointmentsScheduled int64   `redis:"appointments_scheduled"`
	AppointmentsAttended  int64   `redis:"appointments_attended"`
	TreatmentsCompleted   int64   `redis:"treatments_completed"`
	PlansSent             int64   `redis:"plans_sent"`
	DateTs                int64   `redis:"date_ts"`
}

func statKey(projectID, adID, date string) string {
	return fmt.Sprintf("stats:%s:%s:%s", projectID, adID, date)
}

func statIndexKey(projectID string) string {
	return fmt.Sprintf("stats:idx:%s", projectID)
}

func indexMember(adID, date string) string {
	return adID + "|" + date
}

func parseIndexMember(member string) (adID, date string, ok bool) {
	i := strings.LastIndex(member, "|")
	if i <= 0 || i == len(member)-1 {
		return "", "", false
	}
	return member[:i], member[i+1:], true
}

// UpsertDailyStat writes the hash and index entry in one transaction.
func (s *RedisStatsStore) UpsertDailyStat(ctx context.Context, d *models.DailyStat) error {
	if err := d.Validate(); err != nil {
		return err
	}
	cp := *d
	if err := cp.Normalize(); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, statKey(cp.ProjectID, cp.AdID, cp.Date), map[string]interface{}{
			"impressions":            cp.Impressions,
			"clicks":                 cp.Clicks,
			"spend":                  cp.Spend,
			"leads":                  cp.Leads,
			"results":                cp.Results,
			"reach":                  cp.Reach,
			"whatsapp_requests":      cp.WhatsappRequests,
			"appointments_scheduled": cp.AppointmentsScheduled,
			"appointments_attended":  cp.AppointmentsAttended,
			"treatments_completed":   cp.TreatmentsCompleted,
			"plans_sent":             cp.PlansSent,
			"date_ts":                cp.DateTs,
		})
		pipe.ZAdd(ctx, statIndexKey(cp.ProjectID), redis.Z{
			Score:  float64(cp.DateTs),
			Member: indexMember(cp.AdID, cp.Date),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert daily stat: %w", err)
	}
	return nil
}

func (s *RedisStatsStore) ListDailyStats(ctx context.Context, projectID string, startTs, endTs int64) ([]models.DailyStat, error) {
	members, err := s.client.ZRangeByScore(ctx, statIndexKey(projectID), &redis.ZRangeBy{
		Min: strconv.FormatInt(startTs, 10),
		Max: strconv.FormatInt(endTs, 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stats index: %w", err)
	}
	if len(members) == 0 {
		return []models.DailyStat{}, nil
	}

	type pending struct {
		adID, date string
		cmd        *redis.MapStringStringCmd
	}
	reads := make([]pending, 0, len(members))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, m := range members {
			adID, date, ok := parseIndexMember(m)
			if !ok {
				continue
			}
			reads = append(reads, pending{adID: adID, date: date, cmd: pipe.HGetAll(ctx, statKey(projectID, adID, date))})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read daily stats: %w", err)
	}

	stats := make([]models.DailyStat, 0, len(reads))
	for _, r := range reads {
		if len(r.cmd.Val()) == 0 {
			continue
		}
		var h redisStat
		if err := r.cmd.Scan(&h); err != nil {
			return nil, fmt.Errorf("failed to decode daily stat %s/%s: %w", r.adID, r.date, err)
		}
		stats = append(stats, models.DailyStat{
			ProjectID:             projectID,
			AdID:                  r.adID,
			Date:                  r.date,
			DateTs:                h.DateTs,
			Impressions:           h.Impressions,
			Clicks:                h.Clicks,
			Spend:                 h.Spend,
			Leads:                 h.Leads,
			Results:               h.Results,
			Reach:                 h.Reach,
			WhatsappRequests:      h.WhatsappRequests,
			AppointmentsScheduled: h.AppointmentsScheduled,
			AppointmentsAttended:  h.AppointmentsAttended,
			TreatmentsCompleted:   h.TreatmentsCompleted,
			PlansSent:             h.PlansSent,
		})
	}
	sortStats(stats)
	return stats, nil
}

func (s *RedisStatsStore) ListAdActivity(ctx context.Context, projectID string) ([]models.AdActivity, error) {
	members, err := s.client.ZRange(ctx, statIndexKey(projectID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stats index: %w", err)
	}
	activity := make([]models.AdActivity, 0, len(members))
	for _, m := range members {
		adID, date, ok := parseIndexMember(m)
		if !ok {
			continue
		}
		activity = append(activity, models.AdActivity{AdID: adID, Date: date})
	}
	return activity, nil
}
