package models

import (
	"errors"
	"time"
)

// DateLayout is the calendar date format used by daily stats and sales.
const DateLayout = "2006-01-02"

// DailyStat is one ad's performance for one calendar day. Rows are upserted
// by (AdID, Date) by the statistics pull; the reporting core only reads them.
type DailyStat struct {
	ProjectID string `json:"project_id"`
	AdID      string `json:"ad_id"`
	Date      string `json:"date"`
	// DateTs is Date at 00:00 UTC in unix milliseconds.
	DateTs int64 `json:"date_ts"`

	Impressions           int64   `json:"impressions"`
	Clicks                int64   `json:"clicks"`
	Spend                 float64 `json:"spend"`
	Leads                 int64   `json:"leads"`
	Results               int64   `json:"results"`
	Reach                 int64   `json:"reach"`
	WhatsappRequests      int64   `json:"whatsapp_requests"`
	AppointmentsScheduled int64   `json:"appointments_scheduled"`
	AppointmentsAttended  int64   `json:"appointments_attended"`
	TreatmentsCompleted   int64   `json:"treatments_completed"`
	PlansSent             int64   `json:"plans_sent"`
}

// AdActivity is a single (ad, day) pair on which an ad had recorded stats.
type AdActivity struct {
	AdID string
	Date string
}

// DateToTs converts an ISO calendar date to unix milliseconds at 00:00 UTC.
func DateToTs(date string) (int64, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// TsToDate converts unix milliseconds to the UTC calendar date.
func TsToDate(ts int64) string {
	return time.UnixMilli(ts).UTC().Format(DateLayout)
}

// Normalize fills DateTs from Date when it is missing.
func (d *DailyStat) Normalize() error {
	if d.DateTs != 0 {
		return nil
	}
	ts, err := DateToTs(d.Date)
	if err != nil {
		return err
	}
	d.DateTs = ts
	return nil
}

func (d *DailyStat) Validate() error {
	if d == nil {
		return errors.New("daily stat is nil")
	}
	if d.ProjectID == "" {
		return errors.New("project_id is required")
	}
	if d.AdID == "" {
		return errors.New("ad_id is required")
	}
	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	return nil
}
