package models

import (
	"errors"
	"time"
)

// ===========================================
// SALE
// ===========================================

// Sale is one won deal reported by the CRM. AdID is a best-effort link set at
// ingestion time (exact ad match, channel-only match or none) and may be empty.
type Sale struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"project_id"`
	AdID      string  `json:"ad_id,omitempty"`
	Amount    float64 `json:"amount"`

	// Calendar dates, ISO 8601 (2006-01-02).
	RegistrationDate string `json:"registration_date"` // when the originating lead was created
	SaleDate         string `json:"sale_date"`

	ClientName string `json:"client_name"`
	DealStatus string `json:"deal_status"`
	DealLink   string `json:"deal_link,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *Sale) Validate() error {
	if s == nil {
		return errors.New("sale is nil")
	}
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.ProjectID == "" {
		return errors.New("project_id is required")
	}
	if s.Amount < 0 {
		return errors.New("amount must be >= 0")
	}
	if _, err := time.Parse(DateLayout, s.RegistrationDate); err != nil {
		return errors.New("registration_date must be YYYY-MM-DD")
	}
	return nil
}

// ===========================================
// LEAD
// ===========================================

// Lead is a CRM lead. Leads are only counted, never attributed one by one.
type Lead struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	AdID        string    `json:"ad_id,omitempty"`
	Name        string    `json:"name"`
	IsQualified bool      `json:"is_qualified"`
	CreatedAt   time.Time `json:"created_at"`
}

func (l *Lead) Validate() error {
	if l == nil {
		return errors.New("lead is nil")
	}
	if l.ID == "" {
		return errors.New("id is required")
	}
	if l.ProjectID == "" {
		return errors.New("project_id is required")
	}
	return nil
}
