package models

import (
	"errors"
	"time"
)

// EntityStatus is the delivery status reported by the ad platform for
// campaigns, ad groups and ads.
type EntityStatus string

const (
	StatusActive   EntityStatus = "ACTIVE"
	StatusPaused   EntityStatus = "PAUSED"
	StatusArchived EntityStatus = "ARCHIVED"
	StatusDeleted  EntityStatus = "DELETED"
)

// IsActive reports whether the entity is currently delivering.
func (s EntityStatus) IsActive() bool {
	return s == StatusActive
}

// Campaign groups ad groups within an ad account.
type Campaign struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"project_id"`
	AccountID string       `json:"account_id"`
	Name      string       `json:"name"`
	Status    EntityStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (c *Campaign) Validate() error {
	if c == nil {
		return errors.New("campaign is nil")
	}
	if c.ID == "" {
		return errors.New("id is required")
	}
	if c.ProjectID == "" {
		return errors.New("project_id is required")
	}
	if c.AccountID == "" {
		return errors.New("account_id is required")
	}
	return nil
}
