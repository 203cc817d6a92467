package models

import (
	"errors"
	"time"
)

// AdGroup represents a grouping of ads within a campaign. Platforms call it
// an "ad set" (Meta) or "ad group" (Google); both map here.
type AdGroup struct {
	ID         string       `json:"id"`
	ProjectID  string       `json:"project_id"`
	CampaignID string       `json:"campaign_id"`
	Name       string       `json:"name"`
	Status     EntityStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Validate ensures the AdGroup has the minimal required data.
func (ag *AdGroup) Validate() error {
	if ag == nil {
		return errors.New("adgroup is nil")
	}
	if ag.ID == "" {
		return errors.New("id is required")
	}
	if ag.ProjectID == "" {
		return errors.New("project_id is required")
	}
	if ag.CampaignID == "" {
		return errors.New("campaign_id is required")
	}
	return nil
}

// Ad is the leaf of the hierarchy. ExternalID is the identifier assigned by
// the ad platform; ID is internal and is what daily stats, sales and leads
// reference.
type Ad struct {
	ID         string       `json:"id"`
	ProjectID  string       `json:"project_id"`
	AdGroupID  string       `json:"ad_group_id"`
	ExternalID string       `json:"external_id"`
	Name       string       `json:"name"`
	Status     EntityStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Validate ensures the Ad has the minimal required data.
func (a *Ad) Validate() error {
	if a == nil {
		return errors.New("ad is nil")
	}
	if a.ID == "" {
		return errors.New("id is required")
	}
	if a.ProjectID == "" {
		return errors.New("project_id is required")
	}
	if a.AdGroupID == "" {
		return errors.New("ad_group_id is required")
	}
	return nil
}
