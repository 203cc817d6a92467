package models

import (
	"errors"
	"strings"
	"time"
)

// AdAccount is the top of the reporting hierarchy: one advertising account on
// one channel (Facebook, Google, ...) connected to a project.
type AdAccount struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Channel   string    `json:"channel"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// channelLabels maps normalized channel codes to the label shown in reports.
var channelLabels = map[string]string{
	"facebook":  "Facebook Ads",
	"meta":      "Facebook Ads",
	"instagram": "Instagram Ads",
	"google":    "Google Ads",
	"tiktok":    "TikTok Ads",
	"yandex":    "Yandex Direct",
	"vk":        "VK Ads",
}

// ChannelLabel returns the report label for the account's channel, or an
// empty string when the channel is unknown.
func (a *AdAccount) ChannelLabel() string {
	return channelLabels[strings.ToLower(strings.TrimSpace(a.Channel))]
}

// DisplayName prefers the channel label over the stored account name.
func (a *AdAccount) DisplayName() string {
	if label := a.ChannelLabel(); label != "" {
		return label
	}
	return a.Name
}

// Validate checks that required fields are present.
func (a *AdAccount) Validate() error {
	if a == nil {
		return errors.New("account is nil")
	}
	if a.ID == "" {
		return errors.New("id is required")
	}
	if a.ProjectID == "" {
		return errors.New("project_id is required")
	}
	return nil
}
