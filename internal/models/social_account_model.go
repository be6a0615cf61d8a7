package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// TelegramMetadata describes a connected Telegram bot and the channel
// it publishes to. ChatID is the normalized channel handle ("@channel").
type TelegramMetadata struct {
	ChatID    string `json:"chat_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

type TiktokMetadata struct {
	Username      string `json:"username"`
	FollowerCount int64  `json:"follower_count"`
	VideoCount    int64  `json:"video_count"`
}

// AccountMetadata is a tagged variant: exactly one member is set, chosen
// by the account's platform.
type AccountMetadata struct {
	Telegram *TelegramMetadata `json:"telegram,omitempty"`
	Tiktok   *TiktokMetadata   `json:"tiktok,omitempty"`
}

func (m AccountMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *AccountMetadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = AccountMetadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return errors.New("unsupported metadata column type")
}

// SocialStats caches the counters a platform exposed the last time it was
// queried. The optional counters are nil until a platform reports them.
type SocialStats struct {
	Followers  int64  `json:"followers"`
	Views      int64  `json:"views"`
	Engagement int64  `json:"engagement"`
	Posts      int64  `json:"posts"`
	Likes      *int64 `json:"likes,omitempty"`
	Comments   *int64 `json:"comments,omitempty"`
	Shares     *int64 `json:"shares,omitempty"`
	Saves      *int64 `json:"saves,omitempty"`
}

// Merge folds a freshly fetched snapshot into the cached stats. A zero or
// nil incoming field means the platform did not report it in this call, so
// the cached value is kept.
func (s *SocialStats) Merge(in SocialStats) {
	if in.Followers != 0 {
		s.Followers = in.Followers
	}
	if in.Views != 0 {
		s.Views = in.Views
	}
	if in.Engagement != 0 {
		s.Engagement = in.Engagement
	}
	if in.Posts != 0 {
		s.Posts = in.Posts
	}
	if in.Likes != nil {
		s.Likes = in.Likes
	}
	if in.Comments != nil {
		s.Comments = in.Comments
	}
	if in.Shares != nil {
		s.Shares = in.Shares
	}
	if in.Saves != nil {
		s.Saves = in.Saves
	}
}

func (s SocialStats) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *SocialStats) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = SocialStats{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return errors.New("unsupported stats column type")
}

type SocialAccount struct {
	ID             int64           `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	Platform       Platform        `db:"platform" json:"platform"`
	PlatformUserID string          `db:"platform_user_id" json:"platform_user_id"`
	AccountName    string          `db:"account_name" json:"account_name"`
	AccessToken    string          `db:"access_token" json:"-"`
	RefreshToken   string          `db:"refresh_token" json:"-"`
	TokenExpiresAt *time.Time      `db:"token_expires_at" json:"token_expires_at,omitempty"`
	Metadata       AccountMetadata `db:"metadata" json:"metadata"`
	Stats          SocialStats     `db:"stats" json:"stats"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}
