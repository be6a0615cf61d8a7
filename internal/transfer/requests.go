package transfer

import "github.com/golang-jwt/jwt/v5"

type ConnectAccountRequest struct {
	Platform      string `json:"platform"`
	Credential    string `json:"credential"`
	ChannelHandle string `json:"channelHandle,omitempty"`
}

type SchedulePostRequest struct {
	Platform     string
	Text         string
	ScheduledFor string
}

type PublishRequest struct {
	PostID int64 `json:"postId"`
}

type PublishResult struct {
	Platform    string `json:"platform"`
	PostID      int64  `json:"postId"`
	PublishedAt string `json:"publishedAt"`
}

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
