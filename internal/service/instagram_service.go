package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	config "github.com/vidscribe/social-api/configs"
	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/transfer"
)

// publishStubDelay stands in for the round trip the real OAuth publishing
// flow would make on the stubbed platforms.
const publishStubDelay = time.Second

type InstagramService interface {
	UserInfo(ctx context.Context, accessToken string) (*transfer.InstagramUserInfo, error)
	Publish(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error
}

type instagramService struct {
	cfg    config.Config
	client *http.Client
}

func NewInstagramService(cfg config.Config) InstagramService {
	return &instagramService{
		cfg:    cfg,
		client: newPlatformClient(),
	}
}

func (s *instagramService) UserInfo(ctx context.Context, accessToken string) (*transfer.InstagramUserInfo, error) {
	u := fmt.Sprintf("%s/me?fields=media_count,followers_count&access_token=%s",
		s.cfg.InstagramAPIURL, url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var igErr transfer.InstagramErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&igErr); err == nil && igErr.Error.Message != "" {
			return nil, fmt.Errorf("instagram graph api: %s", igErr.Error.Message)
		}
		return nil, fmt.Errorf("instagram graph api returned status %d", resp.StatusCode)
	}

	var info transfer.InstagramUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &info, nil
}

// Publish is a stub: the full Instagram content-publish flow needs a
// business account, which the product does not support yet. The interface
// matches the real adapters so the queue worker is unaffected.
func (s *instagramService) Publish(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error {
	select {
	case <-time.After(publishStubDelay):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrPublishFailed, ctx.Err())
	}
}
