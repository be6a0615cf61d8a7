package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "github.com/vidscribe/social-api/configs"
	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/repository"
	"github.com/vidscribe/social-api/internal/transfer"
	"github.com/vidscribe/social-api/pkg/utils"
	"golang.org/x/oauth2"
)

type TiktokService interface {
	UserInfo(ctx context.Context, accessToken string) (*transfer.TiktokUser, error)
	RefreshToken(ctx context.Context, acc *models.SocialAccount) error
	Publish(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error
}

type tiktokService struct {
	cfg    config.Config
	sa     repository.SocialAccountRepository
	client *http.Client
}

func NewTiktokService(cfg config.Config, sa repository.SocialAccountRepository) TiktokService {
	return &tiktokService{
		cfg:    cfg,
		sa:     sa,
		client: newPlatformClient(),
	}
}

func (s *tiktokService) UserInfo(ctx context.Context, accessToken string) (*transfer.TiktokUser, error) {
	u := s.cfg.TiktokAPIURL + "/v2/user/info/?fields=open_id,username,display_name,avatar_url,follower_count,video_count"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	defer resp.Body.Close()

	var result transfer.TikTokUserInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: malformed user info response", ErrInvalidCredential)
	}

	if resp.StatusCode != http.StatusOK || result.Data.User.OpenID == "" {
		slog.Info("tiktok rejected access token", "code", result.Error.Code, "message", result.Error.Message)
		return nil, fmt.Errorf("%w: invalid tiktok access token", ErrInvalidCredential)
	}
	return &result.Data.User, nil
}

func (s *tiktokService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.TiktokClientKey,
		ClientSecret: s.cfg.TiktokClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.cfg.TiktokAPIURL + "/v2/oauth/token/",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// RefreshToken exchanges a stored refresh token for a new token pair and
// persists it. Called by the token refresh job for accounts nearing expiry.
func (s *tiktokService) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	if acc.RefreshToken == "" {
		return nil
	}

	refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	src := s.oauthConfig().TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	})
	token, err := src.Token()
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	encryptedAccess, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	encryptedRefresh := ""
	if token.RefreshToken != "" {
		encryptedRefresh, err = utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return err
		}
	}

	return s.sa.SetToken(ctx, acc.ID, encryptedAccess, encryptedRefresh, token.Expiry)
}

// Publish is a stub pending the full video.publish OAuth flow; it keeps the
// adapter contract identical to the real platforms.
func (s *tiktokService) Publish(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error {
	select {
	case <-time.After(publishStubDelay):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrPublishFailed, ctx.Err())
	}
}
