package service

import (
	"context"
	"fmt"
	"log/slog"

	config "github.com/vidscribe/social-api/configs"
	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/repository"
	"github.com/vidscribe/social-api/internal/transfer"
	"github.com/vidscribe/social-api/pkg/utils"
)

// PlatformService is the account registry: it owns the connect, disconnect
// and stats lifecycle of the per-platform social accounts.
type PlatformService interface {
	Connect(ctx context.Context, userID int64, req *transfer.ConnectAccountRequest) (*models.SocialAccount, error)
	Disconnect(ctx context.Context, userID int64, platform models.Platform) error
	Get(ctx context.Context, userID int64, platform models.Platform) (*models.SocialAccount, error)
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	RefreshStats(ctx context.Context, userID int64, platform models.Platform) (*models.SocialStats, error)
}

type platformService struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
	pr  repository.PostRepository
	tg  TelegramService
	ig  InstagramService
	tt  TiktokService
}

func NewPlatformService(
	cfg config.Config,
	sa repository.SocialAccountRepository,
	pr repository.PostRepository,
	tg TelegramService,
	ig InstagramService,
	tt TiktokService) PlatformService {
	return &platformService{
		cfg: cfg,
		sa:  sa,
		pr:  pr,
		tg:  tg,
		ig:  ig,
		tt:  tt,
	}
}

func (s *platformService) Connect(ctx context.Context, userID int64, req *transfer.ConnectAccountRequest) (*models.SocialAccount, error) {
	platform, err := models.ParsePlatform(req.Platform)
	if err != nil {
		return nil, err
	}
	if req.Credential == "" {
		return nil, fmt.Errorf("%w: credential", ErrMissingParameter)
	}

	account := &models.SocialAccount{
		UserID:   userID,
		Platform: platform,
	}

	switch platform {
	case models.PlatformTelegram:
		if err := s.connectTelegram(ctx, req, account); err != nil {
			return nil, err
		}
	case models.PlatformInstagram:
		// Deliberate product limitation, not a missing feature toggle.
		return nil, ErrBusinessAccountRequired
	case models.PlatformTiktok:
		if err := s.connectTiktok(ctx, req, account); err != nil {
			return nil, err
		}
	}

	account.AccessToken, err = utils.Encrypt([]byte(req.Credential), []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	id, err := s.sa.Replace(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("error saving social account: %w", err)
	}
	account.ID = id

	slog.Info("social account connected", "platform", platform, "user_id", userID)
	return account, nil
}

func (s *platformService) connectTelegram(ctx context.Context, req *transfer.ConnectAccountRequest, account *models.SocialAccount) error {
	if req.ChannelHandle == "" {
		return fmt.Errorf("%w: channel handle is required for telegram", ErrMissingParameter)
	}

	bot, err := s.tg.GetMe(ctx, req.Credential)
	if err != nil {
		return err
	}

	chatID := NormalizeChannelHandle(req.ChannelHandle)
	account.PlatformUserID = fmt.Sprintf("%d", bot.ID)
	account.AccountName = bot.FirstName
	account.Metadata = models.AccountMetadata{
		Telegram: &models.TelegramMetadata{
			ChatID:    chatID,
			Username:  bot.Username,
			FirstName: bot.FirstName,
		},
	}

	// Seed followers from the channel size; a failure here is not fatal,
	// stats can be refreshed later.
	followers, err := s.tg.ChatMembersCount(ctx, req.Credential, chatID)
	if err != nil {
		slog.Info("could not fetch channel member count", "chat_id", chatID, "error", err.Error())
		followers = 0
	}
	account.Stats = models.SocialStats{Followers: followers}
	return nil
}

func (s *platformService) connectTiktok(ctx context.Context, req *transfer.ConnectAccountRequest, account *models.SocialAccount) error {
	user, err := s.tt.UserInfo(ctx, req.Credential)
	if err != nil {
		return err
	}

	account.PlatformUserID = user.OpenID
	account.AccountName = user.DisplayName
	account.Metadata = models.AccountMetadata{
		Tiktok: &models.TiktokMetadata{
			Username:      user.Username,
			FollowerCount: user.FollowerCount,
			VideoCount:    user.VideoCount,
		},
	}
	account.Stats = models.SocialStats{
		Followers: user.FollowerCount,
		Posts:     user.VideoCount,
	}
	return nil
}

// Disconnect removes the account and every scheduled post targeting its
// platform. Disconnecting a platform that is not connected is a no-op.
func (s *platformService) Disconnect(ctx context.Context, userID int64, platform models.Platform) error {
	if !platform.Valid() {
		return models.ErrInvalidPlatform
	}

	account, err := s.sa.GetByPlatform(ctx, userID, platform)
	if err != nil {
		return err
	}
	if account == nil {
		return nil
	}

	if err := s.pr.RemoveByPlatform(ctx, userID, platform); err != nil {
		return fmt.Errorf("error removing scheduled posts: %w", err)
	}
	if err := s.sa.Remove(ctx, account.ID); err != nil {
		return fmt.Errorf("error removing social account: %w", err)
	}

	slog.Info("social account disconnected", "platform", platform, "user_id", userID)
	return nil
}

func (s *platformService) Get(ctx context.Context, userID int64, platform models.Platform) (*models.SocialAccount, error) {
	if !platform.Valid() {
		return nil, models.ErrInvalidPlatform
	}
	return s.sa.GetByPlatform(ctx, userID, platform)
}

func (s *platformService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	return s.sa.ListByUserID(ctx, userID)
}

// RefreshStats queries the platform for current counters and merges them
// into the cached stats. Counters the platform did not report stay as they
// were; a partial response never zeroes the cache.
func (s *platformService) RefreshStats(ctx context.Context, userID int64, platform models.Platform) (*models.SocialStats, error) {
	if !platform.Valid() {
		return nil, models.ErrInvalidPlatform
	}

	account, err := s.sa.GetByPlatform(ctx, userID, platform)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotConnected
	}

	token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	var incoming models.SocialStats
	switch platform {
	case models.PlatformTelegram:
		if account.Metadata.Telegram == nil {
			return nil, fmt.Errorf("telegram account %d has no channel metadata", account.ID)
		}
		followers, err := s.tg.ChatMembersCount(ctx, token, account.Metadata.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		incoming.Followers = followers
	case models.PlatformInstagram:
		info, err := s.ig.UserInfo(ctx, token)
		if err != nil {
			return nil, err
		}
		incoming.Followers = info.FollowersCount
		incoming.Posts = info.MediaCount
	case models.PlatformTiktok:
		user, err := s.tt.UserInfo(ctx, token)
		if err != nil {
			return nil, err
		}
		incoming.Followers = user.FollowerCount
		incoming.Posts = user.VideoCount
	}

	stats := account.Stats
	stats.Merge(incoming)

	if err := s.sa.UpdateStats(ctx, account.ID, stats); err != nil {
		return nil, fmt.Errorf("error saving stats: %w", err)
	}
	return &stats, nil
}
