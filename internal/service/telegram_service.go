package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	config "github.com/vidscribe/social-api/configs"
	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/repository"
	"github.com/vidscribe/social-api/internal/transfer"
	"github.com/vidscribe/social-api/pkg/utils"
)

type TelegramService interface {
	GetMe(ctx context.Context, botToken string) (*transfer.TelegramUser, error)
	ChatMembersCount(ctx context.Context, botToken, chatID string) (int64, error)
	SendVideo(ctx context.Context, botToken, chatID, caption, videoURL string) error
	Publish(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error
}

type telegramService struct {
	cfg    config.Config
	ma     repository.MediaAssetRepository
	client *http.Client
}

func NewTelegramService(cfg config.Config, ma repository.MediaAssetRepository) TelegramService {
	return &telegramService{
		cfg:    cfg,
		ma:     ma,
		client: newPlatformClient(),
	}
}

func (s *telegramService) methodURL(botToken, method string) string {
	return fmt.Sprintf("%s/bot%s/%s", s.cfg.TelegramAPIBaseURL, botToken, method)
}

// GetMe verifies a bot token by resolving the bot identity behind it.
func (s *telegramService) GetMe(ctx context.Context, botToken string) (*transfer.TelegramUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.methodURL(botToken, "getMe"), nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	defer resp.Body.Close()

	var result transfer.TelegramGetMeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: malformed getMe response", ErrInvalidCredential)
	}

	if !result.OK {
		slog.Info("telegram rejected bot token", "description", result.Description)
		return nil, fmt.Errorf("%w: invalid telegram bot token", ErrInvalidCredential)
	}
	return &result.Result, nil
}

func (s *telegramService) ChatMembersCount(ctx context.Context, botToken, chatID string) (int64, error) {
	u := s.methodURL(botToken, "getChatMembersCount") + "?chat_id=" + url.QueryEscape(chatID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer resp.Body.Close()

	var result transfer.TelegramCountResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	if !result.OK {
		return 0, fmt.Errorf("getChatMembersCount failed: %s", result.Description)
	}
	return result.Result, nil
}

// SendVideo posts a video with a caption to the channel. The video field
// carries the asset URL; the Bot API downloads it server side.
func (s *telegramService) SendVideo(ctx context.Context, botToken, chatID, caption, videoURL string) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	form.WriteField("chat_id", chatID)
	form.WriteField("video", videoURL)
	form.WriteField("caption", caption)
	if err := form.Close(); err != nil {
		slog.Info(err.Error())
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.methodURL(botToken, "sendVideo"), &body)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	var result transfer.TelegramSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("%w: malformed sendVideo response", ErrPublishFailed)
	}

	if resp.StatusCode != http.StatusOK || !result.OK {
		slog.Info("telegram sendVideo failed", "status", resp.StatusCode, "description", result.Description)
		return fmt.Errorf("%w: telegram sendVideo: %s", ErrPublishFailed, result.Description)
	}
	return nil
}

func (s *telegramService) Publish(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error {
	if acc.Metadata.Telegram == nil || acc.Metadata.Telegram.ChatID == "" {
		return fmt.Errorf("%w: telegram account has no channel", ErrPublishFailed)
	}
	if post.AssetID == nil {
		return fmt.Errorf("%w: telegram posts require a video", ErrPublishFailed)
	}

	asset, err := s.ma.GetByID(ctx, *post.AssetID)
	if err != nil {
		return err
	}
	if asset == nil {
		return fmt.Errorf("%w: video asset %d is gone", ErrPublishFailed, *post.AssetID)
	}

	botToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	return s.SendVideo(ctx, botToken, acc.Metadata.Telegram.ChatID, post.Caption, asset.FileURL)
}
