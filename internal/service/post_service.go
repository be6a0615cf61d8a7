package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/repository"
	"github.com/vidscribe/social-api/internal/transfer"
)

// Uploader is the storage boundary for video blobs. R2Service is the
// production implementation.
type Uploader interface {
	Upload(ctx context.Context, key string, file []byte, contentType string) (string, error)
}

type PostService interface {
	Schedule(ctx context.Context, userID int64, req *transfer.SchedulePostRequest, video *multipart.FileHeader) (*models.ScheduledPost, error)
	PublishNow(ctx context.Context, userID int64, platform, text string, video *multipart.FileHeader) error
	List(ctx context.Context, userID int64) ([]*models.ScheduledPost, error)
	ListByPlatform(ctx context.Context, userID int64, platform models.Platform) ([]*models.ScheduledPost, error)
	Remove(ctx context.Context, userID, postID int64) error
	History(ctx context.Context, userID int64) ([]*models.PostingHistory, error)
}

type postService struct {
	pr       repository.PostRepository
	sa       repository.SocialAccountRepository
	ma       repository.MediaAssetRepository
	ph       repository.PostingHistoryRepository
	uploader Uploader
	tg       TelegramService
	ig       InstagramService
	tt       TiktokService
}

func NewPostService(
	pr repository.PostRepository,
	sa repository.SocialAccountRepository,
	ma repository.MediaAssetRepository,
	ph repository.PostingHistoryRepository,
	uploader Uploader,
	tg TelegramService,
	ig InstagramService,
	tt TiktokService) PostService {
	return &postService{
		pr:       pr,
		sa:       sa,
		ma:       ma,
		ph:       ph,
		uploader: uploader,
		tg:       tg,
		ig:       ig,
		tt:       tt,
	}
}

// Schedule validates the request, stores the optional video and creates a
// pending post the scheduler sweep will pick up once it is due.
func (s *postService) Schedule(ctx context.Context, userID int64, req *transfer.SchedulePostRequest, video *multipart.FileHeader) (*models.ScheduledPost, error) {
	platform, err := models.ParsePlatform(req.Platform)
	if err != nil {
		return nil, err
	}
	if req.Text == "" {
		return nil, fmt.Errorf("%w: text", ErrMissingParameter)
	}

	scheduledFor, err := time.Parse(time.RFC3339, req.ScheduledFor)
	if err != nil {
		err = fmt.Errorf("invalid scheduledFor timestamp: %w", err)
		slog.Info(err.Error())
		return nil, err
	}

	account, err := s.sa.GetByPlatform(ctx, userID, platform)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotConnected
	}

	assetID, err := s.storeVideo(ctx, userID, video)
	if err != nil {
		return nil, err
	}

	post := &models.ScheduledPost{
		UserID:       userID,
		Platform:     platform,
		Caption:      req.Text,
		AssetID:      assetID,
		ScheduledFor: scheduledFor,
		Status:       models.PostStatusPending,
	}

	id, err := s.pr.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	post.ID = id

	slog.Info("post scheduled", "post_id", id, "platform", platform, "scheduled_for", scheduledFor)
	return post, nil
}

// PublishNow publishes immediately, bypassing the queue. The attempt is
// recorded in posting history either way; errors propagate to the caller.
func (s *postService) PublishNow(ctx context.Context, userID int64, platformStr, text string, video *multipart.FileHeader) error {
	platform, err := models.ParsePlatform(platformStr)
	if err != nil {
		return err
	}

	account, err := s.sa.GetByPlatform(ctx, userID, platform)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotConnected
	}

	assetID, err := s.storeVideo(ctx, userID, video)
	if err != nil {
		return err
	}

	post := &models.ScheduledPost{
		UserID:   userID,
		Platform: platform,
		Caption:  text,
		AssetID:  assetID,
	}

	var pubErr error
	switch platform {
	case models.PlatformTelegram:
		pubErr = s.tg.Publish(ctx, post, account)
	case models.PlatformInstagram:
		pubErr = s.ig.Publish(ctx, post, account)
	case models.PlatformTiktok:
		pubErr = s.tt.Publish(ctx, post, account)
	}

	history := models.PostingHistory{
		UserID:    userID,
		AccountID: account.ID,
		Platform:  platform,
	}
	if pubErr != nil {
		history.ErrorMessage = pubErr.Error()
	}
	if _, err := s.ph.Create(ctx, &history); err != nil {
		slog.Info("error saving posting history", "error", err.Error())
	}

	return pubErr
}

func (s *postService) storeVideo(ctx context.Context, userID int64, video *multipart.FileHeader) (*int64, error) {
	if video == nil {
		return nil, nil
	}

	f, err := video.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening video: %w", err)
	}
	defer f.Close()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("error reading video: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return nil, errors.New("unsupported file type")
	}
	if fileType.Extension != "mp4" && fileType.Extension != "mov" {
		return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	fileURL, err := s.uploader.Upload(ctx, key, fileBytes, fileType.MIME.Value)
	if err != nil {
		return nil, fmt.Errorf("error uploading video: %w", err)
	}

	asset := models.MediaAsset{
		UserID:   userID,
		FileName: key,
		FileType: fileType.MIME.Value,
		FileSize: int64(len(fileBytes)),
		FileURL:  fileURL,
	}
	assetID, err := s.ma.Create(ctx, &asset)
	if err != nil {
		return nil, fmt.Errorf("error saving media asset: %w", err)
	}
	return &assetID, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	posts, err := s.pr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *postService) ListByPlatform(ctx context.Context, userID int64, platform models.Platform) ([]*models.ScheduledPost, error) {
	if !platform.Valid() {
		return nil, models.ErrInvalidPlatform
	}
	posts, err := s.pr.ListByPlatform(ctx, userID, platform)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

// Remove deletes a post regardless of its status.
func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	isOwner, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		return ErrNotFound
	}
	return s.pr.Remove(ctx, postID)
}

func (s *postService) History(ctx context.Context, userID int64) ([]*models.PostingHistory, error) {
	history, err := s.ph.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posting history: %w", err)
	}
	return history, nil
}
