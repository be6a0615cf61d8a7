package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/service"
)

// HandlePublishPostTask is the asynq handler for publish tasks. It always
// returns nil: a failed publish is recorded on the post itself and must not
// be retried by the queue (a failed post needs a new scheduling action).
func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		slog.Error("malformed publish task payload", "error", err.Error())
		return nil
	}

	if err := q.PublishPost(ctx, payload.PostID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrPostNotPending):
			// The post was deleted (account disconnect) or already
			// reached a terminal status; nothing left to do.
		default:
			slog.Info("publish attempt failed", "post_id", payload.PostID, "error", err.Error())
		}
	}
	return nil
}

// PublishPost performs one publish attempt for a pending post and commits
// the resulting transition. pending -> published on success, pending ->
// failed on error; terminal statuses are never touched again.
func (q *Queue) PublishPost(ctx context.Context, postID int64) error {
	post, err := q.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return service.ErrNotFound
	}
	if post.Status != models.PostStatusPending {
		return service.ErrPostNotPending
	}

	now := time.Now()

	account, err := q.sa.GetByPlatform(ctx, post.UserID, post.Platform)
	if err != nil {
		return err
	}
	if account == nil {
		// The account vanished between scheduling and publishing.
		if err := q.pr.MarkFailed(ctx, post.ID, "account is not connected", now); err != nil {
			slog.Info(err.Error())
		}
		return service.ErrAccountNotConnected
	}

	var pubErr error
	switch post.Platform {
	case models.PlatformTelegram:
		pubErr = q.tg.Publish(ctx, post, account)
	case models.PlatformInstagram:
		pubErr = q.ig.Publish(ctx, post, account)
	case models.PlatformTiktok:
		pubErr = q.tt.Publish(ctx, post, account)
	default:
		pubErr = models.ErrInvalidPlatform
	}

	now = time.Now()
	history := models.PostingHistory{
		UserID:    post.UserID,
		PostID:    post.ID,
		AccountID: account.ID,
		Platform:  post.Platform,
	}

	if pubErr != nil {
		history.ErrorMessage = pubErr.Error()
		if err := q.pr.MarkFailed(ctx, post.ID, pubErr.Error(), now); err != nil {
			slog.Info("error marking post failed", "post_id", post.ID, "error", err.Error())
		}
	} else {
		if err := q.pr.MarkPublished(ctx, post.ID, now); err != nil {
			// The platform accepted the post but the local record did
			// not update; operators reconcile this by hand, no retry.
			slog.Error("published on platform but failed to record status", "post_id", post.ID, "error", err.Error())
		}
	}

	if _, err := q.ph.Create(ctx, &history); err != nil {
		slog.Info("error saving posting history", "post_id", post.ID, "error", err.Error())
	}

	return pubErr
}
