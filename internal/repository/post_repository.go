package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/vidscribe/social-api/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.ScheduledPost) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error)
	ListByPlatform(ctx context.Context, userID int64, platform models.Platform) ([]*models.ScheduledPost, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error)
	Claim(ctx context.Context, id int64, now time.Time) (bool, error)
	ResetClaim(ctx context.Context, id int64) error
	MarkPublished(ctx context.Context, id int64, now time.Time) error
	MarkFailed(ctx context.Context, id int64, errorMessage string, now time.Time) error
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
	RemoveByPlatform(ctx context.Context, userID int64, platform models.Platform) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, platform, caption, asset_id, scheduled_for, status,
	error_message, last_check, enqueued_at, published_at, created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, post *models.ScheduledPost) (int64, error) {
	query := `
		INSERT INTO scheduled_posts (user_id, platform, caption, asset_id, scheduled_for, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var assetID sql.NullInt64
	if post.AssetID != nil {
		assetID = sql.NullInt64{Int64: *post.AssetID, Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		post.UserID, post.Platform, post.Caption, assetID, post.ScheduledFor, models.PostStatusPending,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func scanPost(scan func(dest ...interface{}) error) (*models.ScheduledPost, error) {
	var post models.ScheduledPost
	var assetID sql.NullInt64
	var errorMessage sql.NullString
	var lastCheck, enqueuedAt, publishedAt sql.NullTime

	err := scan(&post.ID, &post.UserID, &post.Platform, &post.Caption, &assetID,
		&post.ScheduledFor, &post.Status, &errorMessage, &lastCheck, &enqueuedAt,
		&publishedAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if assetID.Valid {
		post.AssetID = &assetID.Int64
	}
	post.ErrorMessage = errorMessage.String
	if lastCheck.Valid {
		post.LastCheck = &lastCheck.Time
	}
	if enqueuedAt.Valid {
		post.EnqueuedAt = &enqueuedAt.Time
	}
	if publishedAt.Valid {
		post.PublishedAt = &publishedAt.Time
	}
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := scanPost(rows.Scan)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts WHERE user_id = $1 ORDER BY scheduled_for`
	return r.list(ctx, query, userID)
}

func (r *postRepository) ListByPlatform(ctx context.Context, userID int64, platform models.Platform) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts WHERE user_id = $1 AND platform = $2 ORDER BY scheduled_for`
	return r.list(ctx, query, userID, platform)
}

// ListDue returns pending posts whose publish time has arrived and that no
// sweep has claimed yet.
func (r *postRepository) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + `
		FROM scheduled_posts
		WHERE status = $1 AND scheduled_for <= $2 AND enqueued_at IS NULL
		ORDER BY scheduled_for`
	return r.list(ctx, query, models.PostStatusPending, now)
}

// Claim marks a post as taken by the scheduler before its publish task is
// issued. The WHERE clause makes the claim atomic: a second concurrent sweep
// sees zero rows affected and skips the post.
func (r *postRepository) Claim(ctx context.Context, id int64, now time.Time) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET enqueued_at = $2,
			last_check = $2,
			updated_at = $2
		WHERE id = $1 AND status = $3 AND enqueued_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, now, models.PostStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

// ResetClaim returns a claimed post to the pool, used when handing the post
// to the task queue failed after the claim succeeded.
func (r *postRepository) ResetClaim(ctx context.Context, id int64) error {
	query := `UPDATE scheduled_posts SET enqueued_at = NULL WHERE id = $1 AND status = $2`
	_, err := r.db.ExecContext(ctx, query, id, models.PostStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkPublished(ctx context.Context, id int64, now time.Time) error {
	query := `
		UPDATE scheduled_posts
		SET status = $2,
			published_at = $3,
			last_check = $3,
			updated_at = $3
		WHERE id = $1 AND status = $4
	`
	_, err := r.db.ExecContext(ctx, query, id, models.PostStatusPublished, now, models.PostStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkFailed(ctx context.Context, id int64, errorMessage string, now time.Time) error {
	query := `
		UPDATE scheduled_posts
		SET status = $2,
			error_message = $3,
			last_check = $4,
			updated_at = $4
		WHERE id = $1 AND status = $5
	`
	_, err := r.db.ExecContext(ctx, query, id, models.PostStatusFailed, errorMessage, now, models.PostStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := `SELECT 1 FROM scheduled_posts WHERE id = $1 AND user_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM scheduled_posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) RemoveByPlatform(ctx context.Context, userID int64, platform models.Platform) error {
	query := `DELETE FROM scheduled_posts WHERE user_id = $1 AND platform = $2`
	_, err := r.db.ExecContext(ctx, query, userID, platform)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
