package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	config "github.com/vidscribe/social-api/configs"
	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/queue"
	"github.com/vidscribe/social-api/internal/repository"
	"github.com/vidscribe/social-api/internal/service"
	"github.com/vidscribe/social-api/pkg/utils"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type hPostRepo struct {
	repository.PostRepository
	posts map[int64]*models.ScheduledPost
}

func (r *hPostRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	if p, ok := r.posts[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (r *hPostRepo) MarkPublished(ctx context.Context, id int64, now time.Time) error {
	if p, ok := r.posts[id]; ok && p.Status == models.PostStatusPending {
		p.Status = models.PostStatusPublished
	}
	return nil
}

func (r *hPostRepo) MarkFailed(ctx context.Context, id int64, errorMessage string, now time.Time) error {
	if p, ok := r.posts[id]; ok && p.Status == models.PostStatusPending {
		p.Status = models.PostStatusFailed
		p.ErrorMessage = errorMessage
	}
	return nil
}

type hAccountRepo struct {
	repository.SocialAccountRepository
	account *models.SocialAccount
}

func (r *hAccountRepo) GetByPlatform(ctx context.Context, userID int64, platform models.Platform) (*models.SocialAccount, error) {
	if r.account != nil && r.account.UserID == userID && r.account.Platform == platform {
		return r.account, nil
	}
	return nil, nil
}

type hHistoryRepo struct {
	records []*models.PostingHistory
}

func (r *hHistoryRepo) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	r.records = append(r.records, ph)
	return int64(len(r.records)), nil
}

func (r *hHistoryRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.PostingHistory, error) {
	return r.records, nil
}

type hTelegram struct {
	service.TelegramService
	err error
}

func (s *hTelegram) Publish(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error {
	return s.err
}

type hInstagram struct{ service.InstagramService }

func (s *hInstagram) Publish(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error {
	return nil
}

type hTiktok struct{ service.TiktokService }

func (s *hTiktok) Publish(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error {
	return nil
}

func newPublishApp(pr *hPostRepo, publishErr error) *fiber.App {
	cfg := config.Config{SecretKey: testSecretKey}
	sa := &hAccountRepo{account: &models.SocialAccount{
		ID:       3,
		UserID:   7,
		Platform: models.PlatformTelegram,
		Metadata: models.AccountMetadata{Telegram: &models.TelegramMetadata{ChatID: "@demo"}},
	}}
	q := queue.NewQueue(pr, sa, &hHistoryRepo{}, &hTelegram{err: publishErr}, &hInstagram{}, &hTiktok{})
	publish := NewPublishHandler(cfg, pr, q)

	app := fiber.New()
	app.Use("/social-publish", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST,OPTIONS",
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
	}))
	app.Post("/social-publish", publish.Publish)
	return app
}

func pendingTelegramPost(id, userID int64) *models.ScheduledPost {
	return &models.ScheduledPost{
		ID:           id,
		UserID:       userID,
		Platform:     models.PlatformTelegram,
		Caption:      "stored post",
		ScheduledFor: time.Now().Add(-time.Minute),
		Status:       models.PostStatusPending,
	}
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := utils.GenerateToken(testSecretKey, userID, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func publishRequest(t *testing.T, token string, postID int64) *http.Request {
	t.Helper()
	body, _ := json.Marshal(map[string]int64{"postId": postID})
	req := httptest.NewRequest(http.MethodPost, "/social-publish", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestPublishPreflight(t *testing.T) {
	app := newPublishApp(&hPostRepo{posts: map[int64]*models.ScheduledPost{}}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/social-publish", nil)
	req.Header.Set("Origin", "https://app.vidscribe.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("preflight request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent && resp.StatusCode != fiber.StatusOK {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Headers"); !strings.Contains(strings.ToLower(got), "authorization") {
		t.Errorf("allow-headers = %q, must include authorization", got)
	}
}

func TestPublishRequiresToken(t *testing.T) {
	app := newPublishApp(&hPostRepo{posts: map[int64]*models.ScheduledPost{}}, nil)

	resp, err := app.Test(publishRequest(t, "", 1))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	resp, err = app.Test(publishRequest(t, "not-a-jwt", 1))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", resp.StatusCode)
	}
}

func TestPublishRejectsForeignPost(t *testing.T) {
	pr := &hPostRepo{posts: map[int64]*models.ScheduledPost{1: pendingTelegramPost(1, 99)}}
	app := newPublishApp(pr, nil)

	resp, err := app.Test(publishRequest(t, bearerToken(t, "7"), 1))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if pr.posts[1].Status != models.PostStatusPending {
		t.Error("foreign post must stay untouched")
	}
}

func TestPublishRequiresPostID(t *testing.T) {
	app := newPublishApp(&hPostRepo{posts: map[int64]*models.ScheduledPost{}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/social-publish", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "7"))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPublishUnknownPost(t *testing.T) {
	app := newPublishApp(&hPostRepo{posts: map[int64]*models.ScheduledPost{}}, nil)

	resp, err := app.Test(publishRequest(t, bearerToken(t, "7"), 42))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestPublish(t *testing.T) {
	pr := &hPostRepo{posts: map[int64]*models.ScheduledPost{1: pendingTelegramPost(1, 7)}}
	app := newPublishApp(pr, nil)

	resp, err := app.Test(publishRequest(t, bearerToken(t, "7"), 1))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var body struct {
		Success bool `json:"success"`
		Result  struct {
			Platform string `json:"platform"`
			PostID   int64  `json:"postId"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	if !body.Success || body.Result.Platform != "telegram" || body.Result.PostID != 1 {
		t.Errorf("body = %s", raw)
	}
	if pr.posts[1].Status != models.PostStatusPublished {
		t.Errorf("status = %q, want published", pr.posts[1].Status)
	}
}
