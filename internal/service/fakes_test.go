package service

import (
	"context"
	"time"

	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/transfer"
)

// In-memory fakes shared by the service tests.

type fakeAccountRepo struct {
	accounts map[int64]*models.SocialAccount
	nextID   int64
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[int64]*models.SocialAccount)}
}

func (r *fakeAccountRepo) Replace(ctx context.Context, sa *models.SocialAccount) (int64, error) {
	for id, existing := range r.accounts {
		if existing.UserID == sa.UserID && existing.Platform == sa.Platform {
			delete(r.accounts, id)
		}
	}
	r.nextID++
	clone := *sa
	clone.ID = r.nextID
	r.accounts[clone.ID] = &clone
	return clone.ID, nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	if sa, ok := r.accounts[id]; ok {
		clone := *sa
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeAccountRepo) GetByPlatform(ctx context.Context, userID int64, platform models.Platform) (*models.SocialAccount, error) {
	for _, sa := range r.accounts {
		if sa.UserID == userID && sa.Platform == platform {
			clone := *sa
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	var out []*models.SocialAccount
	for _, sa := range r.accounts {
		if sa.UserID == userID {
			clone := *sa
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error) {
	var out []*models.SocialAccount
	for _, sa := range r.accounts {
		if sa.TokenExpiresAt != nil && sa.TokenExpiresAt.Before(finalTime) {
			clone := *sa
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) UpdateStats(ctx context.Context, id int64, stats models.SocialStats) error {
	if sa, ok := r.accounts[id]; ok {
		sa.Stats = stats
	}
	return nil
}

func (r *fakeAccountRepo) SetToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	if sa, ok := r.accounts[id]; ok {
		if accessToken != "" {
			sa.AccessToken = accessToken
		}
		if refreshToken != "" {
			sa.RefreshToken = refreshToken
		}
		sa.TokenExpiresAt = &expiresAt
	}
	return nil
}

func (r *fakeAccountRepo) Remove(ctx context.Context, id int64) error {
	delete(r.accounts, id)
	return nil
}

type fakePostRepo struct {
	posts  map[int64]*models.ScheduledPost
	nextID int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*models.ScheduledPost)}
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.ScheduledPost) (int64, error) {
	r.nextID++
	clone := *post
	clone.ID = r.nextID
	clone.Status = models.PostStatusPending
	r.posts[clone.ID] = &clone
	return clone.ID, nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	if p, ok := r.posts[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (r *fakePostRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	var out []*models.ScheduledPost
	for _, p := range r.posts {
		if p.UserID == userID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakePostRepo) ListByPlatform(ctx context.Context, userID int64, platform models.Platform) ([]*models.ScheduledPost, error) {
	var out []*models.ScheduledPost
	for _, p := range r.posts {
		if p.UserID == userID && p.Platform == platform {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakePostRepo) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error) {
	var out []*models.ScheduledPost
	for _, p := range r.posts {
		if p.Status == models.PostStatusPending && !p.ScheduledFor.After(now) && p.EnqueuedAt == nil {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakePostRepo) Claim(ctx context.Context, id int64, now time.Time) (bool, error) {
	p, ok := r.posts[id]
	if !ok || p.Status != models.PostStatusPending || p.EnqueuedAt != nil {
		return false, nil
	}
	t := now
	p.EnqueuedAt = &t
	p.LastCheck = &t
	return true, nil
}

func (r *fakePostRepo) ResetClaim(ctx context.Context, id int64) error {
	if p, ok := r.posts[id]; ok && p.Status == models.PostStatusPending {
		p.EnqueuedAt = nil
	}
	return nil
}

func (r *fakePostRepo) MarkPublished(ctx context.Context, id int64, now time.Time) error {
	if p, ok := r.posts[id]; ok && p.Status == models.PostStatusPending {
		t := now
		p.Status = models.PostStatusPublished
		p.PublishedAt = &t
		p.LastCheck = &t
	}
	return nil
}

func (r *fakePostRepo) MarkFailed(ctx context.Context, id int64, errorMessage string, now time.Time) error {
	if p, ok := r.posts[id]; ok && p.Status == models.PostStatusPending {
		t := now
		p.Status = models.PostStatusFailed
		p.ErrorMessage = errorMessage
		p.LastCheck = &t
	}
	return nil
}

func (r *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	p, ok := r.posts[postID]
	return ok && p.UserID == userID, nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id int64) error {
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) RemoveByPlatform(ctx context.Context, userID int64, platform models.Platform) error {
	for id, p := range r.posts {
		if p.UserID == userID && p.Platform == platform {
			delete(r.posts, id)
		}
	}
	return nil
}

type fakeAssetRepo struct {
	assets map[int64]*models.MediaAsset
	nextID int64
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: make(map[int64]*models.MediaAsset)}
}

func (r *fakeAssetRepo) Create(ctx context.Context, ma *models.MediaAsset) (int64, error) {
	r.nextID++
	clone := *ma
	clone.ID = r.nextID
	r.assets[clone.ID] = &clone
	return clone.ID, nil
}

func (r *fakeAssetRepo) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	if ma, ok := r.assets[id]; ok {
		clone := *ma
		return &clone, nil
	}
	return nil, nil
}

type fakeHistoryRepo struct {
	records []*models.PostingHistory
}

func (r *fakeHistoryRepo) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	clone := *ph
	clone.ID = int64(len(r.records) + 1)
	r.records = append(r.records, &clone)
	return clone.ID, nil
}

func (r *fakeHistoryRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.PostingHistory, error) {
	var out []*models.PostingHistory
	for _, ph := range r.records {
		if ph.UserID == userID {
			out = append(out, ph)
		}
	}
	return out, nil
}

// Fake platform services.

type fakeTelegram struct {
	getMeErr     error
	membersCount int64
	membersErr   error
	publishErr   error
	publishCalls int
	sendCalls    []string // chat ids passed to SendVideo
}

func (f *fakeTelegram) GetMe(ctx context.Context, botToken string) (*transfer.TelegramUser, error) {
	if f.getMeErr != nil {
		return nil, f.getMeErr
	}
	return &transfer.TelegramUser{ID: 42, IsBot: true, FirstName: "Demo", Username: "demo_bot"}, nil
}

func (f *fakeTelegram) ChatMembersCount(ctx context.Context, botToken, chatID string) (int64, error) {
	if f.membersErr != nil {
		return 0, f.membersErr
	}
	return f.membersCount, nil
}

func (f *fakeTelegram) SendVideo(ctx context.Context, botToken, chatID, caption, videoURL string) error {
	f.sendCalls = append(f.sendCalls, chatID)
	return f.publishErr
}

func (f *fakeTelegram) Publish(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error {
	f.publishCalls++
	return f.publishErr
}

type fakeInstagram struct {
	info       *transfer.InstagramUserInfo
	infoErr    error
	publishErr error
}

func (f *fakeInstagram) UserInfo(ctx context.Context, accessToken string) (*transfer.InstagramUserInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.info, nil
}

func (f *fakeInstagram) Publish(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error {
	return f.publishErr
}

type fakeTiktok struct {
	user       *transfer.TiktokUser
	userErr    error
	publishErr error
	refreshed  int
}

func (f *fakeTiktok) UserInfo(ctx context.Context, accessToken string) (*transfer.TiktokUser, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	if f.user == nil {
		return &transfer.TiktokUser{OpenID: "open-1", Username: "tt_user", DisplayName: "TT User"}, nil
	}
	return f.user, nil
}

func (f *fakeTiktok) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	f.refreshed++
	return nil
}

func (f *fakeTiktok) Publish(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error {
	return f.publishErr
}

type fakeUploader struct {
	uploads int
}

func (f *fakeUploader) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	f.uploads++
	return "https://assets.example.com/" + key, nil
}
