package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/transfer"
)

type postServiceFixture struct {
	svc PostService
	sa  *fakeAccountRepo
	pr  *fakePostRepo
	ph  *fakeHistoryRepo
	tg  *fakeTelegram
}

func newPostServiceFixture() *postServiceFixture {
	sa := newFakeAccountRepo()
	pr := newFakePostRepo()
	ph := &fakeHistoryRepo{}
	tg := &fakeTelegram{}
	svc := NewPostService(pr, sa, newFakeAssetRepo(), ph, &fakeUploader{}, tg, &fakeInstagram{}, &fakeTiktok{})
	return &postServiceFixture{svc: svc, sa: sa, pr: pr, ph: ph, tg: tg}
}

func (f *postServiceFixture) connect(t *testing.T, userID int64, platform models.Platform) {
	t.Helper()
	_, err := f.sa.Replace(context.Background(), &models.SocialAccount{
		UserID:      userID,
		Platform:    platform,
		AccessToken: "enc",
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func TestScheduleInvalidPlatform(t *testing.T) {
	f := newPostServiceFixture()

	_, err := f.svc.Schedule(context.Background(), 7, &transfer.SchedulePostRequest{
		Platform: "myspace", Text: "hi", ScheduledFor: time.Now().Format(time.RFC3339),
	}, nil)
	if !errors.Is(err, models.ErrInvalidPlatform) {
		t.Fatalf("expected ErrInvalidPlatform, got %v", err)
	}
}

func TestScheduleMissingText(t *testing.T) {
	f := newPostServiceFixture()

	_, err := f.svc.Schedule(context.Background(), 7, &transfer.SchedulePostRequest{
		Platform: "telegram", ScheduledFor: time.Now().Format(time.RFC3339),
	}, nil)
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestScheduleBadTimestamp(t *testing.T) {
	f := newPostServiceFixture()
	f.connect(t, 7, models.PlatformTelegram)

	_, err := f.svc.Schedule(context.Background(), 7, &transfer.SchedulePostRequest{
		Platform: "telegram", Text: "hi", ScheduledFor: "tomorrow at noon",
	}, nil)
	if err == nil {
		t.Fatal("expected an error for a non RFC3339 timestamp")
	}
}

func TestScheduleRequiresConnectedAccount(t *testing.T) {
	f := newPostServiceFixture()

	_, err := f.svc.Schedule(context.Background(), 7, &transfer.SchedulePostRequest{
		Platform: "telegram", Text: "hi", ScheduledFor: time.Now().Format(time.RFC3339),
	}, nil)
	if !errors.Is(err, ErrAccountNotConnected) {
		t.Fatalf("expected ErrAccountNotConnected, got %v", err)
	}
	if len(f.pr.posts) != 0 {
		t.Errorf("no post should be created, found %d", len(f.pr.posts))
	}
}

func TestSchedule(t *testing.T) {
	f := newPostServiceFixture()
	f.connect(t, 7, models.PlatformTelegram)

	when := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
	post, err := f.svc.Schedule(context.Background(), 7, &transfer.SchedulePostRequest{
		Platform:     "telegram",
		Text:         "new drop",
		ScheduledFor: when.Format(time.RFC3339),
	}, nil)
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if post.Status != models.PostStatusPending {
		t.Errorf("status = %q, want pending", post.Status)
	}
	if !post.ScheduledFor.Equal(when) {
		t.Errorf("scheduledFor = %v, want %v", post.ScheduledFor, when)
	}
	if post.AssetID != nil {
		t.Error("no video was attached, asset id should be nil")
	}

	stored, _ := f.pr.GetByID(context.Background(), post.ID)
	if stored == nil || stored.Caption != "new drop" {
		t.Errorf("stored post = %+v", stored)
	}
}

func TestPublishNowRecordsHistory(t *testing.T) {
	f := newPostServiceFixture()
	f.connect(t, 7, models.PlatformTelegram)

	if err := f.svc.PublishNow(context.Background(), 7, "telegram", "right now", nil); err != nil {
		t.Fatalf("publish now failed: %v", err)
	}
	if f.tg.publishCalls != 1 {
		t.Errorf("telegram publish calls = %d, want 1", f.tg.publishCalls)
	}
	if len(f.ph.records) != 1 {
		t.Fatalf("history records = %d, want 1", len(f.ph.records))
	}
	if f.ph.records[0].ErrorMessage != "" {
		t.Errorf("successful publish must not record an error, got %q", f.ph.records[0].ErrorMessage)
	}
}

func TestPublishNowFailureRecordsHistory(t *testing.T) {
	f := newPostServiceFixture()
	f.connect(t, 7, models.PlatformTelegram)
	f.tg.publishErr = errors.New("chat not found")

	err := f.svc.PublishNow(context.Background(), 7, "telegram", "right now", nil)
	if err == nil {
		t.Fatal("expected the publish error to propagate")
	}
	if len(f.ph.records) != 1 {
		t.Fatalf("history records = %d, want 1", len(f.ph.records))
	}
	if f.ph.records[0].ErrorMessage != "chat not found" {
		t.Errorf("history error = %q", f.ph.records[0].ErrorMessage)
	}
}

func TestRemovePost(t *testing.T) {
	f := newPostServiceFixture()
	ctx := context.Background()

	id, _ := f.pr.Create(ctx, &models.ScheduledPost{
		UserID: 7, Platform: models.PlatformTelegram, Caption: "bye", ScheduledFor: time.Now(),
	})

	if err := f.svc.Remove(ctx, 9, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("another user's delete should be ErrNotFound, got %v", err)
	}
	if err := f.svc.Remove(ctx, 7, id); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if p, _ := f.pr.GetByID(ctx, id); p != nil {
		t.Error("post should be gone")
	}
}
