package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/repository"
	"github.com/vidscribe/social-api/internal/service"
)

// TokenRefreshJob renews platform tokens that are close to expiring. Only
// tiktok issues expiring tokens today; telegram bot tokens do not expire
// and instagram accounts cannot be connected yet.
type TokenRefreshJob struct {
	sa repository.SocialAccountRepository
	tt service.TiktokService
}

func NewTokenRefreshJob(sa repository.SocialAccountRepository, tt service.TiktokService) *TokenRefreshJob {
	return &TokenRefreshJob{sa: sa, tt: tt}
}

func (j *TokenRefreshJob) Run() {
	ctx := context.Background()

	currentTime := time.Now()
	windowEnd := currentTime.Add(30 * time.Minute)

	accounts, err := j.sa.ListExpiring(ctx, currentTime, windowEnd)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 10)

	for _, acc := range accounts {
		if acc.Platform != models.PlatformTiktok {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.tt.RefreshToken(ctx, acc); err != nil {
				slog.Info("unable to refresh tiktok token", "account_id", acc.ID, "error", err.Error())
			}
		}(acc)
	}

	wg.Wait()
}
