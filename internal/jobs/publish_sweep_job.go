package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vidscribe/social-api/internal/queue"
	"github.com/vidscribe/social-api/internal/repository"
)

// PublishSweepJob is the scheduler loop: every tick it scans for pending
// posts whose publish time has arrived, claims each one and hands it to the
// task queue. The claim is committed before the publish task is issued, so
// no post can be published twice even if ticks were to overlap.
type PublishSweepJob struct {
	pr repository.PostRepository
	q  queue.Enqueuer
	mu sync.Mutex
}

func NewPublishSweepJob(pr repository.PostRepository, q queue.Enqueuer) *PublishSweepJob {
	return &PublishSweepJob{pr: pr, q: q}
}

// Run executes one scan tick. A tick still in flight makes the next one a
// no-op instead of piling up.
func (j *PublishSweepJob) Run() {
	if !j.mu.TryLock() {
		slog.Info("previous sweep still running, skipping tick")
		return
	}
	defer j.mu.Unlock()

	ctx := context.Background()
	now := time.Now()

	posts, err := j.pr.ListDue(ctx, now)
	if err != nil {
		slog.Info("error listing due posts", "error", err.Error())
		return
	}

	for _, post := range posts {
		claimed, err := j.pr.Claim(ctx, post.ID, now)
		if err != nil {
			slog.Info("error claiming post", "post_id", post.ID, "error", err.Error())
			continue
		}
		if !claimed {
			continue
		}

		if err := j.q.EnqueuePublish(queue.PublishPostPayload{PostID: post.ID}, 0); err != nil {
			slog.Info("error enqueueing publish task", "post_id", post.ID, "error", err.Error())
			if err := j.pr.ResetClaim(ctx, post.ID); err != nil {
				slog.Info("error resetting claim", "post_id", post.ID, "error", err.Error())
			}
		}
	}
}
