package queue

import (
	"github.com/vidscribe/social-api/internal/repository"
	"github.com/vidscribe/social-api/internal/service"
)

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}

// Queue executes publish tasks: it resolves the post and its owning
// account, dispatches to the platform adapter and commits the resulting
// status transition.
type Queue struct {
	pr repository.PostRepository
	sa repository.SocialAccountRepository
	ph repository.PostingHistoryRepository
	tg service.TelegramService
	ig service.InstagramService
	tt service.TiktokService
}

func NewQueue(
	pr repository.PostRepository,
	sa repository.SocialAccountRepository,
	ph repository.PostingHistoryRepository,
	tg service.TelegramService,
	ig service.InstagramService,
	tt service.TiktokService) *Queue {
	return &Queue{
		pr: pr,
		sa: sa,
		ph: ph,
		tg: tg,
		ig: ig,
		tt: tt,
	}
}
