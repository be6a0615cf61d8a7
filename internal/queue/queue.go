package queue

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer hands publish tasks to the task queue. The scheduler sweep
// depends on this interface rather than on asynq directly.
type Enqueuer interface {
	EnqueuePublish(payload PublishPostPayload, delay time.Duration) error
}

type Client struct {
	c *asynq.Client
}

func NewClient(c *asynq.Client) *Client {
	return &Client{c: c}
}

func (q *Client) EnqueuePublish(payload PublishPostPayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishPost, taskPayload)

	if _, err := q.c.Enqueue(task, asynq.ProcessIn(delay)); err != nil {
		return err
	}

	slog.Info("publish task enqueued", "post_id", payload.PostID)
	return nil
}
