package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"geo_feedback/pkg/application/modules"
	"geo_feedback/pkg/contextx"
	"geo_feedback/pkg/logx"
)

const (
	TypeInvalidateNearby = "cache:invalidate-nearby"
	DefaultQueue         = "default"

	maxRetry = 3
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type invalidateNearbyPayload struct {
	MarketID int64 `json:"market_id"`
}

func NewInvalidateNearbyTask(marketID int64) (*asynq.Task, error) {
	payload, err := jsoniter.Marshal(invalidateNearbyPayload{MarketID: marketID})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	return asynq.NewTask(TypeInvalidateNearby, payload, asynq.MaxRetry(maxRetry)), nil
}

type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Client ставит инвалидацию кеша поиска в очередь вместо синхронного вызова.
type Client struct {
	enqueuer Enqueuer
	queue    string
}

func NewClient(enqueuer Enqueuer) *Client {
	return &Client{enqueuer: enqueuer, queue: DefaultQueue}
}

func (c *Client) WithQueue(queue string) *Client {
	c.queue = queue
	return c
}

func (c *Client) InvalidateNearby(ctx context.Context, marketID int64) error {
	task, err := NewInvalidateNearbyTask(marketID)
	if err != nil {
		return err
	}

	info, err := c.enqueuer.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeInvalidateNearby, err)
	}

	logger(ctx).Debug("task enqueued",
		"task-id", info.ID,
		"task-type", TypeInvalidateNearby,
		logx.FieldMarketID, marketID,
	)

	return nil
}

type Invalidator interface {
	InvalidateNearby(ctx context.Context, marketID int64) error
}

// Handler выполняет задачи инвалидации на стороне asynq-сервера.
type Handler struct {
	invalidator Invalidator
}

func NewHandler(invalidator Invalidator) *Handler {
	return &Handler{invalidator: invalidator}
}

func (h *Handler) HandleInvalidateNearby(ctx context.Context, task *asynq.Task) error {
	var payload invalidateNearbyPayload
	if err := jsoniter.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.invalidator.InvalidateNearby(ctx, payload.MarketID); err != nil {
		return fmt.Errorf("invalidate nearby: %w", err)
	}

	return nil
}

func (h *Handler) Handlers() []modules.AsynqHandler {
	return []modules.AsynqHandler{
		{Pattern: TypeInvalidateNearby, Handle: h.HandleInvalidateNearby},
	}
}
