package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"dealroom_backend/internal/logger"
	"dealroom_backend/internal/models"
	"dealroom_backend/internal/settlement"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const TypeSettlementNotify = "settlement:notify"

type SettlementNotifyPayload struct {
	DealID  string `json:"deal_id"`
	Outcome string `json:"outcome"`
}

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// NewClient builds the task-enqueue client off the shared redis connection
// options.
func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// Dispatcher enqueues settlement notifications. Implements
// services.SettlementDispatcher.
type Dispatcher struct {
	client *asynq.Client
}

func NewDispatcher(client *asynq.Client) *Dispatcher {
	return &Dispatcher{client: client}
}

func (d *Dispatcher) DispatchResolution(dealID string, outcome models.EscrowDecision) error {
	payload, err := json.Marshal(SettlementNotifyPayload{
		DealID:  dealID,
		Outcome: string(outcome),
	})
	if err != nil {
		return err
	}

	_, err = d.client.Enqueue(asynq.NewTask(TypeSettlementNotify, payload))
	return err
}

// TaskProcessor holds the dependencies task handlers need.
type TaskProcessor struct {
	notifier settlement.Notifier
}

func NewTaskProcessor(notifier settlement.Notifier) *TaskProcessor {
	return &TaskProcessor{notifier: notifier}
}

func (p *TaskProcessor) HandleSettlementNotify(ctx context.Context, task *asynq.Task) error {
	var payload SettlementNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("bad settlement payload: %w", err)
	}

	if err := p.notifier.NotifyResolution(ctx, payload.DealID, payload.Outcome); err != nil {
		return err
	}
	logger.Info("settlement notified", "deal_id", payload.DealID, "outcome", payload.Outcome)
	return nil
}

// NewServer builds the background worker that drains the task queue.
func NewServer(rdb *redis.Client) *asynq.Server {
	return asynq.NewServer(redisOpt(rdb), asynq.Config{
		Concurrency: 5,
	})
}

// Run starts the worker loop. Blocks until Shutdown.
func Run(srv *asynq.Server, processor *TaskProcessor) error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSettlementNotify, processor.HandleSettlementNotify)
	return srv.Run(mux)
}
