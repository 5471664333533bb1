// Package queue wraps asynq for background task submission and
// processing. The API handlers enqueue work; a separate worker binary
// drains it, so a slow SES call never holds up a request.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/printdesk/pd-backend/internal/config"
	"github.com/printdesk/pd-backend/internal/logging"
	"github.com/hibiken/asynq"
)

const (
	TypeEmailDelivery = "email:delivery"
)

// EmailDeliveryPayload carries a fully rendered message; the worker
// only delivers, it never templates.
type EmailDeliveryPayload struct {
	To      string
	Subject string
	Body    string
}

// deliveryOpts holds per-type enqueue options. Email gets a retry
// budget because SES throttles under burst.
var deliveryOpts = map[string][]asynq.Option{
	TypeEmailDelivery: {
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	},
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// TaskQueue is the producer side.
type TaskQueue struct {
	client *asynq.Client
}

func NewQueue(cfg *config.RedisConfig) (*TaskQueue, error) {
	client := asynq.NewClient(redisOpt(cfg))

	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("ping Redis queue: %w", err)
	}

	logging.Info("Connected to Redis task queue")

	return &TaskQueue{client: client}, nil
}

func (q *TaskQueue) Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}

	info, err := q.client.Enqueue(asynq.NewTask(taskType, payload), deliveryOpts[taskType]...)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", taskType, err)
	}

	return info, nil
}

func (q *TaskQueue) Close() error {
	return q.client.Close()
}

// EmailService is the delivery backend the worker hands rendered
// messages to.
type EmailService interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Worker is the consumer side, run by cmd/worker.
type Worker struct {
	server       *asynq.Server
	emailService EmailService
}

func NewWorker(cfg *config.RedisConfig, emailService EmailService) *Worker {
	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logging.Error("process task failed", "type", task.Type(), "payload", string(task.Payload()), "error", err)
			}),
		},
	)

	return &Worker{
		server:       server,
		emailService: emailService,
	}
}

func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, w.HandleEmailDelivery)

	return w.server.Start(mux)
}

func (w *Worker) Close() {
	if w.server != nil {
		w.server.Shutdown()
	}
}

func (w *Worker) HandleEmailDelivery(ctx context.Context, t *asynq.Task) error {
	var p EmailDeliveryPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A payload that never parsed will never parse; drop it.
		return fmt.Errorf("decode email payload: %v: %w", err, asynq.SkipRetry)
	}

	logging.Info("Sending email", "to", p.To, "subject", p.Subject)
	if err := w.emailService.SendEmail(ctx, p.To, p.Subject, p.Body); err != nil {
		return fmt.Errorf("send queued email: %w", err)
	}

	return nil
}
