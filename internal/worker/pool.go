package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAudit   = "jobs:audit"
	QueueReceipt = "jobs:receipt"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes one dequeued job payload.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage)
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP. Enqueueing is fire-and-forget:
// a Redis failure is logged and never surfaces to the request that caused it.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAudit pushes an audit trail job to Redis.
func (d *Dispatcher) EnqueueAudit(ctx context.Context, payload AuditJobPayload) {
	d.enqueue(ctx, QueueAudit, "audit", payload)
}

// EnqueueReceipt pushes a receipt generation job to Redis.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, saleID uuid.UUID, email string) {
	d.enqueue(ctx, QueueReceipt, "receipt", ReceiptJobPayload{
		SaleID:  saleID.String(),
		ToEmail: email,
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Str("type", jobType).Err(err).Msg("dispatcher: marshal payload")
		return
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		log.Error().Str("type", jobType).Err(err).Msg("dispatcher: marshal job")
		return
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("dispatcher: enqueue failed")
	}
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Handler) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers map[string]Handler) {
	queues := []string{QueueAudit, QueueReceipt}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers map[string]Handler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	h, ok := handlers[job.Type]
	if !ok {
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		return
	}
	h.Process(ctx, job.Payload)
}
