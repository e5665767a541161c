package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"propostas/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEnvio = "jobs:envio_proposta"

	JobEnvio = "envio_proposta"

	// MaxTentativas is the number of attempts before a job goes to the DLQ.
	MaxTentativas = 3
)

// ErrPermanente marks a job failure that retrying cannot fix.
var ErrPermanente = errors.New("falha permanente")

// Fila is the subset of go-redis used by the queue, DLQ and retry schedule.
type Fila interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
	ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Processor handles the payload of one job type.
type Processor interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// WorkerHandlers maps job types to their processors.
type WorkerHandlers struct {
	Envio Processor
}

func (h *WorkerHandlers) para(jobType string) Processor {
	switch jobType {
	case JobEnvio:
		return h.Envio
	}
	return nil
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	fila Fila
}

func NewDispatcher(fila Fila) *Dispatcher {
	return &Dispatcher{fila: fila}
}

// EnqueueEnvio pushes a proposal delivery job and returns its id.
func (d *Dispatcher) EnqueueEnvio(ctx context.Context, payload EnvioPayload) (string, error) {
	return d.enqueue(ctx, QueueEnvio, JobEnvio, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	job := Job{ID: uuid.NewString(), Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	if err := d.fila.LPush(ctx, queue, encoded).Err(); err != nil {
		return "", err
	}
	return job.ID, nil
}

// FilaBloqueante is a Fila workers can block on.
type FilaBloqueante interface {
	Fila
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// esperaErroFila is how long a worker pauses after BRPOP fails for a reason
// other than an empty queue, e.g. Redis being unreachable.
var esperaErroFila = 2 * time.Second

// StartWorkerPool launches numWorkers goroutines consuming the queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, fila FilaBloqueante, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, fila, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, fila FilaBloqueante, handlers *WorkerHandlers, id int) {
	queues := []string{QueueEnvio}
	for {
		// Blocking pop: waits up to 5s then loops to check ctx
		result, err := fila.BRPop(ctx, 5*time.Second, queues...).Result()
		if ctx.Err() != nil {
			log.Info().Msgf("worker %d shutting down", id)
			return
		}
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			log.Warn().Err(err).Int("worker", id).Dur("espera", esperaErroFila).Msg("BRPOP failed, backing off")
			select {
			case <-ctx.Done():
			case <-time.After(esperaErroFila):
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		processJob(ctx, fila, handlers, result[0], result[1])
	}
}

// processJob runs one job. Transient failures are scheduled for retry with
// backoff; permanent ones and those past MaxTentativas go to the DLQ.
func processJob(ctx context.Context, fila Fila, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		// Kept as a JSON string: the raw bytes are not valid JSON.
		quoted, _ := json.Marshal(raw)
		SendToDLQ(ctx, fila, queue, Job{Payload: quoted}, "payload ilegível: "+err.Error())
		return
	}

	p := handlers.para(job.Type)
	if p == nil {
		SendToDLQ(ctx, fila, queue, job, "tipo de job sem handler")
		return
	}

	job.Attempts++
	err := p.Process(ctx, job.Payload)
	if err == nil {
		infra.JobsProcessados.WithLabelValues(queue, "ok").Inc()
		log.Info().Str("job_id", job.ID).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job done")
		return
	}

	if errors.Is(err, ErrPermanente) || job.Attempts >= MaxTentativas {
		infra.JobsProcessados.WithLabelValues(queue, "dlq").Inc()
		SendToDLQ(ctx, fila, queue, job, err.Error())
		return
	}

	infra.JobsProcessados.WithLabelValues(queue, "retry").Inc()
	log.Warn().Err(err).Str("job_id", job.ID).Int("attempt", job.Attempts).Msg("job failed, scheduling retry")
	if err := agendarRetry(ctx, fila, queue, job, time.Now()); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("retry scheduling failed")
		SendToDLQ(ctx, fila, queue, job, "retry não agendado: "+err.Error())
	}
}
