package worker

// retry_cron.go
// Failed jobs wait in a sorted set (score = unix time of the next attempt)
// and a ticker moves the due ones back to their queue. While the SMTP
// circuit breaker is open the tick is skipped.

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"propostas/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	RetryPrefix       = "retry:"
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 50
	retryBaseDelay    = 30 * time.Second
)

// backoff doubles the delay per attempt: 30s, 60s, 120s...
func backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return retryBaseDelay << (attempts - 1)
}

func agendarRetry(ctx context.Context, fila Fila, queue string, job Job, agora time.Time) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	quando := agora.Add(backoff(job.Attempts))
	return fila.ZAdd(ctx, RetryPrefix+queue, redis.Z{Score: float64(quando.Unix()), Member: data}).Err()
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	Fila   Fila
	CB     *infra.CircuitBreaker
	Queues []string
}

// StartRetryCron launches a background goroutine that ticks every 30s and
// re-enqueues due jobs. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case now := <-ticker.C:
				processRetries(ctx, cfg, now)
			}
		}
	}()
}

// processRetries returns how many jobs were moved back to their queues.
func processRetries(ctx context.Context, cfg RetryCronConfig, agora time.Time) int {
	// Don't feed jobs to a relay we know is down
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return 0
	}

	movidos := 0
	for _, queue := range cfg.Queues {
		key := RetryPrefix + queue
		due, err := cfg.Fila.ZRangeByScore(ctx, key, &redis.ZRangeBy{
			Min:   "-inf",
			Max:   strconv.FormatInt(agora.Unix(), 10),
			Count: retryBatchSize,
		}).Result()
		if err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("retry_cron: failed to read schedule")
			continue
		}
		for _, raw := range due {
			// ZRem first: only the worker that removed the member re-enqueues it
			n, err := cfg.Fila.ZRem(ctx, key, raw).Result()
			if err != nil || n == 0 {
				continue
			}
			if err := cfg.Fila.LPush(ctx, queue, raw).Err(); err != nil {
				log.Error().Err(err).Str("queue", queue).Msg("retry_cron: failed to re-enqueue")
				continue
			}
			movidos++
		}
	}
	if movidos > 0 {
		log.Info().Int("jobs", movidos).Msg("retry_cron: jobs re-enqueued")
	}
	return movidos
}
