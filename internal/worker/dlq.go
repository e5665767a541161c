package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// DLQPrefix namespaces the dead-letter list of each queue: dlq:{queue}.
// Entries stay there until an operator inspects them with propostasctl.
const DLQPrefix = "dlq:"

// DLQEntry is a job that ran out of attempts or failed permanently.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobID         string          `json:"job_id"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ parks job under DLQPrefix+queue. Push failures are logged only:
// the job is already lost to the live queue at this point.
func SendToDLQ(ctx context.Context, fila Fila, queue string, job Job, reason string) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobID:         job.ID,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      job.Attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("dlq: marshal")
		return
	}
	if err := fila.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Str("queue", queue).Msg("dlq: push")
		return
	}
	log.Warn().
		Str("job_id", job.ID).
		Str("queue", queue).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("dlq: job parked")
}

// DLQLength returns the number of parked jobs for queue.
func DLQLength(ctx context.Context, fila Fila, queue string) (int64, error) {
	return fila.LLen(ctx, DLQPrefix+queue).Result()
}

// ListarDLQ returns up to n parked jobs for queue, newest first.
func ListarDLQ(ctx context.Context, fila Fila, queue string, n int64) ([]DLQEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := fila.LRange(ctx, DLQPrefix+queue, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DLQEntry, 0, len(raw))
	for i, r := range raw {
		var e DLQEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("dlq entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
