package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/docentia/simulacro-backend/internal/config"
	"github.com/docentia/simulacro-backend/internal/model"
)

const (
	ProgressBatchSize    = 50
	ProgressBatchTimeout = 2 * time.Second
	ProgressPollTimeout  = 1 * time.Second
)

// ProgressWorker consumes persist_progress_queue and applies the XP and
// mastery updates of completed attempts: XP increments are batched into a
// single UNNEST update, mastery rows get a rolling-average upsert.
type ProgressWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewProgressWorker creates a new ProgressWorker.
func NewProgressWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ProgressWorker {
	return &ProgressWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "progress_worker").Logger(),
	}
}

// ProgressPayload is the queue message for one completed attempt.
type ProgressPayload struct {
	UserID     int          `json:"user_id"`
	Module     model.Module `json:"module"`
	XP         int          `json:"xp"`
	Percentage int          `json:"percentage"`
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ProgressWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ProgressWorker started")

	batch := make([]*ProgressPayload, 0, ProgressBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ProgressBatchSize || time.Since(lastFlush) >= ProgressBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ProgressPollTimeout, config.WorkerKey.PersistProgressQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p ProgressPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *ProgressWorker) flushSafe(ctx context.Context, batch []*ProgressPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.applyBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk progress update failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistProgressQueue, raw)
			}
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL UPDATE using UNNEST + alias
// ----------------------------------------------------------------

func (w *ProgressWorker) applyBatch(ctx context.Context, batch []*ProgressPayload) error {
	n := len(batch)

	users := make([]int, 0, n)
	xps := make([]int, 0, n)
	for _, p := range batch {
		users = append(users, p.UserID)
		xps = append(xps, p.XP)
	}

	// XP increments collapse into one statement. SUM handles the same user
	// finishing twice within a batch window.
	query := `
		UPDATE users AS u
		SET xp = u.xp + t.xp,
		    updated_at = NOW()
		FROM (
			SELECT v.user_id, SUM(v.xp) AS xp
			FROM UNNEST(
				$1::int[],
				$2::int[]
			) AS v (user_id, xp)
			GROUP BY v.user_id
		) AS t
		WHERE u.id = t.user_id
	`
	if _, err := w.pool.Exec(ctx, query, users, xps); err != nil {
		return err
	}

	// Mastery depends on the previous row's value, so it stays row-by-row.
	for _, p := range batch {
		if err := w.upsertMastery(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// upsertMastery applies the 70/30 rolling average. A first attempt sets the
// score directly; the +5 performs round-half-up on the /10 division.
func (w *ProgressWorker) upsertMastery(ctx context.Context, p *ProgressPayload) error {
	_, err := w.pool.Exec(ctx,
		`INSERT INTO user_mastery (user_id, module, score, attempts)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (user_id, module) DO UPDATE
		 SET score = LEAST(100, GREATEST(0,
		         (user_mastery.score * 7 + EXCLUDED.score * 3 + 5) / 10)),
		     attempts = user_mastery.attempts + 1,
		     updated_at = NOW()`,
		p.UserID, p.Module, p.Percentage,
	)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single update
// ----------------------------------------------------------------

func (w *ProgressWorker) persistSingle(ctx context.Context, p *ProgressPayload) error {
	_, err := w.pool.Exec(ctx,
		`UPDATE users SET xp = xp + $1, updated_at = NOW() WHERE id = $2`,
		p.XP, p.UserID,
	)
	if err != nil {
		return err
	}
	return w.upsertMastery(ctx, p)
}
