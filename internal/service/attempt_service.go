package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/docentia/simulacro-backend/internal/config"
	"github.com/docentia/simulacro-backend/internal/model"
	"github.com/docentia/simulacro-backend/internal/quiz"
	"github.com/docentia/simulacro-backend/internal/repository"
	"github.com/docentia/simulacro-backend/internal/worker"
)

// Attempt errors.
var (
	ErrNoActiveAttempt = errors.New("no active attempt")
	ErrNoQuestions     = errors.New("no questions available for this module")
)

const defaultQuestionCount = 10

// AttemptView is the client-facing snapshot of a running attempt: the state
// machine snapshot plus the sanitized question list.
type AttemptView struct {
	State     quiz.State       `json:"state"`
	Questions []model.Question `json:"questions"`
}

// attemptMeta is the Redis-persisted metadata that lets an attempt survive a
// server restart. Answers live separately in a hash keyed per user.
type attemptMeta struct {
	Module      model.Module    `json:"module"`
	QuestionIDs []string        `json:"question_ids"`
	StartedAt   int64           `json:"started_at"`
	TimeLimit   int             `json:"time_limit"`
	StudyMode   bool            `json:"study_mode"`
	Capability  quiz.Capability `json:"capability"`
}

// AttemptService orchestrates quiz attempts. Sessions live in memory, one
// per user; answers are autosaved through Redis so a crashed process can
// rebuild the attempt from the queue-backed snapshot.
type AttemptService struct {
	questionRepo    *repository.QuestionRepository
	resultRepo      *repository.ResultRepository
	masteryRepo     *repository.MasteryRepository
	achievementRepo *repository.AchievementRepository
	rdb             *redis.Client
	cfg             *config.Config
	log             zerolog.Logger

	mu       sync.Mutex
	sessions map[int]*quiz.Session
	finished map[int]finishedEntry
}

// finishedEntry holds a graded summary until the WebSocket stream delivers
// it, or until it ages out.
type finishedEntry struct {
	summary *quiz.Summary
	at      time.Time
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
	masteryRepo *repository.MasteryRepository,
	achievementRepo *repository.AchievementRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		questionRepo:    questionRepo,
		resultRepo:      resultRepo,
		masteryRepo:     masteryRepo,
		achievementRepo: achievementRepo,
		rdb:             rdb,
		cfg:             cfg,
		log:             log.With().Str("component", "attempt_service").Logger(),
		sessions:        make(map[int]*quiz.Session),
		finished:        make(map[int]finishedEntry),
	}
}

// StartAttempt launches a new attempt for a user. A still-running previous
// attempt is force-exited first and lands in the history as a partial
// result.
func (s *AttemptService) StartAttempt(ctx context.Context, u *model.User, req *model.StartAttemptRequest) (*AttemptView, error) {
	if prev := s.session(u.ID); prev != nil {
		if summary, err := prev.ForceExit(ctx); err == nil {
			s.finish(ctx, u.ID, summary)
		} else {
			s.drop(ctx, u.ID)
		}
	}

	questions, err := s.pickQuestions(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	prior, err := s.masteryRepo.GetProfile(ctx, u.ID, s.resultRepo)
	if err != nil {
		return nil, fmt.Errorf("load mastery profile: %w", err)
	}

	capability := quiz.Capability{
		IsPremium: u.IsPremium,
		AIQuota:   s.cfg.DefaultAIQuota,
	}

	session := quiz.NewSession(quiz.Config{
		UserID:           u.ID,
		Module:           req.Module,
		Questions:        questions,
		TimeLimitSeconds: req.TimeLimitSeconds,
		StudyMode:        req.StudyMode,
		Capability:       capability,
		Prior:            prior,
		Sink:             s.resultRepo,
	})

	s.mu.Lock()
	s.sessions[u.ID] = session
	s.mu.Unlock()

	s.storeMeta(ctx, u.ID, session, questions, capability)

	return s.view(session), nil
}

// Active returns the user's running attempt. When the in-memory session is
// gone (process restart) it is rebuilt from the Redis metadata and the
// autosaved answers, with the clock fast-forwarded by the elapsed time.
func (s *AttemptService) Active(ctx context.Context, u *model.User) (*AttemptView, error) {
	if session := s.session(u.ID); session != nil {
		return s.view(session), nil
	}

	session, err := s.rebuild(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// Answer records a selection on the active attempt. Accepted answers are
// autosaved: mirrored into the Redis snapshot and queued for the persistence
// worker, both fire-and-forget.
func (s *AttemptService) Answer(ctx context.Context, userID int, req *model.AnswerRequest) (*quiz.Feedback, bool, error) {
	session := s.session(userID)
	if session == nil {
		return nil, false, ErrNoActiveAttempt
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		return nil, false, fmt.Errorf("parse question id: %w", err)
	}

	feedback, recorded := session.Answer(questionID, req.Option)
	if recorded {
		s.autosave(ctx, userID, req.QuestionID, req.Option)
	}
	return feedback, recorded, nil
}

// Next advances the cursor, entering review past the last question.
func (s *AttemptService) Next(userID int) (*AttemptView, error) {
	session := s.session(userID)
	if session == nil {
		return nil, ErrNoActiveAttempt
	}
	session.Next()
	return s.view(session), nil
}

// Previous moves the cursor back one question.
func (s *AttemptService) Previous(userID int) (*AttemptView, error) {
	session := s.session(userID)
	if session == nil {
		return nil, ErrNoActiveAttempt
	}
	session.Previous()
	return s.view(session), nil
}

// JumpTo returns from review to a specific question.
func (s *AttemptService) JumpTo(userID, index int) (*AttemptView, error) {
	session := s.session(userID)
	if session == nil {
		return nil, ErrNoActiveAttempt
	}
	session.JumpTo(index)
	return s.view(session), nil
}

// Review moves the attempt to the review screen.
func (s *AttemptService) Review(userID int) (*AttemptView, error) {
	session := s.session(userID)
	if session == nil {
		return nil, ErrNoActiveAttempt
	}
	session.Review()
	return s.view(session), nil
}

// Submit finishes the active attempt and returns its summary. The summary's
// achievement list is narrowed to badges earned for the first time.
func (s *AttemptService) Submit(ctx context.Context, userID int) (*quiz.Summary, error) {
	session := s.session(userID)
	if session == nil {
		return nil, ErrNoActiveAttempt
	}

	summary, err := session.Submit(ctx)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, userID, summary), nil
}

// ForceExit abandons the active attempt, persisting whatever was answered as
// a partial result.
func (s *AttemptService) ForceExit(ctx context.Context, userID int) (*quiz.Summary, error) {
	session := s.session(userID)
	if session == nil {
		return nil, ErrNoActiveAttempt
	}

	summary, err := session.ForceExit(ctx)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, userID, summary), nil
}

// ConsumeAIQuota burns one AI-explanation credit on the active attempt and
// returns the remaining credits.
func (s *AttemptService) ConsumeAIQuota(userID int) (int, error) {
	session := s.session(userID)
	if session == nil {
		return 0, ErrNoActiveAttempt
	}
	return session.ConsumeAIQuota()
}

// StateOf snapshots the in-memory session without touching storage. Used by
// the WebSocket stream for the per-second push.
func (s *AttemptService) StateOf(userID int) (quiz.State, bool) {
	session := s.session(userID)
	if session == nil {
		return quiz.State{}, false
	}
	return session.State(), true
}

// tick consumes one second of a user's attempt clock. On expiry the attempt
// is graded as-is, not partial.
func (s *AttemptService) tick(ctx context.Context, userID int) {
	session := s.session(userID)
	if session == nil {
		return
	}

	if _, expired := session.Tick(); expired {
		if sum, err := session.Submit(ctx); err == nil {
			out := s.finish(ctx, userID, sum)
			s.mu.Lock()
			s.finished[userID] = finishedEntry{summary: out, at: time.Now()}
			s.mu.Unlock()
		}
	}
}

// RunClock is the single countdown driver for every live attempt. Call in a
// goroutine; it stops when the context is cancelled.
func (s *AttemptService) RunClock(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			ids := make([]int, 0, len(s.sessions))
			for id := range s.sessions {
				ids = append(ids, id)
			}
			s.mu.Unlock()

			for _, id := range ids {
				s.tick(ctx, id)
			}
			s.pruneFinished()
		}
	}
}

// TakeSummary pops the finished-attempt summary awaiting delivery, if any.
// The WebSocket stream uses it to push the grade to a connected client after
// the clock expired the attempt.
func (s *AttemptService) TakeSummary(userID int) (*quiz.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.finished[userID]
	if !ok {
		return nil, false
	}
	delete(s.finished, userID)
	return entry.summary, true
}

// pruneFinished drops undelivered summaries nobody picked up.
func (s *AttemptService) pruneFinished() {
	cutoff := time.Now().Add(-10 * time.Minute)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.finished {
		if entry.at.Before(cutoff) {
			delete(s.finished, id)
		}
	}
}

// pickQuestions resolves the question list: explicit ids in the given order,
// or a random draw from the module's bank.
func (s *AttemptService) pickQuestions(ctx context.Context, req *model.StartAttemptRequest) ([]model.Question, error) {
	if len(req.QuestionIDs) > 0 {
		ids := make([]uuid.UUID, 0, len(req.QuestionIDs))
		for _, raw := range req.QuestionIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("parse question id: %w", err)
			}
			ids = append(ids, id)
		}
		return s.questionRepo.GetByIDs(ctx, ids)
	}

	count := req.Count
	if count <= 0 {
		count = defaultQuestionCount
	}
	return s.questionRepo.PickRandom(ctx, req.Module, count, nil)
}

// finish runs the post-attempt pipeline once a session reached DONE: award
// new badges, queue the XP and mastery update, clear the autosave snapshot.
// Returns a summary whose achievement list holds only newly earned badges.
func (s *AttemptService) finish(ctx context.Context, userID int, summary *quiz.Summary) *quiz.Summary {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()

	s.clearSnapshot(ctx, userID)

	out := *summary

	if summary.SaveErr != nil {
		s.log.Warn().Err(summary.SaveErr).
			Int("user_id", userID).
			Msg("Result not persisted, returning score anyway")
	}

	if summary.Result.IsPartial {
		out.Achievements = nil
		return &out
	}

	out.Achievements = s.awardNew(ctx, userID, summary)

	payload, err := json.Marshal(worker.ProgressPayload{
		UserID:     userID,
		Module:     summary.Result.Module,
		XP:         summary.Result.XPAwarded,
		Percentage: summary.Result.Percentage,
	})
	if err == nil {
		if err := s.rdb.RPush(ctx, config.WorkerKey.PersistProgressQueue, payload).Err(); err != nil {
			s.log.Error().Err(err).Int("user_id", userID).Msg("Queue progress update failed")
		}
	}

	return &out
}

// awardNew filters the thresholds the attempt met down to badges the user
// does not hold yet, and persists those.
func (s *AttemptService) awardNew(ctx context.Context, userID int, summary *quiz.Summary) []model.AchievementCode {
	if len(summary.Achievements) == 0 {
		return nil
	}

	held, err := s.achievementRepo.ListCodes(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("List achievements failed")
		return nil
	}

	var earned []model.AchievementCode
	for _, code := range summary.Achievements {
		if !held[code] {
			earned = append(earned, code)
		}
	}
	if len(earned) == 0 {
		return nil
	}

	if err := s.achievementRepo.Award(ctx, userID, earned, summary.Result.CompletedAt); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Award achievements failed")
	}
	return earned
}

// autosave mirrors one accepted answer into Redis and queues it for the
// persistence worker. Neither write can fail the request.
func (s *AttemptService) autosave(ctx context.Context, userID int, questionID, answer string) {
	if err := s.rdb.HSet(ctx, config.CacheKey.AttemptAnswersKey(userID), questionID, answer).Err(); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Autosave HSet failed")
	}

	payload, err := json.Marshal(worker.AnswerPayload{
		UserID:     userID,
		QuestionID: questionID,
		Answer:     answer,
	})
	if err != nil {
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Queue autosave failed")
	}
}

// storeMeta writes the restart-recovery metadata. TTL covers the full time
// budget plus slack for the review screen.
func (s *AttemptService) storeMeta(ctx context.Context, userID int, session *quiz.Session, questions []model.Question, capability quiz.Capability) {
	state := session.State()

	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID.String()
	}

	meta := attemptMeta{
		Module:      state.Module,
		QuestionIDs: ids,
		StartedAt:   state.StartedAt.Unix(),
		TimeLimit:   state.TimeLimit,
		StudyMode:   state.StudyMode,
		Capability:  capability,
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return
	}

	ttl := time.Duration(state.TimeLimit)*time.Second + 30*time.Minute
	if err := s.rdb.Set(ctx, config.CacheKey.AttemptMetaKey(userID), raw, ttl).Err(); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Store attempt meta failed")
	}
	s.rdb.Expire(ctx, config.CacheKey.AttemptAnswersKey(userID), ttl)
}

// rebuild reconstructs a session after a process restart: question list from
// the stored ids, answers from the autosave hash, clock fast-forwarded by
// the wall time elapsed since the start. A rebuilt attempt whose budget ran
// out while the server was down is submitted immediately.
func (s *AttemptService) rebuild(ctx context.Context, u *model.User) (*quiz.Session, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.AttemptMetaKey(u.ID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoActiveAttempt
		}
		return nil, fmt.Errorf("load attempt meta: %w", err)
	}

	var meta attemptMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		s.drop(ctx, u.ID)
		return nil, ErrNoActiveAttempt
	}

	ids := make([]uuid.UUID, 0, len(meta.QuestionIDs))
	for _, qid := range meta.QuestionIDs {
		id, err := uuid.Parse(qid)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	questions, err := s.questionRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load attempt questions: %w", err)
	}
	if len(questions) == 0 {
		s.drop(ctx, u.ID)
		return nil, ErrNoActiveAttempt
	}

	prior, err := s.masteryRepo.GetProfile(ctx, u.ID, s.resultRepo)
	if err != nil {
		return nil, fmt.Errorf("load mastery profile: %w", err)
	}

	session := quiz.NewSession(quiz.Config{
		UserID:           u.ID,
		Module:           meta.Module,
		Questions:        questions,
		TimeLimitSeconds: meta.TimeLimit,
		StudyMode:        meta.StudyMode,
		Capability:       meta.Capability,
		Prior:            prior,
		Sink:             s.resultRepo,
	})

	saved, err := s.rdb.HGetAll(ctx, config.CacheKey.AttemptAnswersKey(u.ID)).Result()
	if err == nil && len(saved) > 0 {
		session.RestoreAnswers(saved)
	}

	s.mu.Lock()
	s.sessions[u.ID] = session
	s.mu.Unlock()

	elapsed := time.Now().Unix() - meta.StartedAt
	for i := int64(0); i < elapsed; i++ {
		if _, expired := session.Tick(); expired {
			if summary, err := session.Submit(ctx); err == nil {
				s.finish(ctx, u.ID, summary)
			}
			return nil, ErrNoActiveAttempt
		}
	}

	return session, nil
}

func (s *AttemptService) session(userID int) *quiz.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID]
}

// drop removes a user's attempt artifacts without grading.
func (s *AttemptService) drop(ctx context.Context, userID int) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	s.clearSnapshot(ctx, userID)
}

func (s *AttemptService) clearSnapshot(ctx context.Context, userID int) {
	s.rdb.Del(ctx,
		config.CacheKey.AttemptAnswersKey(userID),
		config.CacheKey.AttemptMetaKey(userID))
}

func (s *AttemptService) view(session *quiz.Session) *AttemptView {
	return &AttemptView{
		State:     session.State(),
		Questions: session.Questions(),
	}
}
