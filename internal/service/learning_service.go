package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/domain/bkt"
	"github.com/brightpath/adapt-api/internal/platform/logger"
	"github.com/brightpath/adapt-api/internal/store"
)

// AnswerResult is the outcome of grading one submitted answer: whether it was
// right, what the right answer was, and how the skill mastery moved.
type AnswerResult struct {
	QuestionID    string  `json:"question_id"`
	IsCorrect     bool    `json:"is_correct"`
	CorrectAnswer string  `json:"correct_answer"`
	Skill         string  `json:"skill"`
	MasteryBefore float64 `json:"mastery_before"`
	MasteryAfter  float64 `json:"mastery_after"`
}

// SessionProgress summarizes how far a session has advanced.
type SessionProgress struct {
	SessionID      uuid.UUID          `json:"session_id"`
	Subject        string             `json:"subject"`
	QuestionsDone  int                `json:"questions_done"`
	SkillMasteries map[string]float64 `json:"skill_masteries"`
	AverageMastery float64            `json:"average_mastery"`
	MasteredSkills []string           `json:"mastered_skills"`
}

// SessionAttempts is a session's answer history with its accuracy summary.
type SessionAttempts struct {
	SessionID uuid.UUID         `json:"session_id"`
	Attempts  []*domain.Attempt `json:"attempts"`
	Total     int               `json:"total"`
	Correct   int               `json:"correct"`
	Accuracy  float64           `json:"accuracy"`
}

// LearningService drives adaptive practice sessions: it creates sessions,
// picks the next question and grades submitted answers.
type LearningService interface {
	// StartSession finds the user's existing session for the subject or
	// creates a new one with every skill at the initial mastery estimate.
	StartSession(ctx context.Context, userID uuid.UUID, subject string) (*domain.LearningSession, error)

	// NextQuestion selects the question the session should serve next.
	// Returns ErrNoQuestionsAvailable when the pool is exhausted and
	// ErrNotOwned when the session belongs to a different user.
	NextQuestion(ctx context.Context, userID, sessionID uuid.UUID) (bkt.Decision, error)

	// SubmitAnswer grades the answer, updates the skill mastery estimate,
	// records the attempt and advances the session.
	// Returns ErrQuestionNotInSession if the question belongs to a
	// different subject than the session, and ErrNotOwned when the
	// session belongs to a different user.
	SubmitAnswer(ctx context.Context, userID, sessionID uuid.UUID, questionID, answer string) (*AnswerResult, error)

	// Progress reports the session's mastery state.
	Progress(ctx context.Context, userID, sessionID uuid.UUID) (*SessionProgress, error)

	// Attempts returns the session's answer history, oldest first, with an
	// accuracy summary.
	Attempts(ctx context.Context, userID, sessionID uuid.UUID) (*SessionAttempts, error)
}

// learningServiceImpl implements the LearningService interface.
type learningServiceImpl struct {
	sessions  store.SessionStore
	questions store.QuestionStore
	attempts  store.AttemptStore
	engine    bkt.Service
	threshold float64
	logger    *slog.Logger
}

// NewLearningService creates a new LearningService.
// A non-positive threshold falls back to the selector default.
func NewLearningService(
	sessions store.SessionStore,
	questions store.QuestionStore,
	attempts store.AttemptStore,
	engine bkt.Service,
	threshold float64,
	log *slog.Logger,
) (LearningService, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store cannot be nil")
	}
	if questions == nil {
		return nil, fmt.Errorf("question store cannot be nil")
	}
	if attempts == nil {
		return nil, fmt.Errorf("attempt store cannot be nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if threshold <= 0 {
		threshold = bkt.DefaultThreshold
	}
	if log == nil {
		log = slog.Default()
	}

	return &learningServiceImpl{
		sessions:  sessions,
		questions: questions,
		attempts:  attempts,
		engine:    engine,
		threshold: threshold,
		logger:    log.With(slog.String("component", "learning_service")),
	}, nil
}

// StartSession implements LearningService.StartSession.
func (s *learningServiceImpl) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	subject string,
) (*domain.LearningSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.sessions.FindByUserAndSubject(ctx, userID, subject)
	if err == nil {
		log.Debug("resuming existing session",
			slog.String("session_id", existing.ID.String()),
			slog.String("subject", subject))
		return existing, nil
	}
	if !errors.Is(err, store.ErrSessionNotFound) {
		return nil, NewServiceError("learning", "start_session", "session lookup failed", err)
	}

	skills, err := s.questions.Skills(ctx, subject)
	if err != nil {
		return nil, NewServiceError("learning", "start_session", "skill lookup failed", err)
	}
	if len(skills) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	masteries := make(map[string]float64, len(skills))
	for _, skill := range skills {
		masteries[skill] = s.engine.InitializeSkill()
	}

	session, err := domain.NewLearningSession(userID, subject, masteries)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, NewServiceError("learning", "start_session", "failed to save session", err)
	}

	log.Info("session started",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("subject", subject),
		slog.Int("skill_count", len(skills)))
	return session, nil
}

// ownedSession loads the session and verifies it belongs to the caller.
func (s *learningServiceImpl) ownedSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*domain.LearningSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		s.logger.Warn("session access denied",
			slog.String("session_id", sessionID.String()),
			slog.String("user_id", userID.String()))
		return nil, ErrNotOwned
	}
	return session, nil
}

// NextQuestion implements LearningService.NextQuestion.
func (s *learningServiceImpl) NextQuestion(ctx context.Context, userID, sessionID uuid.UUID) (bkt.Decision, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return bkt.Decision{}, err
	}

	pool, err := s.questions.List(ctx, store.QuestionFilter{Subject: session.Subject})
	if err != nil {
		return bkt.Decision{}, NewServiceError("learning", "next_question", "question lookup failed", err)
	}

	decision := s.engine.SelectNextQuestion(
		session.SkillMasteries,
		pool,
		bkt.WithThreshold(s.threshold),
		bkt.WithExcludedIDs(session.AnsweredIDs),
	)
	if decision.Question == nil {
		return decision, ErrNoQuestionsAvailable
	}

	log.Debug("question selected",
		slog.String("session_id", sessionID.String()),
		slog.String("question_id", decision.Question.ID),
		slog.String("reason", decision.Reason))
	return decision, nil
}

// SubmitAnswer implements LearningService.SubmitAnswer.
func (s *learningServiceImpl) SubmitAnswer(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	questionID, answer string,
) (*AnswerResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if question.Subject != session.Subject {
		return nil, ErrQuestionNotInSession
	}

	isCorrect := question.CheckAnswer(answer)

	before, tracked := session.Mastery(question.Skill)
	if !tracked {
		// Question for a skill that appeared after the session started.
		before = s.engine.InitializeSkill()
	}
	after := s.engine.UpdateMastery(before, isCorrect, question.Difficulty)

	attempt, err := domain.NewAttempt(sessionID, session.UserID, question, answer, isCorrect, before, after)
	if err != nil {
		return nil, err
	}

	updated := session.RecordAnswer(questionID, question.Skill, after, time.Now())
	if err := s.sessions.Update(ctx, updated); err != nil {
		return nil, NewServiceError("learning", "submit_answer", "failed to save session", err)
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		// The session already advanced; a lost attempt only degrades history.
		log.Warn("failed to record attempt",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()),
			slog.String("question_id", questionID))
	}

	log.Info("answer graded",
		slog.String("session_id", sessionID.String()),
		slog.String("question_id", questionID),
		slog.String("skill", question.Skill),
		slog.Bool("correct", isCorrect),
		slog.Float64("mastery_before", before),
		slog.Float64("mastery_after", after))

	return &AnswerResult{
		QuestionID:    questionID,
		IsCorrect:     isCorrect,
		CorrectAnswer: question.CorrectAnswer,
		Skill:         question.Skill,
		MasteryBefore: before,
		MasteryAfter:  after,
	}, nil
}

// Progress implements LearningService.Progress.
func (s *learningServiceImpl) Progress(ctx context.Context, userID, sessionID uuid.UUID) (*SessionProgress, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	progress := &SessionProgress{
		SessionID:      session.ID,
		Subject:        session.Subject,
		QuestionsDone:  len(session.AnsweredIDs),
		SkillMasteries: session.SkillMasteries,
		MasteredSkills: []string{},
	}

	sum := 0.0
	for skill, mastery := range session.SkillMasteries {
		sum += mastery
		if mastery >= s.threshold {
			progress.MasteredSkills = append(progress.MasteredSkills, skill)
		}
	}
	if len(session.SkillMasteries) > 0 {
		progress.AverageMastery = sum / float64(len(session.SkillMasteries))
	}
	sort.Strings(progress.MasteredSkills)

	return progress, nil
}

// Attempts implements LearningService.Attempts.
func (s *learningServiceImpl) Attempts(ctx context.Context, userID, sessionID uuid.UUID) (*SessionAttempts, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.attempts.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, NewServiceError("learning", "attempts", "attempt lookup failed", err)
	}

	history := &SessionAttempts{
		SessionID: session.ID,
		Attempts:  attempts,
		Total:     len(attempts),
	}
	for _, attempt := range attempts {
		if attempt.IsCorrect {
			history.Correct++
		}
	}
	if history.Total > 0 {
		history.Accuracy = float64(history.Correct) / float64(history.Total) * 100
	}

	return history, nil
}
