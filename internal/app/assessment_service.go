package app

import (
	"context"
	"fmt"
	"time"

	"assessment-engine/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository abstracts how sessions are persisted (in-memory, Redis, Postgres).
// Complete and Abandon are conditional writes: they apply only while the stored
// session is owned by the given user and still in progress, and report whether
// anything changed.
type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, sessionID string) (domain.Session, error)
	Complete(ctx context.Context, session domain.Session) (bool, error)
	Abandon(ctx context.Context, sessionID, userID string, at time.Time) (bool, error)
	ListByUser(ctx context.Context, userID string, filter domain.HistoryFilter) ([]domain.Session, error)
	ListCompleted(ctx context.Context, domainID string) ([]domain.Session, error)
}

// QuestionCatalog reads question content (from cache/backing store).
type QuestionCatalog interface {
	// SampleQuestions returns up to n random active questions of one tier.
	SampleQuestions(ctx context.Context, domainID string, tier domain.Difficulty, n int) ([]domain.Question, error)
	// GetQuestions returns the questions with the given ids, active or not.
	GetQuestions(ctx context.Context, domainID string, ids []string) (map[string]domain.Question, error)
}

const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 50
	DefaultHistoryLimit  = 20
	MaxHistoryLimit      = 100
	analyticsWindow      = 50
	secondsPerQuestion   = 90
)

// AssessmentService contains the assessment session use cases.
type AssessmentService struct {
	sessions     SessionRepository
	catalog      QuestionCatalog
	registry     *domain.Registry
	sampler      *Sampler
	events       *EventHub
	metrics      Recorder
	logger       *zap.Logger
	distribution Distribution
	defaultCount int
	maxCount     int
	now          func() time.Time
	newID        func() string
}

// Option customizes an AssessmentService.
type Option func(*AssessmentService)

func WithLogger(logger *zap.Logger) Option {
	return func(s *AssessmentService) { s.logger = logger }
}

func WithRecorder(r Recorder) Option {
	return func(s *AssessmentService) { s.metrics = r }
}

func WithEventHub(h *EventHub) Option {
	return func(s *AssessmentService) { s.events = h }
}

func WithDistribution(d Distribution) Option {
	return func(s *AssessmentService) { s.distribution = d }
}

// WithQuestionCounts sets the default and maximum questions per session.
func WithQuestionCounts(defaultCount, maxCount int) Option {
	return func(s *AssessmentService) {
		if defaultCount > 0 {
			s.defaultCount = defaultCount
		}
		if maxCount > 0 {
			s.maxCount = maxCount
		}
	}
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *AssessmentService) { s.now = now }
}

// WithIDGenerator replaces uuid session ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *AssessmentService) { s.newID = newID }
}

func NewAssessmentService(sessions SessionRepository, catalog QuestionCatalog, registry *domain.Registry, opts ...Option) *AssessmentService {
	s := &AssessmentService{
		sessions:     sessions,
		catalog:      catalog,
		registry:     registry,
		events:       NewEventHub(),
		metrics:      nopRecorder{},
		logger:       zap.NewNop(),
		distribution: DefaultDistribution,
		defaultCount: DefaultQuestionCount,
		maxCount:     MaxQuestionCount,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sampler = NewSampler(catalog, registry)
	return s
}

// CreateRequest starts a session. Zero TestType and QuestionCount take defaults.
type CreateRequest struct {
	UserID        string
	Domain        string
	TestType      domain.TestType
	QuestionCount int
}

// Create samples questions and persists a new in-progress session.
func (s *AssessmentService) Create(ctx context.Context, req CreateRequest) (domain.CreatedSession, error) {
	if req.TestType == "" {
		req.TestType = domain.TestDiagnostic
	}
	if req.QuestionCount == 0 {
		req.QuestionCount = s.defaultCount
	}
	if !s.registry.Has(req.Domain) {
		return domain.CreatedSession{}, fmt.Errorf("%w: %q", domain.ErrInvalidDomain, req.Domain)
	}
	if !req.TestType.Valid() {
		return domain.CreatedSession{}, fmt.Errorf("%w: %q", domain.ErrInvalidTestType, req.TestType)
	}
	if req.QuestionCount < 1 || req.QuestionCount > s.maxCount {
		return domain.CreatedSession{}, fmt.Errorf("%w: must be between 1 and %d", domain.ErrInvalidQuestionCount, s.maxCount)
	}

	sample, err := s.sampler.Sample(ctx, req.Domain, req.QuestionCount, s.distribution)
	if err != nil {
		if domain.KindOf(err) == domain.KindCatalog {
			return domain.CreatedSession{}, fmt.Errorf("%w: %v", domain.ErrNoQuestionsAvailable, err)
		}
		return domain.CreatedSession{}, err
	}
	if sample.Shortfall > 0 {
		s.logger.Warn("catalog could not fill session",
			zap.String("domain", req.Domain),
			zap.Int("requested", req.QuestionCount),
			zap.Int("sampled", len(sample.Questions)),
			zap.Int("plan_beginner", sample.Plan.Beginner),
			zap.Int("plan_intermediate", sample.Plan.Intermediate),
			zap.Int("plan_advanced", sample.Plan.Advanced),
		)
	}

	now := s.now()
	session := domain.NewSession(s.newID(), req.UserID, req.Domain, req.TestType, sample.Questions, now)
	if err := s.sessions.Create(ctx, session); err != nil {
		return domain.CreatedSession{}, fmt.Errorf("persist session: %w", err)
	}

	s.metrics.SessionCreated(req.Domain, string(req.TestType))
	s.events.Publish(domain.SessionEvent{
		Type:      domain.EventSessionCreated,
		SessionID: session.ID,
		UserID:    session.UserID,
		Domain:    session.Domain,
		At:        now,
	})
	s.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("domain", session.Domain),
		zap.String("test_type", string(session.TestType)),
		zap.Int("questions", session.TotalQuestions),
	)

	public := make([]domain.PublicQuestion, 0, len(sample.Questions))
	for _, q := range sample.Questions {
		public = append(public, q.Public())
	}
	return domain.CreatedSession{
		SessionID:          session.ID,
		Questions:          public,
		TotalQuestions:     session.TotalQuestions,
		RequestedQuestions: req.QuestionCount,
		Shortfall:          sample.Shortfall,
		TimeLimit:          req.QuestionCount * secondsPerQuestion,
		Domain:             session.Domain,
		TestType:           session.TestType,
	}, nil
}

// Abandon moves an owned in-progress session to abandoned. False means the
// session is absent, owned by someone else, or already terminal.
func (s *AssessmentService) Abandon(ctx context.Context, sessionID, userID string) (bool, error) {
	now := s.now()
	changed, err := s.sessions.Abandon(ctx, sessionID, userID, now)
	if err != nil {
		return false, fmt.Errorf("abandon session: %w", err)
	}
	if !changed {
		return false, nil
	}
	s.metrics.SessionAbandoned()
	s.events.Publish(domain.SessionEvent{
		Type:      domain.EventSessionAbandoned,
		SessionID: sessionID,
		UserID:    userID,
		At:        now,
	})
	return true, nil
}

// GetSession returns a session owned by userID.
func (s *AssessmentService) GetSession(ctx context.Context, sessionID, userID string) (domain.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if session.UserID != userID {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

// History lists a user's sessions, newest first.
func (s *AssessmentService) History(ctx context.Context, userID string, filter domain.HistoryFilter) ([]domain.Session, error) {
	if filter.Limit == 0 {
		filter.Limit = DefaultHistoryLimit
	}
	if filter.Limit < 1 || filter.Limit > MaxHistoryLimit {
		return nil, domain.Invalid("limit", fmt.Sprintf("must be between 1 and %d", MaxHistoryLimit))
	}
	if filter.Domain != "" && !s.registry.Has(filter.Domain) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDomain, filter.Domain)
	}
	if filter.TestType != "" && !filter.TestType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTestType, filter.TestType)
	}
	sessions, err := s.sessions.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Domains returns the registered domains.
func (s *AssessmentService) Domains() []domain.DomainInfo {
	return s.registry.List()
}

// Subscribe returns a channel that receives the user's session events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *AssessmentService) Subscribe(userID string) (<-chan domain.SessionEvent, func()) {
	return s.events.Subscribe(userID)
}
