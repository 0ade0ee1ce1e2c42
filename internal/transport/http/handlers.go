package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"assessment-engine/internal/app"
	"assessment-engine/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the assessment REST endpoints.
type Handler struct {
	service *app.AssessmentService
	logger  *zap.Logger
}

func NewHandler(service *app.AssessmentService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

type createRequest struct {
	Domain        string          `json:"domain" binding:"required"`
	TestType      domain.TestType `json:"testType"`
	QuestionCount int             `json:"questionCount"`
}

type answerRequest struct {
	QuestionID       string          `json:"questionId"`
	Answer           json.RawMessage `json:"answer"`
	TimeSpent        int             `json:"timeSpent"`
	ConfidenceLevel  int             `json:"confidenceLevel"`
	AttemptCount     int             `json:"attemptCount"`
	Skipped          bool            `json:"skipped"`
	FlaggedForReview bool            `json:"flaggedForReview"`
}

type submitRequest struct {
	SessionID      string          `json:"sessionId" binding:"required"`
	Answers        []answerRequest `json:"answers" binding:"required"`
	TotalTimeSpent int             `json:"totalTimeSpent"`
}

type abandonResponse struct {
	SessionID string               `json:"sessionId"`
	Status    domain.SessionStatus `json:"status"`
}

// CreateTest handles POST /test/create.
func (h *Handler) CreateTest(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.Invalid("body", err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), app.CreateRequest{
		UserID:        userID(c),
		Domain:        req.Domain,
		TestType:      req.TestType,
		QuestionCount: req.QuestionCount,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, http.StatusCreated, created)
}

// SubmitTest handles POST /test/submit.
func (h *Handler) SubmitTest(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.Invalid("body", err.Error()))
		return
	}

	answers := make([]domain.SubmittedAnswer, 0, len(req.Answers))
	for i, a := range req.Answers {
		value, err := normalizeAnswer(a.Answer)
		if err != nil {
			h.fail(c, domain.Invalid(fmt.Sprintf("answers[%d].answer", i), err.Error()))
			return
		}
		answers = append(answers, domain.SubmittedAnswer{
			QuestionID:       a.QuestionID,
			Answer:           value,
			TimeSpent:        a.TimeSpent,
			ConfidenceLevel:  a.ConfidenceLevel,
			AttemptCount:     a.AttemptCount,
			Skipped:          a.Skipped,
			FlaggedForReview: a.FlaggedForReview,
		})
	}

	result, err := h.service.Submit(c.Request.Context(), app.SubmitRequest{
		SessionID:      req.SessionID,
		UserID:         userID(c),
		Answers:        answers,
		TotalTimeSpent: req.TotalTimeSpent,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, http.StatusOK, result)
}

// GetSession handles GET /test/session/:sessionId.
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("sessionId"), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, http.StatusOK, session)
}

// History handles GET /test/history.
func (h *Handler) History(c *gin.Context) {
	filter := domain.HistoryFilter{
		Domain:   c.Query("domain"),
		TestType: domain.TestType(c.Query("testType")),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, domain.Invalid("limit", "must be an integer"))
			return
		}
		if limit == 0 {
			h.fail(c, domain.Invalid("limit", fmt.Sprintf("must be between 1 and %d", app.MaxHistoryLimit)))
			return
		}
		filter.Limit = limit
	}

	sessions, err := h.service.History(c.Request.Context(), userID(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, http.StatusOK, sessions)
}

// Analytics handles GET /test/analytics.
func (h *Handler) Analytics(c *gin.Context) {
	analytics, err := h.service.UserAnalytics(c.Request.Context(), userID(c), c.Query("domain"))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, http.StatusOK, analytics)
}

// AbandonTest handles PUT /test/abandon/:sessionId.
func (h *Handler) AbandonTest(c *gin.Context) {
	sessionID := c.Param("sessionId")
	changed, err := h.service.Abandon(c.Request.Context(), sessionID, userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !changed {
		failure(c, http.StatusNotFound, domain.KindNotFound.String(), "test session not found or not in progress")
		return
	}
	success(c, http.StatusOK, abandonResponse{SessionID: sessionID, Status: domain.StatusAbandoned})
}

// DomainStats handles GET /test/domain-stats/:domain.
func (h *Handler) DomainStats(c *gin.Context) {
	stats, err := h.service.DomainStatistics(c.Request.Context(), c.Param("domain"))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, http.StatusOK, stats)
}

// Domains handles GET /test/domains.
func (h *Handler) Domains(c *gin.Context) {
	success(c, http.StatusOK, h.service.Domains())
}

// normalizeAnswer accepts a JSON string, number or boolean and returns its
// string form. A missing or null answer is the empty string.
func normalizeAnswer(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case json.Number:
		return t.String(), nil
	}
	return "", errors.New("must be a string, number or boolean")
}
