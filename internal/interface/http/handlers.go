// Package http implements the REST and webhook boundary of EduPath Core.
package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/edupath/edupath-core/internal/application/command"
	"github.com/edupath/edupath-core/internal/application/query"
	"github.com/edupath/edupath-core/internal/domain/course"
	"github.com/edupath/edupath-core/internal/domain/payment"
	"github.com/edupath/edupath-core/internal/domain/shared"
	"github.com/edupath/edupath-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"uptime": s.Uptime().String(),
	}

	if s.deps.HealthChecker != nil {
		if err := s.deps.HealthChecker.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["store"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["store"] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		if err := s.deps.HealthChecker.Ping(r.Context()); err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "backing store unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ ATTEMPT ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

type startAttemptRequest struct {
	UserID string `json:"user_id"`
	QuizID string `json:"quiz_id"`
}

func (s *Server) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	var req startAttemptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.StartAttempt.Handle(r.Context(), command.StartAttemptCommand{
		UserID: req.UserID,
		QuizID: req.QuizID,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type completeAttemptRequest struct {
	UserID  string `json:"user_id"`
	Answers []struct {
		QuestionID       string `json:"question_id"`
		Value            string `json:"value"`
		Correct          bool   `json:"correct"`
		TimeSpentSeconds int    `json:"time_spent_seconds"`
	} `json:"answers"`
}

func (s *Server) handleCompleteAttempt(w http.ResponseWriter, r *http.Request) {
	var req completeAttemptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	answers := make([]command.SubmittedAnswer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = command.SubmittedAnswer{
			QuestionID:       a.QuestionID,
			Value:            a.Value,
			Correct:          a.Correct,
			TimeSpentSeconds: a.TimeSpentSeconds,
		}
	}

	result, err := s.deps.CompleteAttempt.Handle(r.Context(), command.CompleteAttemptCommand{
		AttemptID: r.PathValue("id"),
		UserID:    req.UserID,
		Answers:   answers,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAttemptHistory(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetAttemptHistory.Handle(r.Context(), query.GetAttemptHistoryQuery{
		UserID:         r.PathValue("id"),
		Limit:          queryParamInt(r, "limit", 0),
		LowScoreWindow: queryParamInt(r, "low_score_window", 0),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAverageScore(w http.ResponseWriter, r *http.Request) {
	avg, err := s.deps.GetAverageScore.Handle(r.Context(), query.GetAverageScoreQuery{
		Category: course.Category(r.URL.Query().Get("category")),
		Level:    course.Level(r.URL.Query().Get("level")),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"average_score": avg})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS & RECOMMENDATION ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

type recordProgressRequest struct {
	UserID    string `json:"user_id"`
	SectionID string `json:"section_id"`
	Completed bool   `json:"completed"`
	Skipped   bool   `json:"skipped"`
}

func (s *Server) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	var req recordProgressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RecordProgress.Handle(r.Context(), command.RecordProgressCommand{
		UserID:    req.UserID,
		SectionID: req.SectionID,
		Completed: req.Completed,
		Skipped:   req.Skipped,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProgressOverview(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetProgressOverview.Handle(r.Context(), query.GetProgressOverviewQuery{
		UserID:            r.PathValue("id"),
		StagnantAfterDays: queryParamInt(r, "stagnant_after_days", 0),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.RecommendCourses.Handle(r.Context(), query.RecommendCoursesQuery{
		UserID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	err := s.deps.DeleteSection.Handle(r.Context(), command.DeleteSectionCommand{
		SectionID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT & COMMISSION ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

type createPaymentRequest struct {
	UserID    string `json:"user_id"`
	PackageID string `json:"package_id"`
	Method    string `json:"method"`
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.CreatePayment.Handle(r.Context(), command.CreatePaymentCommand{
		UserID:    req.UserID,
		PackageID: req.PackageID,
		Method:    payment.Method(req.Method),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleUserPayments(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetUserPayments.Handle(r.Context(), query.GetUserPaymentsQuery{
		UserID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCommissionSummary(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetCommissionSummary.Handle(r.Context(), query.GetCommissionSummaryQuery{
		PromoterID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSettleCommissions(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.MarkCommissionsPaid.Handle(r.Context(), command.MarkCommissionsPaidCommand{
		PromoterID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "from must be RFC3339")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "to must be RFC3339")
		return
	}

	total, err := s.deps.GetRevenue.Handle(r.Context(), query.GetRevenueQuery{From: from, To: to})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"total": total})
}

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT GATEWAY WEBHOOK
// ══════════════════════════════════════════════════════════════════════════════

type paymentCallbackRequest struct {
	OrderNumber   string `json:"order_number"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

// handlePaymentCallback processes a gateway status notification. The request
// must carry an HMAC-SHA256 signature over "orderNumber|status|transactionId"
// in X-Callback-Signature; unsigned or mis-signed callbacks are rejected
// before the order number is even looked up.
func (s *Server) handlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	var req paymentCallbackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	signature := r.Header.Get("X-Callback-Signature")
	if !VerifyCallbackSignature(s.config.CallbackSecret, req.OrderNumber, req.Status, req.TransactionID, signature) {
		s.logger.Warn("rejected payment callback with bad signature",
			logger.OrderNumber(req.OrderNumber),
			logger.String("ip", getClientIP(r)),
		)
		writeJSONError(w, http.StatusUnauthorized, "invalid_signature", "callback signature verification failed")
		return
	}

	result, err := s.deps.ApplyPaymentCallback.Handle(r.Context(), command.ApplyPaymentCallbackCommand{
		OrderNumber:   req.OrderNumber,
		Status:        payment.Status(req.Status),
		TransactionID: req.TransactionID,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CallbackSignature computes the hex HMAC-SHA256 signature the gateway is
// expected to send for a callback.
func CallbackSignature(secret, orderNumber, status, transactionID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderNumber + "|" + status + "|" + transactionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCallbackSignature checks a callback signature in constant time.
// An empty configured secret rejects everything; running without callback
// authentication is not a supported mode.
func VerifyCallbackSignature(secret, orderNumber, status, transactionID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := CallbackSignature(secret, orderNumber, status, transactionID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSISTANCE ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

type requestAssistanceRequest struct {
	UserID         string `json:"user_id"`
	Question       string `json:"question"`
	KnowledgePoint string `json:"knowledge_point"`
}

func (s *Server) handleRequestAssistance(w http.ResponseWriter, r *http.Request) {
	var req requestAssistanceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RequestAssistance.Handle(r.Context(), command.RequestAssistanceCommand{
		UserID:         req.UserID,
		Question:       req.Question,
		KnowledgePoint: req.KnowledgePoint,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type answerAssistanceRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) handleAnswerAssistance(w http.ResponseWriter, r *http.Request) {
	var req answerAssistanceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.AnswerAssistance.Handle(r.Context(), command.AnswerAssistanceCommand{
		LogID:  r.PathValue("id"),
		Answer: req.Answer,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAssistanceHistory(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetAssistanceHistory.Handle(r.Context(), query.GetAssistanceHistoryQuery{
		UserID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps a core error onto an HTTP status and error code.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		writeJSONError(w, http.StatusForbidden, "forbidden", err.Error())
	case shared.IsRateLimited(err):
		writeJSONError(w, http.StatusTooManyRequests, "rate_limited", err.Error())
	case shared.IsInvalidState(err):
		writeJSONError(w, http.StatusConflict, "invalid_state", err.Error())
	case shared.IsConflict(err), errors.Is(err, shared.ErrConcurrentModification):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, shared.ErrDivisionByZero):
		writeJSONError(w, http.StatusUnprocessableEntity, "no_questions", err.Error())
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case !isDomainError(err):
		// Command/query Validate() failures are plain errors.
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.logger.Error("request failed", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func isDomainError(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de)
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

// queryParamInt extracts an integer query parameter with a default value.
func queryParamInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}
