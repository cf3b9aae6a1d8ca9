package search

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/dailyquota/dailyquota/internal/api"
	"github.com/dailyquota/dailyquota/internal/auth"
	"github.com/dailyquota/dailyquota/internal/quota"
)

const (
	headerLimitDay       = "X-RateLimit-Limit-Day"
	headerRemainingDay   = "X-RateLimit-Remaining-Day"
	headerLimitMonth     = "X-RateLimit-Limit-Month"
	headerRemainingMonth = "X-RateLimit-Remaining-Month"

	quotaProblemType = "https://dailyquota.dev/problems/quota-exceeded"

	// A 256-character term fits with room for JSON escaping.
	maxSearchBodyBytes = 4 << 10
)

type Handler struct {
	svc      *Service
	messages *Messages
	validate *validator.Validate
}

func NewHandler(svc *Service, messages *Messages) *Handler {
	return &Handler{
		svc:      svc,
		messages: messages,
		validate: validator.New(),
	}
}

type SearchRequest struct {
	Term string `json:"term" validate:"required,max=256"`
}

type SearchResponse struct {
	Items []string  `json:"items"`
	Usage Remaining `json:"usage"`
}

// Remaining is the short usage view returned with search results.
type Remaining struct {
	DayRemaining   int `json:"dayRemaining"`
	MonthRemaining int `json:"monthRemaining"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSearchBodyBytes)
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.HandleError(w, api.ErrRequestTooLarge)
			return
		}
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	result, err := h.svc.Search(r.Context(), userID, req.Term)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.setUsageHeaders(w, result.Usage)

	if result.Rejection != nil {
		api.WriteProblem(w, api.Problem{
			Type:   quotaProblemType,
			Title:  "Quota exceeded",
			Status: http.StatusTooManyRequests,
			Detail: h.messages.Rejection(r.Header.Get("Accept-Language"), result.Rejection),
			Code:   string(result.Rejection.Code),
			Usage:  result.Usage,
		})
		return
	}

	api.Write(w, http.StatusOK, SearchResponse{
		Items: result.Items,
		Usage: Remaining{
			DayRemaining:   result.Usage.DayRemaining,
			MonthRemaining: result.Usage.MonthRemaining,
		},
	})
}

func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	usage, err := h.svc.Usage(r.Context(), userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.setUsageHeaders(w, usage)
	api.Write(w, http.StatusOK, usage)
}

func (h *Handler) setUsageHeaders(w http.ResponseWriter, usage quota.Snapshot) {
	limits := h.svc.Limits()
	w.Header().Set(headerLimitDay, strconv.Itoa(limits.Daily))
	w.Header().Set(headerRemainingDay, strconv.Itoa(usage.DayRemaining))
	w.Header().Set(headerLimitMonth, strconv.Itoa(limits.Monthly))
	w.Header().Set(headerRemainingMonth, strconv.Itoa(usage.MonthRemaining))
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quota.ErrUnauthenticated):
		api.HandleError(w, api.ErrUnauthorized)
	case errors.Is(err, quota.ErrStoreUnavailable):
		slog.Error("usage store unavailable", "error", err)
		api.HandleError(w, api.ErrServiceUnavailable)
	default:
		slog.Error("search request failed", "error", err)
		api.HandleError(w, api.ErrInternalServer)
	}
}
