// internal/handler/enrollment_handler.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/baz-scheduler/internal/errors"
	"github.com/unclebandit/baz-scheduler/internal/logger"
	"github.com/unclebandit/baz-scheduler/internal/model"
	"github.com/unclebandit/baz-scheduler/internal/service"
)

// EnrollmentService is what the handler needs from service.EnrollmentService.
type EnrollmentService interface {
	EnrollmentStats(ctx context.Context, id int) (*model.EnrollmentStats, error)
	Finish(ctx context.Context, id int) error
}

var _ EnrollmentService = (*service.EnrollmentService)(nil)

// EnrollmentHandler serves enrollment progress and lets an operator finish one.
type EnrollmentHandler struct {
	Service EnrollmentService
}

func NewEnrollmentHandler(svc EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{Service: svc}
}

// Routes mounts the handler under /enrollments.
func (h *EnrollmentHandler) Routes(r chi.Router) {
	r.Get("/enrollments/{id}", h.GetEnrollmentStats)
	r.Post("/enrollments/{id}/finish", h.FinishEnrollment)
}

func (h *EnrollmentHandler) GetEnrollmentStats(w http.ResponseWriter, r *http.Request) {
	id, ok := enrollmentID(w, r)
	if !ok {
		return
	}

	stats, err := h.Service.EnrollmentStats(r.Context(), id)
	if err != nil {
		writeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *EnrollmentHandler) FinishEnrollment(w http.ResponseWriter, r *http.Request) {
	id, ok := enrollmentID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Finish(r.Context(), id); err != nil {
		writeError(w, id, err)
		return
	}
	logger.Info("enrollment finished", zap.Int("enrollment_id", id))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"enrollment_id": id,
		"finished":      true,
	})
}

func enrollmentID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid enrollment id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, id int, err error) {
	var nf *appErrors.ErrEnrollmentNotFound
	if errors.As(err, &nf) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	logger.Error("enrollment request failed", zap.Int("enrollment_id", id), zap.Error(err))
	http.Error(w, "failed to load enrollment: "+err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response", zap.Error(err))
	}
}
