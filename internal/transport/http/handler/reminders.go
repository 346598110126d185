package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/shukatsu-reminders/internal/application/reminder"
	"github.com/shukatsu-reminders/internal/domain"
	"github.com/shukatsu-reminders/internal/pkg/validate"
	"github.com/shukatsu-reminders/internal/transport/http/middleware"
)

// ReminderHandler serves the reminder views for the authenticated user.
type ReminderHandler struct {
	svc reminder.Service
}

func NewReminderHandler(svc reminder.Service) *ReminderHandler {
	return &ReminderHandler{svc: svc}
}

// All returns the merged, ranked and capped reminder list.
func (h *ReminderHandler) All(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.GetAllReminders)
}

// EmailCheck returns only the email-check reminders.
func (h *ReminderHandler) EmailCheck(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.GetEmailCheckReminders)
}

// Deadlines returns only the deadline reminders, ranked.
func (h *ReminderHandler) Deadlines(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.GetDeadlineReminders)
}

type reminderView func(ctx context.Context, userID string) (*domain.ReminderBundle, error)

func (h *ReminderHandler) serve(w http.ResponseWriter, r *http.Request, view reminderView) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	q := domain.ReminderQuery{UserID: strings.TrimSpace(claims.UserID)}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	bundle, err := view(r.Context(), q.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}
