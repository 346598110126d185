package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shukatsu-reminders/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Deadlines between one and three days out (both inclusive) are reminded.
const (
	deadlineWindowStart = 24 * time.Hour
	deadlineWindowEnd   = 3 * 24 * time.Hour
)

// deadlineReminders flags deadline events in the near future, annotated with
// whether the user has applied to the company yet.
func (s *service) deadlineReminders(ctx context.Context, userID string, now time.Time) ([]domain.Reminder, error) {
	from, to := now.Add(deadlineWindowStart), now.Add(deadlineWindowEnd)
	events, err := s.gateway.ListDeadlineEvents(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list deadline events: %w", err)
	}

	candidates := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		if ev.Company == nil {
			slog.DebugContext(ctx, "deadline event without company skipped", "event_id", ev.EventID)
			continue
		}
		if ev.Type != domain.EventDeadline || ev.StartTime.Before(from) || ev.StartTime.After(to) {
			continue
		}
		candidates = append(candidates, ev)
	}

	slots := make([]*domain.Reminder, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, ev := range candidates {
		g.Go(func() error {
			sel, err := s.gateway.GetSelection(gctx, userID, ev.CompanyID)
			if errors.Is(err, domain.ErrNotFound) {
				sel = nil
			} else if err != nil {
				return fmt.Errorf("get selection for company %s: %w", ev.CompanyID, err)
			}
			r := s.newDeadlineReminder(ev, sel, now)
			slots[i] = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return collect(slots), nil
}

// splitRemaining breaks d into whole days and the whole hours left over.
func splitRemaining(d time.Duration) (days, hours int) {
	if d <= 0 {
		return 0, 0
	}
	days = wholeDays(d)
	hours = int((d - time.Duration(days)*24*time.Hour) / time.Hour)
	return days, hours
}

// hasApplied treats a missing selection like "Interested": nothing sent yet.
func hasApplied(sel *domain.Selection) bool {
	return sel != nil && sel.Status != domain.StatusInterested
}

func (s *service) newDeadlineReminder(ev domain.Event, sel *domain.Selection, now time.Time) domain.Reminder {
	days, hours := splitRemaining(ev.StartTime.Sub(now))
	deadline := ev.StartTime
	applied := hasApplied(sel)

	r := domain.Reminder{
		ID:            uuid.NewString(),
		Kind:          domain.KindDeadlineApplied,
		CompanyID:     ev.Company.CompanyID,
		CompanyName:   ev.Company.Name,
		Message:       s.messages.Deadline(ev.Company.Name, s.messages.TimeLeft(days, hours), applied),
		Priority:      domain.PriorityMedium,
		DaysRemaining: &days,
		Deadline:      &deadline,
		CreatedAt:     now,
	}
	if !applied {
		r.Kind = domain.KindDeadlineNotApplied
		if days <= 1 {
			r.Priority = domain.PriorityHigh
		}
	}
	return r
}
