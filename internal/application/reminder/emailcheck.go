package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shukatsu-reminders/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	// quietPeriod is how long a selection may go without updates before the
	// user is asked to check their inbox.
	quietPeriod = 7 * 24 * time.Hour
	// upcomingWindow suppresses the prompt when the company already has an event coming up.
	upcomingWindow = 7 * 24 * time.Hour
)

// awaitingReply are the stages in which the company owes the user an answer.
var awaitingReply = []domain.SelectionStatus{domain.StatusESSubmit, domain.StatusInterview}

// emailCheckReminders flags companies that have gone quiet after an
// application or interview.
func (s *service) emailCheckReminders(ctx context.Context, userID string, now time.Time) ([]domain.Reminder, error) {
	cutoff := now.Add(-quietPeriod)
	selections, err := s.gateway.ListSelections(ctx, userID, awaitingReply, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}

	candidates := make([]domain.Selection, 0, len(selections))
	for _, sel := range selections {
		if sel.Company == nil {
			slog.DebugContext(ctx, "selection without company skipped", "user_id", userID, "company_id", sel.CompanyID)
			continue
		}
		if !slices.Contains(awaitingReply, sel.Status) || !sel.UpdatedAt.Before(cutoff) {
			continue
		}
		candidates = append(candidates, sel)
	}

	windowEnd := now.Add(upcomingWindow)
	slots := make([]*domain.Reminder, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sel := range candidates {
		g.Go(func() error {
			events, err := s.gateway.ListEventsForCompany(gctx, sel.CompanyID, now, windowEnd)
			if err != nil {
				return fmt.Errorf("list events for company %s: %w", sel.CompanyID, err)
			}
			if hasEventBetween(events, now, windowEnd) {
				return nil
			}
			r := s.newEmailCheckReminder(sel, now)
			slots[i] = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return collect(slots), nil
}

// hasEventBetween reports whether any event starts in [from, to).
func hasEventBetween(events []domain.Event, from, to time.Time) bool {
	for _, ev := range events {
		if !ev.StartTime.Before(from) && ev.StartTime.Before(to) {
			return true
		}
	}
	return false
}

func (s *service) newEmailCheckReminder(sel domain.Selection, now time.Time) domain.Reminder {
	daysPassed := wholeDays(now.Sub(sel.UpdatedAt))
	return domain.Reminder{
		ID:          uuid.NewString(),
		Kind:        domain.KindEmailCheck,
		CompanyID:   sel.Company.CompanyID,
		CompanyName: sel.Company.Name,
		Message:     s.messages.EmailCheck(sel.Company.Name, daysPassed),
		Priority:    domain.PriorityLow,
		DaysPassed:  &daysPassed,
		CreatedAt:   now,
	}
}
