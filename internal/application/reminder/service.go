package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shukatsu-reminders/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Generator names, used in logs and metric labels.
const (
	GeneratorEmailCheck = "email_check"
	GeneratorDeadline   = "deadline"
)

const defaultConcurrency = 4

// Gateway is the read-only view of the record store the generators query.
// Each call sees the latest committed state; consistency across calls is not assumed.
type Gateway interface {
	// ListSelections returns the user's selections whose status is in statusIn
	// and whose updated_at is strictly before updatedBefore, company joined.
	ListSelections(ctx context.Context, userID string, statusIn []domain.SelectionStatus, updatedBefore time.Time) ([]domain.Selection, error)
	// ListEventsForCompany returns events with start_time in [startAfter, startBefore).
	ListEventsForCompany(ctx context.Context, companyID string, startAfter, startBefore time.Time) ([]domain.Event, error)
	// ListDeadlineEvents returns deadline events with start_time in [startAfter, startBefore], company joined.
	ListDeadlineEvents(ctx context.Context, startAfter, startBefore time.Time) ([]domain.Event, error)
	// GetSelection returns domain.ErrNotFound when the user has no selection for the company.
	GetSelection(ctx context.Context, userID, companyID string) (*domain.Selection, error)
}

// Recorder observes generator runs.
type Recorder interface {
	ObserveGenerator(generator string, elapsed time.Duration, reminders []domain.Reminder, err error)
}

type Service interface {
	GetAllReminders(ctx context.Context, userID string) (*domain.ReminderBundle, error)
	GetEmailCheckReminders(ctx context.Context, userID string) (*domain.ReminderBundle, error)
	GetDeadlineReminders(ctx context.Context, userID string) (*domain.ReminderBundle, error)
}

type ServiceDeps struct {
	Gateway  Gateway
	Clock    clock.Clock
	Messages *Messages
	Recorder Recorder
	// Concurrency bounds the per-candidate sub-queries of one generator.
	Concurrency int
}

type service struct {
	gateway     Gateway
	clock       clock.Clock
	messages    *Messages
	recorder    Recorder
	concurrency int
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		gateway:     deps.Gateway,
		clock:       deps.Clock,
		messages:    deps.Messages,
		recorder:    deps.Recorder,
		concurrency: deps.Concurrency,
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.messages == nil {
		s.messages = MustMessages(DefaultLocale)
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultConcurrency
	}
	return s
}

func (s *service) GetAllReminders(ctx context.Context, userID string) (*domain.ReminderBundle, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}

	var emails, deadlines outcome
	var g errgroup.Group
	g.Go(func() error {
		emails = s.run(ctx, GeneratorEmailCheck, userID, s.emailCheckReminders)
		return nil
	})
	g.Go(func() error {
		deadlines = s.run(ctx, GeneratorDeadline, userID, s.deadlineReminders)
		return nil
	})
	_ = g.Wait() // tasks never return an error; failures are carried by outcome

	merged := make([]domain.Reminder, 0, len(emails.reminders)+len(deadlines.reminders))
	merged = append(merged, emails.reminders...)
	merged = append(merged, deadlines.reminders...)
	rank(merged)
	return newBundle(truncate(merged, domain.MaxReminders)), nil
}

func (s *service) GetEmailCheckReminders(ctx context.Context, userID string) (*domain.ReminderBundle, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	out := s.run(ctx, GeneratorEmailCheck, userID, s.emailCheckReminders)
	return newBundle(out.reminders), nil
}

func (s *service) GetDeadlineReminders(ctx context.Context, userID string) (*domain.ReminderBundle, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	out := s.run(ctx, GeneratorDeadline, userID, s.deadlineReminders)
	rank(out.reminders)
	return newBundle(out.reminders), nil
}

func checkUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required: %w", domain.ErrBadRequest)
	}
	return nil
}

// outcome is the result of one generator run. A failed run carries the
// reason and no reminders; it never escapes to the caller as an error.
type outcome struct {
	reminders []domain.Reminder
	err       error
}

type generatorFunc func(ctx context.Context, userID string, now time.Time) ([]domain.Reminder, error)

// run evaluates the clock once and hands the same instant to the whole batch.
func (s *service) run(ctx context.Context, name, userID string, gen generatorFunc) outcome {
	now := s.clock.Now().UTC()
	reminders, err := gen(ctx, userID, now)
	s.recorder.ObserveGenerator(name, s.clock.Since(now), reminders, err)
	if err != nil {
		slog.WarnContext(ctx, "reminder generator failed", "generator", name, "user_id", userID, "err", err)
		return outcome{err: err}
	}
	return outcome{reminders: reminders}
}

type nopRecorder struct{}

func (nopRecorder) ObserveGenerator(string, time.Duration, []domain.Reminder, error) {}

// wholeDays floors d to whole days, never below zero.
func wholeDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// collect drops empty slots, keeping candidate order.
func collect(slots []*domain.Reminder) []domain.Reminder {
	out := make([]domain.Reminder, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
