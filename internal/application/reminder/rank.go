package reminder

import (
	"cmp"
	"slices"

	"github.com/shukatsu-reminders/internal/domain"
)

// rank sorts reminders in place by priority, then by days remaining.
// Reminders without a deadline sort after those with one; remaining ties
// keep generator order.
func rank(reminders []domain.Reminder) {
	slices.SortStableFunc(reminders, func(a, b domain.Reminder) int {
		if c := cmp.Compare(a.Priority.Rank(), b.Priority.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.DaysRemainingKey(), b.DaysRemainingKey())
	})
}

func truncate(reminders []domain.Reminder, n int) []domain.Reminder {
	if len(reminders) > n {
		return reminders[:n]
	}
	return reminders
}

// newBundle counts the list it is given, after any truncation.
func newBundle(reminders []domain.Reminder) *domain.ReminderBundle {
	if reminders == nil {
		reminders = []domain.Reminder{}
	}
	return &domain.ReminderBundle{Reminders: reminders, TotalCount: len(reminders)}
}
