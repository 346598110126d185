package domain

import "time"

// ReminderKind is the closed set of reminder variants.
type ReminderKind string

const (
	KindEmailCheck         ReminderKind = "email_check"
	KindDeadlineNotApplied ReminderKind = "deadline_not_applied"
	KindDeadlineApplied    ReminderKind = "deadline_applied"
)

type ReminderPriority string

const (
	PriorityHigh   ReminderPriority = "high"
	PriorityMedium ReminderPriority = "medium"
	PriorityLow    ReminderPriority = "low"
)

// Rank orders priorities for display: lower shows first.
func (p ReminderPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// MaxReminders bounds the merged reminder list.
const MaxReminders = 50

// NoDaysRemaining is the sort key used for reminders without a deadline.
const NoDaysRemaining = 999

// Reminder is a derived notice, recomputed on every request and never stored.
// DaysPassed is set only for KindEmailCheck; DaysRemaining and Deadline only
// for the deadline kinds.
type Reminder struct {
	ID            string           `json:"id"`
	Kind          ReminderKind     `json:"kind"`
	CompanyID     string           `json:"company_id"`
	CompanyName   string           `json:"company_name"`
	Message       string           `json:"message"`
	Priority      ReminderPriority `json:"priority"`
	DaysRemaining *int             `json:"days_remaining,omitempty"`
	DaysPassed    *int             `json:"days_passed,omitempty"`
	Deadline      *time.Time       `json:"deadline,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// DaysRemainingKey returns DaysRemaining, or NoDaysRemaining when absent.
func (r Reminder) DaysRemainingKey() int {
	if r.DaysRemaining == nil {
		return NoDaysRemaining
	}
	return *r.DaysRemaining
}

// ReminderBundle is the response shape of every reminder view.
type ReminderBundle struct {
	Reminders  []Reminder `json:"reminders"`
	TotalCount int        `json:"total_count"`
}

// ReminderQuery is the validated input of the reminder views.
type ReminderQuery struct {
	UserID string `json:"user_id" validate:"required"`
}
