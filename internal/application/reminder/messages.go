package reminder

import (
	"fmt"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Catalog keys.
const (
	keyEmailCheck         = "reminder.email_check"
	keyHoursLeft          = "reminder.time.hours"
	keyDayAndHoursLeft    = "reminder.time.day_and_hours"
	keyDaysLeft           = "reminder.time.days"
	keyDeadlineApplied    = "reminder.deadline.applied"
	keyDeadlineNotApplied = "reminder.deadline.not_applied"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "ja"

var supportedLocales = []language.Tag{language.Japanese, language.English}

// Messages renders reminder texts in a single locale.
type Messages struct {
	printer *message.Printer
}

// NewMessages returns Messages for the closest supported match of locale.
// Unsupported but well-formed tags fall back to Japanese.
func NewMessages(locale string) (*Messages, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}
	_, idx, conf := language.NewMatcher(supportedLocales).Match(tag)
	if conf == language.No {
		idx = 0
	}
	return &Messages{printer: message.NewPrinter(supportedLocales[idx], message.Catalog(cat))}, nil
}

// MustMessages is like NewMessages but panics on a malformed locale.
func MustMessages(locale string) *Messages {
	m, err := NewMessages(locale)
	if err != nil {
		panic("reminder messages: " + err.Error())
	}
	return m
}

func newCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.Japanese))

	ja := language.Japanese
	jaEntries := map[string]string{
		keyEmailCheck:         "%sからメールが届いていませんか？最終更新から%d日経過しています",
		keyHoursLeft:          "%d時間",
		keyDayAndHoursLeft:    "1日と%d時間",
		keyDaysLeft:           "%d日",
		keyDeadlineApplied:    "%sの締切まであと%sです",
		keyDeadlineNotApplied: "%sの締切まであと%sです。応募しましたか？",
	}
	for key, msg := range jaEntries {
		if err := b.SetString(ja, key, msg); err != nil {
			return nil, fmt.Errorf("catalog %s/%s: %w", ja, key, err)
		}
	}

	en := language.English
	enEntries := map[string]catalog.Message{
		keyEmailCheck: plural.Selectf(2, "%d",
			"=1", "Have you received an email from %[1]s? It has been %[2]d day since the last update.",
			"other", "Have you received an email from %[1]s? It has been %[2]d days since the last update."),
		keyHoursLeft: plural.Selectf(1, "%d",
			"=1", "%d hour",
			"other", "%d hours"),
		keyDayAndHoursLeft: plural.Selectf(1, "%d",
			"=1", "1 day and %d hour",
			"other", "1 day and %d hours"),
		keyDaysLeft: plural.Selectf(1, "%d",
			"=1", "%d day",
			"other", "%d days"),
		keyDeadlineApplied:    catalog.String("The deadline for %s is in %s."),
		keyDeadlineNotApplied: catalog.String("The deadline for %s is in %s. Have you applied?"),
	}
	for key, msg := range enEntries {
		if err := b.Set(en, key, msg); err != nil {
			return nil, fmt.Errorf("catalog %s/%s: %w", en, key, err)
		}
	}
	return b, nil
}

// EmailCheck renders the "no news from this company" prompt.
func (m *Messages) EmailCheck(company string, daysPassed int) string {
	return m.printer.Sprintf(keyEmailCheck, company, daysPassed)
}

// TimeLeft renders the remaining time before a deadline.
func (m *Messages) TimeLeft(days, hours int) string {
	switch {
	case days == 0:
		return m.printer.Sprintf(keyHoursLeft, hours)
	case days == 1 && hours > 0:
		return m.printer.Sprintf(keyDayAndHoursLeft, hours)
	default:
		return m.printer.Sprintf(keyDaysLeft, days)
	}
}

func (m *Messages) Deadline(company, timeLeft string, applied bool) string {
	if applied {
		return m.printer.Sprintf(keyDeadlineApplied, company, timeLeft)
	}
	return m.printer.Sprintf(keyDeadlineNotApplied, company, timeLeft)
}
