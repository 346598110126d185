package domain

import "time"

type EventType string

const (
	EventInterview EventType = "Interview"
	EventDeadline  EventType = "Deadline"
	EventSeminar   EventType = "Seminar"
	EventOther     EventType = "Other"
)

// Event is a calendar entry. CompanyID is empty for events not linked to a company.
type Event struct {
	EventID     string     `json:"id" dynamodbav:"event_id"`
	CompanyID   string     `json:"company_id,omitempty" dynamodbav:"company_id,omitempty"`
	Title       string     `json:"title" dynamodbav:"title" validate:"required"`
	Type        EventType  `json:"type" dynamodbav:"type" validate:"required,oneof=Interview Deadline Seminar Other"`
	StartTime   time.Time  `json:"start_time" dynamodbav:"start_time,unixtime" validate:"required"`
	EndTime     *time.Time `json:"end_time" dynamodbav:"end_time"`
	Location    *string    `json:"location" dynamodbav:"location"`
	Description *string    `json:"description" dynamodbav:"description"`
	Company     *Company   `json:"company,omitempty" dynamodbav:"-"`
}
