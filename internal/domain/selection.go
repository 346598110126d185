package domain

import "time"

// SelectionStatus is the stage a user has reached with one company.
// Values match the ones stored by the tracking app.
type SelectionStatus string

const (
	StatusInterested SelectionStatus = "Interested"
	StatusEntry      SelectionStatus = "Entry"
	StatusESSubmit   SelectionStatus = "ES_Submit"
	StatusInterview  SelectionStatus = "Interview"
	StatusOffer      SelectionStatus = "Offer"
	StatusRejected   SelectionStatus = "Rejected"
)

// Selection is a user's engagement with one company.
// PK: user_id, SK: company_id. UpdatedAt is stored as Unix seconds so it can be
// compared in filter expressions.
type Selection struct {
	UserID    string          `json:"user_id" dynamodbav:"user_id" validate:"required"`
	CompanyID string          `json:"company_id" dynamodbav:"company_id" validate:"required"`
	Status    SelectionStatus `json:"status" dynamodbav:"status" validate:"required,oneof=Interested Entry ES_Submit Interview Offer Rejected"`
	CreatedAt time.Time       `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time       `json:"updated" dynamodbav:"updated_at,unixtime"`
	Company   *Company        `json:"company,omitempty" dynamodbav:"-"` // nil when the company record is missing
}
