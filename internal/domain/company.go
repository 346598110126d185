package domain

import "time"

type Company struct {
	CompanyID string    `json:"id" dynamodbav:"company_id"`
	Name      string    `json:"name" dynamodbav:"name" validate:"required"`
	URL       *string   `json:"url" dynamodbav:"url"`
	Address   *string   `json:"address" dynamodbav:"address"`
	Industry  *int      `json:"industry" dynamodbav:"industry"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}
