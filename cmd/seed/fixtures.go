package main

import (
	"context"
	"fmt"

	"github.com/shukatsu-reminders/internal/domain"
	"github.com/shukatsu-reminders/internal/infrastructure/store"
	"github.com/shukatsu-reminders/internal/pkg/id"
	"github.com/shukatsu-reminders/internal/pkg/validate"
)

type fixtures struct {
	Companies  []domain.Company   `json:"companies" validate:"dive"`
	Selections []domain.Selection `json:"selections" validate:"dive"`
	Events     []domain.Event     `json:"events" validate:"dive"`
}

// prepare assigns ULIDs to companies and events that have none, then validates.
func (f *fixtures) prepare() error {
	for i := range f.Companies {
		if f.Companies[i].CompanyID == "" {
			f.Companies[i].CompanyID = id.New()
		}
	}
	for i := range f.Events {
		if f.Events[i].EventID == "" {
			f.Events[i].EventID = id.New()
		}
	}
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid fixtures: %w", err)
	}
	return nil
}

// load writes all records and returns how many were written.
func (f *fixtures) load(ctx context.Context, s store.Store) (int, error) {
	n := 0
	for i := range f.Companies {
		if err := s.PutCompany(ctx, &f.Companies[i]); err != nil {
			return n, err
		}
		n++
	}
	for i := range f.Selections {
		if err := s.PutSelection(ctx, &f.Selections[i]); err != nil {
			return n, err
		}
		n++
	}
	for i := range f.Events {
		if err := s.PutEvent(ctx, &f.Events[i]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
