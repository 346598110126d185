package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/shukatsu-reminders/internal/config"
	"github.com/shukatsu-reminders/internal/domain"
)

// Gateway serves the reminder queries from the three DynamoDB tables,
// joining companies client-side.
type Gateway struct {
	Companies  *CompanyRepo
	Selections *SelectionRepo
	Events     *EventRepo
}

func NewGateway(client API, tables config.DynamoTables) *Gateway {
	return &Gateway{
		Companies:  NewCompanyRepo(client, tables.Companies),
		Selections: NewSelectionRepo(client, tables.Selections),
		Events:     NewEventRepo(client, tables.Events),
	}
}

func (g *Gateway) ListSelections(ctx context.Context, userID string, statusIn []domain.SelectionStatus, updatedBefore time.Time) ([]domain.Selection, error) {
	selections, err := g.Selections.ListByUser(ctx, userID, statusIn, updatedBefore)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(selections))
	for i, s := range selections {
		ids[i] = s.CompanyID
	}
	companies, err := g.Companies.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range selections {
		selections[i].Company = companies[selections[i].CompanyID]
	}
	return selections, nil
}

func (g *Gateway) ListEventsForCompany(ctx context.Context, companyID string, startAfter, startBefore time.Time) ([]domain.Event, error) {
	return g.Events.ListByCompany(ctx, companyID, startAfter, startBefore)
}

// ListDeadlineEvents is not scoped to a user: deadlines belong to companies.
func (g *Gateway) ListDeadlineEvents(ctx context.Context, startAfter, startBefore time.Time) ([]domain.Event, error) {
	events, err := g.Events.ListByType(ctx, domain.EventDeadline, startAfter, startBefore)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.CompanyID
	}
	companies, err := g.Companies.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Company = companies[events[i].CompanyID]
	}
	return events, nil
}

func (g *Gateway) GetSelection(ctx context.Context, userID, companyID string) (*domain.Selection, error) {
	return g.Selections.Get(ctx, userID, companyID)
}

func (g *Gateway) PutCompany(ctx context.Context, c *domain.Company) error {
	if err := g.Companies.Put(ctx, c); err != nil {
		return fmt.Errorf("put company %s: %w", c.CompanyID, err)
	}
	return nil
}

func (g *Gateway) PutSelection(ctx context.Context, s *domain.Selection) error {
	if err := g.Selections.Put(ctx, s); err != nil {
		return fmt.Errorf("put selection %s/%s: %w", s.UserID, s.CompanyID, err)
	}
	return nil
}

func (g *Gateway) PutEvent(ctx context.Context, e *domain.Event) error {
	if err := g.Events.Put(ctx, e); err != nil {
		return fmt.Errorf("put event %s: %w", e.EventID, err)
	}
	return nil
}
