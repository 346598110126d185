// Package store opens the record store selected by configuration.
package store

import (
	"context"
	"fmt"

	"github.com/shukatsu-reminders/internal/application/reminder"
	"github.com/shukatsu-reminders/internal/config"
	"github.com/shukatsu-reminders/internal/domain"
	"github.com/shukatsu-reminders/internal/infrastructure/dynamo"
	"github.com/shukatsu-reminders/internal/infrastructure/sqlite"
)

// Store is a reminder gateway that can also be written to.
type Store interface {
	reminder.Gateway
	PutCompany(ctx context.Context, c *domain.Company) error
	PutSelection(ctx context.Context, s *domain.Selection) error
	PutEvent(ctx context.Context, e *domain.Event) error
}

var (
	_ Store = (*dynamo.Gateway)(nil)
	_ Store = (*sqlite.Store)(nil)
)

// Open returns the configured store and a function releasing its resources.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.StoreDynamo:
		client := dynamo.NewClient(cfg)
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return dynamo.NewGateway(client, cfg.DynamoTables), func() error { return nil }, nil
	case config.StoreSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
