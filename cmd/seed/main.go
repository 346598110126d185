// Command seed loads companies, selections and events from a JSON fixture
// file into the configured store. With -token it also prints a bearer token.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/shukatsu-reminders/internal/config"
	jwtinfra "github.com/shukatsu-reminders/internal/infrastructure/jwt"
	"github.com/shukatsu-reminders/internal/infrastructure/store"
	"github.com/shukatsu-reminders/internal/pkg/logging"
)

func main() {
	file := flag.String("file", "fixtures.json", "fixture file to load")
	tokenFor := flag.String("token", "", "print a signed bearer token for this user id")
	flag.Parse()

	envErr := godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat))
	if envErr != nil {
		slog.Debug("no .env file found, reading from environment")
	}

	if err := run(context.Background(), cfg, *file, *tokenFor); err != nil {
		slog.Error("seed failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, file, tokenFor string) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fx fixtures
	if err := json.Unmarshal(raw, &fx); err != nil {
		return fmt.Errorf("parse fixtures: %w", err)
	}
	if err := fx.prepare(); err != nil {
		return err
	}

	s, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	n, err := fx.load(ctx, s)
	if err != nil {
		return err
	}
	slog.Info("fixtures loaded", "file", file, "store", cfg.StoreDriver, "records", n)

	if tokenFor != "" {
		p, err := jwtinfra.NewProvider(cfg)
		if err != nil {
			return fmt.Errorf("jwt provider: %w", err)
		}
		token, err := p.Sign(tokenFor)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Println(token)
	}
	return nil
}
