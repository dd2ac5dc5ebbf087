// Package cli implements the civic tracker admin commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"civictracker/backend/internal/complaint"
	"civictracker/backend/internal/config"
	"civictracker/backend/internal/feed"
	"civictracker/backend/internal/logger"
	"civictracker/backend/internal/models"
	"civictracker/backend/internal/snapshot"
	"civictracker/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var formatFlag string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "civic-admin",
	Short:         "Administer civic complaints",
	Long:          "Staff tooling for the civic complaint tracker: inspect, transition, reassign and delete complaints, and print analytics.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// deps are the services a command runs against.
type deps struct {
	manager   *complaint.Manager
	snapshots *snapshot.Cache
	close     func()
}

// openDeps connects to the configured store. Replaced in tests.
var openDeps = func(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.Discard()

	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	store := storage.NewStorageService(db, cfg.StoreTimeout, log)

	// With Redis configured, admin writes invalidate the server's snapshot
	// and reach live dashboards like any other write.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			rdb = nil
		}
	}

	cache := snapshot.NewCache(store, rdb, cfg.SnapshotTTL, nil, log)
	opts := []complaint.Option{complaint.WithInvalidator(cache)}
	if rdb != nil {
		opts = append(opts, complaint.WithNotifier(feed.NewPublisher(rdb, nil, log)))
	}

	return &deps{
		manager:   complaint.NewManager(store, log, opts...),
		snapshots: cache,
		close: func() {
			if rdb != nil {
				_ = rdb.Close()
			}
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

// withDeps opens the services, runs fn and closes them again.
func withDeps(cmd *cobra.Command, fn func(d *deps) error) error {
	d, err := openDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()
	return fn(d)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &models.ValidationError{Field: "id", Value: raw}
	}
	return uint(id), nil
}

func printJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func textFormat() bool {
	return formatFlag == "text"
}
