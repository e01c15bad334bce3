package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"gagforge/achievekit"
)

// noinspection GoUnusedExportedFunction
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	initStart := time.Now()

	logger.Info("Loading GagForge achievements plugin...")

	cfg, err := achievekit.ParseConfig()
	if err != nil {
		logger.Error("Failed to parse achievements config: %v", err)
		return err
	}
	logger.Info("Achievement uploads every %s-%s, count push delay %s", cfg.SaveIntervalMin, cfg.SaveIntervalMax, cfg.CountPushDelay)

	if err := achievekit.RegisterRpcs(initializer); err != nil {
		logger.Error("Failed to register achievement RPCs: %v", err)
		return err
	}

	logger.Info("GagForge achievements plugin loaded in '%d' msec.", time.Since(initStart).Milliseconds())
	return nil
}
