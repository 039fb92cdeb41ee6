package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/warden/internal/config"
	"github.com/hpungsan/warden/internal/db"
	"github.com/hpungsan/warden/internal/discord"
	"github.com/hpungsan/warden/internal/logger"
	"github.com/hpungsan/warden/internal/ops"
	"github.com/hpungsan/warden/internal/retry"
	"github.com/hpungsan/warden/internal/web"
	"github.com/hpungsan/warden/internal/workflow"
)

// sweepInterval is how often retention runs while the gateway is up.
const sweepInterval = time.Hour

// runGateway wires the workflow to the gateway and blocks until ctx ends or
// a component fails. cfg must already be validated.
func runGateway(ctx context.Context, database *sql.DB, cfg *config.Config, token string, log *logger.Logger) error {
	guildID, err := strconv.ParseInt(cfg.GuildID, 10, 64)
	if err != nil {
		return fmt.Errorf("guild_id: %w", err)
	}
	authorID, err := strconv.ParseInt(cfg.UpstreamAuthorID, 10, 64)
	if err != nil {
		return fmt.Errorf("upstream_author_id: %w", err)
	}

	policy, err := workflow.ParseMatchPolicy(cfg.MatchPolicy)
	if err != nil {
		return err
	}
	var reviewChannelID int64
	if cfg.ReviewChannelID != "" {
		reviewChannelID, err = strconv.ParseInt(cfg.ReviewChannelID, 10, 64)
		if err != nil {
			return fmt.Errorf("review_channel_id: %w", err)
		}
	}

	session, err := discord.NewSession(token)
	if err != nil {
		return err
	}

	adapter := discord.NewAdapter(session, guildID, retry.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		Initial:     cfg.RetryInitial(),
		Max:         cfg.RetryMax(),
	})
	ctl := workflow.New(db.NewRecordStore(database), adapter, adapter, workflow.Options{
		UpstreamAuthorID: authorID,
		Roles:            cfg.Roles,
		SearchLimit:      cfg.SearchLimit,
		MatchPolicy:      policy,
		ReviewChannelID:  reviewChannelID,
	}, log)
	bot := discord.NewBot(session, ctl, guildID, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(ctx)
	})
	if cfg.RetentionDays > 0 {
		g.Go(func() error {
			sweepResolved(ctx, database, cfg.RetentionDays, sweepInterval, log)
			return nil
		})
	}

	if cfg.AdminAddr != "" {
		srv := web.NewServer(database, cfg, Version, cfg.AdminAddr)
		g.Go(func() error {
			return web.Serve(ctx, srv, log)
		})
	}

	log.Info("warden running", "guild_id", cfg.GuildID, "version", Version)
	return g.Wait()
}

// sweepResolved purges resolved records past the retention window every
// interval until ctx ends. Failures are logged and retried on the next tick.
func sweepResolved(ctx context.Context, database *sql.DB, days int, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		out, err := ops.Purge(ctx, database, ops.PurgeInput{OlderThanDays: &days})
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warn("retention sweep failed", "error", err)
		case err == nil && out.Purged > 0:
			log.Info("retention sweep", "purged", out.Purged, "older_than_days", days)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
