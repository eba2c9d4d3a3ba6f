package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"launchpad-client/internal/sale"
	"launchpad-client/internal/scheduler"
	"launchpad-client/internal/session"
	"launchpad-client/internal/storage"
)

// Watch runs the periodic refresh loop: re-fetch the sale snapshot, log the
// derived state, and persist a raise observation when a database is
// configured.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sess, err := a.newSession(opts.SaleAddress)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; raise history disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Watch.Interval,
		AlignToStart: a.Config.Watch.AlignToBucket,
		RunOnStart:   true,
	}, a.Logger)

	a.Logger.Info().Msg("starting sale watch loop")
	err = sched.Run(ctx, func(tickCtx context.Context, bucket time.Time) error {
		return a.observeSale(tickCtx, sess, store, bucket)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch loop stopped")
	return nil
}

func (a *App) observeSale(ctx context.Context, sess *session.Session, store *storage.Store, bucket time.Time) error {
	if err := sess.Refresh(ctx); err != nil {
		return err
	}

	cfg, err := sess.Config()
	if err != nil {
		return err
	}

	window := sess.Window()
	a.Logger.Info().
		Str("sale", cfg.Address.Hex()).
		Str("phase", window.Phase.String()).
		Str("raised", sale.FromWei(cfg.Raised).StringFixed(4)).
		Str("softcap", sale.FromWei(cfg.SoftCap).StringFixed(4)).
		Msg("sale observed")

	if store == nil {
		return nil
	}

	sample := storage.RaiseSample{
		Sale:       normalizeAddress(cfg.Address.Hex()),
		Bucket:     bucket,
		RaisedWei:  cfg.Raised,
		SoftCapWei: cfg.SoftCap,
		Status:     window.Phase.String(),
	}
	if err := store.UpsertRaiseSample(ctx, sample); err != nil {
		a.Logger.Error().Err(err).Time("bucket", bucket).Msg("failed to upsert raise sample")
	}
	return nil
}
