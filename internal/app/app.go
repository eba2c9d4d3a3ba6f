package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"launchpad-client/internal/chain"
	"launchpad-client/internal/config"
	"launchpad-client/internal/fetcher"
	"launchpad-client/internal/notify"
	"launchpad-client/internal/session"
	"launchpad-client/internal/storage"
	"launchpad-client/internal/wallet"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newChain() *chain.Client {
	return chain.NewClient(chain.Options{
		RPCURL:         a.Config.Chain.RPCURL,
		ChainID:        a.Config.Chain.ChainID,
		RequestTimeout: a.Config.Chain.RequestTimeout,
		ConfirmTimeout: a.Config.Chain.ConfirmTimeout,
		FactoryAddress: a.Config.Chain.FactoryAddress,
	}, a.Logger)
}

func (a *App) newFetcher() *fetcher.API {
	return fetcher.NewAPI(fetcher.APIOptions{
		BaseURL:   a.Config.Launchpad.APIBaseURL,
		Timeout:   a.Config.Launchpad.RequestTimeout,
		UserAgent: a.Config.Launchpad.UserAgent,
	}, a.Logger)
}

func (a *App) newWallet() (*wallet.Wallet, error) {
	return wallet.New(a.Config.Wallet.PrivateKey)
}

// newNotifier always includes the log sink; Telegram is layered on when
// configured.
func (a *App) newNotifier() notify.Notifier {
	notifiers := notify.Multi{notify.NewLogNotifier(a.Logger)}
	if a.Config.Notify.Telegram.Enabled {
		cfg := a.Config.Notify.Telegram
		notifiers = append(notifiers, notify.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger))
	}
	return notifiers
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// newSession wires the full session stack around a shared chain client.
func (a *App) newSession(saleAddress string) (*session.Session, error) {
	if saleAddress == "" {
		saleAddress = a.Config.Launchpad.SaleAddress
	}

	w, err := a.newWallet()
	if err != nil {
		return nil, err
	}

	client := a.newChain()
	backend := session.NewChainBackend(client, w)

	return session.New(session.Options{
		SaleAddress: saleAddress,
		Fetcher:     a.newFetcher(),
		Reader:      client,
		Submitter:   backend,
		Finisher:    backend,
		Wallet:      w,
		Notifier:    a.newNotifier(),
		IsAdmin:     a.Config.Chain.IsAdmin,
	}, a.Logger), nil
}

// StatusOptions configure the status command.
type StatusOptions struct {
	SaleAddress string
}

// BuyOptions configure a contribution submission.
type BuyOptions struct {
	SaleAddress string
	Amount      string
}

// FinishOptions configure the privileged finish command.
type FinishOptions struct {
	SaleAddress string
	Confirmed   bool
}

// WatchOptions configure the refresh loop.
type WatchOptions struct {
	SaleAddress string
}

// HistoryOptions configure the history command.
type HistoryOptions struct {
	SaleAddress string
	Limit       int
}

// ExportOptions hold parameters for exporting raise history.
type ExportOptions struct {
	SaleAddress string
	From        *time.Time
	To          *time.Time
	PNGPath     string
	CSVPath     string
	MaxPoints   int
}

// SimulateOptions hold the static sale snapshot for a dry-run evaluation.
type SimulateOptions struct {
	Amount       string
	Balance      string
	MinBuy       string
	MaxBuy       string
	SaleStart    int64
	SaleEnd      int64
	Now          int64
	TokenName    string
	Participated bool
}
