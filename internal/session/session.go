// Package session composes the sale snapshot, wallet, participation
// resolver, and transaction flows into one stateful unit. It owns the
// latches the button projection depends on and is the only place the
// individual flows are wired together.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"launchpad-client/internal/button"
	"launchpad-client/internal/buy"
	"launchpad-client/internal/chain"
	"launchpad-client/internal/fetcher"
	"launchpad-client/internal/notify"
	"launchpad-client/internal/owner"
	"launchpad-client/internal/participation"
	"launchpad-client/internal/sale"
	"launchpad-client/internal/wallet"
)

var (
	// ErrNotLoaded indicates no sale snapshot has been fetched yet.
	ErrNotLoaded = errors.New("session: sale not loaded")
	// ErrSaleClosed indicates the sale window does not accept contributions.
	ErrSaleClosed = errors.New("session: sale is not in progress")
)

// ChainReader is the read surface the session needs from the chain.
type ChainReader interface {
	ReadBalance(ctx context.Context, account common.Address) (decimal.Decimal, error)
	ReadParticipation(ctx context.Context, saleAddr, account common.Address) (participation.Record, error)
	ReadRaised(ctx context.Context, saleAddr common.Address) (decimal.Decimal, error)
	ServiceFee(ctx context.Context) (decimal.Decimal, error)
	TokenInfo(ctx context.Context, tokenAddr common.Address) (sale.TokenMeta, error)
}

// Options wire the session's collaborators.
type Options struct {
	SaleAddress string
	Fetcher     fetcher.SaleFetcher
	Reader      ChainReader
	Submitter   buy.Submitter
	Finisher    owner.Finisher
	Wallet      *wallet.Wallet
	Notifier    notify.Notifier
	IsAdmin     func(common.Address) bool
	Now         func() int64
}

// Session holds the live state for one (sale, account) pair.
type Session struct {
	opts     Options
	resolver *participation.Resolver
	notifier notify.Notifier
	logger   zerolog.Logger
	now      func() int64

	mu           sync.Mutex
	cfg          sale.Config
	loaded       bool
	balance      decimal.Decimal
	serviceFee   decimal.Decimal
	haveFee      bool
	initDone     bool
	txDone       bool
	needsReload  bool
	orchestrator *buy.Orchestrator
	controller   *owner.Controller
}

// New constructs a session. Flows that need the token name are built
// lazily after the first successful load.
func New(opts Options, logger zerolog.Logger) *Session {
	s := &Session{
		opts:     opts,
		notifier: opts.Notifier,
		logger:   logger.With().Str("component", "session").Logger(),
		now:      opts.Now,
	}
	if s.now == nil {
		s.now = func() int64 { return time.Now().Unix() }
	}
	s.resolver = participation.NewResolver(opts.Reader, logger)
	s.controller = owner.NewController(opts.Finisher, opts.Notifier, s.markStale, logger)
	return s
}

// NewChainBackend binds a signer to the chain client so the buy and owner
// flows never see the signing capability directly.
func NewChainBackend(client *chain.Client, signer chain.Signer) *ChainBackend {
	return &ChainBackend{client: client, signer: signer}
}

// ChainBackend adapts the chain client's write surface to the flow
// interfaces.
type ChainBackend struct {
	client *chain.Client
	signer chain.Signer
}

var (
	_ buy.Submitter  = (*ChainBackend)(nil)
	_ owner.Finisher = (*ChainBackend)(nil)
)

func (b *ChainBackend) EstimateParticipate(ctx context.Context, saleAddr common.Address, roundID uint64, valueWei decimal.Decimal) (uint64, error) {
	return b.client.EstimateParticipate(ctx, b.signer, saleAddr, roundID, valueWei)
}

func (b *ChainBackend) SubmitParticipate(ctx context.Context, saleAddr common.Address, roundID uint64, valueWei decimal.Decimal) (buy.TxWaiter, error) {
	handle, err := b.client.SubmitParticipate(ctx, b.signer, saleAddr, roundID, valueWei)
	if err != nil {
		return nil, err
	}
	return handle, nil
}

func (b *ChainBackend) SubmitFinish(ctx context.Context, saleAddr common.Address) (owner.TxWaiter, error) {
	handle, err := b.client.SubmitFinish(ctx, b.signer, saleAddr)
	if err != nil {
		return nil, err
	}
	return handle, nil
}

// Refresh fetches the sale snapshot and re-reads the chain facts derived
// from it. The participation lookup is started asynchronously; callers
// that need it settled use WaitSettled.
func (s *Session) Refresh(ctx context.Context) error {
	cfg, err := s.opts.Fetcher.FetchSale(ctx, s.opts.SaleAddress)
	if err != nil {
		return err
	}

	if raised, rErr := s.opts.Reader.ReadRaised(ctx, cfg.Address); rErr != nil {
		s.logger.Warn().Err(rErr).Msg("raised lookup failed; keeping fetched value")
	} else {
		cfg.Raised = raised
	}

	// Some sale records carry only the token address; fill the display
	// metadata from the contract itself.
	if cfg.Token.Name == "" && cfg.Token.Address != (common.Address{}) {
		if meta, tErr := s.opts.Reader.TokenInfo(ctx, cfg.Token.Address); tErr != nil {
			s.logger.Debug().Err(tErr).Str("token", cfg.Token.Address.Hex()).Msg("token metadata lookup failed")
		} else {
			cfg.Token = meta
		}
	}

	s.mu.Lock()
	s.cfg = cfg
	s.loaded = true
	s.needsReload = false
	if s.orchestrator == nil {
		s.orchestrator = buy.NewOrchestrator(s.opts.Submitter, s.notifier, cfg.Token.Name, s.afterContribution, s.logger)
	}
	account := s.accountLocked()
	s.mu.Unlock()

	if account != (common.Address{}) {
		if balance, bErr := s.opts.Reader.ReadBalance(ctx, account); bErr != nil {
			s.logger.Warn().Err(bErr).Str("account", account.Hex()).Msg("balance lookup failed")
		} else {
			s.mu.Lock()
			s.balance = balance
			s.mu.Unlock()
		}
	}

	s.mu.Lock()
	haveFee := s.haveFee
	s.mu.Unlock()
	if !haveFee {
		if fee, fErr := s.opts.Reader.ServiceFee(ctx); fErr != nil {
			s.logger.Debug().Err(fErr).Msg("service fee lookup failed")
		} else {
			s.mu.Lock()
			s.serviceFee = fee
			s.haveFee = true
			s.mu.Unlock()
		}
	}

	s.resolver.Refresh(ctx, cfg.Address, account)
	return nil
}

func (s *Session) accountLocked() common.Address {
	if s.opts.Wallet == nil || !s.opts.Wallet.Connected() {
		return common.Address{}
	}
	return s.opts.Wallet.Address()
}

// WaitSettled blocks until the participation lookup settles or ctx ends,
// then latches the init state so the button can never fall back to its
// wait state.
func (s *Session) WaitSettled(ctx context.Context) (participation.Record, participation.Status) {
	record, status := s.resolver.Wait(ctx)
	if status != participation.StatusPending {
		s.mu.Lock()
		s.initDone = true
		s.mu.Unlock()
	}
	return record, status
}

// Config returns the current sale snapshot.
func (s *Session) Config() (sale.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return sale.Config{}, ErrNotLoaded
	}
	return s.cfg, nil
}

// Balance returns the last observed wallet balance in wei.
func (s *Session) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// ServiceFee returns the factory service fee in wei, if resolved.
func (s *Session) ServiceFee() (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serviceFee, s.haveFee
}

// Participation returns the current resolution snapshot.
func (s *Session) Participation() (participation.Record, participation.Status) {
	return s.resolver.Snapshot()
}

// Window evaluates the sale window at the current clock.
func (s *Session) Window() sale.WindowState {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	return sale.Window(cfg, s.now())
}

// NeedsReload reports whether a privileged action changed the sale on
// chain since the last refresh.
func (s *Session) NeedsReload() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsReload
}

// ButtonState projects every upstream fact into the call-to-action state.
func (s *Session) ButtonState() button.State {
	record, status := s.resolver.Snapshot()

	s.mu.Lock()
	if status != participation.StatusPending {
		s.initDone = true
	}
	in := button.Inputs{
		Connected:           s.opts.Wallet != nil && s.opts.Wallet.Connected(),
		ParticipationStatus: status,
		HasParticipated:     record.HasContribution(),
		Window:              sale.Window(s.cfg, s.now()),
		TxActive:            s.orchestrator != nil && s.orchestrator.Active(),
		TxDone:              s.txDone,
		TokenName:           s.cfg.Token.Name,
		InitDone:            s.initDone,
	}
	s.mu.Unlock()

	return button.Project(in)
}

// SubmitContribution validates and submits one contribution. A verdict
// other than Valid is surfaced as a notification and returned without
// touching the chain. The amount is in display units and is clamped to
// the sale maximum before validation.
func (s *Session) SubmitContribution(ctx context.Context, amount decimal.Decimal) (buy.Outcome, sale.Verdict, error) {
	if s.opts.Wallet == nil || !s.opts.Wallet.Connected() {
		return buy.Outcome{}, sale.Valid, wallet.ErrNotConnected
	}

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return buy.Outcome{}, sale.Valid, ErrNotLoaded
	}
	cfg := s.cfg
	balance := s.balance
	orchestrator := s.orchestrator
	s.mu.Unlock()

	window := sale.Window(cfg, s.now())
	if window.Phase != sale.PhaseInProgress {
		return buy.Outcome{}, sale.Valid, ErrSaleClosed
	}

	record, _ := s.resolver.Snapshot()

	clamped := sale.ClampAmount(amount, cfg)
	verdict := sale.ValidateContribution(clamped, cfg, balance, record.TokenAmount)
	if verdict != sale.Valid {
		s.logger.Info().
			Str("amount", clamped.String()).
			Str("verdict", verdict.String()).
			Msg("contribution rejected before submission")
		s.notifyVerdict(verdict)
		return buy.Outcome{}, verdict, nil
	}

	roundID, _, _ := sale.ActiveRound(cfg, s.now())
	outcome, err := orchestrator.Submit(ctx, cfg.Address, roundID, sale.ToWei(clamped))
	if err != nil {
		return buy.Outcome{}, sale.Valid, err
	}
	return outcome, sale.Valid, nil
}

func (s *Session) notifyVerdict(verdict sale.Verdict) {
	if s.notifier == nil {
		return
	}
	message := "Buy Value Not Valid"
	if verdict == sale.AlreadyParticipated {
		message = "Sorry, already participated"
	}
	note := notify.Note{Kind: notify.KindError, Title: "Error", Message: message, Duration: 3 * time.Second}
	if err := s.notifier.Notify(context.Background(), note); err != nil {
		s.logger.Error().Err(err).Msg("failed to dispatch notification")
	}
}

// afterContribution is the success signal from the buy flow. Cached facts
// are marked stale; nothing is re-fetched here.
func (s *Session) afterContribution() {
	s.resolver.Invalidate()
	s.mu.Lock()
	s.txDone = true
	s.needsReload = true
	s.mu.Unlock()
}

func (s *Session) markStale() {
	s.mu.Lock()
	s.needsReload = true
	s.mu.Unlock()
}

// OwnerAction returns the label of the privileged call the current raise
// implies, and whether the current account may issue it.
func (s *Session) OwnerAction() (owner.Action, bool, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return owner.ActionFinalize, false, ErrNotLoaded
	}
	cfg := s.cfg
	s.mu.Unlock()

	account := s.accountLocked()
	isAdmin := s.opts.IsAdmin != nil && s.opts.IsAdmin(account)
	return owner.Decide(cfg), owner.Eligible(cfg, account, isAdmin, s.now()), nil
}

// ConfirmOwnerAction submits the finish call for the current sale.
func (s *Session) ConfirmOwnerAction(ctx context.Context) error {
	if s.opts.Wallet == nil || !s.opts.Wallet.Connected() {
		return wallet.ErrNotConnected
	}

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	cfg := s.cfg
	s.mu.Unlock()

	account := s.opts.Wallet.Address()
	isAdmin := s.opts.IsAdmin != nil && s.opts.IsAdmin(account)
	return s.controller.Confirm(ctx, cfg, account, isAdmin, s.now())
}
