// Package participation resolves the per-(sale, account) contribution
// record as an asynchronous fact with last-resolved-wins semantics.
package participation

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Record is the known contribution of one account against one sale.
type Record struct {
	TokenAmount  decimal.Decimal
	NativeAmount decimal.Decimal
}

// HasContribution reports whether the record shows a prior contribution.
func (r Record) HasContribution() bool {
	return r.TokenAmount.IsPositive() || r.NativeAmount.IsPositive()
}

// Status describes the resolution state of the current (sale, account) pair.
type Status int

const (
	// StatusNotApplicable means no account is set; no lookup is issued.
	StatusNotApplicable Status = iota
	// StatusPending means a lookup is in flight.
	StatusPending
	// StatusResolved means the record is current.
	StatusResolved
	// StatusUnknown means the last lookup failed; the record may be stale
	// but the rest of the UI is not blocked.
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusNotApplicable:
		return "not applicable"
	case StatusPending:
		return "pending"
	case StatusResolved:
		return "resolved"
	case StatusUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Reader performs the underlying chain lookup.
type Reader interface {
	ReadParticipation(ctx context.Context, saleAddr, account common.Address) (Record, error)
}

// Resolver owns the participation record for the active (sale, account)
// pair. Each Refresh bumps a generation counter; a lookup whose generation
// has been superseded discards its result silently, so a stale response can
// never overwrite fresher state.
type Resolver struct {
	reader Reader
	logger zerolog.Logger

	mu      sync.Mutex
	gen     uint64
	status  Status
	record  Record
	sale    common.Address
	account common.Address
}

// NewResolver constructs a Resolver around a chain reader.
func NewResolver(reader Reader, logger zerolog.Logger) *Resolver {
	return &Resolver{
		reader: reader,
		logger: logger.With().Str("component", "participation_resolver").Logger(),
		status: StatusNotApplicable,
	}
}

// Refresh re-targets the resolver at a (sale, account) pair and starts a
// lookup. An empty account commits NotApplicable immediately without
// issuing a lookup. The call returns once the lookup goroutine is started;
// Wait or Snapshot observe the outcome.
func (r *Resolver) Refresh(ctx context.Context, saleAddr, account common.Address) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.sale = saleAddr
	r.account = account

	if account == (common.Address{}) {
		r.status = StatusNotApplicable
		r.record = Record{}
		r.mu.Unlock()
		return
	}

	r.status = StatusPending
	r.mu.Unlock()

	go r.resolve(ctx, gen, saleAddr, account)
}

func (r *Resolver) resolve(ctx context.Context, gen uint64, saleAddr, account common.Address) {
	record, err := r.reader.ReadParticipation(ctx, saleAddr, account)

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen {
		// Superseded while in flight; drop the response.
		r.logger.Debug().
			Str("sale", saleAddr.Hex()).
			Str("account", account.Hex()).
			Msg("discarding superseded participation lookup")
		return
	}

	if err != nil {
		r.status = StatusUnknown
		r.logger.Warn().Err(err).
			Str("sale", saleAddr.Hex()).
			Str("account", account.Hex()).
			Msg("participation lookup failed")
		return
	}

	r.status = StatusResolved
	r.record = record
}

// Wait blocks until the in-flight lookup settles or the context ends. It
// returns the settled snapshot; a pending status is only possible when the
// context expired first.
func (r *Resolver) Wait(ctx context.Context) (Record, Status) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		record, status := r.Snapshot()
		if status != StatusPending {
			return record, status
		}
		select {
		case <-ctx.Done():
			return record, status
		case <-ticker.C:
		}
	}
}

// Snapshot returns the current record and its resolution status.
func (r *Resolver) Snapshot() (Record, Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record, r.status
}

// Invalidate marks the current record stale without changing the target
// pair, typically after a successful contribution.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusResolved {
		r.status = StatusUnknown
	}
}
