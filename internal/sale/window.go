package sale

// Phase is the discrete sale status derived from the configured time
// window and the supplied clock. It is recomputed on every evaluation and
// never stored as a source of truth.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "Not Started"
	case PhaseInProgress:
		return "In Progress"
	case PhaseFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// WindowState bundles the phase with the derived round booleans.
type WindowState struct {
	Phase         Phase
	IsStarted     bool
	IsPublicRound bool
}

// Window evaluates the sale phase at the given unix timestamp. The start
// instant counts as started and the end instant counts as finished; ties
// always resolve to the later phase.
func Window(cfg Config, now int64) WindowState {
	state := WindowState{
		IsStarted: now >= cfg.SaleStart,
	}

	switch {
	case now < cfg.SaleStart:
		state.Phase = PhaseNotStarted
	case now < cfg.SaleEnd:
		state.Phase = PhaseInProgress
	default:
		state.Phase = PhaseFinished
	}

	if public, ok := cfg.PublicRound(); ok {
		state.IsPublicRound = now >= public.Start && now < public.End
	} else {
		// No explicit public window recorded: the whole in-progress
		// span is treated as public.
		state.IsPublicRound = state.Phase == PhaseInProgress && cfg.PublicOnly()
	}

	return state
}

// ActiveRound returns the 1-based ordinal of the round whose window
// contains the given instant, along with the round itself. When no round
// window matches but the sale is in progress, the public round (or the
// first round) is returned as a fallback so the contract call still
// carries a round id.
func ActiveRound(cfg Config, now int64) (uint64, Round, bool) {
	for i, r := range cfg.Rounds {
		if now >= r.Start && now < r.End {
			return uint64(i + 1), r, true
		}
	}

	for i, r := range cfg.Rounds {
		if r.Kind == RoundPublic {
			return uint64(i + 1), r, false
		}
	}
	if len(cfg.Rounds) > 0 {
		return 1, cfg.Rounds[0], false
	}
	return 1, Round{Kind: RoundPublic, Start: cfg.SaleStart, End: cfg.SaleEnd}, false
}
