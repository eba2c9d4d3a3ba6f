// Package button projects all upstream facts into the single
// call-to-action state. The projection is pure and idempotent; it is safe
// to recompute on every upstream change.
package button

import (
	"strings"

	"launchpad-client/internal/participation"
	"launchpad-client/internal/sale"
)

// Phase is the discrete position of the call-to-action.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseConnect
	PhaseBlocked
	PhaseReady
	PhaseSubmitting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseConnect:
		return "connect"
	case PhaseBlocked:
		return "blocked"
	case PhaseReady:
		return "ready"
	case PhaseSubmitting:
		return "submitting"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// State is what the surrounding application renders.
type State struct {
	Disabled bool
	Label    string
	Loading  bool
	Phase    Phase
}

// Inputs are the upstream facts the projection depends on. InitDone is the
// latch owned by the caller: once the initial participation resolution has
// completed it stays true, so the state can never fall back to the wait
// state.
type Inputs struct {
	Connected           bool
	ParticipationStatus participation.Status
	HasParticipated     bool
	Window              sale.WindowState
	TxActive            bool
	TxDone              bool
	TokenName           string
	InitDone            bool
}

// Project computes the button state. First matching rule wins.
func Project(in Inputs) State {
	switch {
	case !in.Connected:
		// The button doubles as the connect trigger.
		return State{Disabled: false, Label: "Connect Wallet", Phase: PhaseConnect}

	case !in.InitDone && in.ParticipationStatus == participation.StatusPending:
		return State{Disabled: true, Label: "Please Wait", Loading: true, Phase: PhaseInit}

	case in.HasParticipated:
		return State{Disabled: true, Label: "Already Participated", Phase: PhaseBlocked}

	case !in.Window.IsStarted:
		return State{Disabled: true, Label: "Sale Not Started", Phase: PhaseBlocked}

	case in.Window.Phase != sale.PhaseInProgress:
		return State{Disabled: true, Label: "Sale Ended", Phase: PhaseBlocked}

	case in.TxDone:
		return State{Disabled: true, Label: "Already Participated", Phase: PhaseDone}

	case in.TxActive:
		return State{Disabled: true, Label: "Processing...", Loading: true, Phase: PhaseSubmitting}

	default:
		return State{Disabled: false, Label: "Buy " + strings.ToUpper(in.TokenName), Phase: PhaseReady}
	}
}
