package sale

import "testing"

func saleFixture(start, end int64) Config {
	return Config{
		SaleStart: start,
		SaleEnd:   end,
		IsPublic:  true,
		Rounds: []Round{
			{Kind: RoundPublic, Start: start, End: end},
		},
	}
}

func TestWindowBeforeStart(t *testing.T) {
	cfg := saleFixture(1000, 2000)
	state := Window(cfg, 999)
	if state.Phase != PhaseNotStarted {
		t.Fatalf("expected NotStarted, got %s", state.Phase)
	}
	if state.IsStarted {
		t.Fatal("sale must not report started before saleStart")
	}
}

func TestWindowInProgress(t *testing.T) {
	cfg := saleFixture(1000, 2000)
	state := Window(cfg, 1500)
	if state.Phase != PhaseInProgress {
		t.Fatalf("expected InProgress, got %s", state.Phase)
	}
	if !state.IsStarted {
		t.Fatal("sale must report started inside the window")
	}
	if !state.IsPublicRound {
		t.Fatal("public round should be open inside the public window")
	}
}

func TestWindowFinished(t *testing.T) {
	cfg := saleFixture(1000, 2000)
	state := Window(cfg, 2001)
	if state.Phase != PhaseFinished {
		t.Fatalf("expected Finished, got %s", state.Phase)
	}
	if !state.IsStarted {
		t.Fatal("a finished sale has necessarily started")
	}
}

func TestWindowBoundaryTiesResolveLater(t *testing.T) {
	cfg := saleFixture(1000, 2000)

	// The start instant counts as started.
	if got := Window(cfg, 1000).Phase; got != PhaseInProgress {
		t.Fatalf("currentTime == saleStart must be InProgress, got %s", got)
	}

	// The end instant counts as finished.
	if got := Window(cfg, 2000).Phase; got != PhaseFinished {
		t.Fatalf("currentTime == saleEnd must be Finished, got %s", got)
	}
}

func TestWindowWhitelistThenPublic(t *testing.T) {
	cfg := Config{
		SaleStart: 1000,
		SaleEnd:   3000,
		Rounds: []Round{
			{Kind: RoundWhitelist, Start: 1000, End: 2000},
			{Kind: RoundPublic, Start: 2000, End: 3000},
		},
	}

	if Window(cfg, 1500).IsPublicRound {
		t.Fatal("whitelist window must not report as public round")
	}
	if !Window(cfg, 2500).IsPublicRound {
		t.Fatal("public window should report as public round")
	}
}

func TestActiveRound(t *testing.T) {
	cfg := Config{
		SaleStart: 1000,
		SaleEnd:   3000,
		Rounds: []Round{
			{Kind: RoundWhitelist, Start: 1000, End: 2000},
			{Kind: RoundPublic, Start: 2000, End: 3000},
		},
	}

	id, round, active := ActiveRound(cfg, 1500)
	if id != 1 || round.Kind != RoundWhitelist || !active {
		t.Fatalf("expected active whitelist round 1, got id=%d kind=%v active=%t", id, round.Kind, active)
	}

	id, round, active = ActiveRound(cfg, 2500)
	if id != 2 || round.Kind != RoundPublic || !active {
		t.Fatalf("expected active public round 2, got id=%d kind=%v active=%t", id, round.Kind, active)
	}

	// Outside every window the public round is the fallback.
	id, round, active = ActiveRound(cfg, 5000)
	if id != 2 || round.Kind != RoundPublic || active {
		t.Fatalf("expected fallback public round 2, got id=%d kind=%v active=%t", id, round.Kind, active)
	}

	id, _, _ = ActiveRound(Config{SaleStart: 1000, SaleEnd: 3000}, 1500)
	if id != 1 {
		t.Fatalf("a sale without recorded rounds should default to round 1, got %d", id)
	}
}
