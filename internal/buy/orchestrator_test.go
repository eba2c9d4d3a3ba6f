package buy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"launchpad-client/internal/notify"
)

type fakeWaiter struct {
	hash common.Hash
	err  error
}

func (w *fakeWaiter) Hash() common.Hash { return w.hash }

func (w *fakeWaiter) AwaitConfirmation(ctx context.Context) error { return w.err }

type fakeSubmitter struct {
	mu            sync.Mutex
	estimateGate  chan struct{}
	estimateErr   error
	submitErr     error
	confirmErr    error
	estimateCalls int
	submitCalls   int
}

func (f *fakeSubmitter) EstimateParticipate(ctx context.Context, saleAddr common.Address, roundID uint64, valueWei decimal.Decimal) (uint64, error) {
	f.mu.Lock()
	f.estimateCalls++
	gate := f.estimateGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return 21000, f.estimateErr
}

func (f *fakeSubmitter) SubmitParticipate(ctx context.Context, saleAddr common.Address, roundID uint64, valueWei decimal.Decimal) (TxWaiter, error) {
	f.mu.Lock()
	f.submitCalls++
	f.mu.Unlock()

	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &fakeWaiter{hash: common.HexToHash("0xbeef"), err: f.confirmErr}, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []notify.Note
}

func (r *recordingNotifier) Notify(ctx context.Context, note notify.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note)
	return nil
}

func (r *recordingNotifier) byKind(kind notify.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, note := range r.notes {
		if note.Kind == kind {
			count++
		}
	}
	return count
}

var (
	testSale  = common.HexToAddress("0x5a1e")
	oneEther  = decimal.New(1, 18)
	testRound = uint64(0)
)

func TestSubmitSuccess(t *testing.T) {
	submitter := &fakeSubmitter{}
	notifier := &recordingNotifier{}
	invalidated := false

	o := NewOrchestrator(submitter, notifier, "UPTOKEN", func() { invalidated = true }, zerolog.Nop())

	outcome, err := o.Submit(context.Background(), testSale, testRound, oneEther)
	if err != nil {
		t.Fatalf("Submit should not error: %v", err)
	}
	if outcome.Result != Succeeded {
		t.Fatalf("expected Succeeded, got %s", outcome.Result)
	}
	if !invalidated {
		t.Fatal("success must signal dependent facts are stale")
	}
	if notifier.byKind(notify.KindSuccess) != 1 {
		t.Fatalf("expected one success notification, got %d", notifier.byKind(notify.KindSuccess))
	}
	if o.State() != StateIdle {
		t.Fatalf("orchestrator must return to idle, got %s", o.State())
	}
}

func TestSubmitWhileActiveIsNoOp(t *testing.T) {
	gate := make(chan struct{})
	submitter := &fakeSubmitter{estimateGate: gate}
	o := NewOrchestrator(submitter, &recordingNotifier{}, "UPTOKEN", nil, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = o.Submit(context.Background(), testSale, testRound, oneEther)
	}()

	// Wait for the first flow to reach estimation.
	for o.State() != StateEstimating {
		time.Sleep(time.Millisecond)
	}

	if _, err := o.Submit(context.Background(), testSale, testRound, oneEther); !errors.Is(err, ErrBusy) {
		t.Fatalf("second submit while active must be ErrBusy, got %v", err)
	}

	close(gate)
	<-done

	submitter.mu.Lock()
	defer submitter.mu.Unlock()
	if submitter.estimateCalls != 1 {
		t.Fatalf("rejected request must not reach the chain, estimate calls = %d", submitter.estimateCalls)
	}
}

func TestSubmitEstimationFailureStopsFlow(t *testing.T) {
	submitter := &fakeSubmitter{estimateErr: errors.New("insufficient funds for gas")}
	notifier := &recordingNotifier{}
	o := NewOrchestrator(submitter, notifier, "UPTOKEN", nil, zerolog.Nop())

	outcome, err := o.Submit(context.Background(), testSale, testRound, oneEther)
	if err != nil {
		t.Fatalf("Submit should not error: %v", err)
	}
	if outcome.Result != Failed || outcome.Reason != ReasonEstimation {
		t.Fatalf("expected Failed(estimation), got %s(%s)", outcome.Result, outcome.Reason)
	}
	if submitter.submitCalls != 0 {
		t.Fatal("a failed estimation must never reach submission")
	}
	if notifier.byKind(notify.KindError) != 1 {
		t.Fatalf("expected exactly one error notification, got %d", notifier.byKind(notify.KindError))
	}
	if o.State() != StateIdle {
		t.Fatalf("orchestrator must return to idle, got %s", o.State())
	}
}

func TestSubmitUserRejected(t *testing.T) {
	submitter := &fakeSubmitter{submitErr: errors.New("MetaMask Tx Signature: user rejected transaction")}
	notifier := &recordingNotifier{}
	o := NewOrchestrator(submitter, notifier, "UPTOKEN", nil, zerolog.Nop())

	outcome, err := o.Submit(context.Background(), testSale, testRound, oneEther)
	if err != nil {
		t.Fatalf("Submit should not error: %v", err)
	}
	if outcome.Result != Rejected {
		t.Fatalf("declined signing must classify as Rejected, got %s", outcome.Result)
	}
	if notifier.byKind(notify.KindInfo) != 1 {
		t.Fatalf("rejection is informational, expected one info note, got %d", notifier.byKind(notify.KindInfo))
	}
	if notifier.byKind(notify.KindError) != 0 {
		t.Fatal("rejection must not emit an error-severity notification")
	}
}

func TestSubmitConfirmationRevertClassified(t *testing.T) {
	submitter := &fakeSubmitter{confirmErr: errors.New("execution reverted: Already participated")}
	notifier := &recordingNotifier{}
	o := NewOrchestrator(submitter, notifier, "UPTOKEN", nil, zerolog.Nop())

	outcome, err := o.Submit(context.Background(), testSale, testRound, oneEther)
	if err != nil {
		t.Fatalf("Submit should not error: %v", err)
	}
	if outcome.Result != Failed || outcome.Reason != ReasonAlreadyParticipated {
		t.Fatalf("expected Failed(already participated), got %s(%s)", outcome.Result, outcome.Reason)
	}
	if outcome.TxHash == (common.Hash{}) {
		t.Fatal("a submitted transaction keeps its hash even on failure")
	}
}
