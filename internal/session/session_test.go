package session

import (
	"context"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"launchpad-client/internal/button"
	"launchpad-client/internal/buy"
	"launchpad-client/internal/notify"
	"launchpad-client/internal/owner"
	"launchpad-client/internal/participation"
	"launchpad-client/internal/sale"
	"launchpad-client/internal/wallet"
)

const testKey = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

func saleFixture() sale.Config {
	return sale.Config{
		Address:         common.HexToAddress("0xaa"),
		Owner:           common.HexToAddress("0xbb"),
		MinContribution: sale.ToWei(decimal.RequireFromString("0.1")),
		MaxContribution: sale.ToWei(decimal.RequireFromString("5")),
		SoftCap:         sale.ToWei(decimal.RequireFromString("50")),
		Raised:          sale.ToWei(decimal.RequireFromString("60")),
		SaleStart:       1000,
		SaleEnd:         3000,
		Rounds: []sale.Round{
			{Kind: sale.RoundPublic, Start: 1000, End: 3000},
		},
		Token: sale.TokenMeta{Name: "UpToken", Symbol: "UP"},
	}
}

type fakeFetcher struct {
	cfg sale.Config
}

func (f *fakeFetcher) FetchSale(ctx context.Context, saleAddress string) (sale.Config, error) {
	return f.cfg, nil
}

type fakeReader struct {
	mu      sync.Mutex
	balance decimal.Decimal
	record  participation.Record
}

func (r *fakeReader) ReadBalance(ctx context.Context, account common.Address) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balance, nil
}

func (r *fakeReader) ReadParticipation(ctx context.Context, saleAddr, account common.Address) (participation.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record, nil
}

func (r *fakeReader) ReadRaised(ctx context.Context, saleAddr common.Address) (decimal.Decimal, error) {
	return sale.ToWei(decimal.RequireFromString("60")), nil
}

func (r *fakeReader) ServiceFee(ctx context.Context) (decimal.Decimal, error) {
	return decimal.NewFromInt(0), nil
}

func (r *fakeReader) TokenInfo(ctx context.Context, tokenAddr common.Address) (sale.TokenMeta, error) {
	return sale.TokenMeta{Address: tokenAddr, Name: "UpToken", Symbol: "UP"}, nil
}

type fakeWaiter struct {
	hash common.Hash
}

func (w *fakeWaiter) Hash() common.Hash { return w.hash }
func (w *fakeWaiter) AwaitConfirmation(ctx context.Context) error { return nil }

type fakeSubmitter struct {
	mu          sync.Mutex
	submitCalls int
	lastValue   decimal.Decimal
	lastRound   uint64
}

func (f *fakeSubmitter) EstimateParticipate(ctx context.Context, saleAddr common.Address, roundID uint64, valueWei decimal.Decimal) (uint64, error) {
	return 21000, nil
}

func (f *fakeSubmitter) SubmitParticipate(ctx context.Context, saleAddr common.Address, roundID uint64, valueWei decimal.Decimal) (buy.TxWaiter, error) {
	f.mu.Lock()
	f.submitCalls++
	f.lastValue = valueWei
	f.lastRound = roundID
	f.mu.Unlock()
	return &fakeWaiter{hash: common.HexToHash("0x1")}, nil
}

type fakeFinisher struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeFinisher) SubmitFinish(ctx context.Context, saleAddr common.Address) (owner.TxWaiter, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return &fakeWaiter{hash: common.HexToHash("0x2")}, nil
}

type captureNotifier struct {
	mu    sync.Mutex
	notes []notify.Note
}

func (c *captureNotifier) Notify(ctx context.Context, note notify.Note) error {
	c.mu.Lock()
	c.notes = append(c.notes, note)
	c.mu.Unlock()
	return nil
}

func (c *captureNotifier) byKind(kind notify.Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, n := range c.notes {
		if n.Kind == kind {
			count++
		}
	}
	return count
}

func newTestSession(t *testing.T, reader *fakeReader, submitter *fakeSubmitter, finisher *fakeFinisher, notifier notify.Notifier, now int64) *Session {
	t.Helper()
	w, err := wallet.New(testKey)
	if err != nil {
		t.Fatalf("钱包初始化失败: %v", err)
	}
	return New(Options{
		SaleAddress: "0xaa",
		Fetcher:     &fakeFetcher{cfg: saleFixture()},
		Reader:      reader,
		Submitter:   submitter,
		Finisher:    finisher,
		Wallet:      w,
		Notifier:    notifier,
		Now:         func() int64 { return now },
	}, zerolog.Nop())
}

func TestSuccessfulContributionFlow(t *testing.T) {
	reader := &fakeReader{balance: sale.ToWei(decimal.RequireFromString("10"))}
	submitter := &fakeSubmitter{}
	notifier := &captureNotifier{}
	s := newTestSession(t, reader, submitter, nil, notifier, 2000)

	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh 不应失败: %v", err)
	}

	if _, status := s.WaitSettled(ctx); status != participation.StatusResolved {
		t.Fatalf("初始查询应 resolved, 实际 %s", status)
	}

	state := s.ButtonState()
	if state.Disabled || state.Label != "Buy UPTOKEN" {
		t.Fatalf("ready 状态不正确: %+v", state)
	}

	outcome, verdict, err := s.SubmitContribution(ctx, decimal.RequireFromString("1"))
	if err != nil {
		t.Fatalf("提交不应报错: %v", err)
	}
	if verdict != sale.Valid {
		t.Fatalf("verdict 应为 valid, 实际 %s", verdict)
	}
	if outcome.Result != buy.Succeeded {
		t.Fatalf("期望 succeeded, 实际 %s", outcome.Result)
	}

	submitter.mu.Lock()
	calls, value, round := submitter.submitCalls, submitter.lastValue, submitter.lastRound
	submitter.mu.Unlock()
	if calls != 1 {
		t.Fatalf("应恰好提交一次, 实际 %d", calls)
	}
	if !value.Equal(sale.ToWei(decimal.RequireFromString("1"))) {
		t.Fatalf("提交金额错误: %s", value)
	}
	if round != 1 {
		t.Fatalf("round id 应为 1, 实际 %d", round)
	}

	if got := notifier.byKind(notify.KindSuccess); got != 1 {
		t.Fatalf("成功后应有且仅有一条 success 通知, 实际 %d", got)
	}

	state = s.ButtonState()
	if state.Phase != button.PhaseDone || state.Label != "Already Participated" {
		t.Fatalf("成功后按钮应锁定为 done: %+v", state)
	}

	if _, status := s.Participation(); status != participation.StatusUnknown {
		t.Fatalf("成功后参与记录应被标记为 stale, 实际 %s", status)
	}
	if !s.NeedsReload() {
		t.Fatal("成功后应标记需要刷新")
	}
}

func TestContributionRejectedByValidation(t *testing.T) {
	reader := &fakeReader{balance: sale.ToWei(decimal.RequireFromString("10"))}
	submitter := &fakeSubmitter{}
	notifier := &captureNotifier{}
	s := newTestSession(t, reader, submitter, nil, notifier, 2000)

	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh 不应失败: %v", err)
	}
	s.WaitSettled(ctx)

	_, verdict, err := s.SubmitContribution(ctx, decimal.RequireFromString("0.01"))
	if err != nil {
		t.Fatalf("本地校验失败不应返回 error: %v", err)
	}
	if verdict != sale.BelowMinimum {
		t.Fatalf("verdict 应为 below minimum, 实际 %s", verdict)
	}

	submitter.mu.Lock()
	calls := submitter.submitCalls
	submitter.mu.Unlock()
	if calls != 0 {
		t.Fatalf("校验失败后不应触达链上, 实际提交 %d 次", calls)
	}
	if got := notifier.byKind(notify.KindError); got != 1 {
		t.Fatalf("应有一条 error 通知, 实际 %d", got)
	}
}

func TestContributionClampedToMaximum(t *testing.T) {
	reader := &fakeReader{balance: sale.ToWei(decimal.RequireFromString("100"))}
	submitter := &fakeSubmitter{}
	s := newTestSession(t, reader, submitter, nil, &captureNotifier{}, 2000)

	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh 不应失败: %v", err)
	}
	s.WaitSettled(ctx)

	outcome, verdict, err := s.SubmitContribution(ctx, decimal.RequireFromString("9"))
	if err != nil || verdict != sale.Valid {
		t.Fatalf("clamp 后应合法: verdict=%s err=%v", verdict, err)
	}
	if outcome.Result != buy.Succeeded {
		t.Fatalf("期望 succeeded, 实际 %s", outcome.Result)
	}

	submitter.mu.Lock()
	value := submitter.lastValue
	submitter.mu.Unlock()
	if !value.Equal(sale.ToWei(decimal.RequireFromString("5"))) {
		t.Fatalf("超额输入应被钳制到最大值, 实际 %s", value)
	}
}

func TestAlreadyParticipatedBlocksSubmission(t *testing.T) {
	reader := &fakeReader{
		balance: sale.ToWei(decimal.RequireFromString("10")),
		record:  participation.Record{TokenAmount: decimal.NewFromInt(100)},
	}
	submitter := &fakeSubmitter{}
	notifier := &captureNotifier{}
	s := newTestSession(t, reader, submitter, nil, notifier, 2000)

	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh 不应失败: %v", err)
	}
	s.WaitSettled(ctx)

	state := s.ButtonState()
	if state.Phase != button.PhaseBlocked || state.Label != "Already Participated" {
		t.Fatalf("已参与账户按钮应锁定: %+v", state)
	}

	_, verdict, err := s.SubmitContribution(ctx, decimal.RequireFromString("1"))
	if err != nil {
		t.Fatalf("不应返回 error: %v", err)
	}
	if verdict != sale.AlreadyParticipated {
		t.Fatalf("verdict 应为 already participated, 实际 %s", verdict)
	}
	submitter.mu.Lock()
	calls := submitter.submitCalls
	submitter.mu.Unlock()
	if calls != 0 {
		t.Fatalf("已参与时不应提交, 实际 %d 次", calls)
	}
}

func TestSubmissionOutsideWindow(t *testing.T) {
	reader := &fakeReader{balance: sale.ToWei(decimal.RequireFromString("10"))}
	s := newTestSession(t, reader, &fakeSubmitter{}, nil, &captureNotifier{}, 5000)

	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh 不应失败: %v", err)
	}
	s.WaitSettled(ctx)

	if _, _, err := s.SubmitContribution(ctx, decimal.RequireFromString("1")); err != ErrSaleClosed {
		t.Fatalf("窗口关闭应返回 ErrSaleClosed, 实际 %v", err)
	}
}

func TestOwnerActionEligibilityAndConfirm(t *testing.T) {
	reader := &fakeReader{balance: sale.ToWei(decimal.RequireFromString("10"))}
	finisher := &fakeFinisher{}
	notifier := &captureNotifier{}

	w, err := wallet.New(testKey)
	if err != nil {
		t.Fatalf("钱包初始化失败: %v", err)
	}
	cfg := saleFixture()
	cfg.Owner = w.Address()

	s := New(Options{
		SaleAddress: "0xaa",
		Fetcher:     &fakeFetcher{cfg: cfg},
		Reader:      reader,
		Submitter:   &fakeSubmitter{},
		Finisher:    finisher,
		Wallet:      w,
		Notifier:    notifier,
		Now:         func() int64 { return 4000 },
	}, zerolog.Nop())

	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh 不应失败: %v", err)
	}

	action, eligible, err := s.OwnerAction()
	if err != nil {
		t.Fatalf("OwnerAction 不应报错: %v", err)
	}
	if !eligible {
		t.Fatal("销售结束后 owner 应可操作")
	}
	if action != owner.ActionFinalize {
		t.Fatalf("raised >= softcap 应 finalize, 实际 %s", action)
	}

	if err := s.ConfirmOwnerAction(ctx); err != nil {
		t.Fatalf("Confirm 不应报错: %v", err)
	}
	finisher.mu.Lock()
	calls := finisher.calls
	finisher.mu.Unlock()
	if calls != 1 {
		t.Fatalf("finish 应提交一次, 实际 %d", calls)
	}
	if !s.NeedsReload() {
		t.Fatal("成功 finish 后应标记需要刷新")
	}
}

func TestDisconnectedWalletShowsConnect(t *testing.T) {
	reader := &fakeReader{}
	w, err := wallet.New("")
	if err != nil {
		t.Fatalf("空私钥不应报错: %v", err)
	}
	s := New(Options{
		SaleAddress: "0xaa",
		Fetcher:     &fakeFetcher{cfg: saleFixture()},
		Reader:      reader,
		Submitter:   &fakeSubmitter{},
		Wallet:      w,
		Now:         func() int64 { return 2000 },
	}, zerolog.Nop())

	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh 不应失败: %v", err)
	}

	state := s.ButtonState()
	if state.Phase != button.PhaseConnect || state.Label != "Connect Wallet" {
		t.Fatalf("未连接钱包应显示 connect: %+v", state)
	}

	if _, _, err := s.SubmitContribution(ctx, decimal.RequireFromString("1")); err != wallet.ErrNotConnected {
		t.Fatalf("未连接钱包应返回 ErrNotConnected, 实际 %v", err)
	}
}
