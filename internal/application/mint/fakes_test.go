package mint

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	cmdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/candymachine"
	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
	nftdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/nft"
)

var (
	testGuardProgram = common.PublicKeyFromString("Guard1JwRhJkVH6XZhzoYxeBVQe872VH6QggF4BWmS9g")
	testCUProgram    = common.PublicKeyFromString("ComputeBudget111111111111111111111111111111")
)

// ============================================================
// chain
// ============================================================

type fakeChain struct {
	mu sync.Mutex

	blockhash string
	sendErrAt int // 1-based, 0 = never
	// signature -> confirmed tx（無ければ見つからない扱い）
	confirmed map[string]*mintdom.ConfirmedTransaction
	getErr    error

	blockhashCalls int
	sent           []types.Transaction
	getCalls       map[string]int
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		blockhash: types.NewAccount().PublicKey.ToBase58(),
		confirmed: map[string]*mintdom.ConfirmedTransaction{},
		getCalls:  map[string]int{},
	}
}

func (c *fakeChain) LatestBlockhash(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockhashCalls++
	return c.blockhash, nil
}

func (c *fakeChain) SendTransaction(_ context.Context, tx types.Transaction) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErrAt > 0 && len(c.sent)+1 == c.sendErrAt {
		return "", errors.New("rpc: blockhash not found")
	}
	c.sent = append(c.sent, tx)
	return fmt.Sprintf("sig-%d", len(c.sent)), nil
}

func (c *fakeChain) GetTransaction(_ context.Context, sig string) (*mintdom.ConfirmedTransaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getCalls[sig]++
	if c.getErr != nil {
		return nil, c.getErr
	}
	tx, ok := c.confirmed[sig]
	if !ok {
		return nil, nil
	}
	cp := *tx
	return &cp, nil
}

// confirmAll は送信されるであろう sig-1..n を確認済みにします。
func (c *fakeChain) confirmAll(n int, logs ...string) {
	for i := 1; i <= n; i++ {
		sig := fmt.Sprintf("sig-%d", i)
		c.confirmed[sig] = &mintdom.ConfirmedTransaction{Signature: sig, Slot: uint64(100 + i), Logs: logs}
	}
}

func (c *fakeChain) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.blockhashCalls + len(c.sent)
	for _, v := range c.getCalls {
		n += v
	}
	return n
}

// ============================================================
// wallet
// ============================================================

type fakeWallet struct {
	account types.Account
	reject  bool
	calls   int
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{account: types.NewAccount()}
}

func (w *fakeWallet) PublicKey() common.PublicKey { return w.account.PublicKey }

func (w *fakeWallet) SignAllTransactions(_ context.Context, txs []types.Transaction) ([]types.Transaction, error) {
	w.calls++
	if w.reject {
		return nil, errors.New("user rejected the request")
	}
	out := make([]types.Transaction, 0, len(txs))
	for _, tx := range txs {
		sigs := make([]types.Signature, len(tx.Signatures))
		copy(sigs, tx.Signatures)
		tx.Signatures = sigs

		data, err := tx.Message.Serialize()
		if err != nil {
			return nil, err
		}
		if err := tx.AddSignature(w.account.Sign(data)); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// ============================================================
// instruction factory
// ============================================================

type fakeFactory struct {
	mintCalls  int
	routeCalls int
	groups     []*string
	panicOn    bool
}

func (f *fakeFactory) ComputeUnitLimit(units uint32) types.Instruction {
	return types.Instruction{
		ProgramID: testCUProgram,
		Data:      []byte{2, byte(units), byte(units >> 8), byte(units >> 16), byte(units >> 24)},
	}
}

func (f *fakeFactory) MintInstruction(p MintParams) (types.Instruction, error) {
	if f.panicOn {
		panic("factory exploded")
	}
	f.mintCalls++
	f.groups = append(f.groups, p.Group)
	return types.Instruction{
		ProgramID: testGuardProgram,
		Accounts: []types.AccountMeta{
			{PubKey: p.Payer, IsSigner: true, IsWritable: true},
			{PubKey: p.Asset, IsSigner: true, IsWritable: true},
			{PubKey: p.Machine.Address, IsSigner: false, IsWritable: true},
		},
		Data: []byte{1},
	}, nil
}

func (f *fakeFactory) RouteInstruction(p RouteParams) (*types.Instruction, error) {
	f.routeCalls++
	if p.Guards.AllowList == nil {
		return nil, nil
	}
	return &types.Instruction{
		ProgramID: testGuardProgram,
		Accounts: []types.AccountMeta{
			{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		},
		Data: []byte{9},
	}, nil
}

// ============================================================
// machine source / assets
// ============================================================

type fakeMachines struct {
	view  MachineView
	err   error
	calls int
}

func (m *fakeMachines) Current(context.Context) (MachineView, error) {
	m.calls++
	return m.view, m.err
}

func testView() MachineView {
	return MachineView{
		Machine: cmdom.CandyMachine{
			Address:        types.NewAccount().PublicKey,
			ItemsAvailable: 100,
			ItemsRedeemed:  10,
		},
		Guard: cmdom.CandyGuard{
			Address: types.NewAccount().PublicKey,
			Base:    cmdom.GuardSet{BotTax: &cmdom.BotTax{Lamports: 10_000_000, LastInstruction: true}},
			Groups: []cmdom.Group{
				{Label: "OG"},
				{Label: "WL", Guards: cmdom.GuardSet{AllowList: &cmdom.AllowList{}}},
			},
		},
	}
}

type fakeAssets struct {
	mu       sync.Mutex
	failMint map[common.PublicKey]bool
	failCall int // 1-based, 0 = never
	calls    int
}

func (a *fakeAssets) FetchDigitalAsset(_ context.Context, mint common.PublicKey) (nftdom.DigitalAsset, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.failMint[mint] || (a.failCall > 0 && a.calls == a.failCall) {
		return nftdom.DigitalAsset{}, nftdom.ErrAssetNotFound
	}
	return nftdom.DigitalAsset{Mint: mint, Name: "Kyogen", URI: "https://meta.example/" + mint.ToBase58() + "\x00\x00"}, nil
}

func (a *fakeAssets) FetchJSONMetadata(_ context.Context, uri string) (nftdom.JSONMetadata, error) {
	return nftdom.JSONMetadata{Name: "Kyogen", Image: uri + ".png"}, nil
}

// ============================================================
// sinks
// ============================================================

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notes...)
}

type countingRecheck struct{ n int }

func (c *countingRecheck) RequestRecheck() { c.n++ }

type memReceipts struct {
	mu    sync.Mutex
	items []mintdom.Receipt
	err   error
}

func (m *memReceipts) Create(_ context.Context, r mintdom.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items = append(m.items, r)
	return nil
}

func (m *memReceipts) GetByID(_ context.Context, id string) (mintdom.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.items {
		if r.ID == id {
			return r, nil
		}
	}
	return mintdom.Receipt{}, mintdom.ErrReceiptNotFound
}

func (m *memReceipts) ListByWallet(_ context.Context, wallet string, limit int) ([]mintdom.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []mintdom.Receipt
	for _, r := range m.items {
		if r.Wallet == wallet {
			out = append(out, r)
		}
	}
	return out, nil
}

type phaseEvent struct {
	label string
	phase mintdom.Phase
}

// recordingObserver は PhaseEntered ごとに hook を呼びます。
type recordingObserver struct {
	mu       sync.Mutex
	phases   []phaseEvent
	kinds    []mintdom.Kind
	attempts []int
	fetched  []bool
	hook     func(label string, phase mintdom.Phase)
}

func (o *recordingObserver) PhaseEntered(label string, phase mintdom.Phase) {
	o.mu.Lock()
	o.phases = append(o.phases, phaseEvent{label, phase})
	hook := o.hook
	o.mu.Unlock()
	if hook != nil {
		hook(label, phase)
	}
}

func (o *recordingObserver) RunFinished(_ string, kind mintdom.Kind, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kinds = append(o.kinds, kind)
}

func (o *recordingObserver) PollAttempts(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempts = append(o.attempts, n)
}

func (o *recordingObserver) AssetFetched(ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fetched = append(o.fetched, ok)
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }
