// internal/domain/candymachine/entity.go
package candymachine

import (
	"errors"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
)

// TokenStandard は mpl-token-metadata の TokenStandard に対応します。
type TokenStandard uint8

const (
	TokenStandardNonFungible             TokenStandard = 0
	TokenStandardFungibleAsset           TokenStandard = 1
	TokenStandardFungible                TokenStandard = 2
	TokenStandardNonFungibleEdition      TokenStandard = 3
	TokenStandardProgrammableNonFungible TokenStandard = 4
)

// IsProgrammable は pNFT（token record が必要な規格）かどうか。
func (t TokenStandard) IsProgrammable() bool {
	return t == TokenStandardProgrammableNonFungible
}

var (
	ErrInvalidAddress = errors.New("candymachine: invalid address")
	ErrNotFound       = errors.New("candymachine: account not found")
	ErrInvalidData    = errors.New("candymachine: invalid account data")
)

// ------------------------------------------------------
// CandyMachine (オンチェーン発行プログラムの記述子)
// ------------------------------------------------------
type CandyMachine struct {
	Address        common.PublicKey
	Authority      common.PublicKey // collection update authority を兼ねる
	MintAuthority  common.PublicKey // = candy guard
	CollectionMint common.PublicKey
	TokenStandard  TokenStandard

	ItemsAvailable uint64
	ItemsRedeemed  uint64
}

// Remaining は残りのミント可能数を返します。
func (cm CandyMachine) Remaining() uint64 {
	if cm.ItemsRedeemed >= cm.ItemsAvailable {
		return 0
	}
	return cm.ItemsAvailable - cm.ItemsRedeemed
}

// SoldOut は完売しているか。
func (cm CandyMachine) SoldOut() bool {
	return cm.Remaining() == 0
}

// ------------------------------------------------------
// CandyGuard / GuardSet
// ------------------------------------------------------

// CandyGuard は base ガードと名前付きグループを保持します。
type CandyGuard struct {
	Address common.PublicKey
	Base    GuardSet
	Groups  []Group
}

// Group はラベル付きのガードセットです。
type Group struct {
	Label  string
	Guards GuardSet
}

// GuardSet はこのリポジトリが扱うガードの部分集合です。
// nil のフィールドは「そのガードは無効」を意味します。
type GuardSet struct {
	BotTax     *BotTax
	StartDate  *int64
	EndDate    *int64
	SolPayment *SolPayment
	TokenGate  *TokenGate
	MintLimit  *MintLimit
	AllowList  *AllowList
}

type BotTax struct {
	Lamports        uint64
	LastInstruction bool
}

type SolPayment struct {
	Lamports    uint64
	Destination common.PublicKey
}

type TokenGate struct {
	Mint   common.PublicKey
	Amount uint64
}

type MintLimit struct {
	ID    uint8
	Limit uint16
}

// AllowList はマークルルートと、このウォレットの証明を持ちます。
// 証明は route 命令で事前に検証されます。
type AllowList struct {
	MerkleRoot [32]byte
	Proof      [][32]byte
}

// RequiresRoute はミント前に共有の route 命令が必要かどうか。
func (g GuardSet) RequiresRoute() bool {
	return g.AllowList != nil
}

// Merge は group 側の値を優先して base とマージします（candy guard のオンチェーン挙動と同じ）。
func (g GuardSet) Merge(base GuardSet) GuardSet {
	out := base
	if g.BotTax != nil {
		out.BotTax = g.BotTax
	}
	if g.StartDate != nil {
		out.StartDate = g.StartDate
	}
	if g.EndDate != nil {
		out.EndDate = g.EndDate
	}
	if g.SolPayment != nil {
		out.SolPayment = g.SolPayment
	}
	if g.TokenGate != nil {
		out.TokenGate = g.TokenGate
	}
	if g.MintLimit != nil {
		out.MintLimit = g.MintLimit
	}
	if g.AllowList != nil {
		out.AllowList = g.AllowList
	}
	return out
}

// GuardsFor はラベルに対応する有効なガードセットを返します。
// "default" は base、それ以外は group（base とマージ済み）。
// 該当グループが無い場合は false。
func (c CandyGuard) GuardsFor(label string) (GuardSet, bool) {
	if label == guard.DefaultLabel {
		return c.Base, true
	}
	for _, g := range c.Groups {
		if g.Label == label {
			return g.Guards.Merge(c.Base), true
		}
	}
	return GuardSet{}, false
}

// Labels は評価対象のラベル一覧を返します。
// グループが 1 つも無い場合は "default" だけになります。
func (c CandyGuard) Labels() []string {
	if len(c.Groups) == 0 {
		return []string{guard.DefaultLabel}
	}
	out := make([]string, 0, len(c.Groups)+1)
	out = append(out, guard.DefaultLabel)
	for _, g := range c.Groups {
		out = append(out, g.Label)
	}
	return out
}

// Window は StartDate / EndDate を (start, end) で返します（未設定は 0）。
func (g GuardSet) Window() (int64, int64) {
	var start, end int64
	if g.StartDate != nil {
		start = *g.StartDate
	}
	if g.EndDate != nil {
		end = *g.EndDate
	}
	return start, end
}

// ------------------------------------------------------
// Holding (ウォレットが保有する SPL トークン)
// ------------------------------------------------------

// Holding は tokenGate 判定に使う保有残高です（raw amount, decimals 未適用）。
type Holding struct {
	Mint   common.PublicKey
	Amount uint64
}

// HoldsAtLeast は holdings に mint を amount 以上保有しているかを返します。
func HoldsAtLeast(holdings []Holding, mint common.PublicKey, amount uint64) bool {
	var total uint64
	for _, h := range holdings {
		if h.Mint == mint {
			total += h.Amount
		}
	}
	return total >= amount
}
