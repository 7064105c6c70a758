// internal/infra/config/candy_guard_file.go
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"gopkg.in/yaml.v3"

	cmdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/candymachine"
	guarddom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
)

var ErrInvalidGuardFile = errors.New("config: invalid candy guard file")

// CandyGuardFile は CANDY_GUARD_FILE の YAML 表現です。
//
//	address: Guard...          # CANDY_GUARD_ID があればそちらを優先
//	base:
//	  botTax: {lamports: 10000000, lastInstruction: true}
//	  solPayment: {lamports: 1000000000, destination: <base58>}
//	groups:
//	  - label: OGs
//	    guards:
//	      startDate: 2024-05-01T00:00:00Z
//	      tokenGate: {mint: <base58>, amount: 1}
//	      mintLimit: {id: 1, limit: 2}
//	      allowList: {merkleRoot: <hex>, proof: [<hex>, ...]}
type CandyGuardFile struct {
	Address string          `yaml:"address"`
	Base    guardSetYAML    `yaml:"base"`
	Groups  []groupYAMLNode `yaml:"groups"`
}

type groupYAMLNode struct {
	Label  string       `yaml:"label"`
	Guards guardSetYAML `yaml:"guards"`
}

type guardSetYAML struct {
	BotTax *struct {
		Lamports        uint64 `yaml:"lamports"`
		LastInstruction bool   `yaml:"lastInstruction"`
	} `yaml:"botTax"`
	StartDate  *time.Time `yaml:"startDate"`
	EndDate    *time.Time `yaml:"endDate"`
	SolPayment *struct {
		Lamports    uint64 `yaml:"lamports"`
		Destination string `yaml:"destination"`
	} `yaml:"solPayment"`
	TokenGate *struct {
		Mint   string `yaml:"mint"`
		Amount uint64 `yaml:"amount"`
	} `yaml:"tokenGate"`
	MintLimit *struct {
		ID    uint8  `yaml:"id"`
		Limit uint16 `yaml:"limit"`
	} `yaml:"mintLimit"`
	AllowList *struct {
		MerkleRoot string   `yaml:"merkleRoot"`
		Proof      []string `yaml:"proof"`
	} `yaml:"allowList"`
}

// LoadCandyGuard は path の YAML を読み込みます。
// path が空の場合は base ガードのみ（制限なし）の CandyGuard を返します。
func LoadCandyGuard(path, address string) (cmdom.CandyGuard, error) {
	if strings.TrimSpace(path) == "" {
		return cmdom.CandyGuard{Address: parseKey(address)}, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cmdom.CandyGuard{}, fmt.Errorf("read candy guard file: %w", err)
	}
	return ParseCandyGuard(b, address)
}

// ParseCandyGuard は YAML をパースして CandyGuard を組み立てます。
func ParseCandyGuard(data []byte, address string) (cmdom.CandyGuard, error) {
	var f CandyGuardFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cmdom.CandyGuard{}, fmt.Errorf("%w: %v", ErrInvalidGuardFile, err)
	}

	addr := strings.TrimSpace(address)
	if addr == "" {
		addr = strings.TrimSpace(f.Address)
	}

	base, err := f.Base.toDomain()
	if err != nil {
		return cmdom.CandyGuard{}, fmt.Errorf("%w: base: %v", ErrInvalidGuardFile, err)
	}

	cg := cmdom.CandyGuard{Address: parseKey(addr), Base: base}
	seen := map[string]struct{}{}
	for i, g := range f.Groups {
		label := strings.TrimSpace(g.Label)
		if label == "" || label == guarddom.DefaultLabel {
			return cmdom.CandyGuard{}, fmt.Errorf("%w: groups[%d]: invalid label %q", ErrInvalidGuardFile, i, g.Label)
		}
		if _, dup := seen[label]; dup {
			return cmdom.CandyGuard{}, fmt.Errorf("%w: groups[%d]: duplicate label %q", ErrInvalidGuardFile, i, label)
		}
		seen[label] = struct{}{}

		gs, err := g.Guards.toDomain()
		if err != nil {
			return cmdom.CandyGuard{}, fmt.Errorf("%w: group %s: %v", ErrInvalidGuardFile, label, err)
		}
		cg.Groups = append(cg.Groups, cmdom.Group{Label: label, Guards: gs})
	}
	return cg, nil
}

func (y guardSetYAML) toDomain() (cmdom.GuardSet, error) {
	var g cmdom.GuardSet

	if y.BotTax != nil {
		g.BotTax = &cmdom.BotTax{Lamports: y.BotTax.Lamports, LastInstruction: y.BotTax.LastInstruction}
	}
	if y.StartDate != nil {
		v := y.StartDate.Unix()
		g.StartDate = &v
	}
	if y.EndDate != nil {
		v := y.EndDate.Unix()
		g.EndDate = &v
	}
	if y.SolPayment != nil {
		dest := parseKey(y.SolPayment.Destination)
		if dest == (common.PublicKey{}) {
			return g, errors.New("solPayment.destination is required")
		}
		g.SolPayment = &cmdom.SolPayment{Lamports: y.SolPayment.Lamports, Destination: dest}
	}
	if y.TokenGate != nil {
		mint := parseKey(y.TokenGate.Mint)
		if mint == (common.PublicKey{}) {
			return g, errors.New("tokenGate.mint is required")
		}
		amt := y.TokenGate.Amount
		if amt == 0 {
			amt = 1
		}
		g.TokenGate = &cmdom.TokenGate{Mint: mint, Amount: amt}
	}
	if y.MintLimit != nil {
		g.MintLimit = &cmdom.MintLimit{ID: y.MintLimit.ID, Limit: y.MintLimit.Limit}
	}
	if y.AllowList != nil {
		root, err := decodeHash32(y.AllowList.MerkleRoot)
		if err != nil {
			return g, fmt.Errorf("allowList.merkleRoot: %w", err)
		}
		al := &cmdom.AllowList{MerkleRoot: root}
		for i, p := range y.AllowList.Proof {
			h, err := decodeHash32(p)
			if err != nil {
				return g, fmt.Errorf("allowList.proof[%d]: %w", i, err)
			}
			al.Proof = append(al.Proof, h)
		}
		g.AllowList = al
	}
	return g, nil
}

func decodeHash32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("want 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func parseKey(s string) common.PublicKey {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.PublicKey{}
	}
	return common.PublicKeyFromString(s)
}
