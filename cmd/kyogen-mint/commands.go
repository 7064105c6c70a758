// cmd/kyogen-mint/commands.go
package main

import (
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	guarddom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
)

// ============================================================
// guards
// ============================================================

func newGuardsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "guards",
		Short: "Evaluate candy guard eligibility for the configured wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.cont.Refresher.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, snap)
			}

			selected, ok := a.cont.Policy.Select(snap.Records)
			for _, r := range snap.Records {
				mark := " "
				if ok && r.Label == selected.Label {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-12s allowed=%-5t %s\n", mark, r.Label, r.Allowed, r.Reason)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the guard snapshot as JSON")
	return cmd
}

// ============================================================
// mint
// ============================================================

func newMintCmd(a *app) *cobra.Command {
	var (
		label string
		count int
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a batch of NFTs through a guard group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.cont.Refresher.Refresh(ctx); err != nil {
				return err
			}

			// ラベル未指定なら選択ポリシーに従う
			if label == "" {
				rec, ok := a.cont.Policy.Select(a.cont.Ledger.Snapshot().Records)
				if !ok {
					return guarddom.ErrGuardNotFound
				}
				label = rec.Label
			}

			out, err := a.cont.Orchestrator.StartMint(ctx, label, count)
			if err != nil {
				return err
			}
			return writeJSON(cmd, out)
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "guard group label (default: selected by policy)")
	cmd.Flags().IntVar(&count, "count", 1, "number of NFTs to mint in one batch")
	return cmd
}

// ============================================================
// show
// ============================================================

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <mint>",
		Short: "Fetch and display a minted NFT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parseMint(args[0])
			if err != nil {
				return err
			}
			asset, err := a.cont.Viewer.Show(cmd.Context(), mint)
			if err != nil {
				return err
			}
			return writeJSON(cmd, asset)
		},
	}
}

// ============================================================
// receipts
// ============================================================

func newReceiptsCmd(a *app) *cobra.Command {
	var (
		wallet string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "List recorded mint runs for a wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if wallet == "" {
				wallet = a.cont.Wallet.PublicKey().ToBase58()
			}
			list, err := a.cont.Receipts.ListByWallet(cmd.Context(), wallet, limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd, list)
		},
	}
	cmd.Flags().StringVar(&wallet, "wallet", "", "wallet address (default: configured wallet)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of receipts")
	return cmd
}

// parseMint は 32 バイトの base58 アドレスだけを受け付けます。
func parseMint(s string) (common.PublicKey, error) {
	b, err := base58.Decode(strings.TrimSpace(s))
	if err != nil || len(b) != 32 {
		return common.PublicKey{}, fmt.Errorf("invalid mint address %q", s)
	}
	return common.PublicKeyFromBytes(b), nil
}
