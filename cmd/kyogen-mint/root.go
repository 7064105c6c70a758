// cmd/kyogen-mint/root.go
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Spaceman-Collective/kyogen-mint/internal/platform/di"
)

// app はサブコマンド間で共有するコンテナです。PersistentPreRunE で組み立てます。
type app struct {
	cont *di.Container
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "kyogen-mint",
		Short:         "Candy machine mint client",
		Long:          "kyogen-mint evaluates candy guard eligibility, mints batches of NFTs from a candy machine and inspects the results.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cont, err := di.NewContainer(cmd.Context())
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			a.cont = cont
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.cont != nil {
				a.cont.Close()
			}
		},
	}

	rootCmd.AddCommand(
		newGuardsCmd(a),
		newMintCmd(a),
		newShowCmd(a),
		newReceiptsCmd(a),
	)
	return rootCmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
