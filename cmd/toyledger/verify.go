package toyledger

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every block links to the hash of its predecessor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, s, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore(s)

		if err := l.Verify(); err != nil {
			return fmt.Errorf("chain verification failed: %w", err)
		}
		slog.Info("Chain is valid", "blocks", l.Len(), "tip", l.Hash(l.Tip()))
		return nil
	},
}
