package toyledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/manifest-network/toyledger/internal/models"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Submit transactions to the ledger",
}

var txSendCmd = &cobra.Command{
	Use:   "send [flags]",
	Short: "Append a transaction and save the ledger",
	Long:  `Append a transaction to the ledger and save it. An empty --from mints the amount to the recipient.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		amount, _ := cmd.Flags().GetFloat64("amount")

		var sender *string
		if from != "" {
			sender = models.Address(from)
		}
		tx, err := models.NewTransaction(sender, to, amount)
		if err != nil {
			return err
		}

		l, s, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}

		block, err := l.AddTransaction(tx)
		if err != nil {
			closeStore(s)
			return err
		}
		slog.Info("Transaction added", "height", l.Len()-1, "prevHash", block.PrevHash)

		if err := l.Close(context.Background()); err != nil {
			return fmt.Errorf("failed to save ledger: %w", err)
		}

		out, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("failed to encode transaction: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	txSendCmd.Flags().String("from", "", "Sender address, empty for a mint")
	txSendCmd.Flags().String("to", "", "Recipient address")
	txSendCmd.Flags().Float64("amount", 0, "Amount to transfer")

	txCmd.AddCommand(txSendCmd)
}
