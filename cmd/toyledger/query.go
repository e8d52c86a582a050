package toyledger

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Print the balance of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, s, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore(s)

		return printJSON(map[string]any{"address": args[0], "balance": l.Balance(args[0])})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [address]",
	Short: "Print the transactions sent or received by an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, s, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore(s)

		return printJSON(map[string]any{"transactions": l.History(args[0])})
	},
}

func printJSON(v any) error {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
