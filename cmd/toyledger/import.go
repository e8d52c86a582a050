package toyledger

import (
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/manifest-network/toyledger/internal/config"
	"github.com/manifest-network/toyledger/internal/ledger"
	"github.com/manifest-network/toyledger/internal/models"
	"github.com/manifest-network/toyledger/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import [source-data-file] [flags]",
	Short: "Import a chain file into the configured store",
	Long:  `Read a JSON chain file, check its links and replace the chain held by the configured store.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		ledgerConfig := config.LoadLedgerConfigFromCLI()
		if err := ledgerConfig.Validate(); err != nil {
			return fmt.Errorf("invalid ledger configuration: %w", err)
		}

		blocks, err := store.NewFileStore(args[0]).Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read source chain: %w", err)
		}

		if err := checkLinks(blocks); err != nil {
			if !force {
				return err
			}
			slog.Warn("Importing a chain with broken links", "error", err)
		}

		dst, err := openStore(cmd.Context(), ledgerConfig)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer closeStore(dst)

		if err := dst.Save(cmd.Context(), blocks); err != nil {
			return fmt.Errorf("failed to write chain: %w", err)
		}

		l := ledger.New(dst)
		if _, err := l.Load(cmd.Context()); err != nil {
			return fmt.Errorf("failed to read back imported chain: %w", err)
		}
		slog.Info("Chain imported", "source", args[0], "store", ledgerConfig.Store, "blocks", l.Len())
		return nil
	},
}

// checkLinks verifies that each block references the hash of its predecessor,
// reporting progress for long chains.
func checkLinks(blocks []*models.Block) error {
	bar := progressbar.NewOptions(
		len(blocks),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription("Checking blocks..."),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	if err := bar.RenderBlank(); err != nil {
		return fmt.Errorf("failed to render progress bar: %w", err)
	}

	err := ledger.VerifyLinks(blocks, models.DefaultHasher, func(int) {
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	})
	if err != nil {
		return err
	}

	if err := bar.Finish(); err != nil {
		return fmt.Errorf("failed to finish progress bar: %w", err)
	}
	return nil
}

func init() {
	importCmd.Flags().Bool("force", false, "Import even if some blocks do not link to their predecessor")
}
