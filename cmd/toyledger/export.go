package toyledger

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/manifest-network/toyledger/internal/config"
	"github.com/manifest-network/toyledger/internal/models"
	"github.com/manifest-network/toyledger/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the chain to other formats",
}

var tsvCmd = &cobra.Command{
	Use:   "tsv [flags]",
	Short: "Export the chain to a TSV file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tsvConfig := config.LoadTSVConfigFromCLI()
		if err := tsvConfig.Validate(); err != nil {
			return errors.WithMessage(err, "invalid TSV configuration")
		}
		slog.Debug("Command-line argument", "tsv-out", tsvConfig.OutDir)

		l, s, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore(s)

		exporter, err := store.NewTSVExporter(tsvConfig.OutDir, models.HasherFunc(l.Hash))
		if err != nil {
			return errors.WithMessage(err, "failed to create TSV exporter")
		}

		if err := exporter.Export(l.Blocks()); err != nil {
			exporter.Close()
			return errors.WithMessage(err, "failed to export chain")
		}
		if err := exporter.Close(); err != nil {
			return errors.WithMessage(err, "failed to close TSV exporter")
		}

		slog.Info("Chain exported", "dir", tsvConfig.OutDir, "blocks", l.Len())
		return nil
	},
}

func init() {
	tsvCmd.Flags().StringP("tsv-out", "o", "tsv", "Output directory")
	if err := viper.BindPFlags(tsvCmd.Flags()); err != nil {
		slog.Error("Failed to bind tsvCmd flags", "error", err)
	}

	exportCmd.AddCommand(tsvCmd)
}
