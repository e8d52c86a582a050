package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// TSVConfig controls the TSV export of a chain.
type TSVConfig struct {
	OutDir string
}

func (c TSVConfig) Validate() error {
	if c.OutDir == "" {
		return fmt.Errorf("missing TSV output directory")
	}
	return nil
}

func LoadTSVConfigFromCLI() TSVConfig {
	return TSVConfig{
		OutDir: viper.GetString("tsv-out"),
	}
}
