package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServeConfig struct {
	Addr             string
	SaveOnWrite      bool
	EnablePrometheus bool
	PrometheusAddr   string
}

func (c ServeConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("missing listen address")
	}
	if c.EnablePrometheus && c.PrometheusAddr == "" {
		return fmt.Errorf("missing Prometheus listen address")
	}
	return nil
}

func LoadServeConfigFromCLI() ServeConfig {
	return ServeConfig{
		Addr:             viper.GetString("addr"),
		SaveOnWrite:      viper.GetBool("save-on-write"),
		EnablePrometheus: viper.GetBool("enable-prometheus"),
		PrometheusAddr:   viper.GetString("prometheus-addr"),
	}
}
