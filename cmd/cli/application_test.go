package cli_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gutops/gut/cmd/cli"
)

func TestEmbeddedDefaultConfigurationIsWellFormed(t *testing.T) {
	configurationContent, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(t, "yaml", configurationType)

	var parsedConfiguration struct {
		Common struct {
			LogLevel  string `yaml:"log_level"`
			LogFormat string `yaml:"log_format"`
		} `yaml:"common"`
		Fleet struct {
			Root        string `yaml:"root"`
			Concurrency int    `yaml:"concurrency"`
		} `yaml:"fleet"`
	}
	require.NoError(t, yaml.Unmarshal(configurationContent, &parsedConfiguration))
	require.Equal(t, "info", parsedConfiguration.Common.LogLevel)
	require.Equal(t, "structured", parsedConfiguration.Common.LogFormat)
	require.Equal(t, ".", parsedConfiguration.Fleet.Root)
	require.Equal(t, 8, parsedConfiguration.Fleet.Concurrency)
}
