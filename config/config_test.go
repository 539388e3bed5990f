package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithoutFile(t *testing.T) {
	// No config file in a temp dir: ENV vars and defaults apply.
	_, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
}

func TestFormatIndex(t *testing.T) {
	cfg := ElasticConfig{Prefix: "ventasapp"}
	require.Equal(t, "ventasapp-ventas", FormatIndex(cfg, "ventas"))
}
