package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pof-predictor/internal/config"
)

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		env    map[string]string
		expect func(t *testing.T, c *config.Config, err error)
	}{
		{
			name: "file overrides defaults",
			path: filepath.Join("..", "config", "testdata", "pofd.yaml"),
			expect: func(t *testing.T, c *config.Config, err error) {
				assert := assert.New(t)
				require.NoError(t, err)
				assert.Equal("0.0.0.0:8080", c.Server.Addr)
				assert.Equal(640, c.Detector.InputSize)
				assert.Equal([3]float64{0, 40, 100}, c.OCR.BandLower)
				assert.Equal(3*time.Second, c.GNN.Timeout)
				assert.False(c.Archive.Enable)
			},
		},
		{
			name: "environment overrides file",
			path: filepath.Join("..", "config", "testdata", "pofd.yaml"),
			env: map[string]string{
				"POF_GNN_ENDPOINT":        "http://override:8500/v1/infer",
				"POF_GRAPH_DOWNFLAGSCORE": "90",
			},
			expect: func(t *testing.T, c *config.Config, err error) {
				assert := assert.New(t)
				require.NoError(t, err)
				assert.Equal("http://override:8500/v1/infer", c.GNN.Endpoint)
				assert.Equal(90, c.Graph.DownFlagScore)
			},
		},
		{
			name: "environment without file",
			env: map[string]string{
				"POF_SERVER_DATADIR": "/srv/pof",
			},
			expect: func(t *testing.T, c *config.Config, err error) {
				assert := assert.New(t)
				require.NoError(t, err)
				assert.Equal(config.DefaultServerAddr, c.Server.Addr)
				assert.Equal(filepath.Join("/srv/pof", "images"), c.Archive.Dir)
			},
		},
		{
			name: "missing explicit file",
			path: filepath.Join(t.TempDir(), "absent.yaml"),
			expect: func(t *testing.T, c *config.Config, err error) {
				assert.Error(t, err)
			},
		},
		{
			name: "invalid values",
			env: map[string]string{
				"POF_MATCH_ACCEPTANCESCORE": "50",
			},
			expect: func(t *testing.T, c *config.Config, err error) {
				assert.ErrorContains(t, err, "acceptanceScore not below inclusionScore")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			c := config.New()
			err := initConfig(viper.New(), tc.path, c)
			tc.expect(t, c, err)
		})
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "Version:")
	assert.Contains(t, out.String(), "GoVersion:")
}

func TestPredictCmdRequiresImage(t *testing.T) {
	cmd := newPredictCmd()
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"diagram.png"}))
}
