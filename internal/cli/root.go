// Package cli implements the pofd command line.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pof-predictor/internal/config"
	"pof-predictor/internal/logger"
)

var (
	cfgFile string

	// Initialize default pofd config
	cfg = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "pofd",
	Short: "predict the point of failure in network topology diagrams",
	Long: `pofd reads a topology diagram, detects its sites and links, matches the
reported down site and asks a graph model which site most likely caused the outage.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		if err := initConfig(viper.GetViper(), cfgFile, cfg); err != nil {
			logger.Fatalf("init config: %v", err)
		}
	})

	flagSet := rootCmd.PersistentFlags()
	flagSet.StringVar(&cfgFile, "config", "", fmt.Sprintf("the path of pofd's configuration file (default %s)", config.DefaultConfigPath))
	flagSet.BoolVar(&cfg.Console, "console", cfg.Console, "log to stderr instead of log files")
	flagSet.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "print debug logs")

	rootCmd.AddCommand(newServeCmd(), newPredictCmd(), versionCmd)
}

// initConfig layers the config file and POF_* environment variables over
// the defaults already in c, then validates the result.
func initConfig(v *viper.Viper, path string, c *config.Config) error {
	// Seed viper with every default so env overrides apply to keys the
	// file does not mention.
	defaults, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigFile(config.DefaultConfigPath)
	}

	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
		}
	} else {
		logger.Debugf("using config file: %s", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("cannot unmarshal config: %w", err)
	}

	if err := c.Convert(); err != nil {
		return err
	}
	return c.Validate()
}

// initLogger switches from the bootstrap console logger to the configured one.
func initLogger(c *config.Config, console bool) error {
	return logger.Init(c.Verbose, c.Console || console, c.Server.LogDir, logger.RotateConfig{
		MaxSize:    c.Server.LogMaxSize,
		MaxBackups: c.Server.LogMaxBackups,
		MaxAge:     c.Server.LogMaxAge,
	})
}
