package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pof-predictor/internal/logger"
	"pof-predictor/internal/server"
	"pof-predictor/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "serve",
		Short:             "run the prediction api",
		Args:              cobra.NoArgs,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initLogger(cfg, false); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	s, _ := yaml.Marshal(cfg)
	logger.Infof("pofd configuration:\n%s", string(s))
	logger.Infof("starting %s", version.Info())

	svr, err := server.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return svr.Serve(ctx)
}
