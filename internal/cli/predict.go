package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"pof-predictor/internal/imageio"
	"pof-predictor/internal/pof"
	"pof-predictor/internal/server"
)

type predictOptions struct {
	siteID  string
	orderID string
}

func newPredictCmd() *cobra.Command {
	opts := &predictOptions{}
	cmd := &cobra.Command{
		Use:               "predict IMAGE",
		Short:             "predict the point of failure for one diagram and print it as JSON",
		Args:              cobra.ExactArgs(1),
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initLogger(cfg, true); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return runPredict(cmd, opts, args[0])
		},
	}

	flagSet := cmd.Flags()
	flagSet.StringVar(&opts.siteID, "site", "", "the reported down site id")
	flagSet.StringVar(&opts.orderID, "order", "cli", "the work order id recorded with the prediction")
	cmd.MarkFlagRequired("site")

	return cmd
}

func runPredict(cmd *cobra.Command, opts *predictOptions, path string) error {
	image, err := imageio.Load(path)
	if err != nil {
		return err
	}

	models, err := pof.LoadModels(cfg)
	if err != nil {
		return err
	}
	defer models.Close()

	cfg.Archive.Enable = false
	resp, err := server.NewService(cfg, models).Predict(cmd.Context(), &pof.Request{
		SiteID:      opts.siteID,
		OrderID:     opts.orderID,
		ImageBase64: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
