package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pof-predictor/internal/version"
)

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "show version",
	Long:              `show the version details of pofd.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Version:%s GitCommit:%s\n", version.Version, version.GitCommit)
		fmt.Fprintf(cmd.OutOrStdout(), "Models:%s BuildTime:%s\n", version.ModelVersion, version.BuildTime)
		fmt.Fprintf(cmd.OutOrStdout(), "Platform:%s GoVersion:%s\n", version.Platform, version.GoVersion)
	},
}
