package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mason/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build the specified targets and their dependencies",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			configFile, _ := cmd.Flags().GetString("config")
			verbose, _ := cmd.Flags().GetBool("verbose")
			jobs, _ := cmd.Flags().GetInt("jobs")
			strict, _ := cmd.Flags().GetBool("strict")
			return c.app.Build(cmd.Context(), args, app.RunOptions{
				ConfigFile: configFile,
				Jobs:       jobs,
				Strict:     strict,
				Verbose:    verbose,
			})
		},
	}
	cmd.Flags().IntP("jobs", "j", 0, "Maximum number of rules built in parallel (default one per CPU)")
	cmd.Flags().Bool("strict", false, "Abort the build on the first failure")
	return cmd
}
