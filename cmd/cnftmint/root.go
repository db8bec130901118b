package main

import (
	"github.com/spf13/cobra"

	"xdao.co/cnftmint/submitter"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "cnftmint",
		Short:         "Mint subscriber giveaway compressed NFTs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&ctx.configPath, "config", "c", "", "TOML configuration file (defaults are compiled in)")
	pf.StringVar(&ctx.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&ctx.logFormat, "log-format", "", "Log format (console or json)")
	pf.StringVar(&ctx.submitterName, "submitter", "", "Submitter backend (see 'cnftmint submitters')")
	submitter.RegisterFlags(pf, submitter.UsageCLI)
	ctx.flags = pf

	rootCmd.AddCommand(newVariantsCommand(ctx))
	rootCmd.AddCommand(newPreviewCommand(ctx))
	rootCmd.AddCommand(newMintCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newSubmittersCommand())

	return rootCmd
}
