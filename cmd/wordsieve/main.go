package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wordsieve/internal/cli"
	"codeberg.org/snonux/wordsieve/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()
	v := viper.GetViper()

	// Each command opens the processor lazily so that --help and
	// completion work without a data directory.
	open := func() (cli.Actions, error) {
		return processor.Open(context.Background(), flags, v, processor.Options{Out: os.Stdout})
	}

	// Create root command
	rootCmd := cli.CreateRootCommand(flags, v, open)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(v, flags.CfgFile)
	})

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
