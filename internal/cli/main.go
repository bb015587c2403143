package cli

import (
	"fmt"
	"os"

	"github.com/ddudnik/clipsight/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "clipsight",
		Short:        "Detect highlight windows and viral patterns in recorded videos",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logging.Init(verbose)
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().String("config", "", "Path to clipsight.yaml")
	root.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")

	root.AddCommand(analyzeCmd(), batchCmd(), learnCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
