// Command formkit renders and serves forms declared in YAML or JSON files.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/andreyvit/formkit/forms"
)

var verbose bool

func main() {
	log.SetFlags(0)

	rootCmd := &cobra.Command{
		Use:   "formkit",
		Short: "Render and serve declarative HTML forms",
		Long: `formkit builds HTML forms from YAML or JSON definitions.

Use "render" to print the markup of a form, optionally with submitted values
and validation errors, and "serve" to run it as a small web app.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")
	rootCmd.AddCommand(renderCmd(), serveCmd(), kindsCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("** %v", err)
	}
}

func kindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the field types a definition may use",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, k := range forms.Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
		},
	}
}
