// Package cli implements the stigmergy command-line surface: run, status,
// resume, and version, wired through spf13/cobra and spf13/viper exactly
// as the teacher's own internal/cli package does.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andywolf/stigmergy/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "stigmergy",
	Short: "stigmergy - orchestrate multiple AI coding CLIs through shared file state",
	Long: `stigmergy analyses, invokes, and supervises AI coding CLIs (Claude, Gemini,
Qwen, iFlow, Qodercli, Codebuddy, Codex, Copilot, Kode) non-interactively,
recovering from failures via resume and fallback, and coordinating across
invocations through a shared Markdown Status Board.

Example:
  stigmergy run --auto claude "refactor the payment module"`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .stigmergy.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".stigmergy")
	}

	viper.SetEnvPrefix("STIGMERGY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
