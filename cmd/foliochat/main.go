package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "foliochat",
	Short: "Portfolio chatbot engine: intent routing plus grounded generation",
	Long: `foliochat serves a portfolio chat API that routes user messages to
portfolio components (profile, projects, skills, contact, resume, fun,
internship) or to retrieval-grounded generation, balancing requests
across a pool of provider API keys.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the foliochat version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("foliochat version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(credentialsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
