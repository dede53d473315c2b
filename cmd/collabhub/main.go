package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

//	@title						CollabHub API
//	@version					1.0
//	@description				Tasks, collaborative sessions and deployment history.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "collabhub",
	Short: "CollabHub server and tools",
	Long: `CollabHub serves the task, collaboration and deployment API together
with the realtime relay used by shared editors.

Get started by running: collabhub serve
`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(watchCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("collabhub version %s\n", version)
	},
}
