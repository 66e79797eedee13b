package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stock-circle",
	Short: "A CLI for the Stock Circle community services",
	Long: `Stock Circle is a community stock tracking backend.

Each service ships its own binary:
  api-service serve     HTTP API and websocket fan-out
  worker-service serve  scheduled price refresh and holdings sync
  migrate up|down       database schema migrations`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
