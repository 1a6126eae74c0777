package main

import (
	"fmt"
	"os"

	"github.com/plateful/plateful/cmd/plateful/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "plateful",
		Short: "Command-line client for the plateful calorie tracker",
		Long:  "Track meals from the terminal: sign in, analyze food photos, and browse your log.",
	}

	rootCmd.AddCommand(commands.NewSignupCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewMeCmd())
	rootCmd.AddCommand(commands.NewForgotPasswordCmd())
	rootCmd.AddCommand(commands.NewAnalyzeCmd())
	rootCmd.AddCommand(commands.NewLogCmd())
	rootCmd.AddCommand(commands.NewHistoryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
