package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "printshop-api",
	Short: "Print shop marketplace API",
	Long:  "Print shop marketplace API: orders, stores, KYC and Razorpay payments.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		//.envは無くてもよい（本番は環境変数）
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
