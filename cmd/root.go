package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-indexer",
	Short: "A deterministic face indexing pipeline for photo libraries",
	Long: `Face Indexer detects, aligns and embeds faces in photographs using an
external inference worker, producing stable per-image face indices whose
identifiers survive reindexing and transport.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
