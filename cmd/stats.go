package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-indexer/internal/config"
	"github.com/kozaktomas/face-indexer/internal/database"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show face index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()

	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	repo := database.NewFaceRepository(pool)

	faces, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count faces: %w", err)
	}
	files, err := repo.CountFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to count files: %w", err)
	}

	fmt.Printf("Indexed files: %d\n", files)
	fmt.Printf("Stored faces:  %d\n", faces)
	return nil
}
