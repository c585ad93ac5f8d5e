package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-indexer/internal/config"
	"github.com/kozaktomas/face-indexer/internal/database"
	"github.com/kozaktomas/face-indexer/internal/faceindex"
)

var similarCmd = &cobra.Command{
	Use:   "similar <face-id>",
	Short: "Find faces similar to a stored face",
	Long: `Find the stored faces whose embeddings are closest to the given face,
by cosine distance. Lower distances mean more likely the same person.

Example:
  face-indexer similar 42_10000_20000_40000_60000 --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().Int("limit", 20, "Maximum number of results")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	faceID := args[0]

	if _, ok := faceindex.FileIDFromFaceID(faceID); !ok {
		return fmt.Errorf("invalid face ID: %s", faceID)
	}

	ctx := context.Background()
	cfg := config.Load()

	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	repo := database.NewFaceRepository(pool)

	face, err := repo.GetFace(ctx, faceID)
	if err != nil {
		return fmt.Errorf("failed to load face %s: %w", faceID, err)
	}

	hits, err := repo.FindSimilar(ctx, face.Embedding, limit)
	if err != nil {
		return fmt.Errorf("similarity search failed: %w", err)
	}

	fmt.Printf("%-45s %-20s %-10s %s\n", "FACE", "FILE", "DISTANCE", "SCORE")
	for _, hit := range hits {
		fmt.Printf("%-45s %-20d %-10.4f %.2f\n", hit.FaceID, hit.FileID, hit.Distance, hit.Score)
	}
	return nil
}
