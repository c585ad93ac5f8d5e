package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-indexer/internal/config"
	"github.com/kozaktomas/face-indexer/internal/database"
	"github.com/kozaktomas/face-indexer/internal/indexer"
	"github.com/kozaktomas/face-indexer/internal/inference"
	"github.com/kozaktomas/face-indexer/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the face index API server",
	Long: `Start the Face Indexer web server.
The server exposes stored face indices, indexes uploaded images on demand,
and answers similar-face queries.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// initFaceHNSW builds the face HNSW index from the database for fast
// similarity search, writing it to indexPath when one is configured.
func initFaceHNSW(ctx context.Context, repo *database.FaceRepository, indexPath string) {
	if indexPath != "" {
		fmt.Printf("Building face HNSW index (saving to %s)...\n", indexPath)
	} else {
		fmt.Println("Building in-memory HNSW index for similar-face search...")
	}
	if err := repo.EnableHNSW(ctx, indexPath); err != nil {
		fmt.Printf("Warning: Failed to build face HNSW index: %v\n", err)
		fmt.Println("Similar-face search will use PostgreSQL queries (slower)")
		return
	}
	fmt.Printf("Face HNSW index ready with %d faces\n", repo.HNSWCount())
}

func runServe(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetInt("port")
	host, _ := cmd.Flags().GetString("host")

	ctx := context.Background()
	cfg := config.Load()

	fmt.Println("Connecting to PostgreSQL...")
	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := database.NewFaceRepository(pool)
	initFaceHNSW(ctx, repo, cfg.Database.HNSWIndexPath)

	pipeline := indexer.New(inference.NewClient(cfg.Worker.URL))
	server := web.NewServer(cfg, repo, pipeline, port, host)

	// Serve until interrupted, then drain in-flight requests.
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
