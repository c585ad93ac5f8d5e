package cmd

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-indexer/internal/config"
	"github.com/kozaktomas/face-indexer/internal/database"
	"github.com/kozaktomas/face-indexer/internal/faceindex"
	"github.com/kozaktomas/face-indexer/internal/imaging"
	"github.com/kozaktomas/face-indexer/internal/indexer"
	"github.com/kozaktomas/face-indexer/internal/inference"
)

var indexCmd = &cobra.Command{
	Use:   "index <path> [path...]",
	Short: "Index faces in image files",
	Long: `Detect, align and embed faces in the given image files or folders and
store the resulting face indices in PostgreSQL.

The process can be stopped and resumed - already indexed files are skipped
unless --force is given.

Examples:
  # Index a folder of photos (5 concurrent workers)
  face-indexer index /path/to/photos

  # Recurse into subdirectories with more workers
  face-indexer index -r --concurrency 10 /path/to/photos

  # Reindex everything
  face-indexer index --force /path/to/photos`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().Int("concurrency", 5, "Number of parallel workers")
	indexCmd.Flags().Int("limit", 0, "Limit number of files to process (0 = no limit)")
	indexCmd.Flags().BoolP("recursive", "r", false, "Search for images recursively in subdirectories")
	indexCmd.Flags().Bool("force", false, "Reindex files that already have a face index")
}

// fileIDForPath derives a stable 63-bit file ID from the absolute path, so
// repeated runs address the same rows.
func fileIDForPath(path string) int64 {
	h := fnv.New64a()
	h.Write([]byte(path))
	return int64(h.Sum64() &^ (1 << 63))
}

// collectImages gathers image files from the given paths.
func collectImages(paths []string, recursive bool) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}

		if !info.IsDir() {
			if imaging.IsImageFile(root) {
				files = append(files, root)
			}
			continue
		}

		if recursive {
			err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && imaging.IsImageFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to walk %s: %w", root, err)
			}
			continue
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", root, err)
		}
		for _, e := range entries {
			if !e.IsDir() && imaging.IsImageFile(e.Name()) {
				files = append(files, filepath.Join(root, e.Name()))
			}
		}
	}
	return files, nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	limit, _ := cmd.Flags().GetInt("limit")
	recursive, _ := cmd.Flags().GetBool("recursive")
	force, _ := cmd.Flags().GetBool("force")

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
	faceCount, _ := repo.Count(ctx)
	fileCount, _ := repo.CountFiles(ctx)
	fmt.Printf("Faces in database: %d (across %d files)\n", faceCount, fileCount)

	files, err := collectImages(args, recursive)
	if err != nil {
		return err
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	if len(files) == 0 {
		fmt.Println("No image files found")
		return nil
	}

	pipeline := indexer.New(inference.NewClient(cfg.Worker.URL))
	runID := uuid.NewString()
	fmt.Printf("Indexing %d files (run %s)\n", len(files), runID)

	bar := progressbar.Default(int64(len(files)))

	type result struct {
		path string
		err  error
	}

	jobs := make(chan string)
	results := make(chan result)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- result{path: path, err: indexOne(ctx, repo, pipeline, path, force, runID)}
			}
		}()
	}

	go func() {
		for _, path := range files {
			jobs <- path
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var indexed, failed int
	for r := range results {
		bar.Add(1)
		if r.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "\n%s: %v\n", r.path, r.err)
			continue
		}
		indexed++
	}

	fmt.Printf("Done: %d files indexed, %d failed\n", indexed, failed)
	return nil
}

// indexOne indexes a single file, skipping files that already have an
// index unless force is set.
func indexOne(ctx context.Context, repo *database.FaceRepository, pipeline *indexer.Indexer, path string, force bool, runID string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	fileID := fileIDForPath(abs)

	if !force {
		has, err := repo.HasFaceIndex(ctx, fileID)
		if err != nil {
			return err
		}
		if has {
			return nil
		}
	}

	img, _, err := imaging.LoadRGBA(path)
	if err != nil {
		return err
	}

	index, err := pipeline.IndexFaces(ctx, fileID, img)
	if err != nil {
		return err
	}

	local := faceindex.LocalFaceIndex{FileID: fileID, FaceIndex: *index}
	return repo.SaveFaceIndex(ctx, local, runID)
}
