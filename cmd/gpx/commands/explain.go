package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/l3aro/go-path-explain/internal/config"
	"github.com/l3aro/go-path-explain/internal/log"
	"github.com/l3aro/go-path-explain/internal/scanner"
	"github.com/l3aro/go-path-explain/pkg/cache"
	"github.com/l3aro/go-path-explain/pkg/explain"
	"github.com/l3aro/go-path-explain/pkg/fixture"
	"github.com/l3aro/go-path-explain/pkg/render"
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain <fixture.yaml|dir>...",
	Short: "Explain trace fixtures",
	Long: `Loads each trace fixture, registers the visitors its defect kind calls
for, walks the trace backward from the error node and prints the resulting
notes. Directories are searched for *.yaml and *.yml fixtures, honoring
.gpxignore files.

Explanations are cached by fixture content, so unchanged fixtures are not
walked again.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("prune") {
			cfg.Prune, _ = cmd.Flags().GetBool("prune")
		}
		if cmd.Flags().Changed("max-steps") {
			cfg.MaxSteps, _ = cmd.Flags().GetInt("max-steps")
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			cfg.Output = config.OutputJSON
		}
		if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
			cfg.CacheEnabled = false
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := newLogger(cfg)

		paths, err := collectFixtures(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no fixtures found in %s", strings.Join(args, ", "))
		}

		store := openStore(cfg, logger)
		docs, err := explainAll(cmd.Context(), paths, explainOptions{
			MaxSteps: cfg.MaxSteps,
			Prune:    cfg.Prune,
			Workers:  cfg.Workers,
			Store:    store,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		if err := store.Flush(); err != nil {
			logger.Warn("failed to save explanation cache", "path", cfg.CachePath, "error", err)
		}
		stats := store.Stats()
		logger.Debug("explained fixtures", "count", len(docs), "cache_hits", stats.Hits, "cache_misses", stats.Misses)

		out := cmd.OutOrStdout()
		if cfg.Output == config.OutputJSON {
			err = render.JSON(out, docs)
		} else {
			err = render.Text(out, docs)
		}
		if err != nil {
			return fmt.Errorf("writing output: %w", err)
		}

		failed := 0
		for _, d := range docs {
			if d.Error != "" {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d fixtures failed to load", failed, len(docs))
		}
		return nil
	},
}

// openStore opens the persistent note cache, falling back to an in-memory
// store when the cache is disabled or unreadable.
func openStore(cfg *config.Config, logger log.Logger) *cache.NoteStore {
	opts := cache.Options{MaxSize: cfg.CacheSize}
	if !cfg.CacheEnabled {
		return cache.NewNoteStore("", opts)
	}
	store, err := cache.OpenNoteStore(cfg.CachePath, opts)
	if err != nil {
		logger.Warn("ignoring unreadable explanation cache", "path", cfg.CachePath, "error", err)
		return cache.NewNoteStore(cfg.CachePath, opts)
	}
	return store
}

// collectFixtures expands directory arguments into the fixtures they contain.
// File arguments are kept as given, whatever their extension.
func collectFixtures(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		files, err := scanner.Scan(arg)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", arg, err)
		}
		for _, f := range files {
			paths = append(paths, f.FullPath)
		}
	}
	return paths, nil
}

type explainOptions struct {
	MaxSteps int
	Prune    bool
	Workers  int
	Store    *cache.NoteStore
	Logger   log.Logger
}

// explainAll explains every fixture concurrently, one report per goroutine.
// Documents come back in the order of paths. A fixture that fails to load
// yields a document carrying the error instead of notes.
func explainAll(ctx context.Context, paths []string, opts explainOptions) ([]render.Document, error) {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.Store == nil {
		opts.Store = cache.NewNoteStore("", cache.Options{})
	}

	docs := make([]render.Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			doc, err := explainOne(ctx, path, opts)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func explainOne(ctx context.Context, path string, opts explainOptions) (render.Document, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	fx, err := fixture.Load(path)
	if err != nil {
		opts.Logger.Warn("skipping fixture", "path", path, "error", err)
		return render.Document{Name: name, Error: err.Error()}, nil
	}

	key := cache.NoteKey{Digest: fx.Digest, MaxSteps: opts.MaxSteps, Prune: opts.Prune}
	notes, hit, err := opts.Store.GetOrCompute(ctx, key, func(context.Context) ([]render.Note, error) {
		steps := fx.Explain(explain.WithLogger(opts.Logger), explain.WithMaxSteps(opts.MaxSteps))
		if opts.Prune {
			steps = explain.Prune(steps)
		}
		return render.Notes(steps), nil
	})
	if err != nil {
		return render.Document{}, err
	}

	return render.Document{
		Name:        fx.Name,
		Description: fx.Description,
		Notes:       notes,
		Cached:      hit,
	}, nil
}

func init() {
	explainCmd.Flags().Bool("prune", false, "Drop notes that are not essential to the defect")
	explainCmd.Flags().Int("max-steps", 0, "Maximum number of notes per fixture (0: no limit; default from config)")
	explainCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	explainCmd.Flags().Bool("no-cache", false, "Do not read or write the explanation cache")
	RootCmd.AddCommand(explainCmd)
}
