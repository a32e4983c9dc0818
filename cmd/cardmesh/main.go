package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"cardmesh/internal/analysis"
	"cardmesh/internal/card"
	"cardmesh/internal/config"
	"cardmesh/internal/crawler"
	"cardmesh/internal/diag"
	"cardmesh/internal/git"
	"cardmesh/internal/graph"
	"cardmesh/internal/index"
	"cardmesh/internal/posmap"
	"cardmesh/internal/resolver"
	"cardmesh/internal/storage"
	"cardmesh/internal/tokenizer"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "cardmesh",
		Short: "Compile cards into a cross-referenced module graph",
	}
	configPath string
	dbPath     string
	strict     bool
	frames     bool
	jsonOut    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "cardmesh.yaml", "Path to the configuration file (YAML or TOML)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the graph database (SQLite); overrides the config")
	rootCmd.PersistentFlags().BoolVar(&frames, "frames", false, "Print the translated call chain of diagnostics")

	scanCmd.Flags().BoolVar(&strict, "strict", false, "Fail when an imported name has no candidate")
	scanCmd.Flags().StringVar(&jsonOut, "json", "", "Also write the graph to this JSON file")
	checkCmd.Flags().BoolVar(&strict, "strict", false, "Fail when an imported name has no candidate")

	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(impactCmd)
}

// fatal prints err and exits. Diagnostics are rendered with their excerpt.
func fatal(what string, err error) {
	if _, ok := diag.As(err); ok {
		fmt.Fprint(os.Stderr, renderError(err, frames))
		os.Exit(1)
	}
	log.Fatalf("%s: %v", what, err)
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if strict {
		cfg.Project.Strict = true
	}
	return cfg
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
}

// loadPositions reads the configured position maps.
func loadPositions(ctx context.Context, cfg *config.Config) (map[string]posmap.Translator, error) {
	out := make(map[string]posmap.Translator, len(cfg.SourceMaps))
	for _, sm := range cfg.SourceMaps {
		generated, err := filepath.Abs(sm.Generated)
		if err != nil {
			return nil, err
		}
		var tr posmap.Translator
		switch sm.Kind {
		case "markers":
			tr, err = posmap.LoadMarkers(ctx, sm.Map)
		default:
			tr, err = posmap.LoadSourceMap(sm.Map)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load position map %s: %w", sm.Map, err)
		}
		out[generated] = tr
	}
	return out, nil
}

func newIndexer(ctx context.Context, cfg *config.Config) *index.Indexer {
	r, err := resolver.NewDefault(cfg.Decks.Patterns...)
	if err != nil {
		log.Fatalf("Failed to create resolver: %v", err)
	}
	idx := index.NewIndexer(crawler.NewCrawler(cfg.Project.Extension), r, newLogger(cfg))
	idx.Strict = cfg.Project.Strict
	idx.Positions, err = loadPositions(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load position maps: %v", err)
	}
	return idx
}

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print the token stream of a card",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		text, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read card: %v", err)
		}
		res, err := tokenizer.Tokenize(args[0], string(text))
		if err != nil {
			fatal("Tokenize failed", err)
		}
		for _, t := range res.Tokens {
			fmt.Printf("%4d:%-4d %-26s %q\n", t.Start.Line+1, t.Start.Character, t.Kind, t.Text)
		}
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Resolve a card and everything it references",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		idx := newIndexer(ctx, cfg)

		loader, err := card.NewFSLoader(cfg.Project.Root)
		if err != nil {
			log.Fatalf("Failed to open project root: %v", err)
		}
		path, err := filepath.Abs(args[0])
		if err != nil {
			log.Fatalf("Failed to resolve path: %v", err)
		}

		b := idx.NewBase(loader)

		start := time.Now()
		if err := idx.Resolver().Handle(b, path); err != nil {
			fatal("Check failed", err)
		}
		g := graph.FromBase(b)
		if cfg.Project.Strict {
			if err := g.Strict(); err != nil {
				fatal("Check failed", err)
			}
		}

		fmt.Printf("✅ %d cards resolved in %v (%d promoted, %d partial).\n",
			b.Cards.Len(), time.Since(start), b.Stats.Promoted.Load(), b.Stats.Partial.Load())
		printUnresolved(g)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "Resolve every card under root and store the graph locally",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			log.Fatalf("Failed to resolve root: %v", err)
		}

		fmt.Printf("📂 Scanning directory: %s\n", absRoot)

		store, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		idx := newIndexer(ctx, cfg)

		fmt.Println("🚀 Building module graph...")
		start := time.Now()
		g, b, err := idx.BuildGraph(absRoot)
		if err != nil {
			fatal("Build failed", err)
		}
		fmt.Printf("✅ Graph built in %v. Found %d modules and %d symbols.\n", time.Since(start), len(g.Modules), len(g.Symbols))

		fmt.Println("💾 Saving to local database...")
		run := storage.Run{ID: b.ID.String(), Root: absRoot, CreatedAt: time.Now()}
		if err := store.SaveGraph(ctx, run, g); err != nil {
			log.Fatalf("Failed to save graph: %v", err)
		}
		if jsonOut != "" {
			if err := idx.SaveGraph(g, jsonOut); err != nil {
				log.Fatalf("Failed to write graph: %v", err)
			}
		}

		printUnresolved(g)
		fmt.Printf("🎉 Scan complete! Database: %s\n", cfg.Storage.Path)
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph [module]",
	Short: "Print module dependencies from the stored graph",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()

		store, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		g, err := store.LoadGraph(ctx)
		if err != nil {
			log.Fatalf("Failed to load graph: %v", err)
		}
		if run, err := store.LatestRun(ctx); err == nil {
			fmt.Printf("🔄 Run %s (%s)\n", run.ID, run.CreatedAt.Format(time.RFC3339))
		}

		modules := g.SortedModules()
		if len(args) > 0 {
			path, err := filepath.Abs(args[0])
			if err != nil {
				log.Fatalf("Failed to resolve path: %v", err)
			}
			m, ok := g.Modules[path]
			if !ok {
				log.Fatalf("Module %s not found in the graph", path)
			}
			modules = []*graph.Module{m}
		}

		for _, m := range modules {
			fmt.Printf("%s [%s, %s]\n", m.Path, m.Target, m.State)
			for _, dep := range g.GetDependencies(m.Path) {
				fmt.Printf("  -> %s\n", dep.Path)
			}
			for _, dep := range g.GetDependents(m.Path) {
				fmt.Printf("  <- %s\n", dep.Path)
			}
			for _, s := range g.SymbolsOf(m.Path) {
				visibility := "public"
				if s.Hidden {
					visibility = "hidden"
				}
				fmt.Printf("  %s %s (%s)\n", s.Kind, s.Name, visibility)
			}
		}
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact [base-ref]",
	Short: "Show the modules affected by card changes since a git revision",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		baseRef := "HEAD"
		if len(args) > 0 {
			baseRef = args[0]
		}

		store, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		g, err := store.LoadGraph(ctx)
		if err != nil {
			log.Fatalf("Failed to load graph: %v", err)
		}

		fmt.Printf("🔍 Analyzing changes since %s...\n", baseRef)
		changes, err := git.ChangedCards(ctx, cfg.Project.Root, baseRef, cfg.Project.Extension)
		if err != nil {
			log.Fatalf("Failed to read changes: %v", err)
		}
		if len(changes) == 0 {
			fmt.Println("✅ No card changes.")
			return
		}

		report, err := analysis.NewAnalyzer(g).AnalyzeImpact(changes)
		if err != nil {
			log.Fatalf("Impact analysis failed: %v", err)
		}

		fmt.Printf("📝 %d changed cards, %d declarations touched.\n", len(report.DirectModules), len(report.DirectSymbols))
		for _, s := range report.DirectSymbols {
			fmt.Printf("  * %s %s (%s:%d)\n", s.Kind, s.Name, s.Module, s.Line)
		}
		for _, m := range report.Selectors {
			fmt.Printf("  -> selected by %s\n", m.Path)
		}
		for _, m := range report.IndirectModules {
			fmt.Printf("  <- %s [%s]\n", m.Path, m.State)
		}
		for _, p := range report.Unknown {
			fmt.Printf("  ? %s (not in the stored graph; run scan)\n", p)
		}
	},
}

func printUnresolved(g *graph.Graph) {
	counts := g.UnresolvedReasonCounts()
	if len(counts) == 0 {
		return
	}
	reasons := make([]string, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	fmt.Println("⚠️  Unresolved selections:")
	for _, r := range reasons {
		fmt.Printf("  -> %d %s\n", counts[graph.UnresolvedReason(r)], r)
	}
}
