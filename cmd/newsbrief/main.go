package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"newsbrief/internal/config"
	"newsbrief/internal/database"
	"newsbrief/internal/notify"
	"newsbrief/internal/pipeline"
	"newsbrief/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "newsbrief",
	Short:   "Personalized daily news briefings",
	Long:    "newsbrief discovers news, extracts summaries with a local model, scores the impact on your personas, and serves a daily briefing.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// API keys and Pushover credentials live in the environment;
		// a local .env is a convenience, not a requirement.
		_ = godotenv.Load()

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("newsbrief", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/newsbrief/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, personas, and the model endpoint.")
		return nil
	},
}

// --- run command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily cycle: ingest, cleanup, notify",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(cfg, db)
		ctx := context.Background()

		result, err := pipe.Run(ctx)
		if err != nil {
			return err
		}
		printResult(result)

		deleted, err := pipe.Cleanup()
		if err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
		if deleted > 0 {
			fmt.Printf("\nCleanup: removed %d article(s) older than %d days.\n", deleted, cfg.Retention.Days)
		}

		// Everything is on disk before the notification goes out, so a
		// failed push never costs ingested data.
		if cfg.Pushover.Enabled {
			if err := notify.New(db, cfg).Send(ctx); err != nil {
				log.Printf("Notification failed: %v", err)
			}
		}

		fmt.Println("\nRun complete! Use 'newsbrief serve' to view the briefing.")
		return nil
	},
}

// --- ingest command ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Discover, fetch, and score new articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		result, err := pipeline.New(cfg, db).Run(context.Background())
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

func printResult(result *pipeline.Result) {
	fmt.Println("\nIngestion complete:")
	fmt.Printf("  Discovered: %d\n", result.Discovered)
	fmt.Printf("  New articles: %d\n", result.NewArticles)
	fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)
	fmt.Printf("  Too short to use: %d\n", result.SkippedShort)
	fmt.Printf("  Model failures: %d\n", result.SkippedModel)
	fmt.Printf("  Impacts written: %d\n", result.ImpactsWritten)

	if len(result.Sources) > 0 {
		fmt.Println("\nArticles by source:")
		// Sort sources by count descending
		type kv struct {
			key string
			val int
		}
		var sorted []kv
		for k, v := range result.Sources {
			sorted = append(sorted, kv{k, v})
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
		for _, s := range sorted {
			fmt.Printf("  %s: %d\n", s.key, s.val)
		}
	}
}

// --- cleanup command ---

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove articles older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		deleted, err := pipeline.New(cfg, db).Cleanup()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d article(s) older than %d days.\n", deleted, cfg.Retention.Days)
		return nil
	},
}

// --- notify command ---

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send today's briefing summary via Pushover",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if !cfg.Pushover.Enabled {
			fmt.Println("Pushover is disabled in config.")
			return nil
		}
		return notify.New(db, cfg).Send(context.Background())
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Today: %s\n\n", database.Today())
		fmt.Println("Articles:")
		fmt.Printf("  Total stored: %d\n", stats.TotalArticles)
		fmt.Printf("  Ingested today: %d\n", stats.ArticlesToday)
		if stats.OldestDate != "" {
			fmt.Printf("  Oldest: %s\n", stats.OldestDate)
		}
		fmt.Println("\nImpacts:")
		fmt.Printf("  Total scored: %d\n", stats.TotalImpacts)
		fmt.Printf("  Personas seen: %d\n", stats.ScoredPersonas)
		return nil
	},
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "newsbrief.db")
	return database.Open(dbPath)
}
