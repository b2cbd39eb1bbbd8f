package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amiyamandal-dev/blogapi/internal/backend"
	"github.com/amiyamandal-dev/blogapi/internal/config"
	"github.com/amiyamandal-dev/blogapi/pkg/logger"
)

var (
	configFile string
	seedFile   string
	dryRun     bool
	timeout    time.Duration
)

// rootCmd provisions articles into the configured store
var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Provision blog articles into the article store",
	Long: `Seed reads articles from a YAML or JSON file and writes them to the
configured store, replacing existing articles with the same name.
Upvotes and comments in the file overwrite what is stored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		if err := v.BindPFlag("store.driver", cmd.Flags().Lookup("driver")); err != nil {
			return err
		}
		cfg, err := config.LoadFrom(v, configFile)
		if err != nil {
			return err
		}

		log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		defer log.Sync()

		articles, err := loadArticles(seedFile)
		if err != nil {
			return err
		}
		if dryRun {
			for _, a := range articles {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d upvotes\t%d comments\n", a.Name, a.Upvotes, len(a.Comments))
			}
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		store, err := backend.Open(ctx, cfg.Store, log)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		n, err := store.Seeder.Seed(ctx, articles)
		if err != nil {
			return fmt.Errorf("seeding %s store: %w", cfg.Store.Driver, err)
		}

		log.Info("Articles seeded", "driver", cfg.Store.Driver, "file", seedFile, "count", n)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file (default: ./configs/config.yaml or ./config.yaml)")
	rootCmd.Flags().StringVarP(&seedFile, "file", "f", "configs/seed.yaml", "articles to seed (.yaml, .yml or .json)")
	rootCmd.Flags().String("driver", "", "override store.driver (mongo or badger)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the parsed articles without writing them")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline for seeding")
}
