package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thep200/git2neo/cfg"
	"github.com/thep200/git2neo/internal/app"
	"github.com/thep200/git2neo/internal/crawler"
	"github.com/thep200/git2neo/internal/model"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:          "git2neo",
	Short:        "Crawl a CVE-centred GitHub social graph into a graph store",
	SilenceUsage: true,
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run the seed layer then the layer 1 expansion",
	Long: `Run the layered crawl.

Examples:
  git2neo crawl                          # settings from cfg/yaml/mode.yaml
  git2neo crawl --seeds 10 --no-fresh    # keep the existing graph`,
	RunE: runCrawl,
}

var followersCmd = &cobra.Command{
	Use:   "followers",
	Short: "Record FOLLOWED edges between people already in the graph",
	RunE:  runFollowers,
}

var repoCmd = &cobra.Command{
	Use:   "repo <owner> <name>",
	Short: "Crawl the stargazers of a single repository",
	Args:  cobra.ExactArgs(2),
	RunE:  runRepo,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "cfg/yaml", "directory holding mode.yaml")

	crawlCmd.Flags().Int("seeds", 0, "number of seed rows to read (default from config)")
	crawlCmd.Flags().String("seed-file", "", "Owner,Repo CSV file (default from config)")
	crawlCmd.Flags().Int("workers", 0, "parallel units per layer (default from config)")
	crawlCmd.Flags().Bool("no-fresh", false, "do not clear the store before crawling")

	repoCmd.Flags().String("layer", string(model.LayerSeed), "layer tag for the repository node")

	rootCmd.AddCommand(crawlCmd, followersCmd, repoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp loads config and backends, runs fn under a signal-aware context and
// releases everything afterwards.
func withApp(cmd *cobra.Command, tweak func(*cfg.Config) error, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader, _ := cfg.NewViperLoader(configDir)
	loader.SetWatchChange(false)
	config, err := loader.Load()
	if err != nil {
		return err
	}
	if tweak != nil {
		if err := tweak(config); err != nil {
			return err
		}
	}

	a, err := app.New(ctx, staticLoader{config})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		a.Logger.Error(ctx, "Failed: %v", err)
		return err
	}
	a.Logger.Info(ctx, "Successfully!")
	return nil
}

type staticLoader struct {
	config *cfg.Config
}

func (l staticLoader) Load() (*cfg.Config, error) {
	return l.config, nil
}

func runCrawl(cmd *cobra.Command, args []string) error {
	tweak := func(config *cfg.Config) error {
		flags := cmd.Flags()
		if n, _ := flags.GetInt("seeds"); n > 0 {
			config.Crawl.NumSeedRepos = n
		}
		if f, _ := flags.GetString("seed-file"); f != "" {
			config.Crawl.SeedFile = f
		}
		if w, _ := flags.GetInt("workers"); w > 0 {
			config.Crawl.Workers = w
		}
		if noFresh, _ := flags.GetBool("no-fresh"); noFresh {
			config.Crawl.FreshRun = false
		}
		return nil
	}

	return withApp(cmd, tweak, func(ctx context.Context, a *app.App) error {
		o, err := a.Orchestrator()
		if err != nil {
			return err
		}
		summaries, err := o.Crawl(ctx)
		printSummaries(cmd, summaries)
		return err
	})
}

func runFollowers(cmd *cobra.Command, args []string) error {
	return withApp(cmd, nil, func(ctx context.Context, a *app.App) error {
		o, err := a.Orchestrator()
		if err != nil {
			return err
		}
		summary, err := o.RefreshNetwork(ctx)
		printSummaries(cmd, []crawler.Summary{summary})
		return err
	})
}

func runRepo(cmd *cobra.Command, args []string) error {
	layer, _ := cmd.Flags().GetString("layer")
	return withApp(cmd, nil, func(ctx context.Context, a *app.App) error {
		o, err := a.Orchestrator()
		if err != nil {
			return err
		}
		res, err := o.CrawlRepo(ctx, args[0], args[1], model.Layer(layer))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages, %d stargazers, status %s\n", res.Subject, res.Pages, res.Items, res.Status())
		if res.Failure != nil {
			return res.Failure
		}
		return nil
	})
}

func printSummaries(cmd *cobra.Command, summaries []crawler.Summary) {
	out := cmd.OutOrStdout()
	for _, s := range summaries {
		fmt.Fprintf(out, "%-18s units=%d ok=%d failed=%d skipped=%d items=%d ledger=%s\n",
			s.Phase, s.Units, s.Succeeded, s.Failed, s.Skipped, s.Items, s.LedgerPath)
	}
}
