// Package main provides the annisquery CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpusql/annisquery/pkg/corpus"
	"github.com/corpusql/annisquery/pkg/driver"
	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/corpusql/annisquery/pkg/logx"
	"github.com/corpusql/annisquery/pkg/persist"
	"github.com/corpusql/annisquery/pkg/plancache"
	"github.com/corpusql/annisquery/pkg/planner"
	"github.com/corpusql/annisquery/pkg/taskpool"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	var configFile string
	rootCmd := &cobra.Command{
		Use:   "annisquery",
		Short: "annisquery - in-memory linguistic corpus search engine",
		Long: `annisquery evaluates structural queries (precedence, dominance,
pointing, coverage) over an in-memory annotation graph, the way graphANNIS
evaluates AQL over a persisted corpus store.`,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (defaults layered under ANNISQUERY_* environment variables)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("annisquery v%s (%s)\n", version, commit)
		},
	})

	planCmd := &cobra.Command{
		Use:   "plan <query.json> <corpus-dir>",
		Short: "Build and print a query's plan tree without executing it",
		Args:  cobra.ExactArgs(2),
		RunE:  runPlan,
	}
	rootCmd.AddCommand(planCmd)

	queryCmd := &cobra.Command{
		Use:   "query <query.json> <corpus-dir>",
		Short: "Execute a query and print each matching tuple",
		Args:  cobra.ExactArgs(2),
		RunE:  runQuery,
	}
	rootCmd.AddCommand(queryCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the --config YAML file if set, otherwise falls back to
// environment variables alone.
func loadConfig(cmd *cobra.Command) (*corpus.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return corpus.LoadFromEnv(), nil
	}
	return corpus.LoadFromFile(path)
}

// loadQuery reads a ParsedQuery from a JSON fixture file, standing in for
// the out-of-scope AQL/JSON query-language parser.
func loadQuery(path string) (planner.ParsedQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return planner.ParsedQuery{}, fmt.Errorf("read query file: %w", err)
	}
	var q planner.ParsedQuery
	if err := json.Unmarshal(data, &q); err != nil {
		return planner.ParsedQuery{}, fmt.Errorf("parse query file: %w", err)
	}
	return q, nil
}

// loadCorpus opens the BadgerDB checkpoint under dir and rebuilds a
// *graph.Graph named after dir's base name.
func loadCorpus(dir string) (*graph.Graph, func(), error) {
	store, err := persist.Open(dir, nil)
	if err != nil {
		return nil, nil, err
	}
	g, err := store.Load(filepath.Base(dir))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return g, func() { store.Close() }, nil
}

func setupPlanner(cfg *corpus.Config, log logx.Logger) *planner.Planner {
	cache := plancache.New(cfg.PlanCacheSize, cfg.PlanCacheTTL)
	return planner.New(log, cache)
}

func queryConfigFrom(cfg *corpus.Config) planner.QueryConfig {
	qc := planner.DefaultQueryConfig()
	qc.DisableOptimizer = !cfg.OptimizerEnabled
	qc.UseTaskPool = cfg.QueryThreadPoolSize > 0
	qc.TaskPoolSize = cfg.QueryThreadPoolSize
	return qc
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %v", errs)
	}
	log := logx.New("annisquery", logx.ParseLevel(cfg.LogLevel))

	query, err := loadQuery(args[0])
	if err != nil {
		return err
	}
	g, closeCorpus, err := loadCorpus(args[1])
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	defer closeCorpus()

	p := setupPlanner(cfg, log)
	root, err := p.Plan(query, g, queryConfigFrom(cfg))
	if err != nil {
		return fmt.Errorf("plan query: %w", err)
	}

	fmt.Println(root.DebugString())
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %v", errs)
	}
	log := logx.New("annisquery", logx.ParseLevel(cfg.LogLevel))

	query, err := loadQuery(args[0])
	if err != nil {
		return err
	}
	g, closeCorpus, err := loadCorpus(args[1])
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	defer closeCorpus()

	p := setupPlanner(cfg, log)
	qcfg := queryConfigFrom(cfg)
	root, err := p.Plan(query, g, qcfg)
	if err != nil {
		return fmt.Errorf("plan query: %w", err)
	}

	var pool *taskpool.Pool
	if qcfg.UseTaskPool {
		pool = taskpool.New(qcfg.TaskPoolSize, qcfg.TaskPoolSize*4)
		defer pool.Close()
	}

	drv, err := driver.New(root, g, qcfg, pool, log)
	if err != nil {
		return fmt.Errorf("instantiate plan: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count := 0
	for {
		tup, ok, err := drv.Next(ctx)
		if err != nil {
			return fmt.Errorf("execute query: %w", err)
		}
		if !ok {
			break
		}
		fmt.Println(renderTuple(g, tup))
		drv.Release(tup)
		count++
	}
	fmt.Printf("%d tuple(s)\n", count)
	return nil
}

// renderTuple renders a result tuple as its node names joined by tabs, the
// way graphANNIS renders a match row.
func renderTuple(g *graph.Graph, tup graph.Tuple) string {
	out := ""
	for i, m := range tup {
		if i > 0 {
			out += "\t"
		}
		out += g.NodeName(m.Node, "", m.Anno)
	}
	return out
}
