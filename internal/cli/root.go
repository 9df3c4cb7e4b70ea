// Package cmd wires the coordination store, crawl pipeline, indexing
// pipeline, and search planner into runnable cobra subcommands. It is the
// one place in the repository allowed to read process environment state
// (through config.FromEnv) and construct concrete implementations of every
// package's narrow interfaces.
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/eng-universe/blogsearch/internal/config"
	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "blogsearch",
	Short: "Crawl, index, and search engineering blog posts.",
	Long: `blogsearch crawls a fixed set of engineering blogs, extracts and
embeds their articles, and serves hybrid lexical/vector search over the
result through a shared Redis-compatible coordination store.

Every subcommand reads its configuration from the process environment;
there is no config file or per-invocation flag set beyond what a
subcommand documents for itself.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// mustSettings builds Settings from the environment and validates them,
// exiting the process on failure. Every subcommand starts this way.
func mustSettings() config.Settings {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds the zerolog.Logger every subcommand's MetadataSink is
// backed by, at the level named by cfg.CrawlLog() ("debug", "info", "warn",
// "error"). An unrecognized level falls back to info rather than aborting
// startup.
func newLogger(levelName string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func newSink(cfg config.Settings) metadata.MetadataSink {
	return metadata.NewRecorder(newLogger(cfg.CrawlLog()))
}

// unixNow is the frontier.Clock every subcommand wires in; it exists so
// tests elsewhere in the package can substitute a fixed clock without this
// file depending on anything beyond time.Now.
func unixNow() float64 {
	return float64(time.Now().Unix())
}
