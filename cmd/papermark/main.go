package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/khoj-ai/openpaper-sub002/anchor"
	"github.com/khoj-ai/openpaper-sub002/logging"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "papermark",
	Short: "Papermark - highlight anchoring and search for paginated documents",
	Long: `Papermark anchors stored highlights inside the current rendering of a
paginated document and searches its text layer.

Documents are plain text files with one form feed (\f) between pages;
each line becomes one rendered text segment. Highlight records are the
JSON produced by the annotation API.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().String("log-style", "terminal", "log output style: terminal, json, noop")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Float64("exact-threshold", anchor.DefaultExactThreshold, "minimum similarity to trust stored offsets")
	rootCmd.PersistentFlags().Float64("fuzzy-threshold", anchor.DefaultFuzzyThreshold, "minimum similarity to accept a fuzzy window")

	viper.SetEnvPrefix("PAPERMARK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(anchorCmd)
	rootCmd.AddCommand(normalizeCmd)
}

func newLogger() (*zap.Logger, error) {
	return logging.NewLogger(&logging.Config{
		Style: logging.Style(viper.GetString("log-style")),
		Level: viper.GetString("log-level"),
	})
}

func newResolver(idx *anchor.Index) *anchor.Resolver {
	r := anchor.NewResolver(idx)
	r.ExactThreshold = viper.GetFloat64("exact-threshold")
	r.FuzzyThreshold = viper.GetFloat64("fuzzy-threshold")
	return r
}

// loadDocument reads a page-per-form-feed text file into an in-memory
// document view, one leaf segment per line.
func loadDocument(path string) (*anchor.MemDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	var pages [][]string
	for _, page := range strings.Split(string(data), "\f") {
		pages = append(pages, strings.SplitAfter(page, "\n"))
	}
	return anchor.NewMemDocument(pages...), nil
}
