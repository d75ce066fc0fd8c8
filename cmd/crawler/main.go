// Command crawler runs a single crawl from a configuration file and a
// list of seed URLs, per spec.md §6's CLI contract.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codepr/searchcrawl/internal/config"
	"github.com/codepr/searchcrawl/internal/coordinator"
	"github.com/codepr/searchcrawl/internal/docstore"
	"github.com/codepr/searchcrawl/internal/index"
	"github.com/codepr/searchcrawl/internal/tokenize"
)

var (
	configPath    string
	seedURLs      []string
	indexPath     string
	documentsPath string
)

var rootCmd = &cobra.Command{
	Use:   "crawler",
	Short: "Crawl seed URLs into a document store using a polite, concurrent worker pool.",
	RunE:  runCrawl,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to the crawler configuration file (required)")
	rootCmd.Flags().StringArrayVar(&seedURLs, "seeds", nil, "one or more seed URLs (required)")
	rootCmd.Flags().StringVar(&indexPath, "index-out", "index.bin", "path to write the finalized inverted index")
	rootCmd.Flags().StringVar(&documentsPath, "documents-out", "documents.json", "path to write crawled document metadata")
	_ = rootCmd.MarkFlagRequired("config")
	_ = rootCmd.MarkFlagRequired("seeds")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCrawl(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "crawler: ", log.LstdFlags)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	store := docstore.New()
	c := coordinator.New(coordinator.Config{
		MaxQueueSize:   cfg.Crawler.MaxQueueSize,
		MaxConnections: cfg.Crawler.MaxConnections,
		Timeout:        cfg.Timeout(),
		MaxWorkers:     cfg.Crawler.MaxThreads,
		MaxPages:       cfg.Crawler.MaxPages,
		DelayMs:        cfg.Crawler.DelayMs,
		UserAgent:      cfg.Crawler.UserAgent,
	}, store)
	c.Seed(seedURLs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		logger.Println("shutdown signal received, winding down workers")
		cancel()
	}()

	if err := c.Run(ctx); err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	stats := c.Stats()
	logger.Printf("crawl complete: %d pages stored in %s (%.2f pages/sec), %d urls remaining in queue",
		stats.PagesCrawled, stats.Elapsed, stats.PagesPerSec, stats.QueueSize)

	if err := buildAndSaveIndex(store); err != nil {
		return fmt.Errorf("indexing pass: %w", err)
	}
	if err := store.SaveJSON(documentsPath); err != nil {
		return fmt.Errorf("saving documents: %w", err)
	}
	logger.Printf("index written to %s, documents written to %s", indexPath, documentsPath)
	return nil
}

// buildAndSaveIndex is the indexing pass: it reads every stored
// document, feeds its tokens into a fresh inverted index, finalizes it,
// and persists it to indexPath.
func buildAndSaveIndex(store *docstore.Store) error {
	idx := index.New()
	for _, doc := range store.All() {
		tokens := tokenize.Tokens(doc.Content)
		if len(tokens) == 0 {
			continue
		}
		if err := idx.AddDocument(doc.ID, tokens); err != nil {
			return fmt.Errorf("indexing document %d: %w", doc.ID, err)
		}
	}
	if err := idx.Finalize(); err != nil {
		return fmt.Errorf("finalizing index: %w", err)
	}
	return idx.Save(indexPath)
}
