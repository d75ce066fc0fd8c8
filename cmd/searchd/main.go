// Command searchd is the thin HTTP shell exposing the search service
// over the contract in spec.md §6: GET /search, GET /stats, GET /health.
// /suggest is deliberately absent — see SPEC_FULL.md §12.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/codepr/searchcrawl/internal/docstore"
	"github.com/codepr/searchcrawl/internal/index"
	"github.com/codepr/searchcrawl/internal/search"
)

var (
	indexPath     string
	documentsPath string
	listenAddr    string
)

var rootCmd = &cobra.Command{
	Use:   "searchd",
	Short: "Serve search queries against a persisted inverted index.",
	RunE:  runServer,
}

func init() {
	rootCmd.Flags().StringVar(&indexPath, "index", "index.bin", "path to a finalized, persisted inverted index")
	rootCmd.Flags().StringVar(&documentsPath, "documents", "documents.json", "path to the document metadata sidecar")
	rootCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "HTTP listen address")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type server struct {
	logger      *log.Logger
	service     *search.Service
	indexLoaded bool
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "searchd: ", log.LstdFlags)

	idx, err := index.Load(indexPath)
	indexLoaded := err == nil
	if err != nil {
		logger.Printf("no index loaded from %s: %v (starting with an empty index)", indexPath, err)
		idx = index.New()
		_ = idx.Finalize()
	}

	store, err := docstore.LoadJSON(documentsPath)
	if err != nil {
		logger.Printf("no documents loaded from %s: %v (starting empty)", documentsPath, err)
		store = docstore.New()
	}

	srv := &server{
		logger:      logger,
		service:     search.New(idx, store),
		indexLoaded: indexLoaded,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", srv.handleSearch)
	mux.HandleFunc("/stats", srv.handleStats)
	mux.HandleFunc("/health", srv.handleHealth)

	logger.Printf("listening on %s", listenAddr)
	return http.ListenAndServe(listenAddr, mux)
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameter: q")
		return
	}

	page, limit, err := search.ParsePagination(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.service.Search(query, page, limit)
	if err != nil {
		s.logger.Printf("search failed for query %q: %v", query, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.IndexStats())
}

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	IndexLoaded bool      `json:"index_loaded"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now(),
		IndexLoaded: s.indexLoaded,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
