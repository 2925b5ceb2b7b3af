// tapedeck-core is the headless download agent: it recovers persisted
// download tasks on startup, accepts show download commands over a local
// HTTP API and exposes Prometheus metrics. The playback engine lives in the
// app shell and links the internal packages directly.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tapedeck/tapedeck-go/internal/catalog"
	"github.com/tapedeck/tapedeck-go/internal/config"
	"github.com/tapedeck/tapedeck-go/internal/download"
	"github.com/tapedeck/tapedeck-go/internal/metadata"
	"github.com/tapedeck/tapedeck-go/internal/monitoring"
	"github.com/tapedeck/tapedeck-go/internal/network"
	"github.com/tapedeck/tapedeck-go/internal/resolver"
	"github.com/tapedeck/tapedeck-go/internal/storage"
	"github.com/tapedeck/tapedeck-go/internal/store"
)

var version = "dev"

func main() {
	var (
		configPath  = flag.String("config", "", "path to settings.json")
		listenAddr  = flag.String("listen", "127.0.0.1:9190", "local control and metrics address")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("tapedeck-core", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := monitoring.NewLogger(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *listenAddr); err != nil {
		logger.Fatal("Agent failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger, listenAddr string) error {
	db, err := store.InitDB(store.DefaultDBPath(config.GetDataDir()))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tasks := store.NewTaskStore(db)
	library := store.NewLibraryStore(db)

	mgr, err := storage.NewManager(cfg.Download.DownloadDir, cfg.Download.TempDir, logger)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	cat := catalog.NewHTTPClient(cfg.Network.CatalogURL, time.Duration(cfg.Network.TimeoutSec)*time.Second)

	var tagger download.Tagger
	if cfg.Download.EmbedMetadata {
		artwork, err := metadata.NewArtworkFetcher(cat,
			filepath.Join(config.GetDataDir(), "artwork"),
			cfg.Download.ArtworkSize, logger)
		if err != nil {
			return fmt.Errorf("failed to init artwork cache: %w", err)
		}
		tagger = metadata.NewTagger(cat, artwork, logger)
	}

	orch, err := download.NewOrchestrator(&cfg.Download, download.Deps{
		Catalog:   cat,
		Tasks:     tasks,
		Storage:   mgr,
		Transport: download.NewHTTPTransport(nil),
		Library:   library,
		Tagger:    tagger,
		Limiter:   network.NewBandwidthLimiter(cfg.Network.BandwidthLimit),
		Resolver: resolver.New(network.GetDefaultClient(),
			time.Duration(cfg.Network.ResolveTimeoutSec)*time.Second, logger),
		FormatPriority: cfg.Playback.FormatPriority,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	if err := orch.Start(); err != nil {
		return fmt.Errorf("failed to recover download state: %w", err)
	}

	server := &http.Server{
		Addr:    listenAddr,
		Handler: newControlHandler(orch, library, mgr, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Control API listening", zap.String("addr", listenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("control server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)

	orch.Stop()
	logger.Info("Agent stopped")
	return nil
}

// controlHandler is the local JSON API:
//
//	GET    /downloads                    aggregate progress of every show
//	GET    /downloads/{show}             progress of one show
//	POST   /downloads/{show}             queue a show download; an optional
//	                                     ?recording={id} picks the recording
//	POST   /downloads/{show}/pause       pause a show
//	POST   /downloads/{show}/resume      resume a show
//	DELETE /downloads/{show}             cancel and delete a show
//	GET    /storage                      storage usage
//	GET    /metrics                      Prometheus metrics
type controlHandler struct {
	orch    *download.Orchestrator
	library *store.LibraryStore
	storage *storage.Manager
	logger  *zap.Logger
	mux     *http.ServeMux
}

func newControlHandler(orch *download.Orchestrator, library *store.LibraryStore, mgr *storage.Manager, logger *zap.Logger) http.Handler {
	h := &controlHandler{
		orch:    orch,
		library: library,
		storage: mgr,
		logger:  logger,
		mux:     http.NewServeMux(),
	}
	h.mux.Handle("/metrics", promhttp.Handler())
	h.mux.HandleFunc("/downloads", h.handleDownloads)
	h.mux.HandleFunc("/downloads/", h.handleShow)
	h.mux.HandleFunc("/storage", h.handleStorage)
	return h.mux
}

func (h *controlHandler) handleDownloads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.orch.AllProgress())
}

func (h *controlHandler) handleShow(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/downloads/")
	showID, action, _ := strings.Cut(rest, "/")
	if showID == "" {
		http.Error(w, "missing show id", http.StatusBadRequest)
		return
	}

	var err error
	switch {
	case r.Method == http.MethodGet && action == "":
		writeJSON(w, http.StatusOK, h.orch.Progress(showID))
		return
	case r.Method == http.MethodPost && action == "":
		err = h.orch.DownloadShow(r.Context(), showID, r.URL.Query().Get("recording"))
	case r.Method == http.MethodPost && action == "pause":
		err = h.orch.PauseShow(showID)
	case r.Method == http.MethodPost && action == "resume":
		err = h.orch.ResumeShow(showID)
	case r.Method == http.MethodDelete && action == "":
		err = h.orch.RemoveShow(showID)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err != nil {
		h.logger.Warn("Control request failed",
			zap.String("show", showID),
			zap.String("action", action),
			zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, h.orch.Progress(showID))
}

func (h *controlHandler) handleStorage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	total, err := h.storage.TotalStorageUsed()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	downloaded, err := h.library.ListDownloaded()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bytes_used":       total,
		"downloaded_shows": downloaded,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
