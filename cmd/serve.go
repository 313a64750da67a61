package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voltgruppen/kalk-cli/internal/estimator"
	"github.com/voltgruppen/kalk-cli/internal/model"
	"github.com/voltgruppen/kalk-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the estimation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		provider, closeCatalog, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeCatalog()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		est := estimator.New(provider, estimator.WithSaver(st))
		r := newRouter(est, st)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter wires the estimation API.
func newRouter(est *estimator.Estimator, st store.Store) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/v1/estimate", func(w http.ResponseWriter, req *http.Request) {
		var input model.ProjectEstimationInput
		if err := json.NewDecoder(req.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, model.EstimationResponse{
				Success: false,
				Error:   "invalid request body",
			})
			return
		}

		resp := est.Estimate(req.Context(), input)
		status := http.StatusOK
		if !resp.Success {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, resp)
	})

	r.Get("/api/v1/projects/{projectID}/snapshots", func(w http.ResponseWriter, req *http.Request) {
		snaps, err := st.Snapshots(req.Context(), chi.URLParam(req, "projectID"))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot lookup failed"})
			return
		}
		writeJSON(w, http.StatusOK, snaps)
	})

	r.Get("/api/v1/projects/{projectID}/latest", func(w http.ResponseWriter, req *http.Request) {
		snap, err := st.Latest(req.Context(), chi.URLParam(req, "projectID"))
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshots for project"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot lookup failed"})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
