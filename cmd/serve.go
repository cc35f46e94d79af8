package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sells-group/discovery-cli/internal/errs"
	"github.com/sells-group/discovery-cli/internal/model"
	"github.com/sells-group/discovery-cli/internal/query"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for profile extraction and discovery",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(true)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(e, cfg.Server.MaxConcurrency),
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

// newRouter builds the HTTP API. maxConcurrency bounds how many
// discovery runs execute at once; extra requests get 429.
func newRouter(e *env, maxConcurrency int) chi.Router {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	sem := semaphore.NewWeighted(int64(maxConcurrency))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/extract", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Text == "" {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}

		profile, err := e.extractor.ExtractFromText(req.Context(), body.Text)
		if err != nil {
			writeCategorizedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	})

	r.Post("/discover", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Context    model.BusinessContext `json:"context"`
			EntityType string                `json:"entity_type"`
			Filters    query.Filters         `json:"filters"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var entity model.EntityType
		switch body.EntityType {
		case "customer", "":
			entity = model.EntityCustomer
		case "partner":
			entity = model.EntityPartner
		default:
			writeError(w, http.StatusBadRequest, "entity_type must be customer or partner")
			return
		}

		if !sem.TryAcquire(1) {
			writeError(w, http.StatusTooManyRequests, "too many concurrent discovery runs")
			return
		}
		defer sem.Release(1)

		result, err := e.discovery.Run(req.Context(), body.Context, entity, body.Filters)
		if err != nil {
			writeCategorizedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeCategorizedError maps error categories to HTTP statuses and
// attaches the remediation guidance for the category.
func writeCategorizedError(w http.ResponseWriter, err error) {
	cat := errs.CategoryOf(err)
	status := http.StatusInternalServerError
	switch cat {
	case errs.CategoryAPIKey, errs.CategoryMissingContext:
		status = http.StatusBadRequest
	case errs.CategoryNetwork:
		status = http.StatusBadGateway
	case errs.CategoryParse:
		status = http.StatusUnprocessableEntity
	}

	zap.L().Error("request failed",
		zap.String("category", string(cat)),
		zap.Error(err),
	)
	writeJSON(w, status, map[string]string{
		"error":    err.Error(),
		"category": string(cat),
		"guidance": errs.Guidance(cat),
	})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
