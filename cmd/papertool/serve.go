package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/novucs/papertool/internal/harvest"
	"github.com/novucs/papertool/internal/workpool"
	"github.com/novucs/papertool/pkg/types"
)

const usage = `papertool

GET /search?q=<paper title or pdf url>
    Ranked references for the paper as JSON.
`

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve harvests over HTTP",
	Long: `Serve exposes harvest as GET /search?q=<title or pdf url>, answering
with the ranked references as JSON. All requests share one executor, so
--workers bounds outbound requests across the whole server.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

// harvester is the slice of harvest.Harvester the HTTP front end needs.
type harvester interface {
	Harvest(ctx context.Context, query string) harvest.Result
}

func runServe(cmd *cobra.Command, args []string) error {
	sc := types.ServeConfig{Addr: viper.GetString("serve.addr")}.WithDefaults()

	cfg := harvestConfig()
	ex := workpool.NewExecutor(cfg.Workers, cfg.TaskTimeout)
	h := harvest.New(harvest.DefaultDeps(cfg, ex), cfg, logger)

	srv := &http.Server{
		Addr:              sc.Addr,
		Handler:           newRouter(h, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	fmt.Fprintf(cmd.ErrOrStderr(), "listening on %s\n", sc.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newRouter(h harvester, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, usage)
	})
	r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			writeError(w, http.StatusBadRequest, "q parameter is required")
			return
		}
		writeJSON(w, http.StatusOK, h.Harvest(r.Context(), q))
	})
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
