package www

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/angas/gridfees-go/config"
	"github.com/angas/gridfees-go/notify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the handlers need. Logs and Reloads may be
// nil, the log endpoint is then not served.
type Deps struct {
	Datasets     DatasetSource
	DatasetPath  string
	Logs         LogSource
	Reloads      ReloadHistory
	OnCalculated OnCalculated
	Version      string
}

type Server struct {
	logger  *slog.Logger
	config  config.AppConfigApi
	hub     *Hub
	tm      *TemplateManager
	handler http.Handler
}

//go:embed static
var embeddedStaticDir embed.FS

func NewServer(cnfg config.AppConfigApi, deps Deps) (*Server, error) {
	logger := slog.Default().With("module", "www")
	tm, err := NewTemplateManager(logger, cnfg.WwwDir)
	if err != nil {
		return nil, fmt.Errorf("template manager initialization: %w", err)
	}

	s := &Server{
		logger: logger,
		config: cnfg,
		hub:    NewHub(logger, cnfg.GetAllowedOrigin()),
		tm:     tm,
	}

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	handlerLogger := func(name string) *slog.Logger {
		return logger.With(slog.String("handler", name))
	}

	mux := http.NewServeMux()
	mux.Handle("/", staticFilesHandler(cnfg.WwwDir))

	mux.Handle("/api/calculate", logReqMW(NewCalculateHandler(handlerLogger("calculate"), deps.Datasets, deps.OnCalculated)))
	mux.Handle("/api/options", logReqMW(NewOptionsHandler(handlerLogger("options"), deps.Datasets)))
	mux.Handle("/api/insights", logReqMW(NewInsightsHandler(handlerLogger("insights"), deps.Datasets)))
	mux.Handle("/api/compare", logReqMW(NewCompareHandler(handlerLogger("compare"), deps.Datasets)))
	mux.Handle("/api/storage-profile", logReqMW(NewStorageProfileHandler(handlerLogger("storage_profile"))))
	mux.Handle("/api/sensitivity", logReqMW(NewSensitivityHandler(handlerLogger("sensitivity"), deps.Datasets)))
	mux.Handle("/api/chart", logReqMW(NewChartHandler(handlerLogger("chart"), deps.Datasets)))
	mux.Handle("/api/export", logReqMW(NewExportHandler(handlerLogger("export"), deps.Datasets)))
	mux.Handle("/api/report", logReqMW(NewReportHandler(handlerLogger("report"), deps.Datasets, tm)))
	mux.Handle("/api/sys_info", logReqMW(NewSysInfoHandler(
		handlerLogger("sys_info"),
		SysInfo{Version: deps.Version, StartTime: time.Now()},
		deps.Datasets,
		deps.DatasetPath,
		deps.Reloads)))
	if deps.Logs != nil {
		mux.Handle("/api/log", logReqMW(NewLogHandler(handlerLogger("log"), deps.Logs)))
	}
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("User-Agent")
		client, err := NewClient(s.hub, w, r, name)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register <- client
		go client.WritePump()
		go client.ReadPump()
	})

	s.handler = corsMW(cnfg.GetAllowedOrigin(), mux)
	return s, nil
}

// Handler is the complete routing tree, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// DatasetReloaded pushes a reload event to all websocket clients.
func (s *Server) DatasetReloaded(e notify.DatasetEvent) {
	s.hub.BroadcastJSON(e)
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run()

	addr := fmt.Sprintf("%s:%d", s.config.Address, s.config.Port)
	s.logger.Info("starting server...", slog.String("addr", addr))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}

func corsMW(allowedOrigin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func staticFilesHandler(extDir *string) http.Handler {
	if extDir != nil && *extDir != "" {
		staticDir := path.Join(*extDir, "static")
		if _, err := os.Stat(staticDir); err == nil {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	fsys, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		log.Panic(err)
	}
	return http.FileServer(http.FS(fsys))
}
