package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/DocQueryAPI/internal/adapter/utils"
	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/handlers"
	"github.com/akolanti/DocQueryAPI/internal/middleware"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

// Stopper is anything with a blocking Stop, the retention sweeper in practice.
type Stopper interface {
	Stop()
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
	Sweeper          Stopper
}

// NewRouter mounts every endpoint behind the middleware pipeline.
func NewRouter(settings *config.Settings, documents *handlers.DocumentHandler) http.Handler {
	r := utils.NewRouter(settings.AllowedOrigins)

	r.Router.Get("/health", middleware.Wrap(documents.HealthHandler))
	r.Router.Post("/upload", middleware.Wrap(documents.UploadHandler))
	r.Router.Post("/query", middleware.Wrap(documents.QueryHandler))
	r.Router.Delete("/documents/{id}", middleware.Wrap(documents.DeleteHandler))

	r.Router.Post("/query/async", middleware.Wrap(handlers.PostAsyncQueryHandler))
	r.Router.Get("/status/{id}", middleware.Wrap(handlers.GetStatusHandler))
	return r.Router
}

func CreateServer(settings *config.Settings, documents *handlers.DocumentHandler) {
	server = &http.Server{
		Addr:         settings.ListenAddr,
		Handler:      NewRouter(settings, documents),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening", "address", settings.ListenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err, "addr", settings.ListenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		if shutdownParams.Sweeper != nil {
			shutdownParams.Sweeper.Stop()
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Graceful shutdown complete")
	case <-ctx.Done():
		_logger.Error("Force shut down")
		os.Exit(1)
	}
}
