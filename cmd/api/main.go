// @title           Document Query API
// @version         1.0
// @description     Upload documents and ask natural language questions about them
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/customHttpClient"
	"github.com/akolanti/DocQueryAPI/internal/data/store"
	"github.com/akolanti/DocQueryAPI/internal/domain/jobModel"
	"github.com/akolanti/DocQueryAPI/internal/handlers"
	"github.com/akolanti/DocQueryAPI/internal/job"
	"github.com/akolanti/DocQueryAPI/internal/retention"
	"github.com/akolanti/DocQueryAPI/internal/server"
	"github.com/akolanti/DocQueryAPI/internal/services"
	"github.com/akolanti/DocQueryAPI/internal/worker"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
)

var (
	configPath        string
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	flag.StringVar(&configPath, "config", "", "optional YAML configuration file")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides configuration")
	flag.Parse()

	settings, err := config.Load(configPath)
	if err != nil {
		logger_i.NewLogger("main").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		settings.ListenAddr = listenAddr
	}

	logger_i.Init(settings)
	var logger = logger_i.NewLogger("main")

	//init buffered job channel
	jobChannel := make(chan jobModel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	queryService, documents, err := services.NewQueryService(serviceContext, settings)
	if err != nil {
		logger.Error("External services failed to initialize. Shutting down.", "error", err)
		return
	}

	//init job service and job store
	logger.Info("Starting job service")
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          store.GetJobStore(serviceContext, settings),
	})
	handlers.InitJobHandler(service)

	//init worker pool
	worker.InitServices(service, queryService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	var sweeperStatus handlers.SweeperStatus
	var sweeperStopper server.Stopper
	if settings.SweeperEnabled {
		sweeper := retention.NewSweeper(documents, settings.RetentionWindow)
		sweeper.Start()
		sweeperStatus, sweeperStopper = sweeper, sweeper
	}

	documentHandler := handlers.NewDocumentHandler(documents, queryService, settings.MaxFileSize, sweeperStatus)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices: func() {
			closeExternalServices()
			customHttpClient.CloseIdleConnections()
		},
		Sweeper: sweeperStopper,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(settings, documentHandler)

	<-stopExecution
	logger.Info("Server stopped")
}
