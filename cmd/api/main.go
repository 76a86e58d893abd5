// @title           sidekickAI API
// @version         1.0
// @description     Per-folder conversational assistant with a local knowledge base
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

	"github.com/Jsrodrigue/sidekickAI/internal/agent"
	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm/gemini"
	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm/openaiLLM"
	"github.com/Jsrodrigue/sidekickAI/internal/agent/tools"
	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/data/store"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	jobmodel "github.com/Jsrodrigue/sidekickAI/internal/domain/jobModel"
	"github.com/Jsrodrigue/sidekickAI/internal/handlers"
	"github.com/Jsrodrigue/sidekickAI/internal/job"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/embedding"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/embedding/googleEmbedding"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/embedding/openaiEmbedding"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/index"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/vectorDB"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/vectorDB/memoryDB"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/vectorDB/qdrantDB"
	"github.com/Jsrodrigue/sidekickAI/internal/server"
	"github.com/Jsrodrigue/sidekickAI/internal/sidekick"
	"github.com/Jsrodrigue/sidekickAI/internal/worker"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init stores - redis first, in-memory fallback
	var jobStore jobmodel.JobStore
	var conversationStore chatModel.ConversationStore
	var settingsStore commonModels.SettingsStore

	redisJobs := store.GetRedisJobStore(serviceContext)
	redisConversations := store.GetRedisConversationStore(serviceContext)
	redisSettings := store.GetRedisSettingsStore(serviceContext)

	if redisJobs == nil || redisConversations == nil || redisSettings == nil {
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			logger.Error("Redis stores are offline. Shutting down.")
			return
		}
		logger.Error("Redis stores are offline - falling back to in-memory stores")
		jobStore = store.InitInMemoryJobStore()
		conversationStore = store.InitInMemoryConversationStore()
		settingsStore = store.InitInMemorySettingsStore()
	} else {
		jobStore = redisJobs
		conversationStore = redisConversations
		settingsStore = redisSettings
	}

	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStore,
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	//vector store - qdrant first, in-memory fallback
	var dataProcessor vectorDB.DataProcessor
	if qdrantClient := qdrantDB.GetQuadrantClient(serviceContext); qdrantClient != nil {
		dataProcessor = qdrantClient
	} else {
		if !config.FALLBACK_QDRANT_TO_MEMORYSTORE {
			logger.Error("Qdrant is offline. Shutting down.")
			return
		}
		logger.Error("Qdrant is offline - falling back to in-memory vector store")
		dataProcessor = memoryDB.NewStore()
	}

	//model provider and embedder follow the same provider selection
	var llmProvider llm.Provider
	var embedder embedding.Embedder
	switch config.Provider() {
	case "openai":
		llmProvider = openaiLLM.GetOpenAIClient(serviceContext, config.OpenAIModelName, config.OpenAIAPIKey())
		embedder = openaiEmbedding.GetOpenAIEmbeddingClient(serviceContext, config.OpenAIEmbeddingModel, config.OpenAIAPIKey())
	default:
		llmProvider = gemini.GetGeminiClient(serviceContext, config.GeminiModelName, config.GoogleAPIKey())
		embedder = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey())
	}

	if llmProvider == nil || embedder == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}

	indexService := index.NewService(embedder, dataProcessor)

	registry := agent.NewRegistry()
	for _, descriptor := range []agent.Descriptor{
		tools.NewSearchDocumentsTool(indexService),
		tools.NewReadFileTool(),
		tools.NewWebSearchTool(),
		tools.NewEncyclopediaTool(),
		tools.NewRunCommandTool(),
	} {
		if err := registry.Register(descriptor); err != nil {
			logger.Error("Could not register tool", "tool", descriptor.Name, "error", err)
			return
		}
	}

	loop := agent.NewLoop(llmProvider, registry)
	sidekickService := sidekick.NewService(loop, indexService, conversationStore, settingsStore)

	handlers.InitJobHandler(handlers.HandlerConfig{
		JobService:    service,
		Sidekick:      sidekickService,
		Conversations: conversationStore,
		Settings:      settingsStore,
	})

	//init worker pool
	worker.InitServices(service, sidekickService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
