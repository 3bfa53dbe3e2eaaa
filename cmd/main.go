package main

import (
	"database/sql"
	"net/http"
	"strings"

	_ "github.com/lib/pq"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/planweek/planweek-backend/pkg/assistant"
	"github.com/planweek/planweek-backend/pkg/auth"
	"github.com/planweek/planweek-backend/pkg/communication"
	"github.com/planweek/planweek-backend/pkg/environment"
	"github.com/planweek/planweek-backend/pkg/locking"
	"github.com/planweek/planweek-backend/pkg/logger"
	"github.com/planweek/planweek-backend/pkg/tasks"
)

func main() {
	var logging logger.Interface = logger.Logger{}
	logging.Info("Server is starting up...")

	environment.Initialize()
	env := environment.Global

	db, err := sql.Open("postgres", env.DatabaseUrl)
	if err != nil {
		logging.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logging.Fatal(err)
	}
	logging.Info("Database connected")

	responseManager := communication.ResponseManager{Logger: logging}

	taskRepository := &tasks.PostgresTaskRepository{DB: db, Logger: logging}
	conversationRepository := &assistant.PostgresConversationRepository{DB: db, Logger: logging}

	// single-instance fallbacks when no redis is configured
	memoryCache, err := tasks.NewBurnoutCacheMemory()
	if err != nil {
		logging.Fatal(err)
	}
	var burnoutCache tasks.BurnoutCacheInterface = memoryCache
	var locker locking.LockerInterface = locking.NewLockerMemory()
	if env.Redis != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     env.Redis,
			Password: env.RedisPassword,
		})
		burnoutCache = tasks.NewBurnoutCacheRedis(redisClient)
		locker = locking.NewLockerRedis(redisClient)
		logging.Info("Redis connected")
	}

	burnoutSource := &tasks.CachedBurnoutSource{
		Repository: taskRepository,
		Cache:      burnoutCache,
		Logger:     logging,
	}

	taskHandler := tasks.Handler{
		TaskRepository:  taskRepository,
		Burnout:         burnoutSource,
		Logger:          logging,
		ResponseManager: &responseManager,
	}

	geminiClient := assistant.NewGeminiClient(env.GeminiAPIKey, env.GeminiModel)
	if env.GeminiAPIUrl != "" {
		geminiClient.BaseURL = env.GeminiAPIUrl
	}

	dispatcher := &assistant.Dispatcher{
		Model:          geminiClient,
		TaskRepository: taskRepository,
		Burnout:        burnoutSource,
		Conversations:  conversationRepository,
		Locker:         locker,
		Logger:         logging,
	}

	assistantHandler := assistant.Handler{
		Dispatcher:             dispatcher,
		ConversationRepository: conversationRepository,
		Logger:                 logging,
		ResponseManager:        &responseManager,
	}

	authMiddleware := auth.AuthenticationMiddleware{
		Secret:          env.Secret,
		ResponseManager: &responseManager,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
		_, _ = writer.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(authMiddleware.Middleware)

	api.HandleFunc("/week", taskHandler.WeekGet).Methods(http.MethodGet)
	api.HandleFunc("/tasks", taskHandler.GetAllTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", taskHandler.TaskAdd).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}", taskHandler.TaskUpdate).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{taskID}", taskHandler.TaskDelete).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskID}/toggle", taskHandler.TaskToggle).Methods(http.MethodPost)
	api.HandleFunc("/assistant/query", assistantHandler.Query).Methods(http.MethodPost)
	api.HandleFunc("/assistant/history", assistantHandler.History).Methods(http.MethodGet)

	allowedOrigins := []string{"*"}
	if env.Cors != "" {
		allowedOrigins = strings.Split(env.Cors, ",")
	} else if env.FrontendBaseUrl != "" {
		allowedOrigins = []string{env.FrontendBaseUrl}
	}

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
		AllowCredentials: true,
	})
	handler := corsOptions.Handler(r)

	port := env.Port
	if port == "" {
		port = "8080"
	}

	logging.Info("API server is running on :" + port)
	logging.Fatal(http.ListenAndServe(":"+port, handler))
}
