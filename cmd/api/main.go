package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valyala/fasthttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"todo-service/internal/cache"
	"todo-service/internal/config"
	"todo-service/internal/handlers"
	"todo-service/internal/middleware"
	"todo-service/internal/repository"
	"todo-service/internal/services"
	"todo-service/internal/utils"
	"todo-service/internal/worker"
)

// stores - выбранный бэкенд хранилища и функция его закрытия
type stores struct {
	users services.UserStore
	todos services.TodoStore
	close func()
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}
	utils.SetLevel(utils.ParseLevel(cfg.LogLevel))

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	st, err := openStores(startupCtx, cfg)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer st.close()

	hashPool := worker.NewWorkerPool(cfg.HashWorkers, cfg.HashWorkers*4)
	hashPool.Start()

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	authService := services.NewAuthService(st.users, tokenService, hashPool, cfg.BcryptCost)

	var todoService *services.TodoService
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr)
		defer redisCache.Close()
		if err := redisCache.Ping(startupCtx); err != nil {
			utils.LogWarning("Main", "Redis недоступен (%v), кеш отключён", err)
			todoService = services.NewTodoService(st.todos)
		} else {
			utils.LogSuccess("Main", "Подключён Redis: %s", cfg.RedisAddr)
			todoService = services.NewTodoServiceWithCache(st.todos, redisCache)
		}
	} else {
		todoService = services.NewTodoService(st.todos)
	}

	handler := handlers.NewRouter(
		handlers.NewAuthHandler(authService),
		handlers.NewTodoHandler(todoService),
		middleware.NewAuthMiddleware(authService),
		cfg.CORSOrigin,
	)

	httpServer := &fasthttp.Server{
		Handler:      handler,
		Name:         "todo-service",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		utils.LogSuccess("Main", "Server running on port %d", cfg.Port)
		if err := httpServer.ListenAndServe(cfg.Addr()); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	shutdownChannel := make(chan os.Signal, 1)
	signal.Notify(shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChannel

	utils.LogInfo("Main", "Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.ShutdownWithContext(shutdownCtx); err != nil {
		utils.LogError("Main", "Server forced to shutdown", err)
	}
	if err := hashPool.Shutdown(cfg.ShutdownTimeout); err != nil {
		utils.LogError("Main", "Пул воркеров остановлен принудительно", err)
	}
	utils.LogInfo("Main", "Server stopped")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	scheme, err := cfg.DatabaseScheme()
	if err != nil {
		return nil, err
	}

	switch scheme {
	case config.SchemeMongo:
		return openMongo(ctx, cfg.DatabaseURL)
	case config.SchemePostgres:
		return openPostgres(ctx, cfg.DatabaseURL)
	default:
		utils.LogWarning("Main", "Используется хранилище в памяти, данные не переживут перезапуск")
		store := repository.NewMemoryStore()
		return &stores{users: store.Users(), todos: store.Todos(), close: func() {}}, nil
	}
}

func openMongo(ctx context.Context, uri string) (*stores, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("некорректная строка подключения MongoDB: %w", err)
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = "todo-app"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	db := client.Database(dbName)
	if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	utils.LogSuccess("Main", "Подключена MongoDB, база %s", dbName)

	return &stores{
		users: repository.NewMongoUserRepository(db),
		todos: repository.NewMongoTodoRepository(db),
		close: func() {
			if err := client.Disconnect(context.Background()); err != nil {
				utils.LogError("Main", "Ошибка отключения от MongoDB", err)
			}
		},
	}, nil
}

func openPostgres(ctx context.Context, dbURL string) (*stores, error) {
	if err := repository.Migrate(dbURL); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	utils.LogSuccess("Main", "Подключён PostgreSQL")

	return &stores{
		users: repository.NewUserRepository(pool),
		todos: repository.NewTodoRepository(pool),
		close: pool.Close,
	}, nil
}
