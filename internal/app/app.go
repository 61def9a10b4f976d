package app

import (
	"context"
	"fmt"
	"os"

	"github.com/lnco/artifact-service/internal/docstore"
	httpx "github.com/lnco/artifact-service/internal/http"
	httpH "github.com/lnco/artifact-service/internal/http/handlers"
	httpMW "github.com/lnco/artifact-service/internal/http/middleware"
	"github.com/lnco/artifact-service/internal/outbox"
	"github.com/lnco/artifact-service/internal/platform/fetch"
	"github.com/lnco/artifact-service/internal/platform/gcp"
	"github.com/lnco/artifact-service/internal/platform/logger"
	"github.com/lnco/artifact-service/internal/repos"
	"github.com/lnco/artifact-service/internal/services"
)

// App owns the process-wide client handles (document store, blob store) and
// the wired service graph. Construct once at startup, Close at shutdown.
type App struct {
	Log    *logger.Logger
	Cfg    Config
	Store  docstore.Store
	Server *httpx.Server

	indexOutbox *outbox.Outbox
	cancel      context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	var store docstore.Store
	switch cfg.DocstoreMode {
	case "memory":
		log.Warn("Using in-memory document store; data will not survive restarts")
		store = docstore.NewMemoryStore()
	default:
		store, err = docstore.NewFirestoreStore(log)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init firestore: %w", err)
		}
	}

	bucketService, err := gcp.NewBucketService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init bucket service: %w", err)
	}

	fetchClient := fetch.NewClient(log, cfg.FetchTimeout, cfg.FetchMaxRedirects)

	artifactRepo := repos.NewArtifactRepo(store, log)
	ownershipRepo := repos.NewOwnershipRepo(store, log)

	indexOutbox := outbox.New(log, ownershipRepo)

	artifactService := services.NewArtifactService(log, artifactRepo, ownershipRepo, indexOutbox)
	mediaService := services.NewMediaService(log, bucketService, fetchClient)
	draftService := services.NewDraftService(log, store)
	authService := services.NewAuthService(log, cfg.JWTSecretKey)

	authMiddleware := httpMW.NewAuthMiddleware(log, authService)
	server := httpx.NewServer(httpx.RouterConfig{
		AuthMiddleware:  authMiddleware,
		CORSOrigins:     cfg.CORSOrigins,
		ArtifactHandler: httpH.NewArtifactHandler(log, artifactService),
		MediaHandler:    httpH.NewMediaHandler(log, mediaService),
		DraftHandler:    httpH.NewDraftHandler(log, draftService),
		HealthHandler:   httpH.NewHealthHandler(),
	})

	return &App{
		Log:         log,
		Cfg:         cfg,
		Store:       store,
		Server:      server,
		indexOutbox: indexOutbox,
	}, nil
}

// Start launches the background reconciliation worker.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.indexOutbox.Start(ctx)
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Log.Warn("Document store close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
