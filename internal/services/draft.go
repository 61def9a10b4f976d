package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lnco/artifact-service/internal/docstore"
	"github.com/lnco/artifact-service/internal/domain"
	"github.com/lnco/artifact-service/internal/platform/logger"
)

const draftsCollection = "drafts"

// DraftDoc is a not-yet-published artifact. Drafts are private to their
// owner and never appear in the ownership index or any public listing.
type DraftDoc struct {
	Owner    string          `json:"owner" firestore:"owner"`
	Artifact domain.Artifact `json:"artifact" firestore:"artifact"`
	SavedAt  int64           `json:"savedAt" firestore:"savedAt"`
}

type DraftService interface {
	Create(ctx context.Context, artifact *domain.Artifact, contributor string) (*domain.Artifact, error)
	GetByID(ctx context.Context, id, contributor string) (*domain.Artifact, error)
}

type draftService struct {
	log   *logger.Logger
	store docstore.Store
}

func NewDraftService(baseLog *logger.Logger, store docstore.Store) DraftService {
	return &draftService{
		log:   baseLog.With("service", "DraftService"),
		store: store,
	}
}

func (ds *draftService) Create(ctx context.Context, artifact *domain.Artifact, contributor string) (*domain.Artifact, error) {
	artifact.ID = uuid.New().String()
	doc := DraftDoc{
		Owner:    contributor,
		Artifact: *artifact,
		SavedAt:  time.Now().UnixMilli(),
	}
	if err := ds.store.Set(ctx, draftsCollection, artifact.ID, doc); err != nil {
		return nil, fmt.Errorf("persist draft: %w", err)
	}
	return artifact, nil
}

func (ds *draftService) GetByID(ctx context.Context, id, contributor string) (*domain.Artifact, error) {
	var doc DraftDoc
	if err := ds.store.Get(ctx, draftsCollection, id, &doc); err != nil {
		return nil, err
	}
	if doc.Owner != contributor {
		return nil, fmt.Errorf("draft %s is not owned by caller: %w", id, domain.ErrForbidden)
	}
	return &doc.Artifact, nil
}
