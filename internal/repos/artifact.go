package repos

import (
	"context"
	"errors"

	"github.com/lnco/artifact-service/internal/docstore"
	"github.com/lnco/artifact-service/internal/domain"
	"github.com/lnco/artifact-service/internal/platform/logger"
)

const artifactsCollection = "artifacts"

// ArtifactRepo is document access for the artifacts collection. Ownership
// checks and index synchronization live a layer up in the artifact service.
type ArtifactRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Artifact, error)
	Set(ctx context.Context, artifact *domain.Artifact) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	ScanAll(ctx context.Context) ([]*domain.Artifact, error)
}

type artifactRepo struct {
	store docstore.Store
	log   *logger.Logger
}

func NewArtifactRepo(store docstore.Store, baseLog *logger.Logger) ArtifactRepo {
	return &artifactRepo{store: store, log: baseLog.With("repo", "ArtifactRepo")}
}

func (ar *artifactRepo) GetByID(ctx context.Context, id string) (*domain.Artifact, error) {
	var a domain.Artifact
	if err := ar.store.Get(ctx, artifactsCollection, id, &a); err != nil {
		return nil, err
	}
	a.ID = id
	return &a, nil
}

func (ar *artifactRepo) Set(ctx context.Context, artifact *domain.Artifact) error {
	return ar.store.Set(ctx, artifactsCollection, artifact.ID, artifact)
}

func (ar *artifactRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return ar.store.Update(ctx, artifactsCollection, id, fields)
}

func (ar *artifactRepo) Delete(ctx context.Context, id string) error {
	return ar.store.Delete(ctx, artifactsCollection, id)
}

func (ar *artifactRepo) ScanAll(ctx context.Context) ([]*domain.Artifact, error) {
	snaps, err := ar.store.Scan(ctx, artifactsCollection)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Artifact, 0, len(snaps))
	for _, snap := range snaps {
		var a domain.Artifact
		if err := snap.DataTo(&a); err != nil {
			// A single undecodable document must not fail the whole scan.
			ar.log.Warn("Skipping undecodable artifact document", "artifact_id", snap.ID(), "error", err)
			continue
		}
		a.ID = snap.ID()
		out = append(out, &a)
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
