package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lnco/artifact-service/internal/domain"
	"github.com/lnco/artifact-service/internal/outbox"
	"github.com/lnco/artifact-service/internal/platform/logger"
	"github.com/lnco/artifact-service/internal/repos"
)

// listFetchConcurrency bounds the per-ID fan-out when resolving a
// contributor's journal.
const listFetchConcurrency = 8

// ArtifactService is CRUD over artifact documents. It authorizes every
// mutation against the ownership index and keeps the index synchronized with
// creates and deletes. Index failures after a successful primary write are
// handed to the reconciliation outbox instead of failing the caller.
type ArtifactService interface {
	List(ctx context.Context) ([]domain.Journal, error)
	ListByContributor(ctx context.Context, contributor string) ([]domain.Journal, error)
	// GetByID returns the artifact with per-caller editability flags. An empty
	// caller means an anonymous read: allowed, with both flags false.
	GetByID(ctx context.Context, id, caller string) (*domain.SecArtifact, error)
	Create(ctx context.Context, artifact *domain.Artifact, contributor string) (*domain.Artifact, error)
	Update(ctx context.Context, id string, partial *domain.Artifact, contributor string) (*domain.Artifact, error)
	Delete(ctx context.Context, id, contributor string) error
}

type artifactService struct {
	log          *logger.Logger
	artifactRepo repos.ArtifactRepo
	ownership    repos.OwnershipRepo
	indexOutbox  *outbox.Outbox
}

func NewArtifactService(
	baseLog *logger.Logger,
	artifactRepo repos.ArtifactRepo,
	ownership repos.OwnershipRepo,
	indexOutbox *outbox.Outbox,
) ArtifactService {
	return &artifactService{
		log:          baseLog.With("service", "ArtifactService"),
		artifactRepo: artifactRepo,
		ownership:    ownership,
		indexOutbox:  indexOutbox,
	}
}

func (as *artifactService) List(ctx context.Context) ([]domain.Journal, error) {
	artifacts, err := as.artifactRepo.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	journals := make([]domain.Journal, 0, len(artifacts))
	for _, a := range artifacts {
		journals = append(journals, domain.JournalFromArtifact(a))
	}
	return journals, nil
}

func (as *artifactService) ListByContributor(ctx context.Context, contributor string) ([]domain.Journal, error) {
	ids, err := as.ownedIDs(ctx, contributor)
	if err != nil {
		return nil, err
	}

	resolved := make([]*domain.Journal, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listFetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			a, err := as.artifactRepo.GetByID(gctx, id)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// Index/store drift: the index references a document that
					// is gone. Skip it rather than failing the listing.
					as.log.Warn("Ownership index references missing artifact",
						"contributor", contributor,
						"artifact_id", id,
					)
					return nil
				}
				return err
			}
			j := domain.JournalFromArtifact(a)
			mu.Lock()
			resolved[i] = &j
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	journals := make([]domain.Journal, 0, len(resolved))
	for _, j := range resolved {
		if j != nil {
			journals = append(journals, *j)
		}
	}
	return journals, nil
}

func (as *artifactService) GetByID(ctx context.Context, id, caller string) (*domain.SecArtifact, error) {
	a, err := as.artifactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	owns := false
	if caller != "" {
		owns, err = as.owns(ctx, caller, id)
		if err != nil {
			return nil, err
		}
	}
	return &domain.SecArtifact{Artifact: *a, IsEditable: owns, IsDelete: owns}, nil
}

func (as *artifactService) Create(ctx context.Context, artifact *domain.Artifact, contributor string) (*domain.Artifact, error) {
	now := time.Now().UnixMilli()

	artifact.ID = newArtifactID(artifact.Meta.Head, contributor, now)
	artifact.Meta.CreatedDate = now
	artifact.Meta.ModifiedDate = now

	if err := as.artifactRepo.Set(ctx, artifact); err != nil {
		return nil, fmt.Errorf("persist artifact: %w", err)
	}

	// The document write succeeded; an index failure from here on is drift to
	// reconcile out of band, not a caller-visible failure.
	if err := as.ownership.Add(ctx, contributor, artifact.ID); err != nil {
		as.log.Error("Ownership index add failed after artifact write",
			"contributor", contributor,
			"artifact_id", artifact.ID,
			"error", err,
		)
		as.indexOutbox.Enqueue(outbox.Task{Op: outbox.OpAdd, Contributor: contributor, ArtifactID: artifact.ID})
	}
	return artifact, nil
}

func (as *artifactService) Update(ctx context.Context, id string, partial *domain.Artifact, contributor string) (*domain.Artifact, error) {
	existing, err := as.artifactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	owns, err := as.owns(ctx, contributor, id)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, fmt.Errorf("artifact %s is not owned by caller: %w", id, domain.ErrForbidden)
	}

	meta := partial.Meta
	meta.CreatedDate = existing.Meta.CreatedDate
	meta.ModifiedDate = nextModified(existing.Meta.ModifiedDate)

	// Whitelisted merge: only the block body, meta and the short-form
	// projection are updatable. Everything else keeps its stored value.
	fields := map[string]any{
		"id":      id,
		"record":  partial.Record,
		"meta":    meta,
		"inShort": partial.InShort,
	}
	if err := as.artifactRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	// Return the fresh read, not the local merge, so server-side
	// normalization is visible to the caller.
	return as.artifactRepo.GetByID(ctx, id)
}

func (as *artifactService) Delete(ctx context.Context, id, contributor string) error {
	owns, err := as.owns(ctx, contributor, id)
	if err != nil {
		return err
	}
	if !owns {
		return fmt.Errorf("artifact %s is not owned by caller: %w", id, domain.ErrForbidden)
	}

	if err := as.artifactRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := as.ownership.Remove(ctx, contributor, id); err != nil {
		as.log.Error("Ownership index remove failed after artifact delete",
			"contributor", contributor,
			"artifact_id", id,
			"error", err,
		)
		as.indexOutbox.Enqueue(outbox.Task{Op: outbox.OpRemove, Contributor: contributor, ArtifactID: id})
	}
	return nil
}

// owns resolves the ownership check, folding "contributor has no index entry"
// into plain non-ownership.
func (as *artifactService) owns(ctx context.Context, contributor, artifactID string) (bool, error) {
	ok, err := as.ownership.Contains(ctx, contributor, artifactID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// ownedIDs resolves the contributor's index entry; an absent contributor
// simply has nothing to list.
func (as *artifactService) ownedIDs(ctx context.Context, contributor string) ([]string, error) {
	ids, err := as.ownership.List(ctx, contributor)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ids, nil
}

// nextModified stamps the wall clock but never lets a fast successive update
// reuse the previous millisecond.
func nextModified(prev int64) int64 {
	now := time.Now().UnixMilli()
	if now <= prev {
		return prev + 1
	}
	return now
}

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s]`)
	slugCollapseRe = regexp.MustCompile(`\s+`)
)

// newArtifactID derives a collision-resistant document ID from the head
// field: a readable slug plus a digest of head, creation time, creator and a
// random nonce. The nonce keeps same-millisecond creates of the same head
// distinct.
func newArtifactID(head, contributor string, nowMillis int64) string {
	slug := slugStripRe.ReplaceAllString(head, "")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	slug = strings.ToLower(strings.Trim(slug, "-"))

	sum := sha256.Sum256([]byte(head + strconv.FormatInt(nowMillis, 10) + contributor + uuid.New().String()))
	digest := hex.EncodeToString(sum[:])
	if slug == "" {
		return digest
	}
	return slug + "-" + digest
}
