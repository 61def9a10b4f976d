package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lnco/artifact-service/internal/docstore"
	"github.com/lnco/artifact-service/internal/domain"
	"github.com/lnco/artifact-service/internal/platform/logger"
)

func TestDraftRoundTrip(t *testing.T) {
	svc := NewDraftService(logger.NewNop(), docstore.NewMemoryStore())
	ctx := context.Background()

	saved, err := svc.Create(ctx, &domain.Artifact{
		Meta: domain.Meta{Head: "Work In Progress"},
	}, "u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("Create: expected assigned ID")
	}

	got, err := svc.GetByID(ctx, saved.ID, "u1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Meta.Head != "Work In Progress" {
		t.Fatalf("GetByID: got head %q", got.Meta.Head)
	}
}

func TestDraftIsPrivateToOwner(t *testing.T) {
	svc := NewDraftService(logger.NewNop(), docstore.NewMemoryStore())
	ctx := context.Background()

	saved, err := svc.Create(ctx, &domain.Artifact{Meta: domain.Meta{Head: "Secret"}}, "u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.GetByID(ctx, saved.ID, "u2"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
}

func TestDraftMissing(t *testing.T) {
	svc := NewDraftService(logger.NewNop(), docstore.NewMemoryStore())

	if _, err := svc.GetByID(context.Background(), "nope", "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
