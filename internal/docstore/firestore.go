package docstore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lnco/artifact-service/internal/domain"
	"github.com/lnco/artifact-service/internal/platform/gcp"
	"github.com/lnco/artifact-service/internal/platform/logger"
)

type firestoreStore struct {
	log    *logger.Logger
	client *firestore.Client
}

func NewFirestoreStore(log *logger.Logger) (Store, error) {
	storeLog := log.With("store", "FirestoreStore")

	projectID := strings.TrimSpace(os.Getenv("FIRESTORE_PROJECT_ID"))
	if projectID == "" {
		projectID = strings.TrimSpace(os.Getenv("GOOGLE_CLOUD_PROJECT"))
	}
	if projectID == "" {
		return nil, fmt.Errorf("missing env var FIRESTORE_PROJECT_ID")
	}

	client, err := firestore.NewClient(context.Background(), projectID, gcp.ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	storeLog.Info("Document store initialized", "project_id", projectID)
	return &firestoreStore{log: storeLog, client: client}, nil
}

func (fs *firestoreStore) Get(ctx context.Context, collection, id string, out any) error {
	snap, err := fs.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return mapFirestoreErr(err, collection, id)
	}
	if err := snap.DataTo(out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (fs *firestoreStore) Set(ctx context.Context, collection, id string, doc any) error {
	if _, err := fs.client.Collection(collection).Doc(id).Set(ctx, doc); err != nil {
		return mapFirestoreErr(err, collection, id)
	}
	return nil
}

func (fs *firestoreStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if _, err := fs.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		return mapFirestoreErr(err, collection, id)
	}
	return nil
}

func (fs *firestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := fs.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return mapFirestoreErr(err, collection, id)
	}
	return nil
}

func (fs *firestoreStore) Scan(ctx context.Context, collection string) ([]Snapshot, error) {
	it := fs.client.Collection(collection).Documents(ctx)
	defer it.Stop()

	var out []Snapshot
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapFirestoreErr(err, collection, "")
		}
		out = append(out, &firestoreSnapshot{snap: snap})
	}
	return out, nil
}

func (fs *firestoreStore) Close() error {
	return fs.client.Close()
}

type firestoreSnapshot struct {
	snap *firestore.DocumentSnapshot
}

func (s *firestoreSnapshot) ID() string           { return s.snap.Ref.ID }
func (s *firestoreSnapshot) DataTo(out any) error { return s.snap.DataTo(out) }

func mapFirestoreErr(err error, collection, id string) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%s/%s: %w: %v", collection, id, domain.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%s/%s: %w", collection, id, err)
	}
}
