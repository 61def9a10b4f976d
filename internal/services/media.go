package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lnco/artifact-service/internal/domain"
	"github.com/lnco/artifact-service/internal/media"
	"github.com/lnco/artifact-service/internal/platform/fetch"
	"github.com/lnco/artifact-service/internal/platform/gcp"
	"github.com/lnco/artifact-service/internal/platform/logger"
)

// signedURLTTL is the fixed validity window for private asset links. Short
// enough to bound the blast radius of a leaked link without revocation
// machinery.
const signedURLTTL = 15 * time.Minute

// MediaService is the ingestion pipeline: accept bytes or a remote URL,
// normalize the encoding, persist under a generated path, and issue either a
// stable public URL or an expiring signed one.
type MediaService interface {
	Upload(ctx context.Context, data []byte, filename string, isPrivate bool) (*domain.MediaReference, error)
	UploadByURL(ctx context.Context, remoteURL string, isPrivate bool) (*domain.MediaReference, error)
	Delete(ctx context.Context, name string, isPrivate bool) error
}

type mediaService struct {
	log     *logger.Logger
	bucket  gcp.BucketService
	fetcher fetch.Client
}

func NewMediaService(baseLog *logger.Logger, bucket gcp.BucketService, fetcher fetch.Client) MediaService {
	return &mediaService{
		log:     baseLog.With("service", "MediaService"),
		bucket:  bucket,
		fetcher: fetcher,
	}
}

func (ms *mediaService) Upload(ctx context.Context, data []byte, filename string, isPrivate bool) (*domain.MediaReference, error) {
	name := uuid.New().String() + extensionOf(filename)
	key := objectKey(name, isPrivate)

	// Local uploads are stored as-is; the sniffed type only sets the object's
	// content type.
	contentType := media.Sniff(data)
	if err := ms.bucket.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return nil, fmt.Errorf("upload media object: %w", err)
	}

	ms.log.Info("Stored uploaded media object", "key", key, "content_type", contentType, "private", isPrivate)
	return ms.issueReference(ctx, key, isPrivate)
}

func (ms *mediaService) UploadByURL(ctx context.Context, remoteURL string, isPrivate bool) (*domain.MediaReference, error) {
	data, err := ms.fetcher.Get(ctx, remoteURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %v: %w", remoteURL, err, domain.ErrFetchFailed)
	}

	normalized, converted, err := media.ToPNG(data)
	if err != nil {
		return nil, err
	}
	if converted {
		ms.log.Debug("Re-encoded remote media to png", "url", remoteURL, "sniffed", media.Sniff(data))
	}

	name := uuid.New().String() + ".png"
	key := objectKey(name, isPrivate)
	if err := ms.bucket.Upload(ctx, key, bytes.NewReader(normalized), "image/png"); err != nil {
		return nil, fmt.Errorf("upload media object: %w", err)
	}

	ms.log.Info("Stored remote media object", "key", key, "private", isPrivate)
	return ms.issueReference(ctx, key, isPrivate)
}

func (ms *mediaService) Delete(ctx context.Context, name string, isPrivate bool) error {
	key := objectKey(name, isPrivate)

	exists, err := ms.bucket.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check media object %s: %w", key, err)
	}
	if !exists {
		return fmt.Errorf("media object %s: %w", key, domain.ErrNotFound)
	}
	return ms.bucket.Delete(ctx, key)
}

// issueReference branches on visibility: private assets get a signed URL
// whose expiry is computed here, at issuance; public assets get a public-read
// grant and a stable direct URL with no expiry.
func (ms *mediaService) issueReference(ctx context.Context, key string, isPrivate bool) (*domain.MediaReference, error) {
	canonical := ms.bucket.PublicURL(key)

	if isPrivate {
		expires := time.Now().Add(signedURLTTL)
		signed, err := ms.bucket.SignedURL(key, expires)
		if err != nil {
			return nil, fmt.Errorf("sign media URL: %w", err)
		}
		return &domain.MediaReference{
			URL:       signed,
			FileRef:   canonical,
			ExpiresBy: expires.UnixMilli(),
		}, nil
	}

	if err := ms.bucket.MakePublic(ctx, key); err != nil {
		return nil, fmt.Errorf("make media object public: %w", err)
	}
	return &domain.MediaReference{URL: canonical, FileRef: canonical, ExpiresBy: 0}, nil
}

func objectKey(name string, isPrivate bool) string {
	if isPrivate {
		return "private/images/" + name
	}
	return "public/images/" + name
}

func extensionOf(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || ext == "." {
		return ""
	}
	return ext
}
