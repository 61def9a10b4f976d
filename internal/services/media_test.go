package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lnco/artifact-service/internal/domain"
	"github.com/lnco/artifact-service/internal/media"
	"github.com/lnco/artifact-service/internal/platform/logger"
)

type storedObject struct {
	data        []byte
	contentType string
	public      bool
}

// memBucket is an in-memory stand-in for the GCS-backed bucket service.
type memBucket struct {
	mu      sync.Mutex
	objects map[string]*storedObject
	signErr error
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string]*storedObject{}}
}

func (b *memBucket) Upload(_ context.Context, key string, file io.Reader, contentType string) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = &storedObject{data: data, contentType: contentType}
	return nil
}

func (b *memBucket) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *memBucket) Exists(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok, nil
}

func (b *memBucket) MakePublic(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[key]
	if !ok {
		return fmt.Errorf("no object %s", key)
	}
	obj.public = true
	return nil
}

func (b *memBucket) SignedURL(key string, expires time.Time) (string, error) {
	if b.signErr != nil {
		return "", b.signErr
	}
	return fmt.Sprintf("https://signed.example.com/%s?exp=%d", key, expires.Unix()), nil
}

func (b *memBucket) PublicURL(key string) string {
	return "https://storage.googleapis.com/test-bucket/" + key
}

func (b *memBucket) object(key string) *storedObject {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objects[key]
}

// stubFetcher serves canned payloads by URL.
type stubFetcher struct {
	payloads map[string][]byte
	err      error
}

func (f *stubFetcher) Get(_ context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.payloads[url]
	if !ok {
		return nil, fmt.Errorf("no stub for %s", url)
	}
	return data, nil
}

func jpegFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestUploadPublic(t *testing.T) {
	bucket := newMemBucket()
	svc := NewMediaService(logger.NewNop(), bucket, &stubFetcher{})

	ref, err := svc.Upload(context.Background(), jpegFixture(t), "photo.JPG", false)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if ref.ExpiresBy != 0 {
		t.Fatalf("public upload should not expire, got %d", ref.ExpiresBy)
	}
	if ref.URL != ref.FileRef {
		t.Fatalf("public upload should serve the canonical URL: %q vs %q", ref.URL, ref.FileRef)
	}
	if !strings.Contains(ref.URL, "/public/images/") || !strings.HasSuffix(ref.URL, ".jpg") {
		t.Fatalf("unexpected public URL %q", ref.URL)
	}

	key := strings.TrimPrefix(ref.FileRef, "https://storage.googleapis.com/test-bucket/")
	obj := bucket.object(key)
	if obj == nil {
		t.Fatalf("object %s not stored", key)
	}
	if !obj.public {
		t.Fatalf("public upload should be made world readable")
	}
	if obj.contentType != "image/jpeg" {
		t.Fatalf("content type should be sniffed, got %q", obj.contentType)
	}
}

func TestUploadPrivateSignsURL(t *testing.T) {
	bucket := newMemBucket()
	svc := NewMediaService(logger.NewNop(), bucket, &stubFetcher{})

	before := time.Now()
	ref, err := svc.Upload(context.Background(), jpegFixture(t), "photo.jpg", true)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if !strings.HasPrefix(ref.URL, "https://signed.example.com/private/images/") {
		t.Fatalf("private upload should return a signed URL, got %q", ref.URL)
	}
	if strings.Contains(ref.FileRef, "signed.example.com") {
		t.Fatalf("fileRef should stay canonical, got %q", ref.FileRef)
	}

	// Expiry sits fifteen minutes out from issuance.
	lo := before.Add(signedURLTTL).Add(-time.Minute).UnixMilli()
	hi := time.Now().Add(signedURLTTL).Add(time.Minute).UnixMilli()
	if ref.ExpiresBy < lo || ref.ExpiresBy > hi {
		t.Fatalf("expiresBy %d outside [%d, %d]", ref.ExpiresBy, lo, hi)
	}

	key := strings.TrimPrefix(ref.FileRef, "https://storage.googleapis.com/test-bucket/")
	obj := bucket.object(key)
	if obj == nil {
		t.Fatalf("object %s not stored", key)
	}
	if obj.public {
		t.Fatalf("private upload must not be made public")
	}
}

func TestUploadByURLNormalizesToPNG(t *testing.T) {
	bucket := newMemBucket()
	fetcher := &stubFetcher{payloads: map[string][]byte{
		"https://cdn.example.com/pic": jpegFixture(t),
	}}
	svc := NewMediaService(logger.NewNop(), bucket, fetcher)

	ref, err := svc.UploadByURL(context.Background(), "https://cdn.example.com/pic", false)
	if err != nil {
		t.Fatalf("UploadByURL: %v", err)
	}
	if !strings.HasSuffix(ref.FileRef, ".png") {
		t.Fatalf("remote ingest should store a .png name, got %q", ref.FileRef)
	}

	key := strings.TrimPrefix(ref.FileRef, "https://storage.googleapis.com/test-bucket/")
	obj := bucket.object(key)
	if obj == nil {
		t.Fatalf("object %s not stored", key)
	}
	if obj.contentType != "image/png" {
		t.Fatalf("stored content type %q", obj.contentType)
	}
	if media.Sniff(obj.data) != "image/png" {
		t.Fatalf("stored bytes sniff as %q", media.Sniff(obj.data))
	}
}

func TestUploadByURLFetchFailure(t *testing.T) {
	svc := NewMediaService(logger.NewNop(), newMemBucket(), &stubFetcher{err: errors.New("dial timeout")})

	_, err := svc.UploadByURL(context.Background(), "https://cdn.example.com/pic", false)
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestUploadByURLNonImagePayload(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[string][]byte{
		"https://cdn.example.com/pic": []byte("<html>soft 404</html>"),
	}}
	svc := NewMediaService(logger.NewNop(), newMemBucket(), fetcher)

	_, err := svc.UploadByURL(context.Background(), "https://cdn.example.com/pic", false)
	if !errors.Is(err, domain.ErrConversionFailed) {
		t.Fatalf("expected ErrConversionFailed, got %v", err)
	}
}

func TestMediaDelete(t *testing.T) {
	bucket := newMemBucket()
	svc := NewMediaService(logger.NewNop(), bucket, &stubFetcher{})
	ctx := context.Background()

	if err := svc.Delete(ctx, "ghost.png", false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleting a missing object: expected ErrNotFound, got %v", err)
	}

	if err := bucket.Upload(ctx, "public/images/real.png", bytes.NewReader([]byte("x")), "image/png"); err != nil {
		t.Fatalf("seed object: %v", err)
	}
	if err := svc.Delete(ctx, "real.png", false); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if obj := bucket.object("public/images/real.png"); obj != nil {
		t.Fatalf("object should be gone")
	}
}
