package uploads

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tradepost/backend/internal/logging"
	"github.com/tradepost/backend/internal/models"
)

// allowedExtensions is the exact allow-list for product images.
var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// ObjectStore pushes binary payloads to a remote bucket and removes them.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, contentLength int64, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageStore persists uploaded file records.
type ImageStore interface {
	CreateAll(ctx context.Context, images []models.ProductImage) error
	FindByURL(ctx context.Context, url string) (models.ProductImage, error)
	Delete(ctx context.Context, id string) error
}

// File is a single inbound upload as received at the HTTP boundary.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Uploader validates, names, and stores product images. Batch uploads are
// all-or-nothing: objects already stored when a later file fails are deleted
// best-effort and no image records are written.
type Uploader struct {
	store   ObjectStore
	images  ImageStore
	timeout time.Duration

	newKey func() string
}

// NewUploader constructs an Uploader. timeout bounds each remote call; a
// non-positive value disables the bound.
func NewUploader(store ObjectStore, images ImageStore, timeout time.Duration) *Uploader {
	if store == nil {
		panic("uploads: object store must not be nil")
	}
	if images == nil {
		panic("uploads: image store must not be nil")
	}
	return &Uploader{
		store:   store,
		images:  images,
		timeout: timeout,
		newKey:  uuid.NewString,
	}
}

// Upload stores a single image for the product and returns its record.
func (u *Uploader) Upload(ctx context.Context, productID string, file File) (models.ProductImage, error) {
	images, err := u.UploadAll(ctx, productID, []File{file})
	if err != nil {
		return models.ProductImage{}, err
	}
	return images[0], nil
}

// UploadAll stores every file for the product and persists one image record
// per file. Extensions are validated for the whole batch before any network
// call is made.
func (u *Uploader) UploadAll(ctx context.Context, productID string, files []File) ([]models.ProductImage, error) {
	if productID == "" {
		return nil, fmt.Errorf("uploads: product id must be provided")
	}
	if len(files) == 0 {
		return nil, nil
	}

	ctx, span := logging.StartSpan(ctx, "uploads.batch")
	defer span.End()
	logger := logging.FromContext(ctx)

	keys := make([]string, len(files))
	for i, f := range files {
		ext, err := extensionOf(f.Name)
		if err != nil {
			return nil, err
		}
		keys[i] = u.newKey() + ext
	}

	results := make([]putResult, len(files))

	var wg sync.WaitGroup
	wg.Add(len(files))
	for i := range files {
		go func(i int) {
			defer wg.Done()
			putCtx, cancel := u.callContext(ctx)
			defer cancel()

			url, err := u.store.Put(putCtx, keys[i], files[i].ContentType, files[i].Size, files[i].Content)
			results[i] = putResult{url: url, err: err}
		}(i)
	}
	wg.Wait()

	var failed bool
	for i, res := range results {
		if res.err != nil {
			failed = true
			logger.Error("image upload failed", "key", keys[i], "filename", files[i].Name, "error", res.err)
		}
	}
	if failed {
		u.discardStored(ctx, keys, results)
		return nil, ErrUploadFailed
	}

	now := time.Now().UTC()
	images := make([]models.ProductImage, len(files))
	for i := range files {
		images[i] = models.ProductImage{
			ID:         uuid.NewString(),
			ProductID:  productID,
			URL:        results[i].url,
			StorageKey: keys[i],
			CreatedAt:  now,
		}
	}

	if err := u.images.CreateAll(ctx, images); err != nil {
		u.discardStored(ctx, keys, results)
		return nil, fmt.Errorf("persist image records: %w", err)
	}

	return images, nil
}

// Delete removes the image identified by its public URL: the record resolves
// the storage key, the remote object is deleted, then the record itself. A
// storage failure surfaces as ErrDeleteFailed and leaves the record intact.
func (u *Uploader) Delete(ctx context.Context, fileURL string) error {
	image, err := u.images.FindByURL(ctx, fileURL)
	if err != nil {
		return fmt.Errorf("find image record: %w", err)
	}

	delCtx, cancel := u.callContext(ctx)
	defer cancel()

	if err := u.store.Delete(delCtx, image.StorageKey); err != nil {
		logging.FromContext(ctx).Error("remote image delete failed", "key", image.StorageKey, "error", err)
		return ErrDeleteFailed
	}

	if err := u.images.Delete(ctx, image.ID); err != nil {
		return fmt.Errorf("delete image record: %w", err)
	}

	return nil
}

func (u *Uploader) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, u.timeout)
}

type putResult struct {
	url string
	err error
}

// discardStored deletes the objects that made it to the store before a batch
// was abandoned. Best-effort: failures are logged, not returned.
func (u *Uploader) discardStored(ctx context.Context, keys []string, results []putResult) {
	logger := logging.FromContext(ctx)
	for i, res := range results {
		if res.err != nil {
			continue
		}
		delCtx, cancel := u.callContext(ctx)
		if err := u.store.Delete(delCtx, keys[i]); err != nil {
			logger.Error("discard stored image", "key", keys[i], "error", err)
		}
		cancel()
	}
}

func extensionOf(filename string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return "", ErrUnsupportedExtension
	}
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedExtension
	}
	return ext, nil
}
