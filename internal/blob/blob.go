// Package blob is the photo upload sidecar: it takes a file and turns it
// into a publicly dereferenceable URL on an S3-compatible object store.
// Stateless pass-through — no retry, no resumability; a failed upload is
// simply an error and the caller posts without a photo.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Object is what an upload returns: the public URL for the entry's
// imageUrl field, and the storage key in case the object ever needs to be
// found again.
type Object struct {
	URL      string `json:"url"`
	Pathname string `json:"pathname"`
}

// Uploader is the interface the HTTP layer programs against; tests swap in
// a fake so no object store is needed.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (*Object, error)
}

// storageKey builds a collision-resistant key for an uploaded file:
// a timestamp for humans browsing the bucket, a UUID so two uploads in the
// same millisecond cannot collide, and the original extension so the store
// can infer the content type later.
func storageKey(filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("memories/%d-%s%s", now.UnixMilli(), uuid.New(), ext)
}
