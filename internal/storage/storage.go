// Package storage issues short-lived signed URLs for audio objects held in
// the provider's object store.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/beatx/beatx-server/internal/domain"
)

// Signer grants time-limited access to stored objects.
type Signer interface {
	// SignTrack returns a signed URL for the object identified by fileKey,
	// valid for the signer's configured lifetime.
	SignTrack(ctx context.Context, fileKey string) (*domain.StreamGrant, error)
}

// ParseFileKey splits a stored file key into bucket and object path. Keys
// come in two historical shapes: a full storage URL
// (…/storage/v1/object/public/<bucket>/<path> or …/object/sign/<bucket>/<path>)
// and the bare "<bucket>/<path>" form.
func ParseFileKey(fileKey string) (bucket, path string, err error) {
	key := strings.TrimSpace(fileKey)
	if key == "" {
		return "", "", fmt.Errorf("empty file key")
	}

	if strings.Contains(key, "://") {
		u, parseErr := url.Parse(key)
		if parseErr != nil {
			return "", "", fmt.Errorf("parse file key URL: %w", parseErr)
		}
		key = u.Path

		// Strip everything through the object access-mode segment.
		const marker = "/object/"
		idx := strings.Index(key, marker)
		if idx < 0 {
			return "", "", fmt.Errorf("file key URL has no object path: %s", fileKey)
		}
		key = key[idx+len(marker):]
		// Drop the access-mode segment (public, sign, authenticated).
		if slash := strings.IndexByte(key, '/'); slash >= 0 {
			key = key[slash+1:]
		} else {
			return "", "", fmt.Errorf("file key URL has no bucket segment: %s", fileKey)
		}
	}

	key = strings.TrimPrefix(key, "/")
	slash := strings.IndexByte(key, '/')
	if slash <= 0 || slash == len(key)-1 {
		return "", "", fmt.Errorf("file key %q is not in bucket/path form", fileKey)
	}

	return key[:slash], key[slash+1:], nil
}
