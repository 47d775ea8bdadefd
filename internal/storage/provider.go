package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/beatx/beatx-server/internal/domain"
	"github.com/beatx/beatx-server/internal/provider"
	apperrors "github.com/beatx/beatx-server/pkg/errors"
)

// ProviderSigner signs object URLs through the provider's storage API.
type ProviderSigner struct {
	client        provider.Client
	defaultBucket string
	expiry        time.Duration
}

// NewProviderSigner builds a signer backed by the provider. defaultBucket is
// used for bare object paths that carry no bucket segment.
func NewProviderSigner(client provider.Client, defaultBucket string, expiry time.Duration) *ProviderSigner {
	return &ProviderSigner{
		client:        client,
		defaultBucket: defaultBucket,
		expiry:        expiry,
	}
}

func (s *ProviderSigner) SignTrack(ctx context.Context, fileKey string) (*domain.StreamGrant, error) {
	bucket, path, err := ParseFileKey(fileKey)
	if err != nil {
		// Bare keys without a bucket segment fall back to the default
		// bucket.
		if s.defaultBucket == "" || fileKey == "" {
			return nil, apperrors.Internal(fmt.Errorf("unusable file key: %w", err))
		}
		bucket, path = s.defaultBucket, fileKey
	}

	signedURL, err := s.client.CreateSignedURL(ctx, bucket, path, s.expiry)
	if err != nil {
		return nil, err
	}

	return &domain.StreamGrant{
		URL:       signedURL,
		ExpiresAt: time.Now().UTC().Add(s.expiry),
		ExpiresIn: int64(s.expiry.Seconds()),
	}, nil
}
