package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileKey_BucketPathForm(t *testing.T) {
	bucket, path, err := ParseFileKey("tracks/album1/song.mp3")
	require.NoError(t, err)
	assert.Equal(t, "tracks", bucket)
	assert.Equal(t, "album1/song.mp3", path)
}

func TestParseFileKey_PublicURL(t *testing.T) {
	bucket, path, err := ParseFileKey("https://xyz.example.co/storage/v1/object/public/tracks/album1/song.mp3")
	require.NoError(t, err)
	assert.Equal(t, "tracks", bucket)
	assert.Equal(t, "album1/song.mp3", path)
}

func TestParseFileKey_SignedURL(t *testing.T) {
	bucket, path, err := ParseFileKey("https://xyz.example.co/storage/v1/object/sign/covers/art.png")
	require.NoError(t, err)
	assert.Equal(t, "covers", bucket)
	assert.Equal(t, "art.png", path)
}

func TestParseFileKey_LeadingSlash(t *testing.T) {
	bucket, path, err := ParseFileKey("/tracks/song.mp3")
	require.NoError(t, err)
	assert.Equal(t, "tracks", bucket)
	assert.Equal(t, "song.mp3", path)
}

func TestParseFileKey_Invalid(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"no-bucket-segment",
		"trailing-slash/",
		"https://xyz.example.co/storage/v1/not-an-object-path",
	}
	for _, key := range cases {
		_, _, err := ParseFileKey(key)
		assert.Error(t, err, "key %q should not parse", key)
	}
}
