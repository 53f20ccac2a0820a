package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURLAndKeyRoundTrip(t *testing.T) {
	s := &Store{bucket: "project-images", endpoint: "minio.local:9000", useSSL: false}

	url := s.publicURL("projects/abc123.png")
	assert.Equal(t, "http://minio.local:9000/project-images/projects/abc123.png", url)

	key, ok := s.keyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "projects/abc123.png", key)
}

func TestKeyFromURLRejectsForeign(t *testing.T) {
	s := &Store{bucket: "project-images", endpoint: "minio.local:9000"}

	_, ok := s.keyFromURL("https://elsewhere.example.com/other-bucket/file.png")
	assert.False(t, ok)

	_, ok = s.keyFromURL("https://minio.local:9000/project-images/")
	assert.False(t, ok)
}
