package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		name    string
		fileURL string
		want    string
	}{
		{
			name:    "versioned delivery url",
			fileURL: "https://res.cloudinary.com/demo/image/upload/v1712997552/zmxorcxexpdbh8r0bkjb.png",
			want:    "zmxorcxexpdbh8r0bkjb",
		},
		{
			name:    "jpg extension",
			fileURL: "https://res.cloudinary.com/demo/image/upload/abc123.jpg",
			want:    "abc123",
		},
		{
			name:    "no extension",
			fileURL: "https://res.cloudinary.com/demo/image/upload/abc123",
			want:    "abc123",
		},
		{
			name:    "bare filename",
			fileURL: "photo.webp",
			want:    "photo",
		},
		{
			name:    "trailing slash",
			fileURL: "https://res.cloudinary.com/demo/image/upload/",
			want:    "",
		},
		{
			name:    "empty url",
			fileURL: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPublicID(tt.fileURL))
		})
	}
}
