package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveName(t *testing.T) {
	tests := []struct {
		name     string
		desired  string
		original string
		mimeType string
		want     string
	}{
		{name: "extension kept with case", original: "report.PDF", mimeType: "application/pdf", want: "report.PDF"},
		{name: "desired wins", desired: "q3 summary.pdf", original: "scan001.pdf", mimeType: "application/pdf", want: "q3 summary.pdf"},
		{name: "whitespace collapsed", original: "  my   holiday\tphoto.png ", mimeType: "image/png", want: "my holiday photo.png"},
		{name: "separators replaced", original: "a/b\\c.txt", mimeType: "text/plain", want: "a-b-c.txt"},
		{name: "missing extension appended", original: "notes", mimeType: "text/plain", want: "notes.txt"},
		{name: "unknown extension gets canonical one", original: "cat.v2", mimeType: "image/png", want: "cat.v2.png"},
		{name: "unknown mime leaves name alone", original: "blob", mimeType: "application/x-made-up", want: "blob"},
		{name: "octet-stream leaves name alone", original: "blob", mimeType: "application/octet-stream", want: "blob"},
		{name: "params ignored", original: "readme", mimeType: "text/plain; charset=utf-8", want: "readme.txt"},
		{name: "blank desired falls back", desired: "   ", original: "cat.png", mimeType: "image/png", want: "cat.png"},
		{name: "nfc normalized", original: "café.txt", mimeType: "text/plain", want: "café.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveName(tt.desired, tt.original, tt.mimeType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveName_Invalid(t *testing.T) {
	for _, original := range []string{"", "   ", ".", ".."} {
		_, err := resolveName("", original, "text/plain")
		assert.ErrorIs(t, err, ErrValidation, original)
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "image", category("image/png"))
	assert.Equal(t, "image", category("IMAGE/JPEG"))
	assert.Equal(t, "video", category("video/mp4"))
	assert.Equal(t, "files", category("application/pdf"))
	assert.Equal(t, "files", category(""))
}

func TestDetectMimeType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	assert.Equal(t, "application/pdf", detectMimeType("application/pdf", []byte("whatever")))
	assert.Equal(t, "image/png", detectMimeType("", png))
	assert.Equal(t, "image/png", detectMimeType("application/octet-stream", png))
	assert.Equal(t, "text/plain", detectMimeType("", []byte("hello world")))
}
