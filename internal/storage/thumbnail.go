package storage

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// thumbnailSize is the bounding box for generated preview images.
const thumbnailSize = 128

// renderThumbnail decodes an image and returns a PNG-encoded preview that
// fits the thumbnail bounding box.
func renderThumbnail(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, err
	}

	thumb := imaging.Thumbnail(img, thumbnailSize, thumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// isImageFile reports whether a filename looks like a decodable image.
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
