package upload

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultImageFileName = "image.png"

	MaxImageSize = 10 << 20
)

// Asset is a file to be uploaded.
type Asset struct {
	Data        []byte
	ContentType string
	FileName    string
}

/*
ReadImage loads image file. Content type is detected by sniffing the content,
file extension is used for formats sniffing doesn't recognize (ie SVG).
Non-image files are rejected.
*/
func ReadImage(path string) (*Asset, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("image path %s is a directory", path)
	}
	if fi.Size() > MaxImageSize {
		return nil, fmt.Errorf("image %s is too large (%d bytes), maximum is %d bytes", path, fi.Size(), MaxImageSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("image file is empty")
	}

	// content wins over the extension, the staged image is always named image.png
	contentType := mediaType(http.DetectContentType(data))
	if !strings.HasPrefix(contentType, "image/") {
		if byExt := mediaType(mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))); byExt != "" {
			contentType = byExt
		}
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("file %s is not an image (%s)", path, contentType)
	}
	return &Asset{
		Data:        data,
		ContentType: contentType,
		FileName:    filepath.Base(path),
	}, nil
}

// mediaType drops parameters like "; charset=utf-8".
func mediaType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return contentType
}

/*
CopyImage copies image from "src" into "dst" after checking that it is a
readable image. Used to stage user's image as the image of the token.
*/
func CopyImage(src, dst string) error {
	asset, err := ReadImage(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(dst, asset.Data, 0600); err != nil {
		return fmt.Errorf("copying image: %w", err)
	}
	return nil
}
