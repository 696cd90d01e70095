package service

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"qrmenu/pkg/httpx"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrMenuNotFound = errors.New("menu not found")
	ErrInvalidImage = errors.New("invalid file type. Only JPEG, PNG, GIF, WebP allowed")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Image struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// objectKey namespaces uploads under the owner so one owner can never
// overwrite another's files.
func (img Image) objectKey(ownerID, kind string) (string, error) {
	ext, ok := allowedImageTypes[img.ContentType]
	if !ok {
		return "", ErrInvalidImage
	}
	if e := strings.ToLower(filepath.Ext(img.Filename)); e == ".jpeg" && ext == ".jpg" {
		ext = e
	}
	return ownerID + "/" + kind + "/" + uuid.NewString() + ext, nil
}

func validate(v interface{}) error {
	if err := httpx.Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, httpx.ValidationMessage(err))
	}
	return nil
}
