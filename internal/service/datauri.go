package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
)

// ErrInvalidDataURI is returned for images that are not base64 data URIs
var ErrInvalidDataURI = errors.New("invalid data URI")

// DataURI is a decoded "data:<mime>;base64,<payload>" image
type DataURI struct {
	ContentType string
	Data        []byte
}

// IsDataURI reports whether s looks like an inline image
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURI decodes a base64 data URI
func ParseDataURI(s string) (*DataURI, error) {
	if !IsDataURI(s) {
		return nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, ErrInvalidDataURI
	}

	contentType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrInvalidDataURI, encoding)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return &DataURI{ContentType: contentType, Data: data}, nil
}

// Extension returns the file extension for the content type
func (d *DataURI) Extension() string {
	switch d.ContentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	if exts, _ := mime.ExtensionsByType(d.ContentType); len(exts) > 0 {
		return exts[0]
	}
	if _, sub, ok := strings.Cut(d.ContentType, "/"); ok && sub != "" {
		return "." + sub
	}
	return ""
}
