package resolver

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNotObject = errors.New("resolver: metadata document is not a JSON object")

// Document is the subset of an NFT metadata document used to locate its image.
//
// Decoding is lenient: fields of the wrong type are ignored rather than
// failing the whole document, since a document with a bad "image" may still
// carry a usable properties.files entry.
type Document struct {
	Name     string
	Image    string
	ImageURL string
	Files    []File
}

// File is one properties.files entry.
type File struct {
	URI  string
	URL  string
	Type string
}

// ParseDocument decodes b, which must be a JSON object.
func ParseDocument(b []byte) (*Document, error) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errNotObject
	}
	d := &Document{
		Name:     str(m, "name"),
		Image:    str(m, "image"),
		ImageURL: str(m, "image_url"),
	}
	if props, ok := m["properties"].(map[string]any); ok {
		files, _ := props["files"].([]any)
		for _, f := range files {
			fm, ok := f.(map[string]any)
			if !ok {
				continue
			}
			d.Files = append(d.Files, File{URI: str(fm, "uri"), URL: str(fm, "url"), Type: str(fm, "type")})
		}
	}
	return d, nil
}

// ImageRef returns the declared image location.
//
// Precedence: image, image_url, the first file with a uri, the first file
// with a url. ok is false when none is a non-empty string.
func (d *Document) ImageRef() (string, bool) {
	if d == nil {
		return "", false
	}
	if d.Image != "" {
		return d.Image, true
	}
	if d.ImageURL != "" {
		return d.ImageURL, true
	}
	for _, f := range d.Files {
		if f.URI != "" {
			return f.URI, true
		}
	}
	for _, f := range d.Files {
		if f.URL != "" {
			return f.URL, true
		}
	}
	return "", false
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
