// Package mimetype classifies artifact content types as binary or text.
// Binary content must never receive line-ending normalization, so unknown
// and missing content types are treated as binary.
package mimetype

import "strings"

// textTypes lists non-"text/" content types that still carry line-oriented
// text and are safe to normalize
var textTypes = map[string]bool{
	"application/json":        true,
	"application/xml":         true,
	"application/javascript":  true,
	"application/x-sh":        true,
	"application/x-httpd-php": true,
	"image/svg+xml":           true,
}

// Classifier reports whether a content type tag is binary
type Classifier interface {
	IsBinary(contentType string) bool
}

// Table is the default Classifier: a static lookup with optional
// per-instance overrides
type Table struct {
	overrides map[string]bool // content type -> binary?
}

// NewTable creates a classifier with the built-in table
func NewTable() *Table {
	return &Table{}
}

// Override forces a classification for a specific content type
func (t *Table) Override(contentType string, binary bool) {
	if t.overrides == nil {
		t.overrides = make(map[string]bool)
	}
	t.overrides[normalize(contentType)] = binary
}

// IsBinary reports whether the content type must be copied byte for byte
func (t *Table) IsBinary(contentType string) bool {
	ct := normalize(contentType)
	if binary, ok := t.overrides[ct]; ok {
		return binary
	}
	if ct == "" {
		return true
	}
	if strings.HasPrefix(ct, "text/") {
		return false
	}
	if strings.HasSuffix(ct, "+xml") || strings.HasSuffix(ct, "+json") {
		return false
	}
	return !textTypes[ct]
}

// normalize strips parameters like "; charset=utf-8" and lowercases
func normalize(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
