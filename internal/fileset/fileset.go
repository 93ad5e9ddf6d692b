// Package fileset validates and decodes file-list payloads before anything is
// persisted. A payload is a JSON array of {path, content} objects where
// content is base64-encoded raw bytes. A single invalid entry rejects the
// whole payload, so storage never sees partial sets.
package fileset

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrDecode means the payload is not valid JSON.
	ErrDecode = errors.New("fileset: payload cannot be JSON decoded")
	// ErrFormat means the payload is valid JSON of the wrong shape.
	ErrFormat = errors.New("fileset: incorrect payload format")
	// ErrIllegalPath means an entry path escapes or malforms the set root.
	ErrIllegalPath = errors.New("fileset: illegal path")
	// ErrEncoding means an entry content is not valid base64.
	ErrEncoding = errors.New("fileset: content cannot be base64 decoded")
)

// Entry is one decoded (path, bytes) pair.
type Entry struct {
	Path    string
	Content []byte
}

type filePayload struct {
	Path    *string `json:"path"`
	Content *string `json:"content"`
}

// Parse decodes and validates a raw file-list payload. Duplicate paths keep
// the last occurrence.
func Parse(raw json.RawMessage) ([]Entry, error) {
	var payload []filePayload
	if err := unmarshalStrict(raw, &payload); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(payload))
	index := make(map[string]int, len(payload))
	for _, file := range payload {
		if file.Path == nil || file.Content == nil {
			return nil, ErrFormat
		}
		if err := ValidatePath(*file.Path); err != nil {
			return nil, err
		}
		content, err := base64.StdEncoding.DecodeString(*file.Content)
		if err != nil {
			return nil, ErrEncoding
		}
		if at, ok := index[*file.Path]; ok {
			entries[at].Content = content
			continue
		}
		index[*file.Path] = len(entries)
		entries = append(entries, Entry{Path: *file.Path, Content: content})
	}
	return entries, nil
}

// ValidatePath rejects absolute paths, empty paths and any "." or ".."
// segment, keeping every entry inside the set's logical root.
func ValidatePath(path string) error {
	if path == "" || strings.HasPrefix(path, "/") {
		return ErrIllegalPath
	}
	for _, segment := range strings.Split(path, "/") {
		switch segment {
		case "", ".", "..":
			return ErrIllegalPath
		}
	}
	return nil
}

func unmarshalStrict(raw json.RawMessage, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return ErrFormat
		}
		return ErrDecode
	}
	return nil
}
