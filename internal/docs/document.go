// Package docs manages shared rich-text documents: the remote document
// store, the local document list, password-protected sharing and
// autosave timing.
package docs

import (
	"strings"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
)

var (
	ErrEmptyTitle       = errors.New("document title must not be empty")
	ErrNotFound         = errors.New("document not found")
	ErrUnauthorized     = errors.New("incorrect password")
	ErrPasswordRequired = errors.New("enter the document password")
)

// IDLength is the length of generated document ids.
const IDLength = 8

// Document is a stored document. Content is HTML.
type Document struct {
	DocID        string `json:"docId"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Protected reports whether opening the document needs a password.
func (d Document) Protected() bool {
	return d.PasswordHash != ""
}

// NewDocument creates an empty document with a fresh id. The title is
// trimmed and must not be empty.
func NewDocument(title string) (Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Document{}, ErrEmptyTitle
	}
	return Document{DocID: NewID(), Title: title}, nil
}

// NewID returns a random lowercase document id of IDLength characters.
func NewID() string {
	id := strings.ToLower(shortuuid.New())
	for len(id) < IDLength {
		id += strings.ToLower(shortuuid.New())
	}
	return id[:IDLength]
}
