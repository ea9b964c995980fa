package docs

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/studydeck/studydeck/internal/store"
)

// ListKey is the KV key of the local document list.
const ListKey = "documentList"

// Library is the locally remembered list of documents.
type Library struct {
	kv store.KV
}

// NewLibrary creates a Library over kv.
func NewLibrary(kv store.KV) *Library {
	return &Library{kv: kv}
}

// List returns the remembered documents. An unreadable list is empty.
func (l *Library) List(ctx context.Context) ([]Document, error) {
	docs, _, err := store.GetJSON[[]Document](ctx, l.kv, ListKey)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return []Document{}, nil
	}
	return docs, nil
}

// Get returns a remembered document by id.
func (l *Library) Get(ctx context.Context, id string) (Document, error) {
	docs, err := l.List(ctx)
	if err != nil {
		return Document{}, err
	}
	for _, d := range docs {
		if d.DocID == id {
			return d, nil
		}
	}
	return Document{}, errors.Wrapf(ErrNotFound, "document %s", id)
}

// Put inserts or replaces doc. A replaced document moves to the end.
func (l *Library) Put(ctx context.Context, doc Document) error {
	err := store.UpdateJSON(ctx, l.kv, ListKey, func(docs *[]Document) error {
		*docs = append(withoutID(*docs, doc.DocID), doc)
		return nil
	})
	return errors.Wrap(err, "update document list")
}

// Remove forgets a document locally. The remote copy is untouched.
func (l *Library) Remove(ctx context.Context, id string) error {
	err := store.UpdateJSON(ctx, l.kv, ListKey, func(docs *[]Document) error {
		*docs = withoutID(*docs, id)
		return nil
	})
	return errors.Wrap(err, "update document list")
}

func withoutID(docs []Document, id string) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if d.DocID != id {
			out = append(out, d)
		}
	}
	return out
}

// Search filters documents by a case-insensitive substring of the title
// or id.
func Search(docs []Document, term string) []Document {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return docs
	}
	var out []Document
	for _, d := range docs {
		if strings.Contains(strings.ToLower(d.Title), term) || strings.Contains(strings.ToLower(d.DocID), term) {
			out = append(out, d)
		}
	}
	return out
}
