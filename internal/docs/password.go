package docs

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost for share passwords.
const HashCost = 10

// HashPassword hashes a share password.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), HashCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(h), nil
}

// CheckPassword reports whether plain matches hash.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Gate guards access to a document's content.
type Gate struct {
	doc      Document
	unlocked bool
}

// NewGate creates a gate for doc. Unprotected documents start unlocked.
func NewGate(doc Document) *Gate {
	return &Gate{doc: doc, unlocked: !doc.Protected()}
}

// Unlocked reports whether the content may be shown.
func (g *Gate) Unlocked() bool {
	return g.unlocked
}

// Unlock tries a password. There is no lockout; callers may retry freely.
func (g *Gate) Unlock(password string) error {
	if g.unlocked {
		return nil
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if !CheckPassword(password, g.doc.PasswordHash) {
		return ErrUnauthorized
	}
	g.unlocked = true
	return nil
}

// Share sets or clears the share password of doc and returns the updated
// document plus the text to hand to the recipient.
func Share(doc Document, password, link string) (Document, string, error) {
	password = strings.TrimSpace(password)
	if password == "" {
		doc.PasswordHash = ""
		return doc, link, nil
	}
	h, err := HashPassword(password)
	if err != nil {
		return doc, "", err
	}
	doc.PasswordHash = h
	return doc, fmt.Sprintf("%s\nPassword: %s", link, password), nil
}

// ShareLink builds the link recipients open a document with.
func ShareLink(base, id string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "docId=" + id
}
