package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type Todo struct {
	bun.BaseModel `bun:"table:todos,alias:t"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Text        string    `json:"text"`
	IsCompleted bool      `json:"is_completed"`
	AuthorID    *int      `json:"author_id"` // null for todos created by guests

	// Relations
	Author *User `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
}

// Lookup resolves a dotted field path against the todo. Paths under
// "author." are resolved against the loaded author, if any.
func (t *Todo) Lookup(path string) (any, bool) {
	if t == nil {
		return nil, false
	}
	switch path {
	case "id":
		return t.ID, true
	case "text":
		return t.Text, true
	case "is_completed":
		return t.IsCompleted, true
	case "author_id":
		if t.AuthorID == nil {
			return nil, false
		}
		return *t.AuthorID, true
	case "created_at":
		return t.CreatedAt, true
	}
	if rest, ok := strings.CutPrefix(path, "author."); ok {
		return t.Author.Lookup(rest)
	}
	return nil, false
}
