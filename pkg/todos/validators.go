package todos

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/todosdemo/todos/pkg/errcodes"
	"github.com/todosdemo/todos/pkg/fsp"
)

type ListTodosQuery struct {
	fsp.Query
	WithAuthor bool `query:"withAuthor"`
}

type CreateTodoPayload struct {
	Text string `json:"text" mod:"trim" validate:"required,max=500"`
}

type UpdateTodoPayload struct {
	Text        *string `json:"text,omitempty" mod:"trim" validate:"omitempty,min=1,max=500"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

// MaxTextLength is the longest todo text accepted.
const MaxTextLength = 500

// NormalizeText trims text and checks it the way CreateTodoPayload is
// checked, for callers that don't go through the request binder.
func NormalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return "", errcodes.ValidationFields(map[string]string{"text": `"text" is required`})
	case utf8.RuneCountInString(text) > MaxTextLength:
		return "", errcodes.ValidationFields(map[string]string{
			"text": fmt.Sprintf(`"text" length must be less than or equal to %d characters`, MaxTextLength),
		})
	}
	return text, nil
}
