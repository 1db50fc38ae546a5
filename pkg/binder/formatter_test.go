package binder

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formatterPayload struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Password string   `json:"password" validate:"omitempty,min=8"`
	Initial  string   `json:"initial" validate:"omitempty,min=1,max=1"`
	Text     string   `json:"text" validate:"omitempty,max=5"`
	Tags     []string `json:"tags" validate:"omitempty,min=2,max=3"`
	One      []string `json:"one" validate:"omitempty,max=1"`
	Count    int      `json:"count" validate:"omitempty,min=3,max=9"`
	Ratio    float64  `json:"ratio" validate:"omitempty,max=1"`
	Role     string   `json:"role" validate:"omitempty,oneof=admin user"`
	Code     string   `json:"code" validate:"omitempty,len=4"`
}

func validationMessages(t *testing.T, payload formatterPayload) map[string]string {
	t.Helper()

	b, err := New()
	require.NoError(t, err)

	err = b.validate.Struct(payload)
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)

	msgs := map[string]string{}
	for _, fe := range errs {
		msgs[fe.Field()] = formatValidationError(fe)
	}
	return msgs
}

func TestFormatValidationError(t *testing.T) {
	t.Parallel()

	msgs := validationMessages(t, formatterPayload{
		Email:    "not-an-email",
		Password: "short",
		Initial:  "ab",
		Text:     "too long",
		Tags:     []string{"a"},
		One:      []string{"a", "b"},
		Count:    10,
		Ratio:    1.5,
		Role:     "guest",
		Code:     "abc",
	})

	assert.Equal(t, map[string]string{
		"name":     `"name" is required`,
		"email":    `"email" is not a valid email`,
		"password": `"password" length must be greater than or equal to 8 characters`,
		"initial":  `"initial" length must be less than or equal to 1 character`,
		"text":     `"text" length must be less than or equal to 5 characters`,
		"tags":     `"tags" length must be greater than or equal to 2 elements`,
		"one":      `"one" length must be less than or equal to 1 element`,
		"count":    `"count" must be less than or equal to 9`,
		"ratio":    `"ratio" must be less than or equal to 1`,
		"role":     `"role" must be one of the following: "admin", "user"`,
		"code":     `"code" failed the "len" check`,
	}, msgs)
}

func TestFormatValidationError_NumericMinimum(t *testing.T) {
	t.Parallel()

	msgs := validationMessages(t, formatterPayload{Name: "Ann", Count: 2})

	assert.Equal(t, map[string]string{
		"count": `"count" must be greater than or equal to 3`,
	}, msgs)
}
