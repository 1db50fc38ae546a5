package gql

import (
	"net/http"
	"sort"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/todosdemo/todos/pkg/errcodes"
)

type handler struct {
	schema graphql.Schema
}

// QueryPayload is a GraphQL request body.
type QueryPayload struct {
	Query         string                 `json:"query" validate:"required"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

func (h *handler) query(c echo.Context) error {
	// Clients may send extensions this server doesn't use.
	c.Set("disallow_unknown_fields", false)
	params := QueryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  params.Query,
		VariableValues: params.Variables,
		OperationName:  params.OperationName,
		Context:        c.Request().Context(),
	})

	for _, e := range result.Errors {
		var codeErr *errcodes.Error
		if orig := originalError(e); orig != nil && !errors.As(orig, &codeErr) {
			logger.FromEchoContext(c).Err(orig).Error("graphql resolver error")
		}
	}
	result.Errors = expandErrors(result.Errors)

	return c.JSON(http.StatusOK, result)
}

func originalError(e gqlerrors.FormattedError) error {
	err := e.OriginalError()
	var located *gqlerrors.Error
	if errors.As(err, &located) {
		return located.OriginalError
	}
	return err
}

// expandErrors reports every field of a validation error as its own entry
// and tags each error with its code.
func expandErrors(errs []gqlerrors.FormattedError) []gqlerrors.FormattedError {
	if len(errs) == 0 {
		return errs
	}

	out := make([]gqlerrors.FormattedError, 0, len(errs))
	for _, e := range errs {
		orig := originalError(e)
		if orig == nil {
			// Syntax and validation errors from the executor itself.
			out = append(out, e)
			continue
		}

		var codeErr *errcodes.Error
		if !errors.As(orig, &codeErr) {
			out = append(out, gqlerrors.FormattedError{
				Message:    "Internal Server Error",
				Locations:  e.Locations,
				Path:       e.Path,
				Extensions: map[string]interface{}{"code": "internal_server_error"},
			})
			continue
		}

		if len(codeErr.Fields) == 0 {
			out = append(out, gqlerrors.FormattedError{
				Message:    codeErr.Message,
				Locations:  e.Locations,
				Path:       e.Path,
				Extensions: map[string]interface{}{"code": codeErr.Code},
			})
			continue
		}

		keys := make([]string, 0, len(codeErr.Fields))
		for k := range codeErr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, gqlerrors.FormattedError{
				Message:    codeErr.Fields[k],
				Locations:  e.Locations,
				Path:       e.Path,
				Extensions: map[string]interface{}{"code": codeErr.Code, "field": k},
			})
		}
	}
	return out
}
