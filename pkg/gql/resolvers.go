package gql

import (
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/todosdemo/todos/pkg/auth"
	"github.com/todosdemo/todos/pkg/fsp"
	"github.com/todosdemo/todos/pkg/todos"
)

type resolver struct {
	todoService *todos.Service
}

// listParams turns getTodos arguments into the raw parameters the REST
// endpoint receives, so both go through the same decoder.
func listParams(args map[string]interface{}) map[string]string {
	params := map[string]string{}
	for _, name := range []string{fsp.ParamFilters, fsp.ParamSortBy, fsp.ParamSortOrder} {
		if v, ok := args[name].(string); ok {
			params[name] = v
		}
	}
	for _, name := range []string{fsp.ParamPage, fsp.ParamSize} {
		if v, ok := args[name].(int); ok {
			params[name] = strconv.Itoa(v)
		}
	}
	return params
}

func (r *resolver) getTodos(p graphql.ResolveParams) (interface{}, error) {
	req, err := fsp.Decode(listParams(p.Args), todos.Fields)
	if err != nil {
		return nil, err
	}

	withAuthor, _ := p.Args["withAuthor"].(bool)
	return r.todoService.List(p.Context, todos.ListOptions{
		Request:    req,
		WithAuthor: withAuthor,
	})
}

func (r *resolver) todo(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(int)
	return r.todoService.Retrieve(p.Context, id)
}

func (r *resolver) createTodo(p graphql.ResolveParams) (interface{}, error) {
	raw, _ := p.Args["text"].(string)
	text, err := todos.NormalizeText(raw)
	if err != nil {
		return nil, err
	}

	return r.todoService.Create(p.Context, todos.CreateTodoOptions{
		Text:   text,
		Author: auth.FromContext(p.Context).User,
	})
}

func (r *resolver) updateTodo(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(int)

	changes := todos.Changes{}
	if raw, ok := p.Args["text"].(string); ok {
		text, err := todos.NormalizeText(raw)
		if err != nil {
			return nil, err
		}
		changes.Text = &text
	}
	if done, ok := p.Args["isCompleted"].(bool); ok {
		changes.IsCompleted = &done
	}

	todo, err := r.todoService.Retrieve(p.Context, id)
	if err != nil {
		return nil, err
	}

	if err := todos.CanEdit(auth.FromContext(p.Context), todo); err != nil {
		return nil, err
	}

	if err := r.todoService.Update(p.Context, todo, changes.Apply(todo)); err != nil {
		return nil, err
	}
	return todo, nil
}

func (r *resolver) deleteTodo(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(int)

	if err := todos.CanDelete(auth.FromContext(p.Context)); err != nil {
		return nil, err
	}

	if err := r.todoService.Delete(p.Context, id); err != nil {
		return nil, err
	}
	return true, nil
}
