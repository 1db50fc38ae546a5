// Package gql serves the todos over GraphQL. It shares the list pipeline,
// validation and permission rules with the REST endpoints.
package gql

import (
	"github.com/graphql-go/graphql"
	"github.com/pkg/errors"
	"github.com/todosdemo/todos/pkg/models"
	"github.com/todosdemo/todos/pkg/todos"
)

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.User).ID, nil
			},
		},
		"name": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.User).Name, nil
			},
		},
		"role": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.User).Role, nil
			},
		},
	},
})

var todoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Todo",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.Todo).ID, nil
			},
		},
		"text": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.Todo).Text, nil
			},
		},
		"isCompleted": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Boolean),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.Todo).IsCompleted, nil
			},
		},
		"authorId": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if id := p.Source.(*models.Todo).AuthorID; id != nil {
					return *id, nil
				}
				return nil, nil
			},
		},
		// Null unless the author was requested or loaded.
		"author": &graphql.Field{
			Type: userType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if author := p.Source.(*models.Todo).Author; author != nil {
					return author, nil
				}
				return nil, nil
			},
		},
		"createdAt": &graphql.Field{
			Type: graphql.NewNonNull(graphql.DateTime),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.Todo).CreatedAt, nil
			},
		},
		"updatedAt": &graphql.Field{
			Type: graphql.NewNonNull(graphql.DateTime),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.Todo).UpdatedAt, nil
			},
		},
	},
})

var todoPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TodoPage",
	Fields: graphql.Fields{
		"rows": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(todoType))),
		},
		"totalRows": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
		},
	},
})

// NewSchema builds the schema over the todos service.
func NewSchema(todoService *todos.Service) (graphql.Schema, error) {
	r := &resolver{todoService: todoService}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getTodos": &graphql.Field{
				Type: graphql.NewNonNull(todoPageType),
				Args: graphql.FieldConfigArgument{
					"filters":    &graphql.ArgumentConfig{Type: graphql.String},
					"sortOrder":  &graphql.ArgumentConfig{Type: graphql.String},
					"sortBy":     &graphql.ArgumentConfig{Type: graphql.String},
					"page":       &graphql.ArgumentConfig{Type: graphql.Int},
					"size":       &graphql.ArgumentConfig{Type: graphql.Int},
					"withAuthor": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: r.getTodos,
			},
			"todo": &graphql.Field{
				Type: todoType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.todo,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createTodo": &graphql.Field{
				Type: graphql.NewNonNull(todoType),
				Args: graphql.FieldConfigArgument{
					"text": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.createTodo,
			},
			"updateTodo": &graphql.Field{
				Type: graphql.NewNonNull(todoType),
				Args: graphql.FieldConfigArgument{
					"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"text":        &graphql.ArgumentConfig{Type: graphql.String},
					"isCompleted": &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: r.updateTodo,
			},
			"deleteTodo": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.deleteTodo,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
	return schema, errors.WithStack(err)
}
