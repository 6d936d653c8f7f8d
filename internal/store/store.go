// Package store defines the document storage contract shared by the
// relational (gorm) and Firestore backends.
package store

import (
	"context"
	"errors"

	"swachh_netra/internal/models"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
)

type Op string

const (
	OpEqual         Op = "=="
	OpIn            Op = "in"
	OpArrayContains Op = "array-contains"
)

// Filter matches a document field by its document (camelCase) name.
type Filter struct {
	Field string
	Op    Op
	Value interface{}
}

func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

func In(field string, values []string) Filter {
	return Filter{Field: field, Op: OpIn, Value: values}
}

func Contains(field string, value string) Filter {
	return Filter{Field: field, Op: OpArrayContains, Value: value}
}

type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Where is shorthand for a query with only equality-style filters.
func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

// Store is implemented by every storage backend. Inside RunInTx the callback
// receives a Store bound to the transaction; on Firestore all reads must be
// issued before the first write.
type Store interface {
	Get(ctx context.Context, collection, id string, dst models.Document) error
	Create(ctx context.Context, collection string, doc models.Document) (string, error)
	Set(ctx context.Context, collection string, doc models.Document) error
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
	Find(ctx context.Context, collection string, q Query, dst interface{}) error
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
