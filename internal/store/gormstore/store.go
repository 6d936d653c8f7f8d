// Package gormstore implements store.Store on a relational database via gorm.
// Each collection maps to the table gorm derives from its model type.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"swachh_netra/internal/models"
	"swachh_netra/internal/store"
)

// likeEscaper neutralises LIKE wildcards inside an encoded array element.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the table of every collection.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

func (s *Store) Get(ctx context.Context, collection, id string, dst models.Document) error {
	if _, err := models.NewDocument(collection); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Where("id = ?", id).First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) Create(ctx context.Context, collection string, doc models.Document) (string, error) {
	if _, err := models.NewDocument(collection); err != nil {
		return "", err
	}
	if doc.GetID() == "" {
		doc.SetID(models.NewID())
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		if isUniqueViolation(err) {
			return "", store.ErrAlreadyExists
		}
		return "", err
	}
	return doc.GetID(), nil
}

func (s *Store) Set(ctx context.Context, collection string, doc models.Document) error {
	if doc.GetID() == "" {
		return fmt.Errorf("set %s: empty document id", collection)
	}
	if err := s.db.WithContext(ctx).Save(doc).Error; err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update loads the row, overlays the given document fields and saves it back,
// so serialized columns go through the same encoding as on create.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	doc, err := models.NewDocument(collection)
	if err != nil {
		return err
	}
	if err := s.Get(ctx, collection, id, doc); err != nil {
		return err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode update for %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return fmt.Errorf("apply update for %s/%s: %w", collection, id, err)
	}
	doc.SetID(id)
	return s.Set(ctx, collection, doc)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	doc, err := models.NewDocument(collection)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(doc).Error
}

func (s *Store) Find(ctx context.Context, collection string, q store.Query, dst interface{}) error {
	if _, err := models.NewDocument(collection); err != nil {
		return err
	}
	tx := s.db.WithContext(ctx)
	for _, f := range q.Filters {
		col := clause.Column{Name: s.db.NamingStrategy.ColumnName("", f.Field)}
		switch f.Op {
		case store.OpEqual:
			tx = tx.Where(clause.Eq{Column: col, Value: plain(f.Value)})
		case store.OpIn:
			tx = tx.Where(clause.IN{Column: col, Values: toValues(f.Value)})
		case store.OpArrayContains:
			encoded, err := json.Marshal(plain(f.Value))
			if err != nil {
				return err
			}
			pattern := "%" + likeEscaper.Replace(string(encoded)) + "%"
			tx = tx.Where(clause.Expr{SQL: "? LIKE ? ESCAPE '\\'", Vars: []interface{}{col, pattern}})
		default:
			return fmt.Errorf("unsupported filter operator %q", f.Op)
		}
	}
	if q.OrderBy != "" {
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: s.db.NamingStrategy.ColumnName("", q.OrderBy)},
			Desc:   q.Desc,
		})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	return tx.Find(dst).Error
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx})
	})
}

// plain converts named string types (roles, statuses) to string so drivers
// that skip the default parameter converter still accept them.
func plain(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String()
	}
	return v
}

func toValues(v interface{}) []interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []interface{}{plain(v)}
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = plain(rv.Index(i).Interface())
	}
	return out
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
