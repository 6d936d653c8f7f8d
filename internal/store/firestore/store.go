// Package firestore implements store.Store on Cloud Firestore.
package firestore

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	fs "cloud.google.com/go/firestore"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"swachh_netra/internal/models"
	"swachh_netra/internal/store"
)

type Store struct {
	client *fs.Client
	tx     *fs.Transaction
}

func New(client *fs.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, collection, id string, dst models.Document) error {
	ref := s.client.Collection(collection).Doc(id)

	var (
		snap *fs.DocumentSnapshot
		err  error
	)
	if s.tx != nil {
		snap, err = s.tx.Get(ref)
	} else {
		snap, err = ref.Get(ctx)
	}
	if err != nil {
		return translate(err)
	}

	if err := snap.DataTo(dst); err != nil {
		log.Errorf("unable to unmarshal %s/%s", collection, id)
		return err
	}
	dst.SetID(snap.Ref.ID)
	return nil
}

// Create stores doc under its id, or under a Firestore-generated id when the
// document has none.
func (s *Store) Create(ctx context.Context, collection string, doc models.Document) (string, error) {
	col := s.client.Collection(collection)

	var ref *fs.DocumentRef
	if doc.GetID() == "" {
		ref = col.NewDoc()
		doc.SetID(ref.ID)
	} else {
		ref = col.Doc(doc.GetID())
	}

	var err error
	if s.tx != nil {
		err = s.tx.Create(ref, doc)
	} else {
		_, err = ref.Create(ctx, doc)
	}
	if err != nil {
		return "", translate(err)
	}
	return ref.ID, nil
}

func (s *Store) Set(ctx context.Context, collection string, doc models.Document) error {
	if doc.GetID() == "" {
		return fmt.Errorf("set %s: empty document id", collection)
	}
	ref := s.client.Collection(collection).Doc(doc.GetID())
	if s.tx != nil {
		return translate(s.tx.Set(ref, doc))
	}
	_, err := ref.Set(ctx, doc)
	return translate(err)
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updates := make([]fs.Update, 0, len(keys))
	for _, k := range keys {
		updates = append(updates, fs.Update{Path: k, Value: fields[k]})
	}

	ref := s.client.Collection(collection).Doc(id)
	if s.tx != nil {
		return translate(s.tx.Update(ref, updates))
	}
	_, err := ref.Update(ctx, updates)
	return translate(err)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	ref := s.client.Collection(collection).Doc(id)
	if s.tx != nil {
		return translate(s.tx.Delete(ref))
	}
	_, err := ref.Delete(ctx)
	return translate(err)
}

// Find decodes the matching documents into dst, a pointer to a slice of
// documents or document pointers.
func (s *Store) Find(ctx context.Context, collection string, q store.Query, dst interface{}) error {
	slice := reflect.ValueOf(dst)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("find %s: dst must be a pointer to a slice", collection)
	}
	slice = slice.Elem()

	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, string(f.Op), f.Value)
	}
	if q.OrderBy != "" {
		dir := fs.Asc
		if q.Desc {
			dir = fs.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var iter *fs.DocumentIterator
	if s.tx != nil {
		iter = s.tx.Documents(query)
	} else {
		iter = query.Documents(ctx)
	}
	snaps, err := iter.GetAll()
	if err != nil {
		return translate(err)
	}

	elemType := slice.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	if isPtr {
		elemType = elemType.Elem()
	}

	out := reflect.MakeSlice(slice.Type(), 0, len(snaps))
	for _, snap := range snaps {
		item := reflect.New(elemType)
		if err := snap.DataTo(item.Interface()); err != nil {
			log.Errorf("unable to unmarshal %s/%s", collection, snap.Ref.ID)
			return err
		}
		if doc, ok := item.Interface().(models.Document); ok {
			doc.SetID(snap.Ref.ID)
		}
		if isPtr {
			out = reflect.Append(out, item)
		} else {
			out = reflect.Append(out, item.Elem())
		}
	}
	slice.Set(out)
	return nil
}

// RunInTx runs fn in a Firestore transaction. Nested calls reuse the outer
// transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *fs.Transaction) error {
		return fn(ctx, &Store{client: s.client, tx: tx})
	})
	return translate(err)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return store.ErrNotFound
	case codes.AlreadyExists:
		return store.ErrAlreadyExists
	}
	return err
}
