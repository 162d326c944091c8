package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/AdamBeresnev/toilescoins/internal/logging"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Record is one stored document. Body is the raw JSON.
type Record struct {
	ID        string    `db:"id"`
	Body      []byte    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r Record) Decode(dst any) error {
	if err := sonic.Unmarshal(r.Body, dst); err != nil {
		return persistenceError(err, "decode document %q", r.ID)
	}
	return nil
}

// Query selects the documents of a collection whose top-level (or dotted)
// field equals Value.
type Query struct {
	Collection string
	Field      string
	Value      string
}

// DocumentStore is a key-value store of JSON documents grouped in
// collections. Writes are whole-value at the top level: Update replaces the
// given top-level fields and keeps the others; an explicit null is stored as
// null.
type DocumentStore interface {
	Create(ctx context.Context, collection string, doc any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	GetByID(ctx context.Context, collection, id string) (*Record, error)
	QueryByField(ctx context.Context, q Query) ([]Record, error)
	// Subscribe delivers the current result of q right away and again after
	// every committed write that touches it. The returned func unsubscribes.
	Subscribe(ctx context.Context, q Query, onChange func([]Record)) (func(), error)
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

const (
	insertDocumentQuery = `
		INSERT INTO documents (collection, id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	getDocumentQuery = `
		SELECT id, body, created_at, updated_at FROM documents
		WHERE collection = ? AND id = ?
	`
	updateDocumentQuery = `
		UPDATE documents SET body = ?, updated_at = ?
		WHERE collection = ? AND id = ?
	`
	queryDocumentsByFieldQuery = `
		SELECT id, body, created_at, updated_at FROM documents
		WHERE collection = ? AND json_extract(body, ?) = ?
		ORDER BY updated_at DESC
	`
)

type subscription struct {
	query    Query
	onChange func([]Record)
	// ids currently in the result, so a document leaving the result is
	// still reported.
	ids map[string]bool
}

// SQLDocumentStore keeps documents in the documents table, one JSON body per
// row, and fans committed writes out to subscribers in process.
type SQLDocumentStore struct {
	db *sqlx.DB

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]*subscription
}

func NewSQLDocumentStore(db *sqlx.DB) *SQLDocumentStore {
	return &SQLDocumentStore{
		db:   db,
		subs: make(map[string]map[int]*subscription),
	}
}

func (s *SQLDocumentStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	body, err := sonic.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "encode document")
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, insertDocumentQuery, collection, id, string(body), now, now); err != nil {
		return "", persistenceError(err, "create %s document", collection)
	}

	s.notify(ctx, collection, id, body)
	return id, nil
}

func (s *SQLDocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	patch, err := topLevel(fields)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return persistenceError(err, "begin update")
	}
	defer tx.Rollback()

	var current Record
	if err := tx.GetContext(ctx, &current, getDocumentQuery, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Wrapf(ErrDocumentNotFound, "%s/%s", collection, id)
		}
		return persistenceError(err, "load %s/%s", collection, id)
	}

	merged := make(map[string]json.RawMessage)
	if err := sonic.Unmarshal(current.Body, &merged); err != nil {
		return persistenceError(err, "decode %s/%s", collection, id)
	}
	for k, v := range patch {
		merged[k] = v
	}

	body, err := sonic.Marshal(merged)
	if err != nil {
		return errors.Wrap(err, "encode document")
	}
	if _, err := tx.ExecContext(ctx, updateDocumentQuery, string(body), time.Now().UTC(), collection, id); err != nil {
		return persistenceError(err, "update %s/%s", collection, id)
	}
	if err := tx.Commit(); err != nil {
		return persistenceError(err, "commit %s/%s", collection, id)
	}

	s.notify(ctx, collection, id, body)
	return nil
}

func (s *SQLDocumentStore) GetByID(ctx context.Context, collection, id string) (*Record, error) {
	var rec Record
	if err := s.db.GetContext(ctx, &rec, getDocumentQuery, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrDocumentNotFound, "%s/%s", collection, id)
		}
		return nil, persistenceError(err, "get %s/%s", collection, id)
	}
	return &rec, nil
}

func (s *SQLDocumentStore) QueryByField(ctx context.Context, q Query) ([]Record, error) {
	if !fieldPattern.MatchString(q.Field) {
		return nil, errors.Newf("invalid field path %q", q.Field)
	}

	var recs []Record
	if err := s.db.SelectContext(ctx, &recs, queryDocumentsByFieldQuery, q.Collection, "$."+q.Field, q.Value); err != nil {
		return nil, persistenceError(err, "query %s by %s", q.Collection, q.Field)
	}
	return recs, nil
}

func (s *SQLDocumentStore) Subscribe(ctx context.Context, q Query, onChange func([]Record)) (func(), error) {
	recs, err := s.QueryByField(ctx, q)
	if err != nil {
		return nil, err
	}

	sub := &subscription{query: q, onChange: onChange, ids: idSet(recs)}

	s.mu.Lock()
	s.nextID++
	key := s.nextID
	if s.subs[q.Collection] == nil {
		s.subs[q.Collection] = make(map[int]*subscription)
	}
	s.subs[q.Collection][key] = sub
	s.mu.Unlock()

	onChange(recs)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs[q.Collection], key)
			if len(s.subs[q.Collection]) == 0 {
				delete(s.subs, q.Collection)
			}
		})
	}, nil
}

// notify re-runs the query of every subscription the written document is,
// or was, part of. Delivery happens after commit on the writer's goroutine.
func (s *SQLDocumentStore) notify(ctx context.Context, collection, id string, body []byte) {
	s.mu.Lock()
	var affected []*subscription
	for _, sub := range s.subs[collection] {
		if sub.ids[id] || fieldEquals(body, sub.query.Field, sub.query.Value) {
			affected = append(affected, sub)
		}
	}
	s.mu.Unlock()

	// The write already committed; a cancelled request must not swallow it.
	ctx = context.WithoutCancel(ctx)
	for _, sub := range affected {
		recs, err := s.QueryByField(ctx, sub.query)
		if err != nil {
			logging.Warn("subscription refresh failed", "collection", collection, "field", sub.query.Field, "error", err)
			continue
		}
		s.mu.Lock()
		sub.ids = idSet(recs)
		s.mu.Unlock()
		sub.onChange(recs)
	}
}

func idSet(recs []Record) map[string]bool {
	ids := make(map[string]bool, len(recs))
	for _, r := range recs {
		ids[r.ID] = true
	}
	return ids
}

func fieldEquals(body []byte, field, value string) bool {
	path := make([]any, 0, 2)
	for _, part := range strings.Split(field, ".") {
		path = append(path, part)
	}
	node, err := sonic.Get(body, path...)
	if err != nil || !node.Exists() {
		return false
	}
	got, err := node.String()
	return err == nil && got == value
}

// topLevel encodes each field on its own so Update can splice them into the
// stored body. A nil value becomes an explicit null.
func topLevel(fields map[string]any) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		raw, err := sonic.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "encode field %q", k)
		}
		out[k] = raw
	}
	return out, nil
}
