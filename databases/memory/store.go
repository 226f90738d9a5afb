// Package memory keeps every collection in process. It honours the same
// version checks, unique keys and transactions as the mongo stores and backs
// the tests and the server's --memory mode.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/police-case-api/databases"
)

// Store holds documents as encoded bson so that callers never share memory
// with what is stored
type Store struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	tables map[string]map[primitive.ObjectID][]byte
}

// New returns an empty store
func New() *Store {
	return &Store{tables: map[string]map[primitive.ObjectID][]byte{}}
}

// Stores returns the collection stores backed by s
func (s *Store) Stores() *databases.Stores {
	return &databases.Stores{
		Cases:          &caseStore{s},
		SolveRequests:  &solveRequestStore{s},
		Interrogations: &interrogationStore{s},
		Intake:         &intakeStore{s},
		RewardTips:     &rewardTipStore{s},
		Suspects:       &suspectStore{s},
		Notifications:  &notificationStore{s},
		Payments:       &paymentStore{s},
		Evidence:       &evidenceStore{s},
		Boards:         &boardStore{s},
		Tx:             s,
	}
}

// txKey marks the context of writes made inside a transaction
type txKey struct{}

// WithTransaction runs fn and rolls every collection back if it fails. Plain
// writes wait for a running transaction, so a rollback never drops them.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := make(map[string]map[primitive.ObjectID][]byte, len(s.tables))
	for name, rows := range s.tables {
		copied := make(map[primitive.ObjectID][]byte, len(rows))
		for id, raw := range rows {
			copied[id] = raw
		}
		snapshot[name] = copied
	}
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.mu.Lock()
		s.tables = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	return ctx != nil && ctx.Value(txKey{}) == s
}

// lockWrite takes the locks a write needs and returns the unlock. Writes
// outside a transaction also take txMu.
func (s *Store) lockWrite(ctx context.Context) func() {
	if s.inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

// table must be called with mu held
func (s *Store) table(name string) map[primitive.ObjectID][]byte {
	t, ok := s.tables[name]
	if !ok {
		t = map[primitive.ObjectID][]byte{}
		s.tables[name] = t
	}
	return t
}

func (s *Store) putLocked(name string, id primitive.ObjectID, doc interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	s.table(name)[id] = raw
	return nil
}

// insert stores doc under id. clash, when given, runs under the lock and
// reports a unique key violation.
func (s *Store) insert(ctx context.Context, name string, id primitive.ObjectID, doc interface{}, clash func() (bool, error)) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.table(name)[id]; ok {
		return databases.ErrDuplicate
	}
	if clash != nil {
		dup, err := clash()
		if err != nil {
			return err
		}
		if dup {
			return databases.ErrDuplicate
		}
	}
	return s.putLocked(name, id, doc)
}

// replace overwrites the document under id only if its stored version is expected
func (s *Store) replace(ctx context.Context, name string, id primitive.ObjectID, expected int32, doc interface{}, clash func() (bool, error)) error {
	defer s.lockWrite(ctx)()

	raw, ok := s.table(name)[id]
	if !ok {
		return databases.ErrConflict
	}
	v, ok := bson.Raw(raw).Lookup("__v").Int32OK()
	if !ok || v != expected {
		return databases.ErrConflict
	}
	if clash != nil {
		dup, err := clash()
		if err != nil {
			return err
		}
		if dup {
			return databases.ErrDuplicate
		}
	}
	return s.putLocked(name, id, doc)
}

func decode[T any](raw []byte) (*T, error) {
	v := new(T)
	if err := bson.Unmarshal(raw, v); err != nil {
		return nil, err
	}
	return v, nil
}

func get[T any](s *Store, name string, id primitive.ObjectID) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.table(name)[id]
	if !ok {
		return nil, databases.ErrNotFound
	}
	return decode[T](raw)
}

// scanLocked returns the documents keep accepts in ascending id order. mu must be held.
func scanLocked[T any](s *Store, name string, keep func(*T) bool) ([]T, error) {
	t := s.table(name)
	ids := make([]primitive.ObjectID, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	out := []T{}
	for _, id := range ids {
		v, err := decode[T](t[id])
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(v) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func scan[T any](s *Store, name string, keep func(*T) bool) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return scanLocked(s, name, keep)
}

func count[T any](s *Store, name string, keep func(*T) bool) (int64, error) {
	found, err := scan(s, name, keep)
	return int64(len(found)), err
}

// deleteWhere removes every document keep accepts and returns how many went
func deleteWhere[T any](ctx context.Context, s *Store, name string, keep func(id primitive.ObjectID, v *T) bool) (int64, error) {
	defer s.lockWrite(ctx)()

	t := s.table(name)
	var n int64
	for id, raw := range t {
		v, err := decode[T](raw)
		if err != nil {
			return n, err
		}
		if keep(id, v) {
			delete(t, id)
			n++
		}
	}
	return n, nil
}

// reverse flips docs in place, turning ascending id order into newest first
func reverse[T any](docs []T) []T {
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
	return docs
}

func laterID(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) > 0
}
