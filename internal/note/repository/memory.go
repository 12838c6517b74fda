package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/papyrus/papyrus/backend/notes-api/internal/note"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo keeps notes as raw documents in process memory, with the same
// identifier format and top-level overwrite semantics as the Mongo store.
// Used when no database is configured and in tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID]bson.M
	order []primitive.ObjectID
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[primitive.ObjectID]bson.M)}
}

func (m *MemoryRepo) Create(ctx context.Context, n *note.Note) (string, error) {
	raw, err := bson.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("encode note: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("encode note: %w", err)
	}
	oid := primitive.NewObjectID()
	doc["_id"] = oid

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[oid] = doc
	m.order = append(m.order, oid)
	n.ID = oid.Hex()
	return n.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*note.Note, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[oid]
	if !ok {
		return nil, ErrNotFound
	}
	n, err := decodeDoc(doc)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (m *MemoryRepo) List(ctx context.Context, f note.Filter) ([]note.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []note.Note{}
	for _, oid := range m.order {
		n, err := decodeDoc(m.docs[oid])
		if err != nil {
			return nil, err
		}
		if f.Matches(&n) {
			out = append(out, n)
		}
	}
	note.Sort(out)
	return out, nil
}

func (m *MemoryRepo) Update(ctx context.Context, id string, fields note.Patch) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[oid]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		doc[k] = v
	}
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[oid]; !ok {
		return ErrNotFound
	}
	delete(m.docs, oid)
	for i, o := range m.order {
		if o == oid {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// decodeDoc maps a raw document onto a Note the same way the driver decodes
// a Mongo result, so type mismatches left by untyped patches surface here.
func decodeDoc(doc bson.M) (note.Note, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return note.Note{}, fmt.Errorf("decode note: %w", err)
	}
	var d noteDoc
	if err := bson.Unmarshal(raw, &d); err != nil {
		return note.Note{}, fmt.Errorf("decode note: %w", err)
	}
	return d.toNote(), nil
}

var _ Repository = (*MemoryRepo)(nil)
