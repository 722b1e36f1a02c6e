package repository

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sketchbook/sketchbook/internal/drawing"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrDuplicateID = errors.New("drawing id already exists")

// MemoryRepo keeps drawings in a slice sorted by ID. It backs unit tests and
// the server when no MongoDB is configured.
type MemoryRepo struct {
	mu    sync.RWMutex
	items []*drawing.Drawing
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func less(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func (m *MemoryRepo) Insert(ctx context.Context, d *drawing.Drawing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}
	i := sort.Search(len(m.items), func(i int) bool { return !less(m.items[i].ID, d.ID) })
	if i < len(m.items) && m.items[i].ID == d.ID {
		return ErrDuplicateID
	}
	cp := *d
	cp.SignedURL = ""
	m.items = append(m.items, nil)
	copy(m.items[i+1:], m.items[i:])
	m.items[i] = &cp
	return nil
}

func (m *MemoryRepo) FindAdjacent(ctx context.Context, userID primitive.ObjectID, cur drawing.Cursor) (*drawing.Drawing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch cur.Direction {
	case drawing.After:
		for _, d := range m.items {
			if d.UserID == userID && d.Type == drawing.TypeDrawing && less(cur.ID, d.ID) {
				cp := *d
				return &cp, nil
			}
		}
	default:
		for i := len(m.items) - 1; i >= 0; i-- {
			d := m.items[i]
			if d.UserID != userID || d.Type != drawing.TypeDrawing {
				continue
			}
			if cur.Direction == drawing.Before && !less(d.ID, cur.ID) {
				continue
			}
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepo) FindByID(ctx context.Context, userID, id primitive.ObjectID) (*drawing.Drawing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := sort.Search(len(m.items), func(i int) bool { return !less(m.items[i].ID, id) })
	if i < len(m.items) && m.items[i].ID == id && m.items[i].UserID == userID {
		cp := *m.items[i]
		return &cp, nil
	}
	return nil, nil
}

// Len reports how many records are stored.
func (m *MemoryRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
