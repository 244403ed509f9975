package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"flixxit-service/internal/domain"

	"github.com/lib/pq"
)

var (
	ErrListNotFound      = errors.New("list not found")
	ErrListAlreadyExists = errors.New("list with this title already exists")
)

// ListStore определяет интерфейс для операций с подборками.
type ListStore interface {
	Create(ctx context.Context, list *domain.List) error
	GetByID(ctx context.Context, id string) (*domain.List, error)
	Update(ctx context.Context, id string, patch domain.ListPatch) (*domain.List, error)
	Delete(ctx context.Context, id string) error
	// Top10 возвращает не более одного списка с isTop10: order по возрастанию, затем самый новый.
	Top10(ctx context.Context) ([]*domain.List, error)
	// Sample до size случайных списков без isTop10 с необязательными фильтрами.
	Sample(ctx context.Context, filter domain.ListFilter, size int) ([]*domain.List, error)
	// ListAll все списки для админки: order по возрастанию, затем новые первыми.
	ListAll(ctx context.Context) ([]*domain.List, error)
}

// MockListStore хранит списки в памяти.
type MockListStore struct {
	mu    sync.RWMutex
	lists map[string]*domain.List
}

func NewMockListStore() *MockListStore {
	return &MockListStore{lists: make(map[string]*domain.List)}
}

func copyList(l *domain.List) *domain.List {
	c := *l
	c.Content = pq.StringArray(append([]string{}, l.Content...))
	return &c
}

func (m *MockListStore) titleTakenLocked(id, title string) bool {
	for _, existing := range m.lists {
		if existing.ID != id && strings.EqualFold(existing.Title, title) {
			return true
		}
	}
	return false
}

func (m *MockListStore) Create(ctx context.Context, list *domain.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.titleTakenLocked(list.ID, list.Title) {
		return ErrListAlreadyExists
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}
	list.UpdatedAt = list.CreatedAt
	if list.Content == nil {
		list.Content = pq.StringArray{}
	}
	m.lists[list.ID] = copyList(list)
	return nil
}

func (m *MockListStore) GetByID(ctx context.Context, id string) (*domain.List, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if list, ok := m.lists[id]; ok {
		return copyList(list), nil
	}
	return nil, ErrListNotFound
}

func (m *MockListStore) Update(ctx context.Context, id string, patch domain.ListPatch) (*domain.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, ok := m.lists[id]
	if !ok {
		return nil, ErrListNotFound
	}
	updated := copyList(list)
	patch.Apply(updated)
	if m.titleTakenLocked(id, updated.Title) {
		return nil, ErrListAlreadyExists
	}
	updated.UpdatedAt = time.Now().UTC()
	m.lists[id] = updated
	return copyList(updated), nil
}

func (m *MockListStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[id]; !ok {
		return ErrListNotFound
	}
	delete(m.lists, id)
	return nil
}

func (m *MockListStore) snapshot(keep func(*domain.List) bool) []*domain.List {
	lists := make([]*domain.List, 0, len(m.lists))
	for _, list := range m.lists {
		if keep(list) {
			lists = append(lists, copyList(list))
		}
	}
	sort.SliceStable(lists, func(i, j int) bool {
		a, b := lists[i], lists[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return lists
}

func (m *MockListStore) Top10(ctx context.Context) ([]*domain.List, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lists := m.snapshot(func(l *domain.List) bool { return l.IsTop10 })
	if len(lists) > 1 {
		lists = lists[:1]
	}
	return lists, nil
}

func (m *MockListStore) Sample(ctx context.Context, filter domain.ListFilter, size int) ([]*domain.List, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lists := m.snapshot(func(l *domain.List) bool {
		if l.IsTop10 {
			return false
		}
		if filter.Type != "" && l.Type != filter.Type {
			return false
		}
		return filter.Genre == "" || l.Genre == filter.Genre
	})
	rand.Shuffle(len(lists), func(i, j int) { lists[i], lists[j] = lists[j], lists[i] })
	if size > 0 && len(lists) > size {
		lists = lists[:size]
	}
	return lists, nil
}

func (m *MockListStore) ListAll(ctx context.Context) ([]*domain.List, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot(func(*domain.List) bool { return true }), nil
}
