package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"flixxit-service/internal/domain"
)

// Кастомные ошибки хранилища пользователей
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)

// UserStore определяет интерфейс для операций с данными пользователей.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update применяет patch атомарно относительно других изменений того же пользователя.
	Update(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
	// List возвращает всех пользователей по дате создания; при limit > 0 только limit самых новых.
	List(ctx context.Context, limit int) ([]*domain.User, error)
	MonthlyStats(ctx context.Context) ([]domain.MonthlyUserStat, error)
}

// MockUserStore хранит пользователей в памяти (режим STORAGE=memory и тесты).
type MockUserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User // Ключ: UserID
}

// NewMockUserStore создает новый экземпляр MockUserStore
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[string]*domain.User)}
}

// conflictLocked проверяет уникальность email и username без учета регистра.
func (m *MockUserStore) conflictLocked(user *domain.User) error {
	for _, existing := range m.users {
		if existing.ID == user.ID {
			continue
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrEmailTaken
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return ErrUsernameTaken
		}
	}
	return nil
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.conflictLocked(user); err != nil {
		return err
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt

	userCopy := *user
	m.users[user.ID] = &userCopy
	return nil
}

func (m *MockUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[userID]; ok {
		userCopy := *user
		return &userCopy, nil
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			userCopy := *user
			return &userCopy, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStore) Update(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	updated := *existing
	patch.Apply(&updated)
	if err := m.conflictLocked(&updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	m.users[userID] = &updated

	userCopy := updated
	return &userCopy, nil
}

func (m *MockUserStore) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, userID)
	return nil
}

func (m *MockUserStore) List(ctx context.Context, limit int) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		userCopy := *u
		users = append(users, &userCopy)
	}

	if limit > 0 {
		sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
		if len(users) > limit {
			users = users[:limit]
		}
		return users, nil
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (m *MockUserStore) MonthlyStats(ctx context.Context) ([]domain.MonthlyUserStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totals := make(map[int]int)
	for _, u := range m.users {
		totals[int(u.CreatedAt.Month())]++
	}
	stats := make([]domain.MonthlyUserStat, 0, len(totals))
	for month, total := range totals {
		stats = append(stats, domain.MonthlyUserStat{Month: month, Total: total})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Month < stats[j].Month })
	return stats, nil
}
