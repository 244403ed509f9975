package domain

import (
	"time"

	"github.com/lib/pq"
)

// TypeTop10 специальное значение type, выбирающее список "Топ 10".
const TypeTop10 = "top10"

// List подборка фильмов. Content хранит только ID фильмов в заданном порядке;
// ссылки не проверяются и могут указывать на удаленные фильмы.
type List struct {
	ID        string         `json:"_id" db:"id"`
	Title     string         `json:"title" db:"title"`
	Type      string         `json:"type" db:"type"`
	Genre     string         `json:"genre" db:"genre"`
	Content   pq.StringArray `json:"content" db:"content"`
	IsTop10   bool           `json:"isTop10" db:"is_top10"`
	Order     int            `json:"order" db:"sort_order"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

// CreateListRequest тело запроса на создание списка
type CreateListRequest struct {
	Title   string   `json:"title" validate:"required,max=255"`
	Type    string   `json:"type"`
	Genre   string   `json:"genre"`
	Content []string `json:"content"`
	IsTop10 bool     `json:"isTop10"`
	Order   int      `json:"order"`
}

// ListPatch частичное обновление списка
type ListPatch struct {
	Title   *string   `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Type    *string   `json:"type,omitempty"`
	Genre   *string   `json:"genre,omitempty"`
	Content *[]string `json:"content,omitempty"`
	IsTop10 *bool     `json:"isTop10,omitempty"`
	Order   *int      `json:"order,omitempty"`
}

// Apply переносит заданные поля патча в список.
func (p ListPatch) Apply(l *List) {
	setString(&l.Title, p.Title)
	setString(&l.Type, p.Type)
	setString(&l.Genre, p.Genre)
	if p.Content != nil {
		l.Content = pq.StringArray(append([]string{}, (*p.Content)...))
	}
	if p.IsTop10 != nil {
		l.IsTop10 = *p.IsTop10
	}
	if p.Order != nil {
		l.Order = *p.Order
	}
}

// ListFilter параметры публичной выборки списков
type ListFilter struct {
	Type  string
	Genre string
}

// ResolvedList содержимое списка, разрешенное в фильмы. Missing перечисляет
// ID, которым больше не соответствует ни один фильм.
type ResolvedList struct {
	List    *List    `json:"list"`
	Movies  []*Movie `json:"movies"`
	Missing []string `json:"missing"`
}
