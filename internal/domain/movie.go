package domain

import (
	"time"
)

// Movie представляет фильм или сериал каталога.
// JSON-имена совпадают с теми, что используют клиент и админка.
type Movie struct {
	ID          string     `json:"_id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"desc" db:"description"`
	Img         string     `json:"img" db:"img"`            // постер
	ImgTitle    string     `json:"imgTitle" db:"img_title"` // логотип названия
	ImgSm       string     `json:"imgSm" db:"img_sm"`       // миниатюра
	Trailer     string     `json:"trailer" db:"trailer"`
	Video       string     `json:"video" db:"video"`
	Year        string     `json:"year" db:"year"`
	Limit       int        `json:"limit" db:"age_limit"`
	Genre       string     `json:"genre" db:"genre"`
	Duration    string     `json:"duration" db:"duration"`
	IsSeries    bool       `json:"isSeries" db:"is_series"`
	Views       int64      `json:"views" db:"views"`
	LastViewed  *time.Time `json:"lastViewed" db:"last_viewed"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// CreateMovieRequest тело запроса на создание фильма. Обязателен только title.
type CreateMovieRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"desc"`
	Img         string `json:"img"`
	ImgTitle    string `json:"imgTitle"`
	ImgSm       string `json:"imgSm"`
	Trailer     string `json:"trailer"`
	Video       string `json:"video"`
	Year        string `json:"year"`
	Limit       int    `json:"limit" validate:"gte=0"`
	Genre       string `json:"genre"`
	Duration    string `json:"duration"`
	IsSeries    bool   `json:"isSeries"`
}

// MoviePatch частичное обновление: nil означает "не менять".
type MoviePatch struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"desc,omitempty"`
	Img         *string `json:"img,omitempty"`
	ImgTitle    *string `json:"imgTitle,omitempty"`
	ImgSm       *string `json:"imgSm,omitempty"`
	Trailer     *string `json:"trailer,omitempty"`
	Video       *string `json:"video,omitempty"`
	Year        *string `json:"year,omitempty"`
	Limit       *int    `json:"limit,omitempty" validate:"omitempty,gte=0"`
	Genre       *string `json:"genre,omitempty"`
	Duration    *string `json:"duration,omitempty"`
	IsSeries    *bool   `json:"isSeries,omitempty"`
}

// Apply переносит заданные поля патча в фильм.
func (p MoviePatch) Apply(m *Movie) {
	setString(&m.Title, p.Title)
	setString(&m.Description, p.Description)
	setString(&m.Img, p.Img)
	setString(&m.ImgTitle, p.ImgTitle)
	setString(&m.ImgSm, p.ImgSm)
	setString(&m.Trailer, p.Trailer)
	setString(&m.Video, p.Video)
	setString(&m.Year, p.Year)
	setString(&m.Genre, p.Genre)
	setString(&m.Duration, p.Duration)
	if p.Limit != nil {
		m.Limit = *p.Limit
	}
	if p.IsSeries != nil {
		m.IsSeries = *p.IsSeries
	}
}

// IncrementViewsRequest тело POST /movies/increment-views
type IncrementViewsRequest struct {
	MovieID     string `json:"movieId"`
	IncrementBy *int64 `json:"incrementBy,omitempty"`
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
