package domain

import (
	"time"
)

// User представляет модель пользователя.
type User struct {
	ID           string    `json:"_id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Никогда не отдаем пароль в JSON
	ProfilePic   string    `json:"profilePic" db:"profile_pic"`
	IsAdmin      bool      `json:"isAdmin" db:"is_admin"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Public возвращает копию пользователя без хэша пароля.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}

// UserPatch изменения учетной записи на уровне хранилища; nil поле не трогается.
// Пароль приходит уже хэшированным.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	ProfilePic   *string
	IsAdmin      *bool
}

// Apply переносит заданные поля патча в u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.ProfilePic != nil {
		u.ProfilePic = *p.ProfilePic
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
}

// RegisterRequest для регистрации нового пользователя
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,basicemail"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest для входа пользователя (обычного и администратора)
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse плоский: поля пользователя плюс accessToken, как ожидают клиенты.
type LoginResponse struct {
	*User
	AccessToken string `json:"accessToken"`
}

// UpdateUserRequest частичное обновление пользователя
type UpdateUserRequest struct {
	Username   *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email      *string `json:"email,omitempty" validate:"omitempty,basicemail"`
	Password   *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	ProfilePic *string `json:"profilePic,omitempty"`
	IsAdmin    *bool   `json:"isAdmin,omitempty"` // Применяется только администратором
}

// MonthlyUserStat количество регистраций за календарный месяц (1-12).
type MonthlyUserStat struct {
	Month int `json:"_id" db:"month"`
	Total int `json:"total" db:"total"`
}
