package domain

// Identity кто выполняет запрос. Берется из проверенного токена и явно
// передается в бизнес-логику.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// CanActOn разрешает операции над учетной записью userID: себе или администратору.
func (i Identity) CanActOn(userID string) bool {
	return i.IsAdmin || (i.UserID != "" && i.UserID == userID)
}
