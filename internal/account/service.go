// Package account реализует регистрацию, вход и управление учетными записями.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"flixxit-service/internal/domain"
	"flixxit-service/internal/store"
	"flixxit-service/pkg/auth"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// newestUsersLimit сколько пользователей отдает GET /users?new=true
const newestUsersLimit = 5

const (
	msgFieldsRequired   = "All fields are required: username, email, and password"
	msgInvalidEmail     = "Please provide a valid email address"
	msgUsernameTooShort = "Username must be at least 3 characters long"
	msgUsernameTooLong  = "Username must be at most 50 characters long"
	msgPasswordTooShort = "Password must be at least 6 characters long"
	msgPasswordTooLong  = "Password must be at most 72 characters long"
	msgWrongCredentials = "Wrong email or password!"
	msgAdminDenied      = "Unauthorized"
	msgUserNotFound     = "User not found"
)

// Service бизнес-логика учетных записей.
type Service struct {
	users    store.UserStore
	tokens   auth.TokenManager
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService создает сервис учетных записей.
func NewService(users store.UserStore, tokens auth.TokenManager, validate *validator.Validate, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		validate: validate,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// fieldMessage переводит ошибки валидатора в сообщения для клиента.
// Порядок проверок: email, username, password.
func fieldMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request payload"
	}
	failed := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		failed[fe.Field()] = fe.Tag()
	}
	if _, ok := failed["Email"]; ok {
		return msgInvalidEmail
	}
	if tag, ok := failed["Username"]; ok {
		if tag == "max" {
			return msgUsernameTooLong
		}
		return msgUsernameTooShort
	}
	if tag, ok := failed["Password"]; ok {
		if tag == "max" {
			return msgPasswordTooLong
		}
		return msgPasswordTooShort
	}
	return "Validation failed: " + verrs.Error()
}

// conflictError возвращает ошибку Conflict или nil, если err не о дубликате.
func conflictError(err error) error {
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		return domain.NewError(domain.ErrConflict, "Email already registered")
	case errors.Is(err, store.ErrUsernameTaken):
		return domain.NewError(domain.ErrConflict, "Username already taken")
	}
	return nil
}

// Register создает пользователя. Пароль хранится только в виде bcrypt хэша.
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	req.Username = normalize(req.Username)
	req.Email = normalize(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, domain.NewError(domain.ErrValidation, msgFieldsRequired)
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		s.logger.WarnContext(ctx, "Registration request validation failed", slog.String("error", err.Error()))
		return nil, domain.NewError(domain.ErrValidation, fieldMessage(err))
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if cerr := conflictError(err); cerr != nil {
			s.logger.WarnContext(ctx, "Registration conflict", slog.String("error", err.Error()))
			return nil, cerr
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered successfully", slog.String("userID", user.ID), slog.String("username", user.Username))
	return user.Public(), nil
}

// authenticate общий путь входа. failMsg одинаков для всех отказов.
func (s *Service) authenticate(ctx context.Context, req domain.LoginRequest, failMsg string) (*domain.User, error) {
	email := normalize(req.Email)
	if email == "" || req.Password == "" {
		return nil, domain.NewError(domain.ErrUnauthenticated, failMsg)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.WarnContext(ctx, "Login attempt for non-existent email")
			return nil, domain.NewError(domain.ErrUnauthenticated, failMsg)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.logger.WarnContext(ctx, "Invalid password attempt", slog.String("userID", user.ID))
		return nil, domain.NewError(domain.ErrUnauthenticated, failMsg)
	}
	return user, nil
}

func (s *Service) issue(ctx context.Context, user *domain.User) (*domain.LoginResponse, error) {
	token, err := s.tokens.Generate(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	s.logger.InfoContext(ctx, "User logged in successfully", slog.String("userID", user.ID), slog.Bool("isAdmin", user.IsAdmin))
	return &domain.LoginResponse{User: user.Public(), AccessToken: token}, nil
}

// Login проверяет учетные данные и выдает токен.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.authenticate(ctx, req, msgWrongCredentials)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// AdminLogin как Login, но отказывает не-администраторам тем же сообщением,
// что и при неверном пароле.
func (s *Service) AdminLogin(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.authenticate(ctx, req, msgAdminDenied)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		s.logger.WarnContext(ctx, "Admin login attempt by non-admin user", slog.String("userID", user.ID))
		return nil, domain.NewError(domain.ErrUnauthenticated, msgAdminDenied)
	}
	return s.issue(ctx, user)
}

// Verify возвращает пользователя, которому принадлежит токен.
func (s *Service) Verify(ctx context.Context, id domain.Identity) (*domain.User, error) {
	return s.GetUser(ctx, id.UserID)
}

// GetUser возвращает пользователя без хэша пароля.
func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.NewError(domain.ErrNotFound, msgUserNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user.Public(), nil
}

// UpdateUser частично обновляет учетную запись. Менять можно только свою,
// администратор может любую; isAdmin учитывается только от администратора.
func (s *Service) UpdateUser(ctx context.Context, caller domain.Identity, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	if !caller.CanActOn(userID) {
		return nil, domain.NewError(domain.ErrForbidden, "You can update only your account!")
	}
	if req.Username != nil {
		v := normalize(*req.Username)
		req.Username = &v
	}
	if req.Email != nil {
		v := normalize(*req.Email)
		req.Email = &v
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, domain.NewError(domain.ErrValidation, fieldMessage(err))
	}

	patch := domain.UserPatch{
		Username:   req.Username,
		Email:      req.Email,
		ProfilePic: req.ProfilePic,
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &hashed
	}
	if caller.IsAdmin {
		patch.IsAdmin = req.IsAdmin
	}

	user, err := s.users.Update(ctx, userID, patch)
	if err != nil {
		if cerr := conflictError(err); cerr != nil {
			return nil, cerr
		}
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.NewError(domain.ErrNotFound, msgUserNotFound)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.logger.InfoContext(ctx, "User updated", slog.String("userID", userID), slog.String("by", caller.UserID))
	return user.Public(), nil
}

// DeleteUser удаляет свою учетную запись или любую для администратора.
func (s *Service) DeleteUser(ctx context.Context, caller domain.Identity, userID string) error {
	if !caller.CanActOn(userID) {
		return domain.NewError(domain.ErrForbidden, "You can delete only your account!")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.NewError(domain.ErrNotFound, msgUserNotFound)
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.InfoContext(ctx, "User deleted", slog.String("userID", userID), slog.String("by", caller.UserID))
	return nil
}

// ListUsers список пользователей для администратора; newest отдает пятерку последних.
func (s *Service) ListUsers(ctx context.Context, caller domain.Identity, newest bool) ([]*domain.User, error) {
	if !caller.IsAdmin {
		return nil, domain.NewError(domain.ErrForbidden, "You are not allowed to see all users")
	}
	limit := 0
	if newest {
		limit = newestUsersLimit
	}
	users, err := s.users.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	public := make([]*domain.User, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	return public, nil
}

// Stats количество регистраций по месяцам.
func (s *Service) Stats(ctx context.Context) ([]domain.MonthlyUserStat, error) {
	stats, err := s.users.MonthlyStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return stats, nil
}

// EnsureAdmin создает администратора или, если email уже занят, сбрасывает
// пароль и выставляет isAdmin. Возвращает true, если пользователь создан.
func (s *Service) EnsureAdmin(ctx context.Context, req domain.RegisterRequest) (*domain.User, bool, error) {
	isAdmin := true
	email := normalize(req.Email)
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.validate.Var(req.Password, "required,min=6,max=72"); err != nil {
			return nil, false, domain.NewError(domain.ErrValidation, msgPasswordTooShort)
		}
		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, false, fmt.Errorf("hash password: %w", err)
		}
		promoted, err := s.users.Update(ctx, existing.ID, domain.UserPatch{PasswordHash: &hashed, IsAdmin: &isAdmin})
		if err != nil {
			return nil, false, fmt.Errorf("promote admin: %w", err)
		}
		s.logger.InfoContext(ctx, "Existing user promoted to admin", slog.String("userID", promoted.ID))
		return promoted.Public(), false, nil
	case !errors.Is(err, store.ErrUserNotFound):
		return nil, false, fmt.Errorf("get user by email: %w", err)
	}

	created, err := s.Register(ctx, req)
	if err != nil {
		return nil, false, err
	}
	user, err := s.users.Update(ctx, created.ID, domain.UserPatch{IsAdmin: &isAdmin})
	if err != nil {
		return nil, false, fmt.Errorf("promote admin: %w", err)
	}
	s.logger.InfoContext(ctx, "Admin user created", slog.String("userID", user.ID))
	return user.Public(), true, nil
}
