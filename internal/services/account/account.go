// Package account содержит бизнес-логику жизненного цикла учётной записи:
// регистрацию, вход, чтение, обновление и удаление профиля, выход.
package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-accounts/internal/lib/jwt"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/user-accounts/internal/models"
	"github.com/magabrotheeeer/user-accounts/internal/session"
	"github.com/magabrotheeeer/user-accounts/internal/storage"
)

// UserRepository контракт хранилища пользователей, одинаковый для всех бэкендов.
type UserRepository interface {
	// Create сохраняет пользователя и назначает ему ID.
	Create(ctx context.Context, user models.User) (*models.User, error)
	// FindByID возвращает пользователя по ID.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindByUsernameOrEmail возвращает первого пользователя с совпадающим username или email.
	FindByUsernameOrEmail(ctx context.Context, value string) (*models.User, error)
	// FindByEmail возвращает пользователя по почте.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Update меняет только заданные поля.
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	// Delete удаляет пользователя и возвращает удалённую запись.
	Delete(ctx context.Context, id string) (*models.User, error)
	// List возвращает всех пользователей в порядке вставки.
	List(ctx context.Context) ([]models.User, error)
}

// Hasher хеширует и проверяет пароли.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// SessionStore хранилище серверных сессий.
type SessionStore interface {
	Create(ctx context.Context, token string, user models.Snapshot) (string, error)
	Read(ctx context.Context, id string) (*session.Session, error)
	Destroy(ctx context.Context, id string) error
}

// FileStore хранилище загруженных файлов.
type FileStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
}

// Recorder учитывает события для метрик.
type Recorder interface {
	AuthEvent(event, outcome string)
}

// Upload один загруженный файл.
type Upload struct {
	Name    string
	Content io.Reader
}

// Files вложения формы регистрации.
type Files struct {
	ProfilePic []Upload
	Documents  []Upload
}

// LoginResult результат успешного входа.
type LoginResult struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
	Claims    *jwt.Claims
	User      models.Snapshot
}

// SessionView содержимое серверной сессии.
type SessionView struct {
	Token     string
	ExpiresAt time.Time
	User      models.Snapshot
}

type noopRecorder struct{}

func (noopRecorder) AuthEvent(string, string) {}

// Service оркестрирует операции над учётной записью.
type Service struct {
	users    UserRepository
	hasher   Hasher
	tokens   jwt.Maker
	sessions SessionStore
	files    FileStore
	metrics  Recorder
	validate *validator.Validate
	log      *slog.Logger
}

// NewService создаёт Service. rec может быть nil.
func NewService(log *slog.Logger, users UserRepository, hasher Hasher, tokens jwt.Maker,
	sessions SessionStore, files FileStore, rec Recorder) *Service {
	if rec == nil {
		rec = noopRecorder{}
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		files:    files,
		metrics:  rec,
		validate: newValidator(),
		log:      log,
	}
}

// Register проверяет ввод, сохраняет вложения и создаёт пользователя.
// При любой ошибке после сохранения вложений они удаляются.
func (s *Service) Register(ctx context.Context, draft models.Draft, files Files) (*models.User, error) {
	const op = "account.Register"
	log := s.log.With(slog.String("op", op))

	verr := validateStruct(s.validate, draft)
	if fileErrs := validateFiles(files); len(fileErrs) > 0 {
		if verr == nil {
			verr = &ValidationError{}
		}
		verr.Fields = append(verr.Fields, fileErrs...)
	}
	if verr != nil {
		s.metrics.AuthEvent("register", "invalid")
		return nil, verr
	}

	if _, err := s.users.FindByEmail(ctx, draft.Email); err == nil {
		s.metrics.AuthEvent("register", "conflict")
		return nil, ErrConflict
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(draft.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Username:  draft.Username,
		Email:     draft.Email,
		Gender:    draft.Gender,
		Password:  hash,
		Documents: []string{},
	}

	var saved []string
	cleanup := func() {
		for _, name := range saved {
			if err := s.files.Delete(context.WithoutCancel(ctx), name); err != nil {
				log.Warn("failed to remove upload", slog.String("file", name), sl.Err(err))
			}
		}
	}
	for _, up := range files.ProfilePic {
		name, err := s.files.Save(ctx, up.Name, up.Content)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		saved = append(saved, name)
		user.ProfilePic = &name
	}
	for _, up := range files.Documents {
		name, err := s.files.Save(ctx, up.Name, up.Content)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		saved = append(saved, name)
		user.Documents = append(user.Documents, name)
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		cleanup()
		if errors.Is(err, storage.ErrEmailTaken) {
			s.metrics.AuthEvent("register", "conflict")
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.AuthEvent("register", "success")
	log.Info("user registered", slog.String("user_id", created.ID))
	return created.Public(), nil
}

// Login ищет пользователя по username или email, проверяет пароль,
// выпускает токен и открывает сессию.
func (s *Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	const op = "account.Login"

	if verr := validateStruct(s.validate, loginInput{UsernameOrEmail: identifier, Password: password}); verr != nil {
		return nil, verr
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.metrics.AuthEvent("login", "not_found")
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.hasher.Verify(password, user.Password) {
		s.metrics.AuthEvent("login", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	snap := user.Snapshot()
	sid, err := s.sessions.Create(ctx, token, snap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.AuthEvent("login", "success")
	return &LoginResult{
		Token:     token,
		SessionID: sid,
		ExpiresAt: claims.ExpiresAt.Time,
		Claims:    claims,
		User:      snap,
	}, nil
}

// Authenticate достаёт токен из сессии, а при её отсутствии из bearer,
// и проверяет его. Токен сессии имеет приоритет.
func (s *Service) Authenticate(ctx context.Context, sessionID, bearer string) (*jwt.Claims, error) {
	const op = "account.Authenticate"

	token := ""
	if sessionID != "" {
		sess, err := s.sessions.Read(ctx, sessionID)
		switch {
		case err == nil:
			token = sess.Token
		case errors.Is(err, session.ErrSessionNotFound):
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if token == "" {
		token = bearer
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return claims, nil
}

// Session возвращает снимок пользователя и токен из серверной сессии
// без обращения к хранилищу пользователей.
func (s *Service) Session(ctx context.Context, sessionID string) (*SessionView, error) {
	const op = "account.Session"
	if sessionID == "" {
		return nil, ErrMissingToken
	}

	sess, err := s.sessions.Read(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sess.Token == "" || sess.User.UserID == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.tokens.ParseToken(sess.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return &SessionView{
		Token:     sess.Token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      sess.User,
	}, nil
}

// ListUsers возвращает всех пользователей без хешей паролей.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "account.ListUsers"
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// FindUserByEmail возвращает пользователя по почте без хеша пароля.
func (s *Service) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "account.FindUserByEmail"
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, s.mapRepoError(op, err)
	}
	return user.Public(), nil
}

// GetProfile возвращает пользователя без хеша пароля.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	const op = "account.GetProfile"
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.mapRepoError(op, err)
	}
	return user.Public(), nil
}

// UpdateProfile применяет только заполненные поля, пароль перехешируется.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd models.UserUpdate) (*models.User, error) {
	const op = "account.UpdateProfile"

	upd = normalizeUpdate(upd)
	if verr := validateStruct(s.validate, upd); verr != nil {
		return nil, verr
	}
	if upd.IsEmpty() {
		return s.GetProfile(ctx, userID)
	}

	if upd.Email != nil {
		existing, err := s.users.FindByEmail(ctx, *upd.Email)
		switch {
		case err == nil && existing.ID != userID:
			return nil, ErrConflict
		case err != nil && !errors.Is(err, storage.ErrUserNotFound):
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if upd.Password != nil {
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		upd.Password = &hash
	}

	updated, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		s.metrics.AuthEvent("update", "failure")
		return nil, s.mapRepoError(op, err)
	}
	s.metrics.AuthEvent("update", "success")
	return updated.Public(), nil
}

// DeleteProfile удаляет пользователя и его вложения. Уже выданные токены
// остаются валидными до истечения, но профиль по ним больше не найдётся.
func (s *Service) DeleteProfile(ctx context.Context, userID string) (*models.User, error) {
	const op = "account.DeleteProfile"
	log := s.log.With(slog.String("op", op))

	removed, err := s.users.Delete(ctx, userID)
	if err != nil {
		s.metrics.AuthEvent("delete", "failure")
		return nil, s.mapRepoError(op, err)
	}

	names := append([]string(nil), removed.Documents...)
	if removed.ProfilePic != nil {
		names = append(names, *removed.ProfilePic)
	}
	for _, name := range names {
		if err := s.files.Delete(ctx, name); err != nil {
			log.Warn("failed to remove upload", slog.String("file", name), sl.Err(err))
		}
	}

	s.metrics.AuthEvent("delete", "success")
	log.Info("user deleted", slog.String("user_id", removed.ID))
	return removed.Public(), nil
}

// Logout закрывает сессию. Выданный bearer-токен продолжает действовать до истечения.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	const op = "account.Logout"
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrEmailTaken):
		return ErrConflict
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
