// Package postgres реализует хранилище пользователей в PostgreSQL.
//
// Схема создаётся миграциями golang-migrate, порядок вставки задаётся
// колонкой seq.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/user-accounts/internal/models"
	"github.com/magabrotheeeer/user-accounts/internal/storage"
)

const uniqueViolation = "23505"

const userColumns = `uid, username, email, gender, password_hash, profile_pic, documents`

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// Create сохраняет нового пользователя, uid генерирует база.
func (s *Storage) Create(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.postgres.Create"

	docs := user.Documents
	if docs == nil {
		docs = []string{}
	}
	docsJSON, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO users (username, email, gender, password_hash, profile_pic, documents)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.Gender, user.Password, user.ProfilePic, docsJSON,
	).Scan(&user.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	user.Documents = docs
	return &user, nil
}

// FindByID возвращает пользователя по uid.
func (s *Storage) FindByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.postgres.FindByID"
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	return s.queryOne(ctx, op, query, id)
}

// FindByUsernameOrEmail возвращает первого по порядку вставки пользователя
// с совпадающим username или email.
func (s *Storage) FindByUsernameOrEmail(ctx context.Context, value string) (*models.User, error) {
	const op = "storage.postgres.FindByUsernameOrEmail"
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE username = $1 OR email = $1
			  ORDER BY seq
			  LIMIT 1`
	return s.queryOne(ctx, op, query, value)
}

// FindByEmail возвращает пользователя по почте.
func (s *Storage) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.FindByEmail"
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.queryOne(ctx, op, query, email)
}

// Update меняет только переданные поля.
func (s *Storage) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	const op = "storage.postgres.Update"
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	query := `UPDATE users
			  SET username = COALESCE($2, username),
			      email = COALESCE($3, email),
			      gender = COALESCE($4, gender),
			      password_hash = COALESCE($5, password_hash)
			  WHERE uid = $1
			  RETURNING ` + userColumns
	return s.queryOne(ctx, op, query, id, upd.Username, upd.Email, upd.Gender, upd.Password)
}

// Delete удаляет пользователя и возвращает удалённую запись.
func (s *Storage) Delete(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.postgres.Delete"
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	query := `DELETE FROM users WHERE uid = $1 RETURNING ` + userColumns
	return s.queryOne(ctx, op, query, id)
}

// List возвращает всех пользователей в порядке вставки.
func (s *Storage) List(ctx context.Context) ([]models.User, error) {
	const op = "storage.postgres.List"
	rows, err := s.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (s *Storage) queryOne(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		u          models.User
		profilePic sql.NullString
		docsJSON   []byte
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Gender, &u.Password, &profilePic, &docsJSON); err != nil {
		return nil, err
	}
	if profilePic.Valid {
		u.ProfilePic = &profilePic.String
	}
	u.Documents = []string{}
	if len(docsJSON) > 0 {
		if err := json.Unmarshal(docsJSON, &u.Documents); err != nil {
			return nil, err
		}
	}
	return &u, nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrEmailTaken
	}
	return err
}
