// Package jsonfile реализует хранилище пользователей в одном JSON-файле.
//
// Весь набор пользователей хранится массивом в порядке вставки. Каждая
// изменяющая операция читает файл целиком, меняет его и записывает обратно,
// поэтому все обращения к файлу сериализуются мьютексом хранилища.
// Несколько процессов, пишущих в один файл, не поддерживаются.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/magabrotheeeer/user-accounts/internal/models"
	"github.com/magabrotheeeer/user-accounts/internal/storage"
)

// Storage хранилище пользователей поверх JSON-файла.
type Storage struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// New создаёт хранилище для файла path. Отсутствующий файл считается пустой коллекцией.
func New(path string) (*Storage, error) {
	const op = "storage.jsonfile.New"
	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return &Storage{path: path, now: time.Now}, nil
}

// Create добавляет пользователя в конец коллекции и назначает ему ID.
func (s *Storage) Create(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.jsonfile.Create"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, u := range users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrEmailTaken)
		}
	}

	user.ID = s.nextID(users)
	if user.Documents == nil {
		user.Documents = []string{}
	}
	users = append(users, user)
	if err := s.write(users); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// FindByID возвращает пользователя по ID.
func (s *Storage) FindByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.jsonfile.FindByID"
	return s.findFirst(ctx, op, func(u models.User) bool { return u.ID == id })
}

// FindByUsernameOrEmail возвращает первого в порядке вставки пользователя,
// у которого username или email совпадает со значением.
func (s *Storage) FindByUsernameOrEmail(ctx context.Context, value string) (*models.User, error) {
	const op = "storage.jsonfile.FindByUsernameOrEmail"
	return s.findFirst(ctx, op, func(u models.User) bool {
		return u.Username == value || u.Email == value
	})
}

// FindByEmail возвращает пользователя по почте.
func (s *Storage) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.jsonfile.FindByEmail"
	return s.findFirst(ctx, op, func(u models.User) bool { return u.Email == email })
}

// Update применяет частичное обновление и возвращает обновлённого пользователя.
func (s *Storage) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	const op = "storage.jsonfile.Update"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	idx := -1
	for i, u := range users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if upd.Email != nil {
		for i, u := range users {
			if i != idx && u.Email == *upd.Email {
				return nil, fmt.Errorf("%s: %w", op, storage.ErrEmailTaken)
			}
		}
	}

	upd.Apply(&users[idx])
	if err := s.write(users); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated := users[idx]
	return &updated, nil
}

// Delete удаляет пользователя и возвращает удалённую запись.
func (s *Storage) Delete(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.jsonfile.Delete"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i, u := range users {
		if u.ID != id {
			continue
		}
		rest := append(users[:i:i], users[i+1:]...)
		if err := s.write(rest); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &u, nil
	}
	return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
}

// List возвращает всех пользователей в порядке вставки.
func (s *Storage) List(ctx context.Context) ([]models.User, error) {
	const op = "storage.jsonfile.List"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (s *Storage) findFirst(ctx context.Context, op string, match func(models.User) bool) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	users, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, u := range users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
}

// nextID выдаёт ID из текущего времени в наносекундах, строго больший всех
// существующих. Вызывается под мьютексом.
func (s *Storage) nextID(users []models.User) string {
	id := s.now().UnixNano()
	for _, u := range users {
		existing, err := strconv.ParseInt(u.ID, 10, 64)
		if err == nil && existing >= id {
			id = existing + 1
		}
	}
	return strconv.FormatInt(id, 10)
}

func (s *Storage) read() ([]models.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.User{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return users, nil
}

// write записывает коллекцию во временный файл и атомарно подменяет им основной.
func (s *Storage) write(users []models.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
