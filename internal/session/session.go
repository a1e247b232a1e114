// Package session хранит серверные сессии: связку непрозрачного
// идентификатора с выданным токеном и снимком пользователя.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/user-accounts/internal/models"
)

const keyPrefix = "session:"

// ErrSessionNotFound сессии нет или она истекла.
var ErrSessionNotFound = errors.New("session not found")

// Session данные, сохранённые при входе.
type Session struct {
	ID    string          `json:"-"`
	Token string          `json:"token"`
	User  models.Snapshot `json:"user"`
}

// KV хранилище ключ/значение, которым пользуется Store.
type KV interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Store хранилище сессий с фиксированным временем жизни.
type Store struct {
	kv    KV
	ttl   time.Duration
	newID func() string
}

// NewStore создаёт Store поверх kv.
func NewStore(kv KV, ttl time.Duration) *Store {
	return &Store{
		kv:    kv,
		ttl:   ttl,
		newID: uuid.NewString,
	}
}

// TTL время жизни сессий.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create сохраняет новую сессию и возвращает её идентификатор.
func (s *Store) Create(ctx context.Context, token string, user models.Snapshot) (string, error) {
	const op = "session.Create"
	id := s.newID()
	if err := s.kv.Set(ctx, keyPrefix+id, Session{Token: token, User: user}, s.ttl); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Read возвращает сессию по идентификатору.
func (s *Store) Read(ctx context.Context, id string) (*Session, error) {
	const op = "session.Read"
	if id == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	}
	var sess Session
	found, err := s.kv.Get(ctx, keyPrefix+id, &sess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	}
	sess.ID = id
	return &sess, nil
}

// Destroy удаляет сессию. Удаление отсутствующей сессии не ошибка.
func (s *Store) Destroy(ctx context.Context, id string) error {
	const op = "session.Destroy"
	if id == "" {
		return nil
	}
	if err := s.kv.Invalidate(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
