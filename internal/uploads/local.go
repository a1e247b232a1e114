package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local хранит файлы в каталоге на диске.
type Local struct {
	dir string
}

// NewLocal создаёт каталог dir при необходимости.
func NewLocal(dir string) (*Local, error) {
	const op = "uploads.NewLocal"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Local{dir: dir}, nil
}

// Save записывает содержимое r в новый файл и возвращает его имя.
func (l *Local) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	const op = "uploads.Local.Save"
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	name := storedName(originalName)
	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return name, nil
}

// Open открывает файл по имени.
func (l *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	const op = "uploads.Local.Open"
	if err := checkName(name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	f, err := os.Open(filepath.Join(l.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", op, ErrFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f, nil
}

// Delete удаляет файл, отсутствие файла не ошибка.
func (l *Local) Delete(_ context.Context, name string) error {
	const op = "uploads.Local.Delete"
	if err := checkName(name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err := os.Remove(filepath.Join(l.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
