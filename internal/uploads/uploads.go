// Package uploads сохраняет загруженные пользователями файлы и выдаёт их по имени.
// Пользователь хранит только имена файлов, сами байты лежат на диске или в MinIO.
package uploads

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrFileNotFound файла с таким именем нет.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidName имя файла содержит путь или пустое.
var ErrInvalidName = errors.New("invalid file name")

// Store хранилище загруженных файлов.
type Store interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// storedName генерирует имя для сохранения, сохраняя расширение исходного файла.
func storedName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return uuid.NewString() + ext
}

// checkName отклоняет имена с разделителями путей.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}
