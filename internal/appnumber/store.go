// Package appnumber хранит номер заявки AVATS в локальном файле,
// чтобы после неожиданного редиректа или перезапуска можно было продолжить анкету.
package appnumber

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("номер заявки не сохранен")

type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения %s: %w", s.Path, err)
	}

	number := strings.TrimSpace(string(data))
	if number == "" {
		return "", ErrNotFound
	}
	return number, nil
}

// Save записывает номер атомарно: во временный файл рядом и затем rename.
func (s *FileStore) Save(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return fmt.Errorf("пустой номер заявки")
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".appnumber-*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(number + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи номера: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия временного файла: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("ошибка сохранения %s: %w", s.Path, err)
	}
	return nil
}
