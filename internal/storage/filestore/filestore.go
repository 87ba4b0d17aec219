// Пакет filestore — blob-хранилище Files Manager на локальном диске.
// Запись и чтение байтов по непрозрачному локатору; корневая
// директория задаётся конфигурацией (FM_FOLDER_PATH).
package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotFound — blob с указанным локатором отсутствует на диске.
var ErrNotFound = errors.New("blob не найден")

// FileStore — управление blob-файлами на диске.
type FileStore struct {
	// baseDir — корневая директория хранения (FM_FOLDER_PATH)
	baseDir string
}

// New создаёт новый FileStore. Проверяет и создаёт директорию
// если она не существует.
func New(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", baseDir, err)
	}

	return &FileStore{baseDir: baseDir}, nil
}

// Save записывает данные под свежесгенерированным локатором (UUID)
// и возвращает локатор. Используется при загрузке нового файла.
func (fs *FileStore) Save(data []byte) (string, error) {
	locator := uuid.NewString()
	if err := fs.Write(locator, data); err != nil {
		return "", err
	}
	return locator, nil
}

// Write записывает данные под указанным локатором, перезаписывая
// существующий blob (повторная обработка производных идемпотентна).
//
// Паттерн: temp файл → запись → fsync → atomic rename.
// Имя temp файла уникально: конкурентные записи одного локатора
// (дублированное задание у двух воркеров) не пересекаются, последний
// rename выигрывает. При ошибке temp файл удаляется.
func (fs *FileStore) Write(locator string, data []byte) error {
	fullPath := filepath.Join(fs.baseDir, locator)

	f, err := os.CreateTemp(fs.baseDir, locator+".*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи данных: %w", err)
	}

	// fsync для гарантии записи на диск
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	// Атомарный rename
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return nil
}

// Read возвращает содержимое blob по локатору.
// Отсутствующий blob — ErrNotFound (расхождение каталога и хранилища).
func (fs *FileStore) Read(locator string) ([]byte, error) {
	fullPath := filepath.Join(fs.baseDir, locator)

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, locator)
		}
		return nil, fmt.Errorf("ошибка чтения blob %s: %w", locator, err)
	}

	return data, nil
}

// Exists проверяет существование blob на диске.
func (fs *FileStore) Exists(locator string) bool {
	fullPath := filepath.Join(fs.baseDir, locator)
	_, err := os.Stat(fullPath)
	return err == nil
}

// BaseDir возвращает путь к корневой директории хранилища.
func (fs *FileStore) BaseDir() string {
	return fs.baseDir
}
