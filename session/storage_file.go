package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

const storageFileName = "session.json"

// FileStorage persists the session keys as a small JSON object in the
// configured data folder. It is the process-restart equivalent of the
// dashboard's browser storage.
type FileStorage struct {
	path string
	lock sync.Mutex
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a FileStorage rooted at dataFolder. The folder is
// created if it does not exist; the file itself is created lazily on the
// first Set.
func NewFileStorage(dataFolder string) (*FileStorage, error) {
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStorage] failed to create data folder")
	}
	return &FileStorage{path: filepath.Join(dataFolder, storageFileName)}, nil
}

func (fs *FileStorage) Get(key string) (string, bool, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	values, err := fs.read()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

func (fs *FileStorage) Set(key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	values, err := fs.read()
	if err != nil {
		return err
	}
	values[key] = value
	return fs.write(values)
}

func (fs *FileStorage) Delete(key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	values, err := fs.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return fs.write(values)
}

func (fs *FileStorage) read() (map[string]string, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStorage] read failed")
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "[FileStorage] corrupt storage file")
	}
	return values, nil
}

func (fs *FileStorage) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "[FileStorage] marshal failed")
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStorage] write failed")
	}
	return nil
}
