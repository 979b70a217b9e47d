package storagefakes

import (
	"sync"

	"github.com/lightingmap/go-client/session"
)

var _ session.Storage = (*FakeStorage)(nil)

type FakeStorage struct {
	values map[string]string
	lock   sync.RWMutex

	SetErr    error // returned from Set when non-nil
	GetErr    error // returned from Get when non-nil
	DeleteErr error // returned from Delete when non-nil
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		values: make(map[string]string),
	}
}

func (fs *FakeStorage) Get(key string) (string, bool, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	if fs.GetErr != nil {
		return "", false, fs.GetErr
	}
	value, ok := fs.values[key]
	return value, ok, nil
}

func (fs *FakeStorage) Set(key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.SetErr != nil {
		return fs.SetErr
	}
	fs.values[key] = value
	return nil
}

func (fs *FakeStorage) Delete(key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.DeleteErr != nil {
		return fs.DeleteErr
	}
	delete(fs.values, key)
	return nil
}

// Len reports how many keys are currently stored.
func (fs *FakeStorage) Len() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return len(fs.values)
}
