package localcache

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/pkg/errors"
)

var keyRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// FileStore persists each cache key as a JSON file under a directory.
// Writes go through a temp file and a rename so readers never observe a
// partial write. A single process owns the directory.
type FileStore struct {
	dir   string
	mutex sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if !keyRegex.MatchString(key) {
		return "", errors.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStore) Get(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading cache file")
	}
	return data, nil
}

func (s *FileStore) Put(key string, val []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	tmp, err := ioutil.TempFile(s.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating cache temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(val); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing cache temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing cache temp file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "replacing cache file")
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting cache file")
	}
	return nil
}
