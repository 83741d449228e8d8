package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the session token in a JSON file readable only by the owner
type FileStore struct {
	Path string
}

type savedSession struct {
	Token string `json:"token"`
}

// NewFileStore stores the token at path
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load returns "" when no session has been saved
func (f *FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var s savedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return s.Token, nil
}

func (f *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return err
	}
	data, err := json.Marshal(savedSession{Token: token})
	if err != nil {
		return err
	}
	// Write then rename so a crash never leaves a half-written token
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
