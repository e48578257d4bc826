// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
)

// Cache files can hold registry passwords and are private to the owner.
const (
	dirMode  = 0o700
	fileMode = 0o600
)

// Dir resolves the base cache directory: AWSCTL_CACHE_DIR when set, else
// awsctl under os.UserCacheDir.  ok is false when neither resolves, which
// leaves the cache disabled.
func Dir() (string, bool) {
	if c := os.Getenv("AWSCTL_CACHE_DIR"); c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "awsctl"), true
	}
	return "", false
}

// Enabled is false only when AWSCTL_CACHE is "0" or "false".
func Enabled() bool {
	switch os.Getenv("AWSCTL_CACHE") {
	case "0", "false":
		return false
	}
	return true
}

// EnsureBaseDir creates the base cache directory.  It returns "" without an
// error when the cache is disabled.
func EnsureBaseDir() (string, error) {
	if !Enabled() {
		return "", nil
	}
	base, ok := Dir()
	if !ok {
		return "", nil
	}
	if err := os.MkdirAll(base, dirMode); err != nil {
		return "", fmt.Errorf("failed to create cache directory %s: %w", base, err)
	}
	return base, nil
}

// Purge removes cache files last written more than maxAge ago.  A maxAge of
// zero or less keeps everything.
func Purge(maxAge time.Duration) error {
	if maxAge <= 0 {
		log.Debug("cache cleaning disabled")
		return nil
	}
	base, ok := Dir()
	if !ok {
		return nil
	}

	cutoff := time.Now().Add(-maxAge)
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil //nolint:nilerr
		}
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warnf("failed to remove cache file %s", path)
			return nil
		}
		log.Debugf("removed cache file %s", path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

// Store is one namespace of the cache such as ecr/login.  Each entry is a
// file named by the SHA-256 of its key, so keys may hold any characters.
type Store struct {
	subdirs []string
}

// NewStore returns the store beneath the given subdirectories of Dir.
func NewStore(subdirs ...string) Store {
	return Store{subdirs: subdirs}
}

// Path returns where key's entry lives.  ok is false when the cache has no
// base directory.
func (s Store) Path(key string) (string, bool) {
	base, ok := Dir()
	if !ok {
		return "", false
	}
	sum := sha256.Sum256([]byte(key))
	parts := append(append([]string{base}, s.subdirs...), hex.EncodeToString(sum[:]))
	return filepath.Join(parts...), true
}

// Get returns the stored data for key with surrounding whitespace trimmed.
func (s Store) Get(key string) ([]byte, bool) {
	if !Enabled() {
		return nil, false
	}
	p, ok := s.Path(key)
	if !ok {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).Debugf("unreadable cache entry %s", p)
		}
		return nil, false
	}
	return bytes.TrimSpace(b), true
}

// Put stores data for key.  The entry is written to a temporary file and
// renamed into place so a concurrent Get never sees half an entry.
func (s Store) Put(key string, data []byte) error {
	if !Enabled() {
		return nil
	}
	p, ok := s.Path(key)
	if !ok {
		return nil
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Delete removes key's entry.  A missing entry is not an error.
func (s Store) Delete(key string) error {
	p, ok := s.Path(key)
	if !ok {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}
