package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// SettingsStore is a small key-value table for app preferences such as
// the window size and the last opened mindmap.
type SettingsStore struct {
	db *DB
}

func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the stored value, or "" and false when the key is unset.
func (s *SettingsStore) Get(key string) (string, bool, error) {
	var v string
	err := s.db.queryRow(`SELECT setting_value FROM app_settings WHERE setting_key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.exec(s.db.dialect.upsert("app_settings", "setting_key", "setting_value"), key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// GetInt returns def when the key is unset or not a number.
func (s *SettingsStore) GetInt(key string, def int) int {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (s *SettingsStore) SetInt(key string, value int) error {
	return s.Set(key, strconv.Itoa(value))
}
