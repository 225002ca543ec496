package store

import (
	"database/sql"
	"errors"
	"strconv"
)

// Setting keys.
const (
	KeyDisplayBoneHand  = "displayBoneHand"
	KeyDisplayDebugDump = "displayDebugDump"
)

// DisplayOptions are the two pass-through display settings.
type DisplayOptions struct {
	DisplayBoneHand  bool `json:"displayBoneHand"`
	DisplayDebugDump bool `json:"displayDebugDump"`
}

// SettingsRepository provides access to key/value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetBool returns the boolean stored under key. Missing keys yield def.
// Values are stored as "1"/"0"; anything strconv.ParseBool accepts is read too.
func (r *SettingsRepository) GetBool(key string, def bool) (bool, error) {
	value, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return def, nil
	}
	return b, nil
}

// SetBool stores a boolean under key.
func (r *SettingsRepository) SetBool(key string, value bool) error {
	v := "0"
	if value {
		v = "1"
	}
	return r.Set(key, v)
}

// DisplayOptions loads the display settings, using defaults for missing keys.
func (r *SettingsRepository) DisplayOptions(defaults DisplayOptions) (DisplayOptions, error) {
	bone, err := r.GetBool(KeyDisplayBoneHand, defaults.DisplayBoneHand)
	if err != nil {
		return defaults, err
	}
	dump, err := r.GetBool(KeyDisplayDebugDump, defaults.DisplayDebugDump)
	if err != nil {
		return defaults, err
	}
	return DisplayOptions{DisplayBoneHand: bone, DisplayDebugDump: dump}, nil
}

// SaveDisplayOptions persists both display settings in one transaction.
func (r *SettingsRepository) SaveDisplayOptions(opts DisplayOptions) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range map[string]bool{
		KeyDisplayBoneHand:  opts.DisplayBoneHand,
		KeyDisplayDebugDump: opts.DisplayDebugDump,
	} {
		v := "0"
		if value {
			v = "1"
		}
		if _, err := stmt.Exec(key, v); err != nil {
			return err
		}
	}

	return tx.Commit()
}
