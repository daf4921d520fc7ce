package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupManager writes and inspects copies of the history database.
type BackupManager struct {
	db  *DB
	dir string
	now func() time.Time
}

// NewBackupManager creates a backup manager writing into dir. An empty dir
// means a "backups" directory next to dbPath.
func NewBackupManager(db *DB, dbPath, dir string) *BackupManager {
	if dir == "" {
		dir = filepath.Join(filepath.Dir(dbPath), "backups")
	}
	return &BackupManager{db: db, dir: dir, now: time.Now}
}

// Dir returns the directory backups are written to.
func (bm *BackupManager) Dir() string {
	return bm.dir
}

// BackupInfo describes one backup file.
type BackupInfo struct {
	Path     string    `json:"path" yaml:"path"`
	Name     string    `json:"name" yaml:"name"`
	Size     int64     `json:"size" yaml:"size"`
	ModTime  time.Time `json:"mod_time" yaml:"mod_time"`
	Checksum string    `json:"checksum" yaml:"checksum"`
}

// Backup writes a consistent copy of the database and verifies it. An empty
// name means a timestamped one.
func (bm *BackupManager) Backup(ctx context.Context, name string) (string, error) {
	if err := os.MkdirAll(bm.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	if name == "" {
		name = "history_" + bm.now().UTC().Format("20060102_150405")
	}
	path := filepath.Join(bm.dir, strings.TrimSuffix(name, ".db")+".db")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("backup %s already exists", path)
	}

	// VACUUM INTO takes no exclusive lock, so readers keep going during the copy.
	if _, err := bm.db.Conn().ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	if err := VerifyBackup(ctx, path); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// VerifyBackup checks that path holds an intact, migrated history database.
func VerifyBackup(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("verify backup: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer conn.Close()

	var result string
	if err := conn.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("check backup integrity: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup %s failed integrity check: %s", path, result)
	}

	var tables int
	err = conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'matches'`,
	).Scan(&tables)
	if err != nil {
		return fmt.Errorf("inspect backup schema: %w", err)
	}
	if tables == 0 {
		return fmt.Errorf("backup %s has no match history", path)
	}
	return nil
}

// List returns the backups in the backup directory, newest first.
func (bm *BackupManager) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(bm.dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".db" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(bm.dir, entry.Name())
		checksum, err := fileChecksum(path)
		if err != nil {
			checksum = "unknown"
		}

		backups = append(backups, BackupInfo{
			Path:     path,
			Name:     entry.Name(),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Checksum: checksum,
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].ModTime.After(backups[j].ModTime)
		}
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
