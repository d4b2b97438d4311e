package storage

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"betkeeper/internal/interfaces"
	"betkeeper/internal/logger"
	"betkeeper/internal/types"
)

// FileStore persists the bankroll state as a single JSON snapshot.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated snapshot. Each day the previous snapshot is kept
// as a dated backup; backups older than the retention window are
// gzip-compressed.
type FileStore struct {
	mu            sync.Mutex
	path          string
	retentionDays int
}

var _ interfaces.Store = (*FileStore)(nil)

func NewFileStore(path string, retentionDays int) *FileStore {
	return &FileStore{path: path, retentionDays: retentionDays}
}

func (fs *FileStore) Load(ctx context.Context) (*types.BankrollState, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	b, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var raw persistedState
	if err := json.Unmarshal(b, &raw); err != nil {
		// A type error still fills every well-formed field; only a
		// syntactically broken snapshot is a total loss.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			logger.Warn(ctx, "Bankroll snapshot unreadable, starting from defaults", "path", fs.path, "error", err)
			return nil, nil
		}
		logger.Warn(ctx, "Bankroll snapshot has malformed fields, defaulting them", "path", fs.path, "error", err)
	}

	state := &types.BankrollState{
		Profile:      sanitizeProfile(ctx, raw.Profile),
		Transactions: decodeTransactions(ctx, raw.Transactions),
	}
	return state, nil
}

func (fs *FileStore) Save(ctx context.Context, state *types.BankrollState) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(fs.path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", types.ErrPersistence, err)
	}

	fs.backupCurrent(ctx)

	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrPersistence, err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("%w: %v", types.ErrPersistence, err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("%w: %v", types.ErrPersistence, err)
	}
	return nil
}

func (fs *FileStore) Close() error {
	return nil
}

// backupCurrent copies today's first snapshot into the backups
// directory before it gets overwritten. Best effort: a failed backup
// never blocks the save.
func (fs *FileStore) backupCurrent(ctx context.Context) {
	if fs.retentionDays <= 0 {
		return
	}
	dst := filepath.Join(fs.backupDir(), time.Now().UTC().Format("2006-01-02")+".json")
	if _, err := os.Stat(dst); err == nil {
		return
	}
	src, err := os.Open(fs.path)
	if err != nil {
		return
	}
	defer src.Close()
	if err := os.MkdirAll(fs.backupDir(), 0o755); err != nil {
		return
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return
	}
	if _, err := io.Copy(out, src); err != nil {
		logger.Warn(ctx, "Snapshot backup failed", "path", dst, "error", err)
	}
	_ = out.Close()
}

// CompressOldBackups gzips dated backups older than the retention
// window. Intended to run once at startup.
func (fs *FileStore) CompressOldBackups() error {
	if fs.retentionDays <= 0 {
		return nil
	}
	root := fs.backupDir()
	cutoff := time.Now().AddDate(0, 0, -fs.retentionDays)
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".json" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 == nil {
			_ = gw.Close()
			_ = out.Close()
			_ = os.Remove(p)
		} else {
			_ = gw.Close()
			_ = out.Close()
		}
		return nil
	})
}

func (fs *FileStore) backupDir() string {
	return filepath.Join(filepath.Dir(fs.path), "backups")
}
