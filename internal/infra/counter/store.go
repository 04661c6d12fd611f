// Package counter persists the running total of approved payments.
// Two artifacts are kept: an append-only text log of approved events and a
// small JSON counter file overwritten on each update.
package counter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// FileStore implements a durable counter over two local files. All
// read-modify-write cycles are serialized by a single mutex; concurrent
// webhook deliveries must not lose updates.
type FileStore struct {
	mu          sync.Mutex
	counterPath string
	logPath     string
}

// NewFileStore creates a store writing to the given paths. Parent
// directories are created on demand.
func NewFileStore(counterPath, logPath string) *FileStore {
	return &FileStore{
		counterPath: counterPath,
		logPath:     logPath,
	}
}

// Read returns the persisted counter, or a zero counter if the file does
// not exist yet.
func (s *FileStore) Read() (domain.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readLocked()
}

func (s *FileStore) readLocked() (domain.Counter, error) {
	var c domain.Counter

	data, err := os.ReadFile(s.counterPath)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("read counter file: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		// A corrupt counter file should not wedge webhook processing.
		return domain.Counter{}, nil
	}
	return c, nil
}

// Write replaces the counter file atomically (temp file + rename).
func (s *FileStore) Write(c domain.Counter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeLocked(c)
}

func (s *FileStore) writeLocked(c domain.Counter) error {
	if err := os.MkdirAll(filepath.Dir(s.counterPath), 0o755); err != nil {
		return fmt.Errorf("create counter dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal counter: %w", err)
	}

	tmp := s.counterPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write counter temp file: %w", err)
	}
	if err := os.Rename(tmp, s.counterPath); err != nil {
		return fmt.Errorf("replace counter file: %w", err)
	}
	return nil
}

// RecordApproved appends an entry to the approved-payments log and folds
// the amount into the counter in one serialized step. Returns the updated
// counter.
func (s *FileStore) RecordApproved(paymentID string, amount float64) (domain.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	if err := os.MkdirAll(filepath.Dir(s.logPath), 0o755); err != nil {
		return domain.Counter{}, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(s.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return domain.Counter{}, fmt.Errorf("open payments log: %w", err)
	}
	line := fmt.Sprintf("%s | payment_id=%s | amount=%.2f | status=approved\n",
		now.Format(timeLayout), paymentID, amount)
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return domain.Counter{}, fmt.Errorf("append payments log: %w", err)
	}
	if err := f.Close(); err != nil {
		return domain.Counter{}, fmt.Errorf("close payments log: %w", err)
	}

	c, err := s.readLocked()
	if err != nil {
		return domain.Counter{}, err
	}
	c.Total += amount
	c.Count++
	c.LastUpdate = now.Format(timeLayout)

	if err := s.writeLocked(c); err != nil {
		return domain.Counter{}, err
	}
	return c, nil
}
