package storages

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"
)

const DefaultFileName = "function_code.json"

// JSONStore keeps all records in one indented JSON document.
type JSONStore struct {
	path string
}

var _ Store = new(JSONStore)

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

func (j *JSONStore) Path() string {
	return j.path
}

func (j *JSONStore) Load(ctx context.Context) (Records, error) {
	content, err := os.ReadFile(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return Records{}, nil
	} else if err != nil {
		return nil, err
	}
	records := Records{}
	if len(bytes.TrimSpace(content)) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(content, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", j.path, err)
	}
	return records, nil
}

func (j *JSONStore) Save(ctx context.Context, records Records) error {
	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return err
	}

	unlock, err := j.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	tmpFilePath := j.path + fmt.Sprintf(".%d.tmp", rand.Int64())
	f, err := os.OpenFile(tmpFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(tmpFilePath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpFilePath)
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpFilePath)
		return err
	}

	if err := os.Rename(tmpFilePath, j.path); err != nil {
		os.Remove(tmpFilePath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

func (j *JSONStore) lock(ctx context.Context) (func(), error) {
	lockFilePath := j.path + ".lock"

	const maxRetries = 20
	const baseDelay = 10 * time.Millisecond
	const maxDelay = time.Second

	for attempt := range maxRetries {
		if f, err := os.OpenFile(lockFilePath, os.O_CREATE|os.O_EXCL, 0600); err == nil {
			f.Close()
			return func() {
				os.Remove(lockFilePath)
			}, nil
		} else if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		if attempt < maxRetries-1 {
			delay := min(baseDelay*time.Duration(1<<uint(attempt)), maxDelay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("failed to acquire lock for %s after %d attempts", j.path, maxRetries)
}

func (j *JSONStore) Close() error {
	return nil
}
