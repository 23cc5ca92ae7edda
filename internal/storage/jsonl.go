package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tokenScope/internal/model"
)

// JsonlStorage writes token records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

var _ Storage = (*JsonlStorage)(nil)

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// Reset truncates the output file.
func (s *JsonlStorage) Reset() error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, nil, 0o644); err != nil {
		return fmt.Errorf("truncate output file: %w", err)
	}
	return nil
}

func (s *JsonlStorage) ensureDir() error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return nil
}

// PutTokens appends records as JSON lines.
func (s *JsonlStorage) PutTokens(network uint64, records []model.TokenRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.ensureDir(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	name := model.NetworkName(network)
	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(TokenLine{
			Network:     network,
			NetworkName: name,
			Tradable:    record.IsTradable(),
			TokenRecord: record,
		})
		if err != nil {
			return fmt.Errorf("marshal token record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write token record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
