package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
)

// WriteStatementsFile exports a set of statements as indented JSON
func WriteStatementsFile(path string, statements []model.Statement) error {
	data, err := json.MarshalIndent(statements, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal statements: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write statements: %w", err)
	}

	return nil
}

// LoadStatementsFile reads a JSON statement export into a fresh in-memory
// statement store
func LoadStatementsFile(path string) (*MemoryStatementStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statements: %w", err)
	}

	var statements []model.Statement
	if err := json.Unmarshal(data, &statements); err != nil {
		return nil, fmt.Errorf("parse statements: %w", err)
	}

	s := NewMemoryStatementStore()
	if err := s.Append(context.Background(), statements); err != nil {
		return nil, err
	}

	return s, nil
}
