package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mikey/orden-vaciado/internal/core"
	"go.uber.org/zap"
)

// FilePublisher writes each document to a file, replacing it atomically so
// readers never see a partial document
type FilePublisher struct {
	path   string
	logger *zap.Logger
}

// NewFilePublisher creates a new file publisher
func NewFilePublisher(path string, logger *zap.Logger) *FilePublisher {
	return &FilePublisher{path: path, logger: logger}
}

// Publish writes order to the configured path
func (p *FilePublisher) Publish(ctx context.Context, order *core.ParsedOrder) error {
	data, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".orden-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write order: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write order: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("failed to publish order: %w", err)
	}

	p.logger.Debug("Published order", zap.String("path", p.path), zap.Bool("ok", order.OK))
	return nil
}

// WriterPublisher writes each document as one JSON line
type WriterPublisher struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterPublisher creates a publisher writing to w, os.Stdout when nil
func NewWriterPublisher(w io.Writer) *WriterPublisher {
	if w == nil {
		w = os.Stdout
	}
	return &WriterPublisher{w: w}
}

func (p *WriterPublisher) Publish(ctx context.Context, order *core.ParsedOrder) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := json.NewEncoder(p.w).Encode(order); err != nil {
		return fmt.Errorf("failed to write order: %w", err)
	}
	return nil
}
