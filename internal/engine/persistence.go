package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/celerix-dev/celerix-catalog/pkg/listview"
)

// Persistence handles the disk I/O for the MemStore, one JSON array per collection.
type Persistence struct {
	DataDir string
	mu      sync.Mutex // Protects concurrent writes to the filesystem
	written map[string]uint64
	log     *zap.Logger
}

// NewPersistence initializes a persistence handler.
func NewPersistence(dir string, log *zap.Logger) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Persistence{
		DataDir: dir,
		written: make(map[string]uint64),
		log:     log,
	}, nil
}

// SaveCollection writes a collection atomically. A version older than the
// last one written is skipped.
func (p *Persistence) SaveCollection(collection string, version uint64, records []listview.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if version != 0 && version <= p.written[collection] {
		return nil
	}

	filePath := filepath.Join(p.DataDir, collection+".json")
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		p.log.Error("marshal collection", zap.String("collection", collection), zap.Error(err))
		return err
	}

	if err := os.WriteFile(tempPath, bytes, 0o644); err != nil {
		p.log.Error("write collection", zap.String("path", tempPath), zap.Error(err))
		return err
	}

	// Rename is atomic: readers see either the old file or the new one.
	if err := os.Rename(tempPath, filePath); err != nil {
		p.log.Error("rename collection", zap.String("path", filePath), zap.Error(err))
		return err
	}
	if version != 0 {
		p.written[collection] = version
	}
	return nil
}

// LoadAll returns every collection found in the data directory.
func (p *Persistence) LoadAll() (map[string][]listview.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	all := make(map[string][]listview.Record)

	files, err := os.ReadDir(p.DataDir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		collection := strings.TrimSuffix(file.Name(), ".json")

		content, err := os.ReadFile(filepath.Join(p.DataDir, file.Name()))
		if err != nil {
			p.log.Warn("skipping unreadable collection file", zap.String("file", file.Name()), zap.Error(err))
			continue
		}

		var records []listview.Record
		if err := json.Unmarshal(content, &records); err != nil {
			p.log.Warn("skipping corrupt collection file", zap.String("file", file.Name()), zap.Error(err))
			continue
		}
		all[collection] = records
	}
	return all, nil
}
