package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"ymurakami/suumowatcher/internal/scraper"
	"ymurakami/suumowatcher/logger"
	apperrors "ymurakami/suumowatcher/pkg/errors"
)

// FileStore keeps one JSON file per criterion name under basePath. Writes
// go through a temp file and rename so a crash mid-write cannot corrupt
// previously-good state. Writes to the same partition are serialized; a
// corrupt or missing file reads as empty history and is never deleted.
type FileStore struct {
	basePath string
	log      *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates the base directory if needed and returns the store.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, apperrors.NewPersistence(basePath, "failed to create data store directory", err)
	}
	return &FileStore{
		basePath: basePath,
		log:      logger.ForComponent("store"),
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// Load reads the criterion's partition. Nothing persisted yet, or a blob
// that fails to parse, both come back as an empty slice.
func (s *FileStore) Load(criterionName string) ([]scraper.Listing, error) {
	data, err := os.ReadFile(s.partitionPath(criterionName))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("criterion", criterionName).Msg("Store file unreadable; treating as empty history")
		}
		return nil, nil
	}

	var listings []scraper.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		s.log.Warn().Err(err).Str("criterion", criterionName).Msg("Store file corrupt; treating as empty history")
		return nil, nil
	}
	return listings, nil
}

// Merge loads existing state, appends newListings, collapses duplicate
// URLs keeping the last-seen instance, and writes the full partition back.
func (s *FileStore) Merge(criterionName string, newListings []scraper.Listing) error {
	if len(newListings) == 0 {
		return nil
	}

	lock := s.partitionLock(criterionName)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.Load(criterionName)
	if err != nil {
		return err
	}

	merged := dedupeByURL(append(existing, newListings...))

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return apperrors.NewPersistence(criterionName, "failed to encode listings", err)
	}

	if err := s.writeAtomic(s.partitionPath(criterionName), data); err != nil {
		return apperrors.NewPersistence(criterionName, "failed to write store file", err)
	}

	s.log.Info().
		Str("criterion", criterionName).
		Int("added", len(newListings)).
		Int("total", len(merged)).
		Msg("Merged listings into store")
	return nil
}

// Close implements ListingStore; the file store holds no open resources.
func (s *FileStore) Close() error {
	return nil
}

// writeAtomic writes data to a temp file in the same directory and renames
// it over the destination.
func (s *FileStore) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.basePath, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *FileStore) partitionPath(criterionName string) string {
	return filepath.Join(s.basePath, sanitizeName(criterionName)+".json")
}

func (s *FileStore) partitionLock(criterionName string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[criterionName]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[criterionName] = lock
	}
	return lock
}

// sanitizeName makes a criterion name safe as a file name.
func sanitizeName(name string) string {
	out := []rune(name)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			out[i] = '_'
		}
	}
	return string(out)
}

// dedupeByURL collapses identity duplicates, keeping the first occurrence
// position and the last-seen field values.
func dedupeByURL(listings []scraper.Listing) []scraper.Listing {
	index := make(map[string]int, len(listings))
	result := make([]scraper.Listing, 0, len(listings))
	for _, l := range listings {
		if i, ok := index[l.URL]; ok {
			result[i] = l
			continue
		}
		index[l.URL] = len(result)
		result = append(result, l)
	}
	return result
}
