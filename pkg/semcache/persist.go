package semcache

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// The cache persists as a pair of files that must describe the same
// entries in the same order: a JSON array of entries and a binary matrix
// of their embeddings. The matrix is a count and dimension header followed
// by count*dim little-endian float32 values, row per entry.
const (
	entriesFile = "entries.json"
	matrixFile  = "embeddings.bin"
	lockFile    = "cache.lock"
)

// load reads the persisted pair. Any inconsistency between the two files
// starts the cache empty with a warning instead of failing startup.
func (c *Cache) load() error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", c.dir, err)
	}

	lock := flock.New(filepath.Join(c.dir, lockFile))
	if err := lock.RLock(); err != nil {
		return fmt.Errorf("locking cache directory %s: %w", c.dir, err)
	}
	defer lock.Unlock()

	entries, entriesErr := readEntries(filepath.Join(c.dir, entriesFile))
	vecs, dim, matrixErr := readMatrix(filepath.Join(c.dir, matrixFile))

	missing := errors.Is(entriesErr, os.ErrNotExist) && errors.Is(matrixErr, os.ErrNotExist)
	if missing {
		return nil
	}

	switch {
	case entriesErr != nil:
		c.logger.Warn("semantic cache entries unreadable, starting empty",
			zap.String("dir", c.dir), zap.Error(entriesErr))
		return nil
	case matrixErr != nil:
		c.logger.Warn("semantic cache matrix unreadable, starting empty",
			zap.String("dir", c.dir), zap.Error(matrixErr))
		return nil
	case len(entries) != len(vecs):
		c.logger.Warn("semantic cache files out of lockstep, starting empty",
			zap.String("dir", c.dir),
			zap.Int("entries", len(entries)),
			zap.Int("vectors", len(vecs)),
		)
		return nil
	}

	c.entries = entries
	c.vecs = vecs
	c.dim = dim

	c.logger.Info("semantic cache loaded",
		zap.String("dir", c.dir),
		zap.Int("entries", len(entries)),
		zap.Int("dimension", dim),
	)

	return nil
}

// saveLocked writes both files under the directory lock. Each file is
// written to a temp name and renamed so a crash mid-save leaves the
// previous pair intact. Callers must hold c.mu.
func (c *Cache) saveLocked() error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", c.dir, err)
	}

	lock := flock.New(filepath.Join(c.dir, lockFile))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking cache directory %s: %w", c.dir, err)
	}
	defer lock.Unlock()

	if err := writeEntries(filepath.Join(c.dir, entriesFile), c.entries); err != nil {
		return err
	}
	if err := writeMatrix(filepath.Join(c.dir, matrixFile), c.vecs, c.dim); err != nil {
		return err
	}

	c.logger.Debug("semantic cache saved",
		zap.String("dir", c.dir),
		zap.Int("entries", len(c.entries)),
	)

	return nil
}

func readEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return entries, nil
}

func writeEntries(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache entries: %w", err)
	}
	return writeAtomic(path, data)
}

func readMatrix(path string) ([][]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var header struct {
		Count uint32
		Dim   uint32
	}
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return nil, 0, fmt.Errorf("reading matrix header from %s: %w", path, err)
	}

	count, dim := int(header.Count), int(header.Dim)
	if count > 0 && dim == 0 {
		return nil, 0, fmt.Errorf("matrix %s declares %d rows of dimension zero", path, count)
	}

	vecs := make([][]float32, count)
	row := make([]byte, dim*4)
	for i := range vecs {
		if _, err := io.ReadFull(f, row); err != nil {
			return nil, 0, fmt.Errorf("reading matrix row %d from %s: %w", i, path, err)
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(row[j*4:]))
		}
		vecs[i] = vec
	}

	// A longer file than the header declares means the pair is from two
	// different saves.
	if extra, err := f.Read(make([]byte, 1)); err != io.EOF || extra != 0 {
		return nil, 0, fmt.Errorf("matrix %s has trailing data beyond %d rows", path, count)
	}

	return vecs, dim, nil
}

func writeMatrix(path string, vecs [][]float32, dim int) error {
	buf := make([]byte, 8+len(vecs)*dim*4)
	binary.LittleEndian.PutUint32(buf[0:], uint32(len(vecs)))
	binary.LittleEndian.PutUint32(buf[4:], uint32(dim))

	off := 8
	for _, vec := range vecs {
		for _, x := range vec {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(x))
			off += 4
		}
	}

	return writeAtomic(path, buf)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
