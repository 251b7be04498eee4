// Package artifact persists model generations on local disk.
//
// A generation is a directory holding four gob+gzip objects and a JSON manifest
// with per-object checksums. Generations are written under a temporary name and
// renamed into place; the CURRENT file names the generation being served.
package artifact

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/domain"
	"github.com/kailas-cloud/wisata/internal/model"
)

// Object names inside a generation directory.
const (
	ObjectVectorizer = "vectorizer.gob.gz"
	ObjectMatrix     = "matrix.gob.gz"
	ObjectNeighbors  = "neighbors.gob.gz"
	ObjectIDs        = "ids.gob.gz"
	manifestName     = "manifest.json"
	currentName      = "CURRENT"
	genPrefix        = "gen-"
	tmpSuffix        = ".tmp"
)

// FormatVersion is bumped on incompatible object layout changes.
const FormatVersion = 1

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	SHA256    string `json:"sha256"`
	SizeBytes int64  `json:"size_bytes"`
}

// Manifest is the per-generation index written next to the objects.
type Manifest struct {
	Format  int                   `json:"format"`
	Meta    model.Meta            `json:"meta"`
	Objects map[string]ObjectInfo `json:"objects"`
}

type matrixObject struct {
	Dim     int
	Vectors []model.Vector
}

type idsObject struct {
	IDs        []string
	Categories []string
	Documents  []string
}

// Store reads and writes generations under a base directory.
type Store struct {
	dir    string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewStore creates the base directory if needed.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact dir is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the base directory.
func (s *Store) Dir() string { return s.dir }

// Save writes g as a new generation and points CURRENT at it.
// Readers never observe a partially written generation.
func (s *Store) Save(ctx context.Context, g *model.Generation) (Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := g.Meta()
	final := filepath.Join(s.dir, genPrefix+meta.Version)
	tmp := final + tmpSuffix
	if _, err := os.Stat(final); err == nil {
		return Manifest{}, fmt.Errorf("generation %s already exists", meta.Version)
	}
	if err := os.RemoveAll(tmp); err != nil {
		return Manifest{}, fmt.Errorf("clear temp dir: %w", err)
	}
	if err := os.MkdirAll(tmp, 0o750); err != nil {
		return Manifest{}, fmt.Errorf("create temp dir: %w", err)
	}

	m, err := s.writeObjects(ctx, tmp, g)
	if err != nil {
		_ = os.RemoveAll(tmp)
		return Manifest{}, err
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.RemoveAll(tmp)
		return Manifest{}, fmt.Errorf("publish generation: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, currentName), []byte(meta.Version+"\n")); err != nil {
		return Manifest{}, fmt.Errorf("update %s: %w", currentName, err)
	}

	s.logger.Info("model generation saved",
		zap.String("version", meta.Version),
		zap.Int("documents", meta.Documents),
		zap.Int("vocabulary", meta.Vocabulary),
	)
	return m, nil
}

func (s *Store) writeObjects(ctx context.Context, dir string, g *model.Generation) (Manifest, error) {
	rows := g.Rows()
	ids := idsObject{
		IDs:        make([]string, len(rows)),
		Categories: make([]string, len(rows)),
		Documents:  make([]string, len(rows)),
	}
	matrix := matrixObject{Dim: g.Vectorizer().Dim(), Vectors: make([]model.Vector, len(rows))}
	for i, r := range rows {
		ids.IDs[i], ids.Categories[i], ids.Documents[i] = r.ID, r.Category, r.Document
		matrix.Vectors[i] = r.Vector
	}

	objects := []struct {
		name string
		data any
	}{
		{ObjectVectorizer, g.Vectorizer().State()},
		{ObjectMatrix, matrix},
		{ObjectNeighbors, g.Index().State()},
		{ObjectIDs, ids},
	}

	m := Manifest{Format: FormatVersion, Meta: g.Meta(), Objects: make(map[string]ObjectInfo, len(objects))}
	for _, o := range objects {
		if err := ctx.Err(); err != nil {
			return Manifest{}, err
		}
		info, err := writeObject(filepath.Join(dir, o.name), o.data)
		if err != nil {
			return Manifest{}, fmt.Errorf("write %s: %w", o.name, err)
		}
		m.Objects[o.name] = info
	}

	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Manifest{}, fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName), raw, 0o640); err != nil {
		return Manifest{}, fmt.Errorf("write manifest: %w", err)
	}
	return m, nil
}

// Current returns the version CURRENT points at.
func (s *Store) Current() (string, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, currentName))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: no generation built yet", domain.ErrArtifactMissing)
	}
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", domain.ErrArtifactMissing, currentName, err)
	}
	v := strings.TrimSpace(string(raw))
	if v == "" {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrArtifactMissing, currentName)
	}
	return v, nil
}

// Load reads the current generation. Every failure wraps domain.ErrArtifactMissing.
func (s *Store) Load(ctx context.Context) (*model.Generation, error) {
	version, err := s.Current()
	if err != nil {
		return nil, err
	}
	g, err := s.LoadVersion(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("%w: generation %s: %v", domain.ErrArtifactMissing, version, err)
	}
	return g, nil
}

// LoadVersion reads one generation by version.
func (s *Store) LoadVersion(ctx context.Context, version string) (*model.Generation, error) {
	dir := filepath.Join(s.dir, genPrefix+version)
	raw, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Format != FormatVersion {
		return nil, fmt.Errorf("unsupported artifact format %d", m.Format)
	}

	var (
		vzState  model.VectorizerState
		matrix   matrixObject
		idxState model.IndexState
		ids      idsObject
	)
	targets := []struct {
		name string
		dst  any
	}{
		{ObjectVectorizer, &vzState},
		{ObjectMatrix, &matrix},
		{ObjectNeighbors, &idxState},
		{ObjectIDs, &ids},
	}
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, ok := m.Objects[t.name]
		if !ok {
			return nil, fmt.Errorf("manifest lists no %s", t.name)
		}
		if err := readObject(filepath.Join(dir, t.name), info, t.dst); err != nil {
			return nil, fmt.Errorf("read %s: %w", t.name, err)
		}
	}

	n := len(ids.IDs)
	if len(ids.Categories) != n || len(ids.Documents) != n || len(matrix.Vectors) != n || idxState.Rows != n {
		return nil, fmt.Errorf("count mismatch: ids=%d matrix=%d index=%d", n, len(matrix.Vectors), idxState.Rows)
	}
	if m.Meta.Documents != n {
		return nil, fmt.Errorf("count mismatch: manifest=%d ids=%d", m.Meta.Documents, n)
	}

	vz, err := model.RestoreVectorizer(vzState)
	if err != nil {
		return nil, err
	}
	if matrix.Dim != vz.Dim() {
		return nil, fmt.Errorf("dimension mismatch: matrix=%d vocabulary=%d", matrix.Dim, vz.Dim())
	}
	idx, err := model.RestoreIndex(matrix.Vectors, idxState)
	if err != nil {
		return nil, err
	}
	rows := make([]model.Row, n)
	for i := range rows {
		rows[i] = model.Row{ID: ids.IDs[i], Category: ids.Categories[i], Document: ids.Documents[i], Vector: matrix.Vectors[i]}
	}
	return model.Assemble(m.Meta, rows, vz, idx)
}

// Versions lists published generations, oldest first.
func (s *Store) Versions() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list artifact dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || !strings.HasPrefix(name, genPrefix) || strings.HasSuffix(name, tmpSuffix) {
			continue
		}
		out = append(out, strings.TrimPrefix(name, genPrefix))
	}
	sort.Strings(out)
	return out, nil
}

// Prune removes all but the newest keep generations and any abandoned temp dirs.
// The current generation is never removed.
func (s *Store) Prune(keep int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		keep = 1
	}
	current, _ := s.Current()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list artifact dir: %w", err)
	}
	var removed []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), genPrefix) && strings.HasSuffix(e.Name(), tmpSuffix) {
			if err := os.RemoveAll(filepath.Join(s.dir, e.Name())); err != nil {
				return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
			}
		}
	}

	versions, err := s.Versions()
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(versions)-keep; i++ {
		v := versions[i]
		if v == current {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.dir, genPrefix+v)); err != nil {
			return removed, fmt.Errorf("remove generation %s: %w", v, err)
		}
		removed = append(removed, v)
	}
	if len(removed) > 0 {
		s.logger.Info("pruned model generations", zap.Strings("versions", removed))
	}
	return removed, nil
}

func writeObject(path string, v any) (ObjectInfo, error) {
	var raw bytes.Buffer
	gzw := gzip.NewWriter(&raw)
	if err := gob.NewEncoder(gzw).Encode(v); err != nil {
		return ObjectInfo{}, fmt.Errorf("encode: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("finalize compression: %w", err)
	}
	sum := sha256.Sum256(raw.Bytes())
	if err := os.WriteFile(path, raw.Bytes(), 0o640); err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{SHA256: hex.EncodeToString(sum[:]), SizeBytes: int64(raw.Len())}, nil
}

func readObject(path string, info ObjectInfo, dst any) error {
	raw, err := os.ReadFile(path) //nolint:gosec // path is built from the artifact dir and a fixed object name
	if err != nil {
		return err
	}
	sum := sha256.Sum256(raw)
	if got := hex.EncodeToString(sum[:]); got != info.SHA256 {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", info.SHA256, got)
	}
	gzr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	defer func() { _ = gzr.Close() }()
	if err := gob.NewDecoder(gzr).Decode(dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + tmpSuffix
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
