package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"
	"go.uber.org/zap"

	"tableflip.dev/nbook/pkg/notebook"
)

// ErrNotebookNotFound is returned by Load for an unknown notebook name.
var ErrNotebookNotFound = errors.New("store: notebook not found")

// documentFile is the file holding a notebook inside its directory.
const documentFile = "notebook.json"

// Persistence defines the persistence contract for notebooks.
type Persistence interface {
	Notebooks(ctx context.Context) []string
	Load(ctx context.Context, name string) (notebook.Document, error)
	Store(name string, d notebook.Document) error
	Delete(name string) error
	Watch(ctx context.Context) (<-chan Event, error)
}

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config, log *zap.Logger) (Persistence, error) {
	if cfg == nil {
		fc, err := LoadConfig()
		if err != nil {
			return nil, err
		}
		cfg = fc
	}
	if log == nil {
		log = zap.NewNop()
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	// No read cache: Watch reports edits made by other processes and the
	// next Load must see them.
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
	}), basePath: basePath, log: log.Named("store")}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
	log      *zap.Logger
}

func (p *persistence) Notebooks(ctx context.Context) []string {
	names := make([]string, 0)
	for key := range p.d.Keys(ctx.Done()) {
		if key == "" {
			continue
		}
		name, err := fromKey(key)
		if err != nil {
			p.log.Warn("skipping undecodable notebook key", zap.String("key", key), zap.Error(err))
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *persistence) Load(ctx context.Context, name string) (notebook.Document, error) {
	if err := ctx.Err(); err != nil {
		return notebook.Document{}, err
	}
	key, err := toKey(name)
	if err != nil {
		return notebook.Document{}, err
	}
	if !p.d.Has(key) {
		return notebook.Document{}, fmt.Errorf("%w: %q", ErrNotebookNotFound, name)
	}
	val, err := p.d.Read(key)
	if err != nil {
		return notebook.Document{}, fmt.Errorf("store: read %q: %w", name, err)
	}
	var d notebook.Document
	if err := json.Unmarshal(val, &d); err != nil {
		return notebook.Document{}, fmt.Errorf("store: decode %q: %w", name, err)
	}
	return d, nil
}

func (p *persistence) Store(name string, d notebook.Document) error {
	key, err := toKey(name)
	if err != nil {
		return err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", name, err)
	}
	if err := p.d.Write(key, data); err != nil {
		return fmt.Errorf("store: write %q: %w", name, err)
	}
	p.log.Debug("notebook stored", zap.String("notebook", name), zap.Int("cells", d.Len()))
	return nil
}

func (p *persistence) Delete(name string) error {
	key, err := toKey(name)
	if err != nil {
		return err
	}
	if !p.d.Has(key) {
		return fmt.Errorf("%w: %q", ErrNotebookNotFound, name)
	}
	return p.d.Erase(key)
}

// A key is the encoded notebook name; each notebook gets its own directory.
func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{key},
		FileName: documentFile,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) != 1 || pathKey.FileName != documentFile {
		return ""
	}
	return pathKey.Path[0]
}

func toKey(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("store: notebook name required")
	}
	return base64.RawURLEncoding.EncodeToString([]byte(name)), nil
}

func fromKey(key string) (string, error) {
	name, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return "", err
	}
	return string(name), nil
}
