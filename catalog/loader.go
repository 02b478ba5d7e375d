package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/giygas/interactions-api/catalog/entities"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/catalog.json
var defaultCatalog []byte

// ErrUnsupportedFormat is returned for catalog files that are neither JSON nor YAML
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Document is the on-disk layout of a catalog file
type Document struct {
	Drugs []entities.DrugRecord      `json:"drugs" yaml:"drugs"`
	Rules []entities.InteractionRule `json:"rules" yaml:"rules"`
}

// Compile-time check to ensure FileLoader implements CatalogLoader
var _ interfaces.CatalogLoader = (*FileLoader)(nil)

// FileLoader loads the catalog from a file, or from the embedded fixture when Path is empty
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for path; an empty path selects the embedded catalog
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// Source describes where the catalog comes from
func (l *FileLoader) Source() string {
	if l.Path == "" {
		return "embedded"
	}
	return l.Path
}

// Load reads, decodes and validates the catalog
func (l *FileLoader) Load() ([]entities.DrugRecord, []entities.InteractionRule, error) {
	var (
		doc *Document
		err error
	)

	if l.Path == "" {
		doc, err = LoadDefault()
	} else {
		doc, err = LoadFile(l.Path)
	}
	if err != nil {
		return nil, nil, err
	}

	return doc.Drugs, doc.Rules, nil
}

// LoadDefault decodes the embedded catalog
func LoadDefault() (*Document, error) {
	doc, err := decode(defaultCatalog, ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded catalog: %w", err)
	}
	return doc, nil
}

// LoadFile reads a .json, .yaml or .yml catalog file. Files that are not valid
// UTF-8 are decoded as ISO-8859-1.
func LoadFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	if !utf8.Valid(raw) {
		logging.Debug("Catalog file is not UTF-8, decoding as ISO-8859-1", "path", path)
		raw, err = io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw)))
		if err != nil {
			return nil, fmt.Errorf("failed to decode catalog file %s: %w", path, err)
		}
	}

	doc, err := decode(raw, ext)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return doc, nil
}

func decode(raw []byte, ext string) (*Document, error) {
	doc := &Document{}

	switch ext {
	case ".json":
		if err := json.Unmarshal(raw, doc); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, doc); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnsupportedFormat
	}

	report, err := Validate(doc.Drugs, doc.Rules)
	if err != nil {
		return nil, err
	}
	if len(report.UnknownRuleDrugs) > 0 {
		logging.Warn("Interaction rules reference drugs missing from the catalog",
			"count", len(report.UnknownRuleDrugs),
			"names", report.UnknownRuleDrugs,
		)
	}

	return doc, nil
}
