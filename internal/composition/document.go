package composition

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RaduRS/automan-sub000/internal/timing"
)

// Document is a composition as stored on disk.
type Document struct {
	Title           string                  `json:"title,omitempty" yaml:"title,omitempty"`
	Captions        *bool                   `json:"captions,omitempty" yaml:"captions,omitempty"`
	Scenes          []timing.Scene          `json:"scenes" yaml:"scenes"`
	ContinuousAudio *timing.ContinuousAudio `json:"continuousAudio,omitempty" yaml:"continuousAudio,omitempty"`

	dir string
}

// LoadDocument reads a JSON or YAML composition. The format follows the file
// extension; anything other than .yaml or .yml is parsed as JSON.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read composition: %w", err)
	}
	doc, err := ParseDocument(data, isYAML(path))
	if err != nil {
		return nil, fmt.Errorf("composition %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	doc.dir = filepath.Dir(abs)
	return doc, nil
}

// ParseDocument decodes and validates a composition.
func ParseDocument(data []byte, asYAML bool) (*Document, error) {
	var doc Document
	if asYAML {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	} else if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the fields every render needs.
func (d *Document) Validate() error {
	if len(d.Scenes) == 0 {
		return errors.New("composition has no scenes")
	}
	seen := make(map[int]bool, len(d.Scenes))
	for i, s := range d.Scenes {
		if s.ID != 0 {
			if seen[s.ID] {
				return fmt.Errorf("scene %d: duplicate id %d", i, s.ID)
			}
			seen[s.ID] = true
		}
	}
	return nil
}

// Dir returns the directory relative media references resolve against.
func (d *Document) Dir() string { return d.dir }

// SetDir overrides the directory relative references resolve against.
func (d *Document) SetDir(dir string) { d.dir = dir }

// CaptionsEnabled returns the document's caption flag, or def when unset.
func (d *Document) CaptionsEnabled(def bool) bool {
	if d.Captions == nil {
		return def
	}
	return *d.Captions
}

// Save writes the document as JSON or YAML according to path's extension.
func (d *Document) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(d)
	} else {
		data, err = json.MarshalIndent(d, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode composition: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write composition: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
