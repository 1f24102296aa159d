package content

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogueFile struct {
	Lessons []Lesson `yaml:"lessons"`
}

// Parse decodes a YAML lesson catalogue and validates every lesson.
func Parse(r io.Reader) ([]Lesson, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f catalogueFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("content: decode: %w", err)
	}
	seen := map[string]bool{}
	for _, l := range f.Lessons {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("%w: duplicate lesson id %q", ErrInvalid, l.ID)
		}
		seen[l.ID] = true
	}
	return f.Lessons, nil
}

// LoadFile reads a YAML lesson catalogue from disk.
func LoadFile(path string) ([]Lesson, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("content: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}
