package config

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/pingwatch/internal/domain"
)

type targetEntry struct {
	Description   string `yaml:"description"`
	Type          string `yaml:"type"`
	Target        string `yaml:"target"`
	Port          *int   `yaml:"port"`
	Keyword       string `yaml:"keyword"`
	ExpectKeyword *bool  `yaml:"expect_keyword"`
}

// LoadTargets reads and validates the targets file.
func LoadTargets(path string) ([]domain.TargetSpec, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	specs, err := ParseTargets(data)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return specs, nil
}

// ParseTargets decodes a YAML list of targets. Every invalid entry is
// reported, not only the first one.
func ParseTargets(data []byte) ([]domain.TargetSpec, error) {
	var entries []targetEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("no targets defined")
	}

	var errs error
	seen := make(map[string]bool, len(entries))
	specs := make([]domain.TargetSpec, 0, len(entries))
	for i, e := range entries {
		spec, err := e.toSpec()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if seen[spec.Description] {
			errs = multierr.Append(errs, fmt.Errorf("entry %d: duplicate description %q", i, spec.Description))
			continue
		}
		seen[spec.Description] = true
		specs = append(specs, spec)
	}
	if errs != nil {
		return nil, errs
	}
	return specs, nil
}

func (e targetEntry) toSpec() (domain.TargetSpec, error) {
	spec := domain.TargetSpec{Description: e.Description, Host: e.Target}
	switch domain.CheckKind(e.Type) {
	case domain.KindPing:
		spec.Check = domain.PingCheck{}
	case domain.KindHTTP:
		spec.Check = domain.HTTPCheck{}
	case domain.KindPort:
		if e.Port == nil {
			return spec, fmt.Errorf("%s: port is required for port checks", e.Description)
		}
		spec.Check = domain.PortCheck{Port: *e.Port}
	case domain.KindKeyword:
		if e.ExpectKeyword == nil {
			return spec, fmt.Errorf("%s: expect_keyword is required for keyword checks", e.Description)
		}
		spec.Check = domain.KeywordCheck{Keyword: e.Keyword, ExpectPresent: *e.ExpectKeyword}
	case "":
		return spec, fmt.Errorf("%s: type is required", e.Description)
	default:
		return spec, fmt.Errorf("%s: unknown type %q", e.Description, e.Type)
	}
	return spec, spec.Validate()
}

// FileSource re-reads the targets file on every call.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Targets(ctx context.Context) ([]domain.TargetSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadTargets(f.Path)
}
