// Package skill holds the per-skill tables every engine dispatches on:
// comparison weights, live threshold bands, importance weights and the
// raw-analysis extraction rules used by the normalizer.
package skill

import (
	_ "embed"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed skills.yaml
var builtinTable []byte

// Type names a skill, e.g. "Public Speaking".
type Type string

// Band is a {minimum, optimal} pair on the metric's native scale.
type Band struct {
	Minimum float64 `yaml:"minimum" json:"minimum"`
	Optimal float64 `yaml:"optimal" json:"optimal"`
}

// Transform names a non-linear mapping from a raw value into [0,1].
type Transform string

// Supported transforms.
const (
	TransformNone           Transform = ""
	TransformWordsPerMinute Transform = "words_per_minute"
)

// MetricSpec describes how one normalized metric is read from a raw analysis.
// Sources are dotted paths such as "speech.pace.words_per_minute"; when more
// than one is listed the metric is their mean.
type MetricSpec struct {
	Name      string    `yaml:"name" json:"name"`
	Sources   []string  `yaml:"sources" json:"sources"`
	Transform Transform `yaml:"transform,omitempty" json:"transform,omitempty"`
	// Default is the raw value assumed for a missing source. Zero means metric.Neutral.
	Default float64 `yaml:"default,omitempty" json:"default,omitempty"`
}

// Profile is everything the engines know about one skill type.
type Profile struct {
	Type       Type               `yaml:"type" json:"type"`
	Domain     string             `yaml:"domain" json:"domain"`
	Weights    map[string]float64 `yaml:"weights" json:"weights"`
	Thresholds map[string]Band    `yaml:"thresholds" json:"thresholds,omitempty"`
	Importance map[string]float64 `yaml:"importance" json:"importance,omitempty"`
	Metrics    []MetricSpec       `yaml:"metrics" json:"metrics,omitempty"`
}

// MetricNames returns the normalized metric names in table order.
func (p Profile) MetricNames() []string {
	names := make([]string, 0, len(p.Metrics))
	for _, m := range p.Metrics {
		names = append(names, m.Name)
	}
	return names
}

type table struct {
	Skills []Profile `yaml:"skills"`
}

// Registry is an immutable lookup from skill type to profile.
type Registry struct {
	profiles map[Type]Profile
}

// Builtin returns the registry compiled into the binary.
func Builtin() (*Registry, error) {
	return parse(builtinTable)
}

// Load parses a YAML skill table.
func Load(r io.Reader) (*Registry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	return parse(raw)
}

// LoadFile parses the YAML skill table at path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

func parse(raw []byte) (*Registry, error) {
	var t table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	r := &Registry{profiles: make(map[Type]Profile, len(t.Skills))}
	for _, p := range t.Skills {
		if err := validate(p); err != nil {
			return nil, err
		}
		if _, dup := r.profiles[p.Type]; dup {
			return nil, fmt.Errorf("%w: duplicate skill %q", ErrInvalidTable, p.Type)
		}
		r.profiles[p.Type] = p
	}
	return r, nil
}

func validate(p Profile) error {
	if p.Type == "" {
		return fmt.Errorf("%w: skill without type", ErrInvalidTable)
	}
	for m, w := range p.Weights {
		if w < 0 {
			return fmt.Errorf("%w: %s weight for %s is negative", ErrInvalidTable, p.Type, m)
		}
	}
	for m, w := range p.Importance {
		if w < 0 {
			return fmt.Errorf("%w: %s importance for %s is negative", ErrInvalidTable, p.Type, m)
		}
	}
	for m, b := range p.Thresholds {
		if b.Optimal < b.Minimum {
			return fmt.Errorf("%w: %s band for %s has optimal below minimum", ErrInvalidTable, p.Type, m)
		}
	}
	for _, spec := range p.Metrics {
		if spec.Name == "" || len(spec.Sources) == 0 {
			return fmt.Errorf("%w: %s metric needs a name and sources", ErrInvalidTable, p.Type)
		}
		switch spec.Transform {
		case TransformNone, TransformWordsPerMinute:
		default:
			return fmt.Errorf("%w: %s metric %s has unknown transform %q", ErrInvalidTable, p.Type, spec.Name, spec.Transform)
		}
	}
	return nil
}

// Lookup returns the profile for t.
func (r *Registry) Lookup(t Type) (Profile, bool) {
	p, ok := r.profiles[t]
	return p, ok
}

// Weights returns the comparison weight table for t, or nil when t is unknown.
func (r *Registry) Weights(t Type) map[string]float64 {
	return r.profiles[t].Weights
}

// Types lists the known skill types in ascending order.
func (r *Registry) Types() []Type {
	return slices.Sorted(maps.Keys(r.profiles))
}

// Merge returns a registry where profiles from other replace same-typed ones.
func (r *Registry) Merge(other *Registry) *Registry {
	out := &Registry{profiles: maps.Clone(r.profiles)}
	if other != nil {
		maps.Copy(out.profiles, other.profiles)
	}
	return out
}

// WithWeights returns a registry whose weight tables are overlaid by
// overrides (skill -> metric -> weight). Unknown skills get a weight-only profile.
func (r *Registry) WithWeights(overrides map[string]map[string]float64) (*Registry, error) {
	out := &Registry{profiles: maps.Clone(r.profiles)}
	for name, weights := range overrides {
		t := Type(name)
		p := out.profiles[t]
		p.Type = t
		merged := maps.Clone(p.Weights)
		if merged == nil {
			merged = make(map[string]float64, len(weights))
		}
		maps.Copy(merged, weights)
		p.Weights = merged
		if err := validate(p); err != nil {
			return nil, err
		}
		out.profiles[t] = p
	}
	return out, nil
}
