// Package expert holds the reference corpus of expert profiles and the
// per-skill metric patterns the engines compare learners against.
package expert

import (
	_ "embed"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/okian/mentor/internal/domain/metric"
	"github.com/okian/mentor/internal/domain/skill"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedCorpus []byte

// Profile is an expert's identity and presentation metadata.
type Profile struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Domain       string   `yaml:"domain" json:"domain"`
	Biography    string   `yaml:"biography" json:"biography,omitempty"`
	Achievements []string `yaml:"achievements" json:"achievements,omitempty"`
	VideoURL     string   `yaml:"video_url" json:"video_url,omitempty"`
}

// Pattern is an expert's reference vector for one skill type.
type Pattern struct {
	ExpertID  string        `yaml:"-" json:"expert_id"`
	SkillType skill.Type    `yaml:"skill_type" json:"skill_type"`
	Metrics   metric.Vector `yaml:"metrics" json:"metrics"`
	// Confidence in [0,1] expresses trust in the pattern.
	Confidence float64 `yaml:"confidence" json:"confidence"`
}

type document struct {
	Experts []struct {
		Profile  `yaml:",inline"`
		Patterns []Pattern `yaml:"patterns"`
	} `yaml:"experts"`
}

// Corpus is an immutable, ordered collection of experts and their patterns.
// Iteration order is load order, which the matcher uses to break ties.
type Corpus struct {
	order    []string
	experts  map[string]Profile
	patterns map[skill.Type][]Pattern
}

// NewCorpus validates and indexes profiles and patterns.
func NewCorpus(profiles []Profile, patterns []Pattern) (*Corpus, error) {
	c := &Corpus{
		experts:  make(map[string]Profile, len(profiles)),
		patterns: make(map[skill.Type][]Pattern),
	}
	for _, p := range profiles {
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("%w: expert needs an id and a name", ErrInvalidCorpus)
		}
		if _, dup := c.experts[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate expert %q", ErrInvalidCorpus, p.ID)
		}
		c.experts[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		if _, ok := c.experts[p.ExpertID]; !ok {
			return nil, fmt.Errorf("%w: pattern for unknown expert %q", ErrInvalidCorpus, p.ExpertID)
		}
		if p.SkillType == "" {
			return nil, fmt.Errorf("%w: %s pattern without skill type", ErrInvalidCorpus, p.ExpertID)
		}
		key := p.ExpertID + "\x00" + string(p.SkillType)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate %s pattern for %s", ErrInvalidCorpus, p.SkillType, p.ExpertID)
		}
		seen[key] = true
		if p.Confidence < 0 || p.Confidence > 1 {
			return nil, fmt.Errorf("%w: %s confidence %v outside [0,1]", ErrInvalidCorpus, p.ExpertID, p.Confidence)
		}
		if err := p.Metrics.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCorpus, p.ExpertID, err)
		}
		p.Metrics = p.Metrics.Clamped()
		c.patterns[p.SkillType] = append(c.patterns[p.SkillType], p)
	}
	return c, nil
}

// Seed returns the corpus compiled into the binary.
func Seed() (*Corpus, error) {
	return parse(seedCorpus)
}

// Load parses a YAML corpus.
func Load(r io.Reader) (*Corpus, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCorpus, err)
	}
	return parse(raw)
}

// LoadFile parses the YAML corpus at path.
func LoadFile(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCorpus, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

func parse(raw []byte) (*Corpus, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCorpus, err)
	}
	profiles := make([]Profile, 0, len(doc.Experts))
	var patterns []Pattern
	for _, e := range doc.Experts {
		profiles = append(profiles, e.Profile)
		for _, p := range e.Patterns {
			p.ExpertID = e.ID
			patterns = append(patterns, p)
		}
	}
	return NewCorpus(profiles, patterns)
}

// Expert returns the profile with id.
func (c *Corpus) Expert(id string) (Profile, bool) {
	p, ok := c.experts[id]
	return p, ok
}

// Experts lists every profile in load order.
func (c *Corpus) Experts() []Profile {
	out := make([]Profile, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.experts[id])
	}
	return out
}

// Patterns lists the patterns for skillType in load order.
func (c *Corpus) Patterns(skillType skill.Type) []Pattern {
	return slices.Clone(c.patterns[skillType])
}

// PatternsFor lists every pattern an expert has, ordered by skill type.
func (c *Corpus) PatternsFor(expertID string) []Pattern {
	var out []Pattern
	for _, t := range c.SkillTypes() {
		for _, p := range c.patterns[t] {
			if p.ExpertID == expertID {
				out = append(out, p)
			}
		}
	}
	return out
}

// HasSkill reports whether any pattern exists for skillType.
func (c *Corpus) HasSkill(skillType skill.Type) bool {
	return len(c.patterns[skillType]) > 0
}

// SkillTypes lists the skill types with at least one pattern.
func (c *Corpus) SkillTypes() []skill.Type {
	return slices.Sorted(maps.Keys(c.patterns))
}

// Len returns the number of experts.
func (c *Corpus) Len() int { return len(c.order) }
