// Package normalize turns skill-specific raw analysis records into metric vectors.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/mentor/internal/domain/metric"
	"github.com/okian/mentor/internal/domain/skill"
	"gonum.org/v1/gonum/stat"
)

// Optimal speaking pace window in words per minute.
const (
	paceLowWPM    = 120.0
	paceHighWPM   = 180.0
	paceFalloffWP = 100.0
)

// Analysis is a raw extractor record, e.g.
// {"video": {"gesture_score": 0.7}, "speech": {"pace": {"words_per_minute": 140}}}.
type Analysis map[string]any

// Normalizer maps raw analyses to clamped metric vectors using the skill table.
type Normalizer struct {
	skills *skill.Registry
}

// New creates a Normalizer over the given registry.
func New(skills *skill.Registry) *Normalizer {
	return &Normalizer{skills: skills}
}

// Normalize extracts the metric vector for skillType. Known skills read the
// sources listed in their table and default missing ones. Unknown skills
// flatten every numeric leaf under its own name. Non-numeric values at a
// source path, or non-finite numbers, yield metric.ErrMalformed.
func (n *Normalizer) Normalize(a Analysis, skillType skill.Type) (metric.Vector, error) {
	p, ok := n.skills.Lookup(skillType)
	if !ok || len(p.Metrics) == 0 {
		return flatten(a)
	}
	out := make(metric.Vector, len(p.Metrics))
	for _, spec := range p.Metrics {
		v, err := extract(a, spec)
		if err != nil {
			return nil, err
		}
		out[spec.Name] = metric.Clamp(v)
	}
	return out, nil
}

func extract(a Analysis, spec skill.MetricSpec) (float64, error) {
	def := spec.Default
	if def == 0 {
		def = metric.Neutral
	}
	vals := make([]float64, 0, len(spec.Sources))
	for _, path := range spec.Sources {
		raw, found := lookup(a, path)
		if !found {
			vals = append(vals, def)
			continue
		}
		x, err := toFloat(raw)
		if err != nil {
			return 0, fmt.Errorf("%s (%s): %w", spec.Name, path, err)
		}
		vals = append(vals, x)
	}
	v := stat.Mean(vals, nil)
	if spec.Transform == skill.TransformWordsPerMinute {
		v = SpeakingPace(v)
	}
	return v, nil
}

// SpeakingPace scores a words-per-minute rate: 1 inside 120..180, linear
// ramp below, falling by 1 per 100 wpm above.
func SpeakingPace(wpm float64) float64 {
	switch {
	case wpm >= paceLowWPM && wpm <= paceHighWPM:
		return 1
	case wpm < paceLowWPM:
		return math.Max(0, wpm/paceLowWPM)
	default:
		return math.Max(0, 1-(wpm-paceHighWPM)/paceFalloffWP)
	}
}

func lookup(a Analysis, path string) (any, bool) {
	var cur any = map[string]any(a)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func toFloat(raw any) (float64, error) {
	var x float64
	switch v := raw.(type) {
	case float64:
		x = v
	case float32:
		x = float64(v)
	case int:
		x = float64(v)
	case int64:
		x = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", metric.ErrMalformed, v)
		}
		x = f
	default:
		return 0, fmt.Errorf("%w: %T is not numeric", metric.ErrMalformed, raw)
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("%w: non-finite value", metric.ErrMalformed)
	}
	return x, nil
}

// flatten collects numeric leaves keyed by their leaf name. Colliding leaf
// names keep the value from the lexically first path. Non-numeric leaves are
// skipped since no table claims them.
func flatten(a Analysis) (metric.Vector, error) {
	type leaf struct {
		path string
		val  float64
	}
	var leaves []leaf
	var walk func(prefix string, m map[string]any) error
	walk = func(prefix string, m map[string]any) error {
		for k, v := range m {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			switch t := v.(type) {
			case map[string]any:
				if err := walk(path, t); err != nil {
					return err
				}
			case float64, float32, int, int64, json.Number:
				x, err := toFloat(t)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				leaves = append(leaves, leaf{path: path, val: x})
			}
		}
		return nil
	}
	if err := walk("", a); err != nil {
		return nil, err
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].path < leaves[j].path })
	out := make(metric.Vector, len(leaves))
	for _, l := range leaves {
		name := l.path[strings.LastIndex(l.path, ".")+1:]
		if _, dup := out[name]; !dup {
			out[name] = metric.Clamp(l.val)
		}
	}
	return out, nil
}
