// Package axis holds the canonical axis catalog of the simulation model:
// mood axes, sexual axes, and affect traits, each with a declared native
// range and a normalization rule. Analyzers never hard-code axis names;
// they enumerate the catalog.
package axis

import (
	"sort"
	"strings"
)

// #region catalog

// Catalog is the canonical axis set for one simulation build.
type Catalog struct {
	defs  map[string]Definition
	mood  []string
	sex   []string
	trait []string
}

// NewCatalog builds a catalog from definitions. Names are unique; a later
// definition with the same name replaces the earlier one.
func NewCatalog(defs []Definition) *Catalog {
	c := &Catalog{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if _, seen := c.defs[d.Name]; !seen {
			switch d.Domain {
			case DomainMood:
				c.mood = append(c.mood, d.Name)
			case DomainSexual:
				c.sex = append(c.sex, d.Name)
			case DomainTrait:
				c.trait = append(c.trait, d.Name)
			}
		}
		c.defs[d.Name] = d
	}
	sort.Strings(c.mood)
	sort.Strings(c.sex)
	sort.Strings(c.trait)
	return c
}

// DefaultCatalog returns the standard axis set of the character model.
func DefaultCatalog() *Catalog {
	mood := []string{
		"valence", "arousal", "agency", "threat",
		"engagement", "future_expectancy", "self_evaluation", "affiliation",
	}
	sexual := []string{"sex_excitation", "sex_inhibition"}
	traits := []string{"affective_empathy", "cognitive_empathy", "harm_aversion"}

	defs := make([]Definition, 0, len(mood)+len(sexual)+len(traits))
	for _, n := range mood {
		defs = append(defs, Definition{Name: n, Domain: DomainMood, NativeMin: -100, NativeMax: 100})
	}
	for _, n := range sexual {
		defs = append(defs, Definition{Name: n, Domain: DomainSexual, NativeMin: 0, NativeMax: 100})
	}
	for _, n := range traits {
		// Affect traits are authored as whole numbers.
		defs = append(defs, Definition{Name: n, Domain: DomainTrait, NativeMin: 0, NativeMax: 100, Integer: true})
	}
	return NewCatalog(defs)
}

// Lookup returns the definition for an axis name.
func (c *Catalog) Lookup(name string) (Definition, bool) {
	d, ok := c.defs[name]
	return d, ok
}

// MoodAxes returns the canonical mood axis names in stable order.
func (c *Catalog) MoodAxes() []string { return append([]string(nil), c.mood...) }

// SexualAxes returns the canonical sexual axis names in stable order.
func (c *Catalog) SexualAxes() []string { return append([]string(nil), c.sex...) }

// AffectTraits returns the canonical affect trait names in stable order.
func (c *Catalog) AffectTraits() []string { return append([]string(nil), c.trait...) }

// All returns every canonical axis name: mood, sexual, then traits.
func (c *Catalog) All() []string {
	out := make([]string, 0, len(c.mood)+len(c.sex)+len(c.trait))
	out = append(out, c.mood...)
	out = append(out, c.sex...)
	out = append(out, c.trait...)
	return out
}

// IsInteger reports whether an axis is declared integer-domain.
// Unknown axes are treated as continuous.
func (c *Catalog) IsInteger(name string) bool {
	d, ok := c.defs[name]
	return ok && d.Integer
}

// #endregion catalog

// #region normalize

// Normalize maps a native value into the axis's normalized range, clamped.
// Mood axes map [-100,100] to [-1,1]; sexual axes and traits map [0,100]
// to [0,1]. Unknown axes pass through unchanged.
func (c *Catalog) Normalize(name string, v float64) float64 {
	d, ok := c.defs[name]
	if !ok {
		return v
	}
	return d.Normalize(v)
}

// Normalize maps a native value into the normalized range, clamped.
func (d Definition) Normalize(v float64) float64 {
	if v < d.NativeMin {
		v = d.NativeMin
	}
	if v > d.NativeMax {
		v = d.NativeMax
	}
	span := d.NativeMax - d.NativeMin
	if span == 0 {
		return 0
	}
	unit := (v - d.NativeMin) / span // [0,1]
	if d.Domain == DomainMood {
		return unit*2 - 1
	}
	return unit
}

// #endregion normalize

// #region namespaces

// axisNamespaces are the dotted prefixes that address axis values.
// Everything else (emotions.*, sexualStates.*, deltas) is a non-axis clause.
var axisNamespaces = []string{"moodAxes.", "mood.", "sexualAxes.", "affectTraits."}

// IsAxisPath reports whether a dotted var path addresses an axis namespace.
// A leading "previous." segment is ignored.
func IsAxisPath(path string) bool {
	path = strings.TrimPrefix(path, "previous.")
	for _, ns := range axisNamespaces {
		if strings.HasPrefix(path, ns) {
			return true
		}
	}
	return false
}

// StripNamespace removes an axis namespace prefix (and any leading
// "previous."), returning the bare axis name.
func StripNamespace(path string) string {
	path = strings.TrimPrefix(path, "previous.")
	for _, ns := range axisNamespaces {
		if strings.HasPrefix(path, ns) {
			return strings.TrimPrefix(path, ns)
		}
	}
	return path
}

// #endregion namespaces
