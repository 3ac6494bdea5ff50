// Package keywords loads the keyword sets behind interest extraction,
// the button policy and urgency classification.
package keywords

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultYAML []byte

// Pricing describes explicit price markers in a reply.
type Pricing struct {
	CurrencySymbols []string `yaml:"currency_symbols"`
	Tokens          []string `yaml:"tokens"`
}

// Urgency holds the ordered tiers; urgent is checked before high.
type Urgency struct {
	Urgent []string `yaml:"urgent"`
	High   []string `yaml:"high"`
}

// Set is the full keyword configuration.
type Set struct {
	Interests  []string `yaml:"interests"`
	Reschedule []string `yaml:"reschedule"`
	Cancel     []string `yaml:"cancel"`
	Pricing    Pricing  `yaml:"pricing"`
	Features   []string `yaml:"features"`
	Closing    []string `yaml:"closing"`
	Urgency    Urgency  `yaml:"urgency"`
}

// Default returns the embedded keyword set.
func Default() Set {
	set, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("keywords: embedded defaults are invalid: %v", err))
	}
	return set
}

// Load reads a YAML override. An empty path yields the defaults.
// Sections missing from the file keep their default values.
func Load(path string) (Set, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read keywords file: %w", err)
	}

	override, err := Parse(data)
	if err != nil {
		return Set{}, err
	}
	return Default().merge(override), nil
}

// Parse decodes and normalizes a YAML keyword document.
func Parse(data []byte) (Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return Set{}, fmt.Errorf("parse keywords: %w", err)
	}
	set.normalize()
	return set, nil
}

func (s *Set) normalize() {
	s.Interests = lowerAll(s.Interests)
	s.Reschedule = lowerAll(s.Reschedule)
	s.Cancel = lowerAll(s.Cancel)
	s.Features = lowerAll(s.Features)
	s.Closing = lowerAll(s.Closing)
	s.Pricing.CurrencySymbols = lowerAll(s.Pricing.CurrencySymbols)
	s.Pricing.Tokens = lowerAll(s.Pricing.Tokens)
	s.Urgency.Urgent = lowerAll(s.Urgency.Urgent)
	s.Urgency.High = lowerAll(s.Urgency.High)
}

func (s Set) merge(o Set) Set {
	pick := func(base, over []string) []string {
		if len(over) > 0 {
			return over
		}
		return base
	}
	s.Interests = pick(s.Interests, o.Interests)
	s.Reschedule = pick(s.Reschedule, o.Reschedule)
	s.Cancel = pick(s.Cancel, o.Cancel)
	s.Features = pick(s.Features, o.Features)
	s.Closing = pick(s.Closing, o.Closing)
	s.Pricing.CurrencySymbols = pick(s.Pricing.CurrencySymbols, o.Pricing.CurrencySymbols)
	s.Pricing.Tokens = pick(s.Pricing.Tokens, o.Pricing.Tokens)
	s.Urgency.Urgent = pick(s.Urgency.Urgent, o.Urgency.Urgent)
	s.Urgency.High = pick(s.Urgency.High, o.Urgency.High)
	return s
}

// lowerAll lower-cases entries and drops blanks. Leading and trailing spaces
// are kept because some markers ("rs ") depend on them.
func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, strings.ToLower(v))
	}
	return out
}
