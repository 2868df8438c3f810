package stage

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"voiceblog/internal/services"
)

// Kind identifies one pipeline stage. The numeric value is the stage's fixed
// position in the chain.
type Kind int

const (
	Preprocess Kind = iota + 1
	Transcribe
	Compose
)

// All lists every stage in execution order.
var All = []Kind{Preprocess, Transcribe, Compose}

var titleCaser = cases.Title(language.English)

func (k Kind) String() string {
	switch k {
	case Preprocess:
		return "preprocess"
	case Transcribe:
		return "transcribe"
	case Compose:
		return "compose"
	default:
		return fmt.Sprintf("stage(%d)", int(k))
	}
}

// Label is the display form used in tables and summaries.
func (k Kind) Label() string {
	return titleCaser.String(k.String())
}

// Valid reports whether k is one of the known stages.
func (k Kind) Valid() bool {
	return k >= Preprocess && k <= Compose
}

// ParseKind accepts a stage number ("1") or name ("transcribe").
func ParseKind(value string) (Kind, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if n, err := strconv.Atoi(value); err == nil {
		k := Kind(n)
		if !k.Valid() {
			return 0, services.Wrap(services.ErrValidation, "stage", "parse", fmt.Sprintf("step %d out of range 1-3", n), nil)
		}
		return k, nil
	}
	for _, k := range All {
		if k.String() == value {
			return k, nil
		}
	}
	return 0, services.Wrap(services.ErrValidation, "stage", "parse", fmt.Sprintf("unknown step %q (valid: 1-3, preprocess, transcribe, compose)", value), nil)
}

// Set is an ordered subset of stages. Build one through ParseSet or NewSet so
// the ordering and uniqueness invariants hold.
type Set []Kind

// NewSet returns the canonical ordering of kinds, rejecting duplicates and
// unknown values.
func NewSet(kinds ...Kind) (Set, error) {
	seen := make(map[Kind]bool, len(kinds))
	out := make(Set, 0, len(kinds))
	for _, k := range kinds {
		if !k.Valid() {
			return nil, services.Wrap(services.ErrValidation, "stage", "parse", fmt.Sprintf("unknown step %d", int(k)), nil)
		}
		if seen[k] {
			return nil, services.Wrap(services.ErrValidation, "stage", "parse", fmt.Sprintf("step %s requested twice", k), nil)
		}
		seen[k] = true
		out = append(out, k)
	}
	if len(out) == 0 {
		return nil, services.Wrap(services.ErrValidation, "stage", "parse", "no steps requested", nil)
	}
	slices.Sort(out)
	return out, nil
}

// ParseSet parses step selectors such as "1,2,3", "transcribe,compose", or
// "all". Each value may itself be comma separated. No values means all stages.
func ParseSet(values ...string) (Set, error) {
	var kinds []Kind
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if strings.EqualFold(part, "all") {
				kinds = append(kinds, All...)
				continue
			}
			k, err := ParseKind(part)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, k)
		}
	}
	if len(kinds) == 0 {
		return slices.Clone(Set(All)), nil
	}
	return NewSet(kinds...)
}

// Contains reports whether k is part of the set.
func (s Set) Contains(k Kind) bool {
	return slices.Contains(s, k)
}

// Names returns the lower-case stage names in order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, k := range s {
		names[i] = k.String()
	}
	return names
}

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, k := range s {
		parts[i] = strconv.Itoa(int(k))
	}
	return strings.Join(parts, ",")
}
