// Package option implements engine options as a closed set of kinds
// (check, spin, string), each validated against its own range when set.
package option

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Kind is the type tag of an Option.
type Kind uint8

const (
	Check Kind = iota
	Spin
	String
)

// String returns the UCI type name.
func (k Kind) String() string {
	switch k {
	case Check:
		return "check"
	case Spin:
		return "spin"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownOption = errors.New("option: unknown option")
	ErrInvalidValue  = errors.New("option: invalid value")
	ErrOutOfRange    = errors.New("option: value out of range")
)

// Option is one engine option. Only the fields of its Kind are meaningful:
// flag for Check, num/Min/Max for Spin, str for String.
type Option struct {
	Name string
	Kind Kind
	Min  int
	Max  int

	defFlag bool
	defNum  int
	defStr  string

	flag bool
	num  int
	str  string

	onChange func(*Option)
}

// NewCheck creates a boolean option.
func NewCheck(name string, def bool) *Option {
	return &Option{Name: name, Kind: Check, defFlag: def, flag: def}
}

// NewSpin creates an integer option bounded to [min, max]. def is clamped
// into the range.
func NewSpin(name string, def, min, max int) *Option {
	def = lo.Clamp(def, min, max)
	return &Option{Name: name, Kind: Spin, Min: min, Max: max, defNum: def, num: def}
}

// NewString creates a free-form string option.
func NewString(name, def string) *Option {
	return &Option{Name: name, Kind: String, defStr: def, str: def}
}

// OnChange registers fn to run after every successful Set.
func (o *Option) OnChange(fn func(*Option)) *Option {
	o.onChange = fn
	return o
}

// Set parses raw according to the option's kind and stores it. The value is
// left unchanged on error.
func (o *Option) Set(raw string) error {
	raw = strings.TrimSpace(raw)
	switch o.Kind {
	case Check:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s: %q: %w", o.Name, raw, ErrInvalidValue)
		}
		o.flag = v
	case Spin:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %q: %w", o.Name, raw, ErrInvalidValue)
		}
		if v < o.Min || v > o.Max {
			return fmt.Errorf("%s: %d not in [%d, %d]: %w", o.Name, v, o.Min, o.Max, ErrOutOfRange)
		}
		o.num = v
	case String:
		if raw == "<empty>" {
			raw = ""
		}
		o.str = raw
	default:
		return fmt.Errorf("%s: kind %d: %w", o.Name, o.Kind, ErrInvalidValue)
	}
	if o.onChange != nil {
		o.onChange(o)
	}
	return nil
}

// Bool returns the value of a Check option.
func (o *Option) Bool() bool { return o.flag }

// Int returns the value of a Spin option.
func (o *Option) Int() int { return o.num }

// Str returns the value of a String option.
func (o *Option) Str() string { return o.str }

// UCI renders the "option name ..." line announced after "uci".
func (o *Option) UCI() string {
	switch o.Kind {
	case Check:
		return fmt.Sprintf("option name %s type check default %t", o.Name, o.defFlag)
	case Spin:
		return fmt.Sprintf("option name %s type spin default %d min %d max %d", o.Name, o.defNum, o.Min, o.Max)
	default:
		def := o.defStr
		if def == "" {
			def = "<empty>"
		}
		return fmt.Sprintf("option name %s type string default %s", o.Name, def)
	}
}

// Set is a registry of options keyed case-insensitively by name.
type Set struct {
	options map[string]*Option
}

// NewSet returns a registry holding opts.
func NewSet(opts ...*Option) *Set {
	s := &Set{options: make(map[string]*Option, len(opts))}
	for _, o := range opts {
		s.Register(o)
	}
	return s
}

// Register adds or replaces an option.
func (s *Set) Register(o *Option) {
	s.options[strings.ToLower(o.Name)] = o
}

// Lookup finds an option by name.
func (s *Set) Lookup(name string) (*Option, bool) {
	o, ok := s.options[strings.ToLower(strings.TrimSpace(name))]
	return o, ok
}

// Apply sets the named option from its raw value.
func (s *Set) Apply(name, value string) error {
	o, ok := s.Lookup(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownOption)
	}
	return o.Set(value)
}

// All returns the options sorted by name.
func (s *Set) All() []*Option {
	all := lo.Values(s.options)
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// UCILines renders every option for the "uci" handshake.
func (s *Set) UCILines() []string {
	return lo.Map(s.All(), func(o *Option, _ int) string { return o.UCI() })
}
