// Package env holds the locale rules and named values formulas are
// evaluated with. It is loaded from a TOML file:
//
//	[locale]
//	default_year = 2024
//	two_digit_year = 30
//	number_kind = "double"
//	decimal_separator = "."
//
//	[values]
//	TAX_RATE = 0.2
package env

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"sheetcalc/internal/reference"
	"sheetcalc/internal/value"
)

// DefaultTwoDigitYear is the pivot below which two digit years land in
// the 2000s.
const DefaultTwoDigitYear = 30

// Config mirrors the TOML file.
type Config struct {
	Locale LocaleConfig   `toml:"locale"`
	Values map[string]any `toml:"values"`
}

type LocaleConfig struct {
	DefaultYear      int    `toml:"default_year"`
	TwoDigitYear     int    `toml:"two_digit_year"`
	NumberKind       string `toml:"number_kind"`
	DecimalSeparator string `toml:"decimal_separator"`
}

type entry struct {
	name  reference.EnvironmentValueName
	value any
}

// Environment is immutable once built.
type Environment struct {
	defaultYear  int
	twoDigitYear int
	numberKind   value.NumberKind
	decimal      byte
	values       map[string]entry
}

// Default returns an environment for the current year with no values.
func Default() *Environment {
	return &Environment{
		defaultYear:  time.Now().Year(),
		twoDigitYear: DefaultTwoDigitYear,
		numberKind:   value.NumberDouble,
		decimal:      '.',
		values:       map[string]entry{},
	}
}

// Load reads an environment file.
func Load(path string) (*Environment, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	e, err := fromConfig(cfg, meta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}

// Decode builds an environment from TOML text.
func Decode(data string) (*Environment, error) {
	var cfg Config
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return fromConfig(cfg, meta)
}

func fromConfig(cfg Config, meta toml.MetaData) (*Environment, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			if len(k) > 0 && k[0] == "values" {
				continue
			}
			keys = append(keys, k.String())
		}
		if len(keys) > 0 {
			return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	}
	e := Default()
	if meta.IsDefined("locale", "default_year") {
		if cfg.Locale.DefaultYear < 1 || cfg.Locale.DefaultYear > 9999 {
			return nil, fmt.Errorf("[locale].default_year out of range: %d", cfg.Locale.DefaultYear)
		}
		e.defaultYear = cfg.Locale.DefaultYear
	}
	if meta.IsDefined("locale", "two_digit_year") {
		if cfg.Locale.TwoDigitYear < 0 || cfg.Locale.TwoDigitYear > 99 {
			return nil, fmt.Errorf("[locale].two_digit_year must be 0..99, got %d", cfg.Locale.TwoDigitYear)
		}
		e.twoDigitYear = cfg.Locale.TwoDigitYear
	}
	kind, err := value.ParseNumberKind(cfg.Locale.NumberKind)
	if err != nil {
		return nil, fmt.Errorf("[locale].number_kind: %w", err)
	}
	e.numberKind = kind
	switch cfg.Locale.DecimalSeparator {
	case "", ".":
	case ",":
		e.decimal = ','
	default:
		return nil, fmt.Errorf("[locale].decimal_separator must be \".\" or \",\", got %q", cfg.Locale.DecimalSeparator)
	}
	for name, raw := range cfg.Values {
		if !reference.IsName(name) {
			return nil, fmt.Errorf("[values].%s is not a valid name", name)
		}
		v, err := value.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("[values].%s: %w", name, err)
		}
		key := fold(name)
		if prev, dup := e.values[key]; dup {
			return nil, fmt.Errorf("[values].%s duplicates %s", name, prev.name)
		}
		e.values[key] = entry{name: reference.EnvironmentValueName(name), value: v}
	}
	return e, nil
}

// fold normalises a name for case-insensitive lookup.
func fold(name string) string {
	return cases.Fold().String(norm.NFC.String(name))
}

func (e *Environment) NumberKind() value.NumberKind { return e.numberKind }
func (e *Environment) DefaultYear() int             { return e.defaultYear }

// DecimalSeparator is the decimal point of literal cell input.
func (e *Environment) DecimalSeparator() byte { return e.decimal }

// TwoToFourDigitYear expands a two digit year around the configured pivot.
func (e *Environment) TwoToFourDigitYear(year int) int {
	if year < 0 || year > 99 {
		return year
	}
	if year < e.twoDigitYear {
		return 2000 + year
	}
	return 1900 + year
}

// EnvironmentValue looks name up case-insensitively.
func (e *Environment) EnvironmentValue(name reference.EnvironmentValueName) (any, bool) {
	en, ok := e.values[fold(string(name))]
	return en.value, ok
}

// IsValueName reports whether name is a configured value.
func (e *Environment) IsValueName(name string) bool {
	_, ok := e.values[fold(name)]
	return ok
}

// ValueNames lists the configured names in sorted order.
func (e *Environment) ValueNames() []reference.EnvironmentValueName {
	out := make([]reference.EnvironmentValueName, 0, len(e.values))
	for _, en := range e.values {
		out = append(out, en.name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// With returns a copy of e with name bound to v.
func (e *Environment) With(name reference.EnvironmentValueName, v any) *Environment {
	cp := *e
	cp.values = make(map[string]entry, len(e.values)+1)
	for k, en := range e.values {
		cp.values[k] = en
	}
	cp.values[fold(string(name))] = entry{name: name, value: v}
	return &cp
}

// WithDefaultYear returns a copy of e using year for dates without one.
func (e *Environment) WithDefaultYear(year int) *Environment {
	cp := *e
	cp.defaultYear = year
	return &cp
}
