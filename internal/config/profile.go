package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var defaultProfiles []byte

// ProfileFile is the top-level layout of a profiles YAML document.
type ProfileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Profile configures selective execution for one kind of script.
type Profile struct {
	// Name identifies the profile (e.g. "prefab", "tuning").
	Name string `yaml:"name"`

	// Extends names a profile whose settings this one inherits. Lists are
	// merged; scalar settings set here win.
	Extends string `yaml:"extends,omitempty"`

	// SuppressCalls lists callees whose calls become no-ops.
	SuppressCalls []string `yaml:"suppress_calls,omitempty"`

	// AllowCalls switches to allow-list mode: every other call is a no-op.
	AllowCalls []string `yaml:"allow_calls,omitempty"`

	// SuppressNames lists variables bound at most once and otherwise ignored.
	SuppressNames []string `yaml:"suppress_names,omitempty"`

	// GateUntil executes only the assignment to this global.
	GateUntil string `yaml:"gate_until,omitempty"`

	// StopAt ends the file when an assignment rooted at this name is reached.
	StopAt string `yaml:"stop_at,omitempty"`

	// SkipAssign lists assignment roots that are silently ignored.
	SkipAssign []string `yaml:"skip_assign,omitempty"`

	// SkipModules lists require paths that yield nil; a trailing "/" makes
	// the entry a prefix.
	SkipModules []string `yaml:"skip_modules,omitempty"`

	// UndefinedNames is "nil" (default), "error" or "standin".
	UndefinedNames string `yaml:"undefined_names,omitempty"`
}

// Profiles is a validated, name-indexed set of profiles.
type Profiles struct {
	byName map[string]*Profile
	order  []string
}

// DefaultProfiles returns the built-in profiles.
func DefaultProfiles() (*Profiles, error) {
	return ParseProfiles(defaultProfiles, "<builtin profiles>")
}

// LoadProfiles reads a profiles file and layers it over the built-in set.
// Profiles in the file replace built-in profiles with the same name.
func LoadProfiles(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles %s: %w", path, err)
	}
	base, err := DefaultProfiles()
	if err != nil {
		return nil, err
	}
	user, err := parseProfiles(data, path)
	if err != nil {
		return nil, err
	}
	for _, name := range user.order {
		base.add(user.byName[name])
	}
	if err := base.checkExtends(path); err != nil {
		return nil, err
	}
	return base, nil
}

// ParseProfiles parses a self-contained profiles document. path is used
// for error messages.
func ParseProfiles(data []byte, path string) (*Profiles, error) {
	ps, err := parseProfiles(data, path)
	if err != nil {
		return nil, err
	}
	if err := ps.checkExtends(path); err != nil {
		return nil, err
	}
	return ps, nil
}

func parseProfiles(data []byte, path string) (*Profiles, error) {
	var f ProfileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := f.validate(path); err != nil {
		return nil, err
	}
	ps := &Profiles{byName: make(map[string]*Profile)}
	for i := range f.Profiles {
		p := f.Profiles[i]
		p.setDefaults()
		ps.add(&p)
	}
	return ps, nil
}

func (ps *Profiles) add(p *Profile) {
	if _, exists := ps.byName[p.Name]; !exists {
		ps.order = append(ps.order, p.Name)
	}
	ps.byName[p.Name] = p
}

// Names returns profile names in definition order.
func (ps *Profiles) Names() []string {
	return append([]string(nil), ps.order...)
}

// Get returns the named profile with its Extends chain merged in.
func (ps *Profiles) Get(name string) (*Profile, error) {
	p, ok := ps.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", name)
	}
	seen := map[string]bool{name: true}
	merged := *p
	for parentName := p.Extends; parentName != ""; {
		if seen[parentName] {
			return nil, fmt.Errorf("profile %q: extends cycle through %q", name, parentName)
		}
		seen[parentName] = true
		parent, ok := ps.byName[parentName]
		if !ok {
			return nil, fmt.Errorf("profile %q extends unknown profile %q", name, parentName)
		}
		merged.inherit(parent)
		parentName = parent.Extends
	}
	merged.Extends = ""
	return &merged, nil
}

func (ps *Profiles) checkExtends(path string) error {
	for _, name := range ps.order {
		if _, err := ps.Get(name); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (p *Profile) inherit(parent *Profile) {
	p.SuppressCalls = mergeLists(parent.SuppressCalls, p.SuppressCalls)
	p.AllowCalls = mergeLists(parent.AllowCalls, p.AllowCalls)
	p.SuppressNames = mergeLists(parent.SuppressNames, p.SuppressNames)
	p.SkipAssign = mergeLists(parent.SkipAssign, p.SkipAssign)
	p.SkipModules = mergeLists(parent.SkipModules, p.SkipModules)
	if p.GateUntil == "" {
		p.GateUntil = parent.GateUntil
	}
	if p.StopAt == "" {
		p.StopAt = parent.StopAt
	}
	if p.UndefinedNames == "" {
		p.UndefinedNames = parent.UndefinedNames
	}
}

func mergeLists(parent, child []string) []string {
	if len(parent) == 0 {
		return child
	}
	out := make([]string, 0, len(parent)+len(child))
	seen := make(map[string]bool, len(parent)+len(child))
	for _, list := range [][]string{parent, child} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

func (f *ProfileFile) validate(path string) error {
	seen := make(map[string]bool)
	for i, p := range f.Profiles {
		prefix := fmt.Sprintf("%s: profiles[%d]", path, i)
		if p.Name == "" {
			return fmt.Errorf("%s: 'name' is required", prefix)
		}
		if seen[p.Name] {
			return fmt.Errorf("%s: duplicate profile %q", prefix, p.Name)
		}
		seen[p.Name] = true
		switch p.UndefinedNames {
		case "", UndefinedNil, UndefinedError, UndefinedStandIn:
		default:
			return fmt.Errorf("%s (%s): undefined_names must be one of nil, error, standin; got %q", prefix, p.Name, p.UndefinedNames)
		}
		if p.GateUntil != "" && strings.ContainsAny(p.GateUntil, ".[ ") {
			return fmt.Errorf("%s (%s): gate_until must be a plain global name", prefix, p.Name)
		}
		if p.Extends == p.Name {
			return fmt.Errorf("%s (%s): profile cannot extend itself", prefix, p.Name)
		}
	}
	return nil
}

func (p *Profile) setDefaults() {
	p.SkipModules = dedupe(p.SkipModules)
	p.SuppressCalls = dedupe(p.SuppressCalls)
	p.SuppressNames = dedupe(p.SuppressNames)
}

func dedupe(list []string) []string {
	return mergeLists(list, nil)
}
