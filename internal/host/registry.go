// Package host models the slice of the game runtime that data scripts touch:
// entity construction, the world and simulation singletons, recipe and
// loot-table registration. Whatever is not modeled is served by stand-ins.
package host

import (
	"sort"

	"github.com/funvibe/luaharvest/internal/evaluator"
)

// Registry collects what evaluated scripts register. One registry belongs
// to one session.
type Registry struct {
	prefabs     map[string]*PrefabRecord
	recipes     map[string]*Recipe
	recipeOrder []string

	// LootTables is the table scripts see as the LootTables global.
	LootTables *evaluator.Table
}

// PrefabRecord is what a prefab constructor produced.
type PrefabRecord struct {
	Name         string   `json:"name" yaml:"name"`
	NameOverride string   `json:"name_override,omitempty" yaml:"name_override,omitempty"`
	Tags         []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Components   []string `json:"components,omitempty" yaml:"components,omitempty"`
	Assets       []Asset  `json:"assets,omitempty" yaml:"assets,omitempty"`
	Source       string   `json:"source" yaml:"source"`
}

// Asset is one Asset(type, file, param) declaration.
type Asset struct {
	Type  string `json:"type" yaml:"type"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
	Param string `json:"param,omitempty" yaml:"param,omitempty"`
}

// Recipe is one Recipe2 registration.
type Recipe struct {
	Name        string                 `json:"name" yaml:"name"`
	Ingredients []Ingredient           `json:"ingredients" yaml:"ingredients"`
	Tech        string                 `json:"tech" yaml:"tech"`
	Config      map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"`
}

// Ingredient amounts are numbers, or the path of an unmodeled constant
// such as "TUNING.EFFIGY_HEALTH_PENALTY".
type Ingredient struct {
	Prefab string      `json:"prefab" yaml:"prefab"`
	Amount interface{} `json:"amount" yaml:"amount"`
}

func NewRegistry() *Registry {
	return &Registry{
		prefabs:    make(map[string]*PrefabRecord),
		recipes:    make(map[string]*Recipe),
		LootTables: evaluator.NewTable(),
	}
}

// AddPrefab records a prefab; a later definition with the same name wins.
func (r *Registry) AddPrefab(p *PrefabRecord) {
	r.prefabs[p.Name] = p
}

// Prefab returns the named record.
func (r *Registry) Prefab(name string) (*PrefabRecord, bool) {
	p, ok := r.prefabs[name]
	return p, ok
}

// Prefabs returns every record sorted by name.
func (r *Registry) Prefabs() []*PrefabRecord {
	out := make([]*PrefabRecord, 0, len(r.prefabs))
	for _, p := range r.prefabs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NameOverrides maps prefab names to their display-name override, for
// prefabs that set one.
func (r *Registry) NameOverrides() map[string]string {
	out := make(map[string]string)
	for name, p := range r.prefabs {
		if p.NameOverride != "" {
			out[name] = p.NameOverride
		}
	}
	return out
}

// AddRecipe records a recipe; redefinitions replace the earlier record but
// keep its position.
func (r *Registry) AddRecipe(rec *Recipe) {
	if _, exists := r.recipes[rec.Name]; !exists {
		r.recipeOrder = append(r.recipeOrder, rec.Name)
	}
	r.recipes[rec.Name] = rec
}

// Recipes returns recipes in registration order.
func (r *Registry) Recipes() []*Recipe {
	out := make([]*Recipe, 0, len(r.recipeOrder))
	for _, name := range r.recipeOrder {
		out = append(out, r.recipes[name])
	}
	return out
}

// LootTable returns a registered loot table converted to plain data.
func (r *Registry) LootTable(name string) (interface{}, bool) {
	v := r.LootTables.GetString(name)
	if v == evaluator.NIL {
		return nil, false
	}
	return evaluator.ToNative(v), true
}

// LootTableNames returns registered loot table names, sorted.
func (r *Registry) LootTableNames() []string {
	var out []string
	for _, k := range r.LootTables.Keys() {
		if s, ok := k.(*evaluator.String); ok {
			out = append(out, s.Value)
		}
	}
	sort.Strings(out)
	return out
}
