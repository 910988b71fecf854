package host

import (
	"strings"

	"github.com/funvibe/luaharvest/internal/evaluator"
)

// numToGiveField is the one config callback whose presence is recorded as
// true; every other callback is recorded as false.
const numToGiveField = "override_numtogive_fn"

// InstallRecipes binds what the recipe file needs on top of Install.
// TUNING is only provided when no tuning table has been loaded.
func InstallRecipes(e *evaluator.Evaluator, reg *Registry) {
	g := e.Globals
	g.Set("Recipe2", builtin("Recipe2", recipe2(reg)))
	g.Set("Ingredient", builtin("Ingredient", ingredient))
	g.Set("TECH", evaluator.NewUnmodeled("TECH"))
	g.Set("CHARACTER_INGREDIENT", table(map[string]object{
		"HEALTH": str("decrease_health"),
		"SANITY": str("decrease_sanity"),
	}))
	g.Set("TECH_INGREDIENT", table(map[string]object{
		"SCULPTING": str("sculpting_material"),
	}))
	g.Set("SPELLTYPESCLASS", &lowerCaseNames{evaluator.NewUnmodeled("SPELLTYPESCLASS")})
	if _, ok := g.Get("TUNING"); !ok {
		g.Set("TUNING", standIn("TUNING", map[string]object{
			"EFFIGY_HEALTH_PENALTY": num(40),
		}))
	}
}

// lowerCaseNames resolves every string member to its own name in lower
// case: SPELLTYPESCLASS.REPAIR is "repair".
type lowerCaseNames struct {
	*evaluator.Unmodeled
}

func (l *lowerCaseNames) Member(key object) object {
	if s, ok := key.(*evaluator.String); ok {
		return str(strings.ToLower(s.Value))
	}
	return l.Unmodeled.Member(key)
}

// ingredient implements Ingredient(prefab, amount, ...).
func ingredient(e *evaluator.Evaluator, args ...object) object {
	t := evaluator.NewTable()
	t.SetString("type", arg(args, 0))
	t.SetString("amount", arg(args, 1))
	return t
}

// recipe2 implements Recipe2(name, ingredients, tech, config).
func recipe2(reg *Registry) evaluator.BuiltinFunction {
	return func(e *evaluator.Evaluator, args ...object) object {
		name, ok := stringArg(args, 0)
		if !ok {
			return &evaluator.Error{Kind: evaluator.TypeMismatch, Message: "bad argument #1 to 'Recipe2' (string expected)"}
		}
		rec := &Recipe{Name: name, Ingredients: []Ingredient{}}
		if list, ok := arg(args, 1).(*evaluator.Table); ok {
			for _, v := range list.Array() {
				ing, ok := v.(*evaluator.Table)
				if !ok {
					continue
				}
				prefab, _ := evaluator.ToNative(ing.GetString("type")).(string)
				rec.Ingredients = append(rec.Ingredients, Ingredient{
					Prefab: prefab,
					Amount: evaluator.ToNative(ing.GetString("amount")),
				})
			}
		}
		rec.Tech, _ = evaluator.ToNative(arg(args, 2)).(string)
		if cfg, ok := arg(args, 3).(*evaluator.Table); ok {
			rec.Config = recipeConfig(cfg)
		}
		reg.AddRecipe(rec)

		out := evaluator.NewTable()
		out.SetString("name", str(name))
		return out
	}
}

func recipeConfig(cfg *evaluator.Table) map[string]interface{} {
	out := make(map[string]interface{}, cfg.Count())
	cfg.Range(func(k, v object) bool {
		key, ok := k.(*evaluator.String)
		if !ok {
			return true
		}
		switch v.(type) {
		case *evaluator.Function, *evaluator.Builtin:
			out[key.Value] = key.Value == numToGiveField
		default:
			out[key.Value] = evaluator.ToNative(v)
		}
		return true
	})
	return out
}
