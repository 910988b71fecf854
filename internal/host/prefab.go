package host

import (
	"github.com/funvibe/luaharvest/internal/evaluator"
)

// prefab implements Prefab(name, fn, assets, deps): the constructor runs
// at once and the entity it returns is registered under name.
func prefab(reg *Registry) evaluator.BuiltinFunction {
	return func(e *evaluator.Evaluator, args ...object) object {
		name, ok := stringArg(args, 0)
		if !ok {
			return &evaluator.Error{Kind: evaluator.TypeMismatch, Message: "bad argument #1 to 'Prefab' (string expected)"}
		}
		fn := arg(args, 1)
		if fn == evaluator.NIL {
			e.Logger.Debug("prefab without constructor", "prefab", name, "file", e.CurrentFile)
			return evaluator.NIL
		}
		res := evaluator.First(e.Call(fn))
		if evaluator.IsAbort(res) {
			return res
		}
		inst, ok := res.(*evaluator.Entity)
		if !ok {
			e.Logger.Debug("prefab constructor returned no entity", "prefab", name, "file", e.CurrentFile, "got", evaluator.TypeName(res))
			return res
		}
		inst.Prefab = name
		inst.Fields.SetString("prefab", str(name))
		reg.AddPrefab(&PrefabRecord{
			Name:         name,
			NameOverride: inst.NameOverride,
			Tags:         inst.Tags(),
			Components:   inst.Components(),
			Assets:       collectAssets(arg(args, 2)),
			Source:       e.CurrentFile,
		})
		return inst
	}
}

func createEntity(e *evaluator.Evaluator, args ...object) object {
	return evaluator.NewEntity()
}

func spawnPrefab(e *evaluator.Evaluator, args ...object) object {
	ent := evaluator.NewEntity()
	if name, ok := stringArg(args, 0); ok {
		ent.Prefab = name
		ent.Fields.SetString("prefab", str(name))
	}
	return ent
}

// newAsset implements Asset(type, file, param) as a plain record table.
func newAsset(e *evaluator.Evaluator, args ...object) object {
	t := evaluator.NewTable()
	t.SetString("type", arg(args, 0))
	t.SetString("file", arg(args, 1))
	t.SetString("param", arg(args, 2))
	return t
}

func collectAssets(list object) []Asset {
	t, ok := list.(*evaluator.Table)
	if !ok {
		return nil
	}
	var out []Asset
	for _, v := range t.Array() {
		rec, ok := v.(*evaluator.Table)
		if !ok {
			continue
		}
		kind, ok := rec.GetString("type").(*evaluator.String)
		if !ok {
			continue
		}
		a := Asset{Type: kind.Value}
		if f, ok := rec.GetString("file").(*evaluator.String); ok {
			a.File = f.Value
		}
		if p, ok := rec.GetString("param").(*evaluator.String); ok {
			a.Param = p.Value
		}
		out = append(out, a)
	}
	return out
}

// newVector3 implements Vector3(x, y, z). Extra arguments are ignored;
// some scripts pass four.
func newVector3(e *evaluator.Evaluator, args ...object) object {
	x, y, z := numberArg(args, 0, 0), numberArg(args, 1, 0), numberArg(args, 2, 0)
	v := table(map[string]object{"x": num(x), "y": num(y), "z": num(z)})
	v.SetString("Get", builtin("Get", func(*evaluator.Evaluator, ...object) object {
		return evaluator.Multi(num(x), num(y), num(z))
	}))
	return v
}

func setSharedLootTable(reg *Registry) evaluator.BuiltinFunction {
	return func(e *evaluator.Evaluator, args ...object) object {
		if name, ok := stringArg(args, 0); ok {
			reg.LootTables.SetString(name, arg(args, 1))
		}
		return evaluator.NIL
	}
}

// deepcopy copies tables recursively, preserving shared references and
// cycles within the copied graph.
func deepcopy(e *evaluator.Evaluator, args ...object) object {
	return copyValue(arg(args, 0), make(map[*evaluator.Table]*evaluator.Table))
}

func copyValue(v object, seen map[*evaluator.Table]*evaluator.Table) object {
	t, ok := v.(*evaluator.Table)
	if !ok {
		return v
	}
	if c, done := seen[t]; done {
		return c
	}
	c := evaluator.NewTable()
	seen[t] = c
	c.Meta = t.Meta
	t.Range(func(k, val object) bool {
		c.Set(copyValue(k, seen), copyValue(val, seen))
		return true
	})
	return c
}
