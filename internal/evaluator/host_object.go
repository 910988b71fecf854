package evaluator

import (
	"sort"
)

// StandIn is a permissive placeholder for host-application objects the
// interpreter does not model. Unknown members materialise as further
// stand-ins, calls succeed, and operators never fail.
type StandIn interface {
	Object
	Member(key Object) Object
	SetMember(key, value Object)
	Members() *Table
	CallResult() Object
	PathString() string
}

// Unmodeled is the generic stand-in. Path records how it was reached
// (e.g. "TheWorld.state.season") and doubles as its string form.
type Unmodeled struct {
	Path   string
	Fields *Table
	// Result is returned when the stand-in is called; nil returns the
	// stand-in itself.
	Result Object
}

func NewUnmodeled(path string) *Unmodeled {
	return &Unmodeled{Path: path, Fields: NewTable()}
}

func (u *Unmodeled) Type() ObjectType { return UNMODELED_OBJ }
func (u *Unmodeled) Inspect() string {
	if u.Path == "" {
		return "unmodeled"
	}
	return u.Path
}

func (u *Unmodeled) Member(key Object) Object {
	if v := u.Fields.Get(key); v != NIL {
		return v
	}
	if _, ok := hashKey(key); !ok {
		return NIL
	}
	child := NewUnmodeled(childPath(u.Path, key))
	u.Fields.Set(key, child)
	return child
}

func (u *Unmodeled) SetMember(key, value Object) { u.Fields.Set(key, value) }
func (u *Unmodeled) Members() *Table            { return u.Fields }
func (u *Unmodeled) PathString() string         { return u.Path }

func (u *Unmodeled) CallResult() Object {
	if u.Result != nil {
		return u.Result
	}
	return u
}

func childPath(parent string, key Object) string {
	k := toDisplayString(key)
	if parent == "" {
		return k
	}
	return parent + "." + k
}

// Entity is the stand-in returned by entity constructors. Besides absorbing
// arbitrary engine calls it records the facts extraction cares about: tags,
// the prefab name override and the components added to it.
type Entity struct {
	*Unmodeled
	Prefab       string
	NameOverride string
	tags         map[string]bool
	tagOrder     []string
	components   []string
}

// AnimFrames is what AnimState:GetCurrentAnimationNumFrames() reports.
const AnimFrames = 30

func NewEntity() *Entity {
	ent := &Entity{Unmodeled: NewUnmodeled("entity"), tags: make(map[string]bool)}
	ent.Fields.SetString("components", NewTable())
	ent.Fields.SetString("entity", NewUnmodeled("entity.entity"))
	anim := NewUnmodeled("entity.AnimState")
	anim.Fields.SetString("GetCurrentAnimationNumFrames", &Builtin{
		Name: "GetCurrentAnimationNumFrames",
		Fn: func(e *Evaluator, args ...Object) Object {
			return NewNumber(AnimFrames)
		},
	})
	ent.Fields.SetString("AnimState", anim)
	names := make([]string, 0, len(entityMethods))
	for name := range entityMethods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ent.Fields.SetString(name, &Builtin{Name: name, Fn: entityMethods[name]})
	}
	return ent
}

func (ent *Entity) Type() ObjectType { return ENTITY_OBJ }
func (ent *Entity) Inspect() string {
	if ent.Prefab != "" {
		return "entity: " + ent.Prefab
	}
	return "entity"
}

func (ent *Entity) CallResult() Object { return ent }

func (ent *Entity) AddTag(tag string) {
	if !ent.tags[tag] {
		ent.tags[tag] = true
		ent.tagOrder = append(ent.tagOrder, tag)
	}
}

func (ent *Entity) RemoveTag(tag string) {
	if !ent.tags[tag] {
		return
	}
	delete(ent.tags, tag)
	for i, t := range ent.tagOrder {
		if t == tag {
			ent.tagOrder = append(ent.tagOrder[:i], ent.tagOrder[i+1:]...)
			break
		}
	}
}

func (ent *Entity) HasTag(tag string) bool { return ent.tags[tag] }

// Tags returns the tag set in sorted order.
func (ent *Entity) Tags() []string {
	out := append([]string(nil), ent.tagOrder...)
	sort.Strings(out)
	return out
}

// Components returns component names in the order they were added.
func (ent *Entity) Components() []string {
	return append([]string(nil), ent.components...)
}

func (ent *Entity) AddComponent(name string) Object {
	comps, _ := ent.Fields.GetString("components").(*Table)
	if comps == nil {
		comps = NewTable()
		ent.Fields.SetString("components", comps)
	}
	if existing := comps.GetString(name); existing != NIL {
		return existing
	}
	ent.components = append(ent.components, name)
	comp := NewUnmodeled("components." + name)
	comp.Fields.SetString("inst", ent)
	comps.SetString(name, comp)
	return comp
}

var entityMethods = map[string]BuiltinFunction{
	"AddTag": func(e *Evaluator, args ...Object) Object {
		if ent, tag, ok := entityStringArgs(args); ok {
			ent.AddTag(tag)
		}
		return NIL
	},
	"RemoveTag": func(e *Evaluator, args ...Object) Object {
		if ent, tag, ok := entityStringArgs(args); ok {
			ent.RemoveTag(tag)
		}
		return NIL
	},
	"HasTag": func(e *Evaluator, args ...Object) Object {
		if ent, tag, ok := entityStringArgs(args); ok {
			return nativeBoolToBooleanObject(ent.HasTag(tag))
		}
		return FALSE
	},
	"SetPrefabNameOverride": func(e *Evaluator, args ...Object) Object {
		if ent, name, ok := entityStringArgs(args); ok {
			ent.NameOverride = name
		}
		return NIL
	},
	"AddComponent": func(e *Evaluator, args ...Object) Object {
		if ent, name, ok := entityStringArgs(args); ok {
			return ent.AddComponent(name)
		}
		return NIL
	},
}

func entityStringArgs(args []Object) (*Entity, string, bool) {
	if len(args) < 2 {
		return nil, "", false
	}
	ent, ok := args[0].(*Entity)
	if !ok {
		return nil, "", false
	}
	s, ok := args[1].(*String)
	if !ok {
		return nil, "", false
	}
	return ent, s.Value, true
}
