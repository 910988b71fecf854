package config

import "strings"

const SourceFileExt = ".lua"

func HasSourceExt(name string) bool { return strings.HasSuffix(name, SourceFileExt) }

func TrimSourceExt(name string) string { return strings.TrimSuffix(name, SourceFileExt) }

// PrefabsDir holds one module per prefab family.
const PrefabsDir = "prefabs"

// Modules read by the extraction tasks
const (
	TuningModule  = "tuning"
	RecipesModule = "recipes"
)

// Built-in profile names
const (
	ProfileBase      = "base"
	ProfileConstants = "constants"
	ProfileTuning    = "tuning"
	ProfilePrefab    = "prefab"
	ProfileRecipes   = "recipes"
)

// ScriptsRoot is the directory scripts live under inside the game archive.
const ScriptsRoot = "scripts"

// Library table names
const (
	StringLibName = "string"
	MathLibName   = "math"
	TableLibName  = "table"
)

// Built-in function names
const (
	PrintFuncName        = "print"
	TypeFuncName         = "type"
	ToStringFuncName     = "tostring"
	ToNumberFuncName     = "tonumber"
	AssertFuncName       = "assert"
	ErrorFuncName        = "error"
	PcallFuncName        = "pcall"
	PairsFuncName        = "pairs"
	IpairsFuncName       = "ipairs"
	NextFuncName         = "next"
	SelectFuncName       = "select"
	UnpackFuncName       = "unpack"
	RawGetFuncName       = "rawget"
	RawSetFuncName       = "rawset"
	RawEqualFuncName     = "rawequal"
	SetMetatableFuncName = "setmetatable"
	GetMetatableFuncName = "getmetatable"
	RequireFuncName      = "require"
)

// Values for Profile.UndefinedNames
const (
	UndefinedNil     = "nil"
	UndefinedError   = "error"
	UndefinedStandIn = "standin"
)
