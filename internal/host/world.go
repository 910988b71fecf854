package host

import (
	"math"

	"github.com/funvibe/luaharvest/internal/evaluator"
)

// Install binds the game runtime globals into e's root scope. Scripts see
// a client-side world on the first autumn afternoon: TheWorld.ismastersim
// is false, so server-only setup in prefab constructors is skipped.
func Install(e *evaluator.Evaluator, reg *Registry) {
	g := e.Globals
	for name, v := range worldGlobals(reg) {
		g.Set(name, v)
	}
	for _, name := range inertGlobals {
		g.Set(name, evaluator.NewUnmodeled(name))
	}
	for _, name := range noopGlobals {
		g.Set(name, noop(name))
	}
}

func worldGlobals(reg *Registry) map[string]object {
	return map[string]object{
		"Prefab":             builtin("Prefab", prefab(reg)),
		"CreateEntity":       builtin("CreateEntity", createEntity),
		"SpawnPrefab":        builtin("SpawnPrefab", spawnPrefab),
		"Asset":              builtin("Asset", newAsset),
		"Vector3":            builtin("Vector3", newVector3),
		"LootTables":         reg.LootTables,
		"SetSharedLootTable": builtin("SetSharedLootTable", setSharedLootTable(reg)),
		"deepcopy":           builtin("deepcopy", deepcopy),

		"STRINGS":     evaluator.NewUnmodeled(""),
		"WORLD_TILES": worldTiles(),
		"TheWorld":    theWorld(),
		"TheSim":      theSim(),
		"TheNet":      theNet(),
		"TheCamera":   theCamera(),
		"LOC":         standIn("LOC", map[string]object{"GetTextScale": constant("GetTextScale", num(1))}),
		"AllPlayers":  evaluator.NewTable(),
		"AllRecipes":  evaluator.NewTable(),

		"RADIANS":                    num(180 / math.Pi),
		"DEGREES":                    num(math.Pi / 180),
		"FRAMES":                     num(1.0 / 30),
		"PLAYER_CAMERA_SEE_DISTANCE": num(40),
		"BRANCH":                     str("staging"),
		"PLATFORM":                   str("WIN32_STEAM"),

		"IsSteamDeck":     constant("IsSteamDeck", evaluator.TRUE),
		"IsConsole":       constant("IsConsole", evaluator.TRUE),
		"IsNotConsole":    constant("IsNotConsole", evaluator.FALSE),
		"IsLinux":         constant("IsLinux", evaluator.FALSE),
		"IsPS4":           constant("IsPS4", evaluator.FALSE),
		"GetGhostEnabled": constant("GetGhostEnabled", evaluator.TRUE),
		"GetMaxItemSlots": constant("GetMaxItemSlots", num(15)),
		"GetTime":         constant("GetTime", num(0)),
		"GetTick":         constant("GetTick", num(0)),
	}
}

// inertGlobals absorb every access and call.
var inertGlobals = []string{
	"ACTIONS",
	"CreateSphereEmitter",
	"EmitterManager",
	"EnvelopeManager",
	"GetGameModeProperty",
	"MakeCharacterPhysics",
	"MakeInventoryFloatable",
	"MakeInventoryPhysics",
	"Profile",
	"event_server_data",
	"net_bool",
	"net_float",
	"net_smallbytearray",
	"net_tinybyte",
}

var noopGlobals = []string{
	"MakeCollidesWithElectricField",
	"SetLunarHailBuildupAmountSmall",
}

// worldState mirrors the fields of the world state component.
var worldState = map[string]object{
	"season":                str("autumn"),
	"isautumn":              evaluator.TRUE,
	"iswinter":              evaluator.FALSE,
	"isspring":              evaluator.FALSE,
	"issummer":              evaluator.FALSE,
	"israining":             evaluator.FALSE,
	"remainingdaysinseason": num(15),
	"snowlevel":             num(0),
	"iswet":                 evaluator.FALSE,
	"cycles":                num(5),
	"issnowcovered":         evaluator.FALSE,
	"issnowing":             evaluator.FALSE,
	"time":                  num(1),
	"isday":                 evaluator.TRUE,
	"isdusk":                evaluator.FALSE,
	"isnight":               evaluator.FALSE,
	"iscaveday":             evaluator.TRUE,
	"iscavenight":           evaluator.FALSE,
	"isfullmoon":            evaluator.FALSE,
	"isacidraining":         evaluator.FALSE,
	"timeinphase":           num(0.2),
	"temperature":           num(25),
	"precipitationrate":     num(0.5),
	"autumnlength":          num(20),
	"winterlength":          num(15),
	"springlength":          num(20),
	"summerlength":          num(15),
	"wetness":               num(0),
	"phase":                 str("day"),
	"lunarhaillevel":        num(0),
}

func theWorld() *evaluator.Unmodeled {
	return standIn("TheWorld", map[string]object{
		"ismastersim": evaluator.FALSE,
		"state":       table(worldState),
		"HasTag":      constant("HasTag", evaluator.TRUE),
		"PushEvent":   noop("PushEvent"),
	})
}

func theSim() *evaluator.Unmodeled {
	return standIn("TheSim", map[string]object{
		"GetTickTime":   constant("GetTickTime", num(0.03333)),
		"AtlasContains": constant("AtlasContains", evaluator.TRUE),
	})
}

func theNet() *evaluator.Unmodeled {
	mode := table(map[string]object{
		"modded_mode":        evaluator.TRUE,
		"text":               str("game_mode_text"),
		"description":        str(""),
		"level_type":         str("survival"),
		"mod_game_mode":      evaluator.TRUE,
		"spawn_mode":         str("fixed"),
		"resource_renewal":   evaluator.FALSE,
		"ghost_sanity_drain": evaluator.FALSE,
		"ghost_enabled":      evaluator.TRUE,
		"portal_rez":         evaluator.TRUE,
		"reset_time":         evaluator.TRUE,
		"invalid_recipes":    evaluator.NewTable(),
	})
	return standIn("TheNet", map[string]object{
		"IsDedicated":       constant("IsDedicated", evaluator.TRUE),
		"GetIsClient":       constant("GetIsClient", evaluator.FALSE),
		"GetIsServer":       constant("GetIsServer", evaluator.TRUE),
		"GetServerGameMode": constant("GetServerGameMode", mode),
	})
}

func theCamera() *evaluator.Unmodeled {
	return standIn("TheCamera", map[string]object{
		"GetDownVec": builtin("GetDownVec", func(e *evaluator.Evaluator, _ ...object) object {
			return newVector3(e)
		}),
	})
}

// tileIDs is the ground tile enumeration scripts index by name.
var tileIDs = []struct {
	name string
	id   float64
}{
	{"INVALID", 65535}, {"IMPASSABLE", 1}, {"ROAD", 2}, {"ROCKY", 3}, {"DIRT", 4},
	{"SAVANNA", 5}, {"GRASS", 6}, {"FOREST", 7}, {"MARSH", 8}, {"WEB", 9},
	{"WOODFLOOR", 10}, {"CARPET", 11}, {"CHECKER", 12}, {"CAVE", 13}, {"FUNGUS", 14},
	{"SINKHOLE", 15}, {"UNDERROCK", 16}, {"MUD", 17}, {"BRICK", 18}, {"BRICK_GLOW", 19},
	{"TILES", 20}, {"TILES_GLOW", 21}, {"TRIM", 22}, {"TRIM_GLOW", 23}, {"FUNGUSRED", 24},
	{"FUNGUSGREEN", 25}, {"DECIDUOUS", 30}, {"DESERT_DIRT", 31}, {"SCALE", 32},
	{"LAVAARENA_FLOOR", 33}, {"LAVAARENA_TRIM", 34}, {"QUAGMIRE_PEATFOREST", 35},
	{"QUAGMIRE_PARKFIELD", 36}, {"QUAGMIRE_PARKSTONE", 37}, {"QUAGMIRE_GATEWAY", 38},
	{"QUAGMIRE_SOIL", 39}, {"QUAGMIRE_CITYSTONE", 41}, {"PEBBLEBEACH", 42}, {"METEOR", 43},
	{"SHELLBEACH", 44}, {"ARCHIVE", 45}, {"FUNGUSMOON", 46}, {"FARMING_SOIL", 47},
	{"FUNGUSMOON_NOISE", 120}, {"METEORMINE_NOISE", 121}, {"METEORCOAST_NOISE", 122},
	{"DIRT_NOISE", 123}, {"ABYSS_NOISE", 124}, {"GROUND_NOISE", 125}, {"CAVE_NOISE", 126},
	{"FUNGUS_NOISE", 127}, {"UNDERGROUND", 128}, {"WALL_ROCKY", 151}, {"WALL_DIRT", 152},
	{"WALL_MARSH", 153}, {"WALL_CAVE", 154}, {"WALL_FUNGUS", 155}, {"WALL_SINKHOLE", 156},
	{"WALL_MUD", 157}, {"WALL_TOP", 158}, {"WALL_WOOD", 159}, {"WALL_HUNESTONE", 160},
	{"WALL_HUNESTONE_GLOW", 161}, {"WALL_STONEEYE", 162}, {"WALL_STONEEYE_GLOW", 163},
	{"FAKE_GROUND", 200}, {"OCEAN_START", 201}, {"OCEAN_COASTAL", 201},
	{"OCEAN_COASTAL_SHORE", 202}, {"OCEAN_SWELL", 203}, {"OCEAN_ROUGH", 204},
	{"OCEAN_BRINEPOOL", 205}, {"OCEAN_BRINEPOOL_SHORE", 206}, {"OCEAN_HAZARDOUS", 207},
	{"OCEAN_WATERLOG", 208}, {"OCEAN_END", 247},
}

func worldTiles() *evaluator.Table {
	t := evaluator.NewTable()
	for _, tile := range tileIDs {
		t.SetString(tile.name, num(tile.id))
	}
	return t
}
