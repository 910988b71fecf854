package extract

import (
	"io"
	"log/slog"
	"strings"

	"github.com/funvibe/luaharvest/internal/config"
)

// Prerequisite is a module evaluated before the prefab files, and the
// profile it is evaluated under.
type Prerequisite struct {
	Module  string
	Profile string
}

// Options configures the extraction tasks. The zero value is usable; unset
// fields take the defaults below.
type Options struct {
	Profiles *config.Profiles
	Logger   *slog.Logger
	// Out receives script print output; nil discards it.
	Out io.Writer

	// Prerequisites run in order before the prefab scan.
	Prerequisites []Prerequisite
	// IgnorePrefabs lists prefab files (without extension) never evaluated.
	IgnorePrefabs []string
	// SkipPrefixes skips prefab files whose name starts with any entry.
	SkipPrefixes []string
}

// DefaultPrerequisites mirror the game's own boot order for what prefab
// files depend on.
var DefaultPrerequisites = []Prerequisite{
	{Module: "class", Profile: config.ProfileBase},
	{Module: "constants", Profile: config.ProfileConstants},
	{Module: "simutil", Profile: config.ProfileBase},
	{Module: "vecutil", Profile: config.ProfileBase},
	{Module: "prefabutil", Profile: config.ProfileBase},
	{Module: config.TuningModule, Profile: config.ProfileConstants},
}

// DefaultIgnorePrefabs are prefab files that build worlds, front-end
// screens or characters rather than things.
var DefaultIgnorePrefabs = []string{
	"skinprefabs", "cave", "world", "forest", "frontend", "balloonparty",
	"meteorwarning", "minimap", "carnival_food", "waxed_plants", "snowman",
	"treasurechest", "nightmarecreature", "shadowcreature",
	"container_classified", "walter", "tentacle_pillar", "nightmarerock",
	"woby_rack", "ugc_swap_fx",
	// characters
	"wilson", "willow", "wolfgang", "wendy", "wx78", "wickerbottom", "woodie",
	"wes", "waxwell", "wathgrithr", "webber", "winona", "warly", "wortox",
	"wormwood", "wurt", "wanda", "wonkey",
}

var DefaultSkipPrefixes = []string{"quagmire"}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return discardLogger()
	}
	return o.Logger
}

func (o Options) prerequisites() []Prerequisite {
	if o.Prerequisites == nil {
		return DefaultPrerequisites
	}
	return o.Prerequisites
}

// skipPrefab reports whether the prefab file name (no extension) is left
// out of the scan. Lava arena files are skipped, lavae is not.
func (o Options) skipPrefab(name string) bool {
	ignore := o.IgnorePrefabs
	if ignore == nil {
		ignore = DefaultIgnorePrefabs
	}
	for _, n := range ignore {
		if n == name {
			return true
		}
	}
	prefixes := o.SkipPrefixes
	if prefixes == nil {
		prefixes = DefaultSkipPrefixes
	}
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return strings.HasPrefix(name, "lava") && !strings.HasPrefix(name, "lavae")
}
