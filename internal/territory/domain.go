// Package territory models the fixed 5-level territory hierarchy
// (Regional > Branch > Subbranch > Cluster > Kabupaten) used to scope
// every rollup in the warehouse.
package territory

// Level identifies one tier of the hierarchy.
type Level string

// Hierarchy tiers, ordered from widest to narrowest.
const (
	LevelRegional  Level = "regional"
	LevelBranch    Level = "branch"
	LevelSubbranch Level = "subbranch"
	LevelCluster   Level = "cluster"
	LevelKabupaten Level = "kabupaten"
)

var orderedLevels = []Level{LevelRegional, LevelBranch, LevelSubbranch, LevelCluster, LevelKabupaten}

// Levels returns the hierarchy tiers in containment order.
func Levels() []Level {
	out := make([]Level, len(orderedLevels))
	copy(out, orderedLevels)
	return out
}

// Column returns the warehouse column carrying this level's name.
func (l Level) Column() string {
	return string(l)
}

// Label returns the uppercase section label used by presentation rows.
func (l Level) Label() string {
	switch l {
	case LevelRegional:
		return "REGIONAL"
	case LevelBranch:
		return "BRANCH"
	case LevelSubbranch:
		return "SUBBRANCH"
	case LevelCluster:
		return "CLUSTER"
	case LevelKabupaten:
		return "KABUPATEN"
	}
	return ""
}

// Parent returns the containing level, or LevelRegional for itself.
func (l Level) Parent() Level {
	for i := 1; i < len(orderedLevels); i++ {
		if orderedLevels[i] == l {
			return orderedLevels[i-1]
		}
	}
	return LevelRegional
}

// Valid reports whether l names a known hierarchy tier.
func (l Level) Valid() bool {
	for _, known := range orderedLevels {
		if known == l {
			return true
		}
	}
	return false
}

// Node is one entry of the territory reference table.
type Node struct {
	Level  Level  `json:"level"`
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
}
