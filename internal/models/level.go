package models

import "fmt"

// PrecisionLevel is one of the nine ordered geographic-detail tiers a user can
// grant a contact, from planet (least specific) to address (most specific).
type PrecisionLevel string

const (
	LevelPlanet       PrecisionLevel = "planet"
	LevelContinent    PrecisionLevel = "continent"
	LevelCountry      PrecisionLevel = "country"
	LevelState        PrecisionLevel = "state"
	LevelCounty       PrecisionLevel = "county"
	LevelCity         PrecisionLevel = "city"
	LevelNeighborhood PrecisionLevel = "neighborhood"
	LevelStreet       PrecisionLevel = "street"
	LevelAddress      PrecisionLevel = "address"
)

// DefaultLevel applies when no grant exists between two contacts.
const DefaultLevel = LevelPlanet

// PrecisionLevels lists all levels ordered from least to most specific.
var PrecisionLevels = []PrecisionLevel{
	LevelPlanet,
	LevelContinent,
	LevelCountry,
	LevelState,
	LevelCounty,
	LevelCity,
	LevelNeighborhood,
	LevelStreet,
	LevelAddress,
}

var levelIndex = func() map[PrecisionLevel]int {
	m := make(map[PrecisionLevel]int, len(PrecisionLevels))
	for i, l := range PrecisionLevels {
		m[l] = i
	}
	return m
}()

// Index returns the position of the level in the ordered enumeration,
// 0 for planet through 8 for address.
func (l PrecisionLevel) Index() int {
	return levelIndex[l]
}

// Valid reports whether l is one of the nine enumerated levels.
func (l PrecisionLevel) Valid() bool {
	_, ok := levelIndex[l]
	return ok
}

// ParsePrecisionLevel validates a level received at the API boundary.
func ParsePrecisionLevel(s string) (PrecisionLevel, error) {
	l := PrecisionLevel(s)
	if !l.Valid() {
		return "", fmt.Errorf("invalid permission level %q", s)
	}
	return l, nil
}
