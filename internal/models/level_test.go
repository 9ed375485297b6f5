package models

import "testing"

func TestPrecisionLevelOrdering(t *testing.T) {
	if len(PrecisionLevels) != 9 {
		t.Fatalf("len(PrecisionLevels) = %d, want 9", len(PrecisionLevels))
	}
	if PrecisionLevels[0] != LevelPlanet {
		t.Errorf("first level = %s, want planet", PrecisionLevels[0])
	}
	if PrecisionLevels[8] != LevelAddress {
		t.Errorf("last level = %s, want address", PrecisionLevels[8])
	}
	for i, l := range PrecisionLevels {
		if l.Index() != i {
			t.Errorf("%s.Index() = %d, want %d", l, l.Index(), i)
		}
	}
}

func TestDefaultLevel(t *testing.T) {
	if DefaultLevel != LevelPlanet {
		t.Errorf("DefaultLevel = %s, want planet", DefaultLevel)
	}
}

func TestParsePrecisionLevel(t *testing.T) {
	for _, l := range PrecisionLevels {
		got, err := ParsePrecisionLevel(string(l))
		if err != nil {
			t.Errorf("ParsePrecisionLevel(%s): %v", l, err)
		}
		if got != l {
			t.Errorf("ParsePrecisionLevel(%s) = %s", l, got)
		}
	}

	for _, bad := range []string{"", "galaxy", "Planet", "CITY", "city "} {
		if _, err := ParsePrecisionLevel(bad); err == nil {
			t.Errorf("ParsePrecisionLevel(%q): want error", bad)
		}
	}
}

func TestPrecisionLevelValid(t *testing.T) {
	if !LevelNeighborhood.Valid() {
		t.Error("neighborhood should be valid")
	}
	if PrecisionLevel("zip").Valid() {
		t.Error("zip is a hierarchy key, not a level")
	}
}
