package models

import "testing"

func TestParseLocationPayload(t *testing.T) {
	p, err := ParseLocationPayload(`{
		"hierarchy": {"country": "USA", "city": "Seattle"},
		"namedLocation": {"label": "Work", "visibleTo": "all"},
		"timestamp": "2026-03-01T12:00:00Z"
	}`)
	if err != nil {
		t.Fatalf("ParseLocationPayload: %v", err)
	}
	if p.Hierarchy["city"] != "Seattle" || p.Hierarchy["country"] != "USA" {
		t.Errorf("hierarchy = %v", p.Hierarchy)
	}
	if p.NamedLocation == nil || p.NamedLocation.Label != "Work" || p.NamedLocation.Visibility != VisibilityAll {
		t.Errorf("namedLocation = %+v, want Work visible to all", p.NamedLocation)
	}
	if p.Timestamp == nil || *p.Timestamp != "2026-03-01T12:00:00Z" {
		t.Errorf("timestamp = %v", p.Timestamp)
	}
}

func TestParseLocationPayloadMinimal(t *testing.T) {
	p, err := ParseLocationPayload(`{"hierarchy": {"planet": "Earth"}}`)
	if err != nil {
		t.Fatalf("ParseLocationPayload: %v", err)
	}
	if p.NamedLocation != nil {
		t.Errorf("namedLocation = %+v, want nil", p.NamedLocation)
	}
	if p.Timestamp != nil {
		t.Errorf("timestamp = %v, want nil", p.Timestamp)
	}
}

// Missing or null hierarchy parses to an empty map, never nil.
func TestParseLocationPayloadMissingHierarchy(t *testing.T) {
	for _, data := range []string{`{}`, `{"hierarchy": null}`} {
		p, err := ParseLocationPayload(data)
		if err != nil {
			t.Fatalf("ParseLocationPayload(%s): %v", data, err)
		}
		if p.Hierarchy == nil {
			t.Errorf("ParseLocationPayload(%s): hierarchy is nil", data)
		}
		if len(p.Hierarchy) != 0 {
			t.Errorf("ParseLocationPayload(%s): hierarchy = %v", data, p.Hierarchy)
		}
	}
}

// Legacy clients published the named location as a bare string.
func TestParseLocationPayloadLegacyNamedLocation(t *testing.T) {
	p, err := ParseLocationPayload(`{"hierarchy": {}, "namedLocation": "Home"}`)
	if err != nil {
		t.Fatalf("ParseLocationPayload: %v", err)
	}
	if p.NamedLocation == nil || p.NamedLocation.Label != "Home" {
		t.Fatalf("namedLocation = %+v, want Home", p.NamedLocation)
	}
	if p.NamedLocation.Visibility != VisibilityPrivate {
		t.Errorf("visibility = %s, want private", p.NamedLocation.Visibility)
	}
}

func TestParseLocationPayloadSelectedIDs(t *testing.T) {
	p, err := ParseLocationPayload(`{"hierarchy": {}, "namedLocation": {"label": "Gym", "visibleTo": ["u1", "u2"]}}`)
	if err != nil {
		t.Fatalf("ParseLocationPayload: %v", err)
	}
	n := p.NamedLocation
	if n == nil || n.Visibility != VisibilitySelected {
		t.Fatalf("namedLocation = %+v, want selected visibility", n)
	}
	if len(n.SelectedIDs) != 2 || n.SelectedIDs[0] != "u1" || n.SelectedIDs[1] != "u2" {
		t.Errorf("selectedIDs = %v", n.SelectedIDs)
	}
}

func TestParseLocationPayloadMissingVisibleTo(t *testing.T) {
	p, err := ParseLocationPayload(`{"hierarchy": {}, "namedLocation": {"label": "Home"}}`)
	if err != nil {
		t.Fatalf("ParseLocationPayload: %v", err)
	}
	if p.NamedLocation == nil || p.NamedLocation.Visibility != VisibilityPrivate {
		t.Errorf("namedLocation = %+v, want private default", p.NamedLocation)
	}
}

func TestParseLocationPayloadInvalid(t *testing.T) {
	cases := []string{
		`{not json`,
		`{"hierarchy": {}, "namedLocation": {"label": "Home", "visibleTo": "everyone"}}`,
		`{"hierarchy": {}, "namedLocation": {"label": "Home", "visibleTo": 42}}`,
	}
	for _, data := range cases {
		if _, err := ParseLocationPayload(data); err == nil {
			t.Errorf("ParseLocationPayload(%s): want error", data)
		}
	}
}

func TestNamedLocationVisibleTo(t *testing.T) {
	tests := []struct {
		name   string
		named  NamedLocation
		viewer string
		want   bool
	}{
		{"owner sees private", NamedLocation{Label: "Home", Visibility: VisibilityPrivate}, "owner", true},
		{"contact blocked by private", NamedLocation{Label: "Home", Visibility: VisibilityPrivate}, "viewer", false},
		{"contact sees all", NamedLocation{Label: "Home", Visibility: VisibilityAll}, "viewer", true},
		{"selected member", NamedLocation{Label: "Home", Visibility: VisibilitySelected, SelectedIDs: []string{"viewer"}}, "viewer", true},
		{"selected non-member", NamedLocation{Label: "Home", Visibility: VisibilitySelected, SelectedIDs: []string{"other"}}, "viewer", false},
		{"owner sees selected without membership", NamedLocation{Label: "Home", Visibility: VisibilitySelected}, "owner", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.named.VisibleTo(tt.viewer, "owner"); got != tt.want {
				t.Errorf("VisibleTo = %v, want %v", got, tt.want)
			}
		})
	}
}
