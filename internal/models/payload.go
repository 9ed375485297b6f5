package models

import (
	"encoding/json"
	"fmt"
)

// Named-location visibility modes.
const (
	VisibilityPrivate  = "private"
	VisibilityAll      = "all"
	VisibilitySelected = "selected"
)

// NamedLocation is a semantic label ("Home", "Work") with its own visibility
// rule, independent of the geographic precision grant.
type NamedLocation struct {
	Label string `json:"label"`
	// Visibility is private, all or selected.
	Visibility string `json:"-"`
	// SelectedIDs holds the contact IDs allowed to see the label when
	// Visibility is selected.
	SelectedIDs []string `json:"-"`
}

// VisibleTo reports whether the named location label may be shown to viewer.
// The owner always sees their own label.
func (n *NamedLocation) VisibleTo(viewerID, ownerID string) bool {
	if viewerID == ownerID {
		return true
	}
	switch n.Visibility {
	case VisibilityAll:
		return true
	case VisibilitySelected:
		for _, id := range n.SelectedIDs {
			if id == viewerID {
				return true
			}
		}
	}
	return false
}

// LocationPayload is the parsed form of a published location blob.
type LocationPayload struct {
	Hierarchy     map[string]string
	NamedLocation *NamedLocation
	// Timestamp is the optional client-supplied observation time, passed
	// through untouched.
	Timestamp *string
}

// rawPayload matches the wire shape. namedLocation needs custom handling
// because legacy clients sent a bare string instead of the wrapper object.
type rawPayload struct {
	Hierarchy     map[string]string `json:"hierarchy"`
	NamedLocation json.RawMessage   `json:"namedLocation"`
	Timestamp     *string           `json:"timestamp"`
}

type rawNamedLocation struct {
	Label     string          `json:"label"`
	VisibleTo json.RawMessage `json:"visibleTo"`
}

// ParseLocationPayload decodes a stored location blob. Callers treat an error
// as "no location" rather than failing the request.
func ParseLocationPayload(data string) (*LocationPayload, error) {
	var raw rawPayload
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse location payload: %w", err)
	}

	p := &LocationPayload{
		Hierarchy: raw.Hierarchy,
		Timestamp: raw.Timestamp,
	}
	if p.Hierarchy == nil {
		p.Hierarchy = map[string]string{}
	}

	if len(raw.NamedLocation) > 0 && string(raw.NamedLocation) != "null" {
		named, err := parseNamedLocation(raw.NamedLocation)
		if err != nil {
			return nil, err
		}
		p.NamedLocation = named
	}

	return p, nil
}

func parseNamedLocation(data json.RawMessage) (*NamedLocation, error) {
	// Legacy format: a bare string label. Treated as private for safety.
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		return &NamedLocation{Label: label, Visibility: VisibilityPrivate}, nil
	}

	var raw rawNamedLocation
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse named location: %w", err)
	}

	named := &NamedLocation{Label: raw.Label, Visibility: VisibilityPrivate}
	if len(raw.VisibleTo) == 0 || string(raw.VisibleTo) == "null" {
		return named, nil
	}

	var mode string
	if err := json.Unmarshal(raw.VisibleTo, &mode); err == nil {
		switch mode {
		case VisibilityPrivate, VisibilityAll:
			named.Visibility = mode
			return named, nil
		default:
			return nil, fmt.Errorf("invalid named location visibility %q", mode)
		}
	}

	var ids []string
	if err := json.Unmarshal(raw.VisibleTo, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse named location visibility: %w", err)
	}
	named.Visibility = VisibilitySelected
	named.SelectedIDs = ids
	return named, nil
}
