package services

import (
	"time"

	"whereabouts-backend/internal/models"
)

// stalenessThreshold is how long after the last publish a location record is
// reported stale. Fixed for the whole system, not per-user.
const stalenessThreshold = 30 * time.Minute

// hierarchyKeyLevels maps a hierarchy key to the precision bucket that gates
// its disclosure. The nine canonical keys map to their own level; "zip" is a
// legacy synonym bucketed with city. Keys absent from this table are never
// disclosed.
var hierarchyKeyLevels = map[string]models.PrecisionLevel{
	"continent":    models.LevelContinent,
	"country":      models.LevelCountry,
	"state":        models.LevelState,
	"county":       models.LevelCounty,
	"city":         models.LevelCity,
	"zip":          models.LevelCity,
	"neighborhood": models.LevelNeighborhood,
	"street":       models.LevelStreet,
	"address":      models.LevelAddress,
}

// FilteredLocation is the view of a location payload disclosed to one viewer.
type FilteredLocation struct {
	Hierarchy     map[string]string `json:"hierarchy"`
	NamedLocation *string           `json:"namedLocation"`
	Timestamp     *string           `json:"timestamp,omitempty"`
}

// FilterPayload produces the view of payload that viewer may see given the
// precision level the owner granted them.
//
// The two axes are independent: the hierarchy is truncated strictly by level
// index (a planet grant yields an empty hierarchy even when coarse keys like
// continent are present), while the named location label is governed solely
// by its own visibility rule and the viewer's identity. The client timestamp
// passes through untouched.
func FilterPayload(payload *models.LocationPayload, level models.PrecisionLevel, viewerID, ownerID string) *FilteredLocation {
	filtered := &FilteredLocation{
		Hierarchy: map[string]string{},
		Timestamp: payload.Timestamp,
	}

	allowed := level.Index()
	for key, value := range payload.Hierarchy {
		keyLevel, known := hierarchyKeyLevels[key]
		if !known {
			continue
		}
		if keyLevel.Index() <= allowed {
			filtered.Hierarchy[key] = value
		}
	}

	if payload.NamedLocation != nil && payload.NamedLocation.VisibleTo(viewerID, ownerID) {
		label := payload.NamedLocation.Label
		filtered.NamedLocation = &label
	}

	return filtered
}

// IsStale reports whether a record last updated at updatedAt has exceeded the
// freshness threshold.
func IsStale(updatedAt, now time.Time) bool {
	return now.Sub(updatedAt) > stalenessThreshold
}
