//
// Tencent is pleased to support the open source community by making parking-assistant available.
//
// Copyright (C) 2025 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

package tdx

import (
	"encoding/json"

	"github.com/uzukizheng/parking-assistant/geo"
)

// The TDX feeds are not consistent about field names across cities and
// dataset versions. Each logical attribute therefore carries a prioritized
// alias list; the first present, non-nil field wins.
var (
	idAliases        = []string{"CarParkID", "CarParkUID", "ID", "UID", "CarParkNo", "CarParkCode"}
	segmentIDAliases = []string{"SegmentID", "CurbID", "SegmentUID", "ID", "UID"}
	nameAliases      = []string{"CarParkName", "Name", "CarparkName", "carparkName"}
	roadNameAliases  = []string{"RoadName", "SegmentName", "Name"}
	latAliases       = []string{"PositionLat", "Lat", "Latitude"}
	lonAliases       = []string{"PositionLon", "Lon", "Longitude"}
	positionAliases  = []string{"Position", "CarParkPosition", "EntrancePosition"}
	refPointAliases  = []string{"ReferencePosition", "Position", "CenterPosition"}
	availAliases     = []string{"AvailableSpaces", "AvailableCar", "SpacesAvailable", "availablecar", "available_spaces"}
	ratesAliases     = []string{"FareDescription", "FareInfo", "Pricing", "Rate", "rates"}
	serviceAliases   = []string{"ServiceTime", "ChargeTime", "service_time"}
)

// Record is one raw JSON object from a TDX feed.
type Record map[string]any

// firstOf returns the first non-nil value among the aliased keys.
func (r Record) firstOf(aliases []string) (any, bool) {
	for _, k := range aliases {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// ID returns the record identifier, or "" when every alias is absent.
func (r Record) ID() string {
	v, ok := r.firstOf(idAliases)
	if !ok {
		return ""
	}
	return stringify(v)
}

// SegmentID returns the on-street segment identifier.
func (r Record) SegmentID() string {
	v, ok := r.firstOf(segmentIDAliases)
	if !ok {
		return ""
	}
	return stringify(v)
}

// Name returns the carpark name. Name fields may be a plain string or a
// localized object; Zh_tw is preferred over En.
func (r Record) Name() string {
	v, ok := r.firstOf(nameAliases)
	if !ok {
		return ""
	}
	return localizedString(v)
}

// RoadName returns the on-street segment name.
func (r Record) RoadName() string {
	v, ok := r.firstOf(roadNameAliases)
	if !ok {
		return ""
	}
	return localizedString(v)
}

// Position returns the record's coordinate, trying the nested position
// object shapes first and flat lat/lon fields second.
func (r Record) Position() (geo.Point, bool) {
	for _, k := range positionAliases {
		if nested, ok := r[k].(map[string]any); ok {
			if p, ok := pointFrom(Record(nested)); ok {
				return p, true
			}
		}
	}
	return pointFrom(r)
}

// ReferencePosition returns a representative coordinate for an on-street
// segment.
func (r Record) ReferencePosition() (geo.Point, bool) {
	for _, k := range refPointAliases {
		if nested, ok := r[k].(map[string]any); ok {
			if p, ok := pointFrom(Record(nested)); ok {
				return p, true
			}
		}
	}
	return geo.Point{}, false
}

// AvailableSpaces returns the available-space count and whether any alias
// carried a numeric value.
func (r Record) AvailableSpaces() (int, bool) {
	v, ok := r.firstOf(availAliases)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

// Rates returns the fare description, unwrapping localized objects.
func (r Record) Rates() string {
	v, ok := r.firstOf(ratesAliases)
	if !ok {
		return ""
	}
	return localizedString(v)
}

// ServiceTime returns the service-hours description.
func (r Record) ServiceTime() string {
	v, ok := r.firstOf(serviceAliases)
	if !ok {
		return ""
	}
	return localizedString(v)
}

func pointFrom(r Record) (geo.Point, bool) {
	latV, latOK := r.firstOf(latAliases)
	lonV, lonOK := r.firstOf(lonAliases)
	if !latOK || !lonOK {
		return geo.Point{}, false
	}
	lat, latOK := toFloat(latV)
	lon, lonOK := toFloat(lonV)
	if !latOK || !lonOK {
		return geo.Point{}, false
	}
	return geo.Point{Lat: lat, Lon: lon}, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

// localizedString unwraps string-or-localized-object values.
func localizedString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case map[string]any:
		if zh, ok := s["Zh_tw"].(string); ok && zh != "" {
			return zh
		}
		if en, ok := s["En"].(string); ok && en != "" {
			return en
		}
		raw, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(raw)
	default:
		return stringify(v)
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// JSON numbers decode to float64; identifiers are integral.
		return json.Number(jsonNumberString(s)).String()
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

func jsonNumberString(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
