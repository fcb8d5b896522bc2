//
// Tencent is pleased to support the open source community by making parking-assistant available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// parking-assistant is licensed under the Apache License Version 2.0.
//
//

package tdx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecord(t *testing.T, raw string) Record {
	t.Helper()
	var r Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func TestRecord_NestedPositionShape(t *testing.T) {
	r := decodeRecord(t, `{
		"CarParkID": "TPE-001",
		"CarParkName": {"Zh_tw": "市府停車場", "En": "City Hall Carpark"},
		"Position": {"PositionLat": 25.0375, "PositionLon": 121.5637},
		"FareDescription": "30元/小時",
		"ServiceTime": "00:00-24:00"
	}`)

	assert.Equal(t, "TPE-001", r.ID())
	assert.Equal(t, "市府停車場", r.Name())
	p, ok := r.Position()
	require.True(t, ok)
	assert.InDelta(t, 25.0375, p.Lat, 1e-9)
	assert.InDelta(t, 121.5637, p.Lon, 1e-9)
	assert.Equal(t, "30元/小時", r.Rates())
	assert.Equal(t, "00:00-24:00", r.ServiceTime())
}

func TestRecord_FlatPositionShape(t *testing.T) {
	r := decodeRecord(t, `{
		"UID": "NTP-77",
		"Name": "板橋站前",
		"Lat": 25.0138,
		"Lon": 121.4628
	}`)

	assert.Equal(t, "NTP-77", r.ID())
	assert.Equal(t, "板橋站前", r.Name())
	p, ok := r.Position()
	require.True(t, ok)
	assert.InDelta(t, 25.0138, p.Lat, 1e-9)
}

func TestRecord_MissingPosition(t *testing.T) {
	r := decodeRecord(t, `{"CarParkID": "X", "CarParkName": "nowhere"}`)
	_, ok := r.Position()
	assert.False(t, ok)
}

func TestRecord_LocalizedNameFallsBackToEnglish(t *testing.T) {
	r := decodeRecord(t, `{"CarParkName": {"En": "Riverside Lot"}}`)
	assert.Equal(t, "Riverside Lot", r.Name())
}

func TestRecord_AvailableSpaces(t *testing.T) {
	withCount := decodeRecord(t, `{"AvailableSpaces": 42}`)
	n, ok := withCount.AvailableSpaces()
	require.True(t, ok)
	assert.Equal(t, 42, n)

	altAlias := decodeRecord(t, `{"AvailableCar": 7}`)
	n, ok = altAlias.AvailableSpaces()
	require.True(t, ok)
	assert.Equal(t, 7, n)

	missing := decodeRecord(t, `{"CarParkID": "X"}`)
	_, ok = missing.AvailableSpaces()
	assert.False(t, ok)
}

func TestRecord_CurbSegmentShape(t *testing.T) {
	r := decodeRecord(t, `{
		"SegmentID": "SEG-100",
		"RoadName": "市民大道",
		"ReferencePosition": {"PositionLat": 25.046, "PositionLon": 121.52},
		"SpacesAvailable": 3,
		"ChargeTime": "09:00-18:00"
	}`)

	assert.Equal(t, "SEG-100", r.SegmentID())
	assert.Equal(t, "市民大道", r.RoadName())
	p, ok := r.ReferencePosition()
	require.True(t, ok)
	assert.InDelta(t, 25.046, p.Lat, 1e-9)
	n, ok := r.AvailableSpaces()
	require.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, "09:00-18:00", r.ServiceTime())
}

func TestRecord_AliasPriorityOrder(t *testing.T) {
	// When several aliases exist, the highest-priority one wins.
	r := decodeRecord(t, `{"CarParkID": "primary", "ID": "secondary"}`)
	assert.Equal(t, "primary", r.ID())
}

func TestStringify_NumericID(t *testing.T) {
	r := decodeRecord(t, `{"CarParkID": 12345}`)
	assert.Equal(t, "12345", r.ID())
}
