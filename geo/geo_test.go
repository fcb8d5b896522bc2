//
// Tencent is pleased to support the open source community by making parking-assistant available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// parking-assistant is licensed under the Apache License Version 2.0.
//
//

package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_Symmetric(t *testing.T) {
	pairs := []struct {
		a, b Point
	}{
		{Point{Lat: 25.0375, Lon: 121.5637}, Point{Lat: 25.0478, Lon: 121.5170}},
		{Point{Lat: 0, Lon: 0}, Point{Lat: -33.8688, Lon: 151.2093}},
		{Point{Lat: 90, Lon: 0}, Point{Lat: -90, Lon: 0}},
	}
	for _, p := range pairs {
		assert.InDelta(t, Distance(p.a, p.b), Distance(p.b, p.a), 1e-9)
	}
}

func TestDistance_ZeroForSamePoint(t *testing.T) {
	p := Point{Lat: 25.0375, Lon: 121.5637}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistance_KnownValue(t *testing.T) {
	// Taipei 101 to Taipei Main Station, roughly 4.9 km.
	a := Point{Lat: 25.0339, Lon: 121.5645}
	b := Point{Lat: 25.0478, Lon: 121.5170}
	d := Distance(a, b)
	assert.Greater(t, d, 4500.0)
	assert.Less(t, d, 5500.0)
}

func TestDistanceKilometers_ScalesToMeters(t *testing.T) {
	a := Point{Lat: 25.0339, Lon: 121.5645}
	b := Point{Lat: 25.0478, Lon: 121.5170}
	assert.InDelta(t, Distance(a, b), DistanceKilometers(a, b)*1000, 1e-6)
}

func TestDistance_NaNPropagates(t *testing.T) {
	a := Point{Lat: math.NaN(), Lon: 121.5}
	b := Point{Lat: 25.0, Lon: 121.5}
	assert.True(t, math.IsNaN(Distance(a, b)))
}
