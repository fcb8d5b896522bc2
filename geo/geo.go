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

// Package geo provides great-circle distance computation over WGS 84
// coordinates.
package geo

import "math"

// Earth radius constants. Distance works in meters, DistanceKilometers in
// kilometers; both derive from the same sphere.
const (
	earthRadiusMeters     = 6371000.0
	earthRadiusKilometers = 6371.0
)

// Point is a geographic coordinate in floating-point degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Distance returns the haversine great-circle distance between a and b in
// meters. The result is non-negative for valid inputs; NaN inputs propagate
// as NaN.
func Distance(a, b Point) float64 {
	return haversine(a, b) * earthRadiusMeters
}

// DistanceKilometers returns the haversine great-circle distance between a
// and b in kilometers.
func DistanceKilometers(a, b Point) float64 {
	return haversine(a, b) * earthRadiusKilometers
}

// haversine returns the central angle between a and b in radians.
func haversine(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
