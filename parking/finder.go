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

package parking

import (
	"context"
	"fmt"

	"github.com/uzukizheng/parking-assistant/geo"
	"github.com/uzukizheng/parking-assistant/log"
	"github.com/uzukizheng/parking-assistant/tdx"
)

// MaxRadiusMeters caps the search radius; it is also the default.
const MaxRadiusMeters = 1000

// Finder searches TDX parking feeds around a center point.
type Finder struct {
	client *tdx.Client
}

// NewFinder creates a Finder over the given TDX client.
func NewFinder(client *tdx.Client) *Finder {
	return &Finder{client: client}
}

// Find returns off-street carparks within radius meters of center, joined
// with the live availability feed, plus on-street curb segments when the
// city publishes them. The radius is clamped to MaxRadiusMeters; zero or
// negative means the maximum.
func (f *Finder) Find(ctx context.Context, center geo.Point, city City, radius int) ([]Item, error) {
	if radius <= 0 || radius > MaxRadiusMeters {
		radius = MaxRadiusMeters
	}

	items, err := f.findOffStreet(ctx, center, city, radius)
	if err != nil {
		return nil, err
	}

	// On-street coverage varies by city; skip silently when the feed is
	// missing or malformed.
	onStreet, err := f.findOnStreet(ctx, center, city, radius)
	if err != nil {
		log.Debugf("on-street lookup for %s skipped: %v", city, err)
	} else {
		items = append(items, onStreet...)
	}
	return items, nil
}

func (f *Finder) findOffStreet(ctx context.Context, center geo.Point, city City, radius int) ([]Item, error) {
	var carParks struct {
		CarParks []tdx.Record `json:"CarParks"`
	}
	path := fmt.Sprintf("/v1/Parking/OffStreet/CarPark/City/%s", city)
	if err := f.client.GetJSON(ctx, path, nil, &carParks); err != nil {
		return nil, fmt.Errorf("failed to fetch carparks: %w", err)
	}

	var availability struct {
		ParkingAvailabilities []tdx.Record `json:"ParkingAvailabilities"`
	}
	path = fmt.Sprintf("/v1/Parking/OffStreet/ParkingAvailability/City/%s", city)
	if err := f.client.GetJSON(ctx, path, nil, &availability); err != nil {
		return nil, fmt.Errorf("failed to fetch availability: %w", err)
	}

	availByID := make(map[string]tdx.Record, len(availability.ParkingAvailabilities))
	for _, rec := range availability.ParkingAvailabilities {
		if id := rec.ID(); id != "" {
			availByID[id] = rec
		}
	}

	var items []Item
	for _, rec := range carParks.CarParks {
		pos, ok := rec.Position()
		if !ok {
			continue
		}
		if geo.Distance(center, pos) > float64(radius) {
			continue
		}

		id := rec.ID()
		name := rec.Name()
		if name == "" {
			name = "（未命名停車場）"
		}
		if id == "" {
			id = name
		}

		spaces := Spaces{}
		if avail, ok := availByID[id]; ok {
			if n, ok := avail.AvailableSpaces(); ok {
				spaces = KnownSpaces(n)
			}
		}

		items = append(items, Item{
			Type:            TypeOffStreet,
			ID:              id,
			Name:            name,
			AvailableSpaces: spaces,
			Rates:           rec.Rates(),
			ServiceTime:     rec.ServiceTime(),
		})
	}
	return items, nil
}

func (f *Finder) findOnStreet(ctx context.Context, center geo.Point, city City, radius int) ([]Item, error) {
	var segments []tdx.Record
	path := fmt.Sprintf("/v1/Parking/OnStreet/ParkingCurbSegmentAvailability/City/%s", city)
	if err := f.client.GetJSON(ctx, path, nil, &segments); err != nil {
		return nil, err
	}

	var items []Item
	for _, seg := range segments {
		pos, ok := seg.ReferencePosition()
		if !ok {
			continue
		}
		if geo.Distance(center, pos) > float64(radius) {
			continue
		}

		id := seg.SegmentID()
		name := seg.RoadName()
		if name == "" {
			name = "（未命名路段）"
		}
		if id == "" {
			id = name
		}

		spaces := Spaces{}
		if n, ok := seg.AvailableSpaces(); ok {
			spaces = KnownSpaces(n)
		}

		items = append(items, Item{
			Type:            TypeOnStreet,
			ID:              id,
			Name:            name,
			AvailableSpaces: spaces,
			Rates:           seg.Rates(),
			ServiceTime:     seg.ServiceTime(),
		})
	}
	return items, nil
}

// StubItems are canned results for local testing without TDX credentials.
func StubItems() []Item {
	return []Item{
		{
			Type:            TypeOffStreet,
			ID:              "DEMO-001",
			Name:            "示範停車場",
			AvailableSpaces: KnownSpaces(42),
			Rates:           "小客車 30元/小時",
			ServiceTime:     "00:00-24:00",
		},
		{
			Type:            TypeOnStreet,
			ID:              "SEG-100",
			Name:            "示範路段",
			AvailableSpaces: Spaces{},
			Rates:           "平日 20元/小時",
			ServiceTime:     "09:00-18:00",
		},
	}
}
