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

// Package poi holds the static public-restroom table and the nearest
// neighbor query over it.
package poi

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/uzukizheng/parking-assistant/geo"
	"github.com/uzukizheng/parking-assistant/log"
)

// DefaultNearestCount is the number of records returned when the caller
// does not ask for a specific count.
const DefaultNearestCount = 5

// Restroom is one public-restroom record. The table is loaded once at
// process start and never mutated.
type Restroom struct {
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Location   geo.Point `json:"location"`
	Toilets    int       `json:"toilets"`
	Accessible int       `json:"accessible"`
}

// Match pairs a restroom with its distance from a query point, in meters.
type Match struct {
	Restroom Restroom `json:"restroom"`
	Distance float64  `json:"distance_m"`
}

// Table is an immutable in-memory set of restroom records.
type Table struct {
	records []Restroom
}

// NewTable builds a table from the given records.
func NewTable(records []Restroom) *Table {
	return &Table{records: records}
}

// LoadTable reads the restroom CSV at path. Expected columns:
// name, address, latitude, longitude, toilets, accessible. A header row is
// detected and skipped; malformed rows are skipped with a warning.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open restroom table: %w", err)
	}
	defer f.Close()
	return parseTable(f)
}

func parseTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var records []Restroom
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read restroom table: %w", err)
		}
		line++
		if len(row) < 4 {
			log.Warnf("restroom table line %d: expected at least 4 columns, got %d", line, len(row))
			continue
		}
		lat, latErr := strconv.ParseFloat(row[2], 64)
		lon, lonErr := strconv.ParseFloat(row[3], 64)
		if latErr != nil || lonErr != nil {
			if line == 1 {
				// Header row.
				continue
			}
			log.Warnf("restroom table line %d: bad coordinates %q/%q", line, row[2], row[3])
			continue
		}
		rec := Restroom{
			Name:     row[0],
			Address:  row[1],
			Location: geo.Point{Lat: lat, Lon: lon},
		}
		if len(row) > 4 {
			rec.Toilets, _ = strconv.Atoi(row[4])
		}
		if len(row) > 5 {
			rec.Accessible, _ = strconv.Atoi(row[5])
		}
		records = append(records, rec)
	}
	return NewTable(records), nil
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	return len(t.records)
}

// Nearest returns the n records closest to q, ascending by distance. Ties
// preserve the original table order. An empty table yields an empty result;
// n <= 0 falls back to DefaultNearestCount. This is a full scan, acceptable
// because the table is small and static.
func (t *Table) Nearest(q geo.Point, n int) []Match {
	if n <= 0 {
		n = DefaultNearestCount
	}
	matches := make([]Match, 0, len(t.records))
	for _, rec := range t.records {
		matches = append(matches, Match{
			Restroom: rec,
			Distance: geo.Distance(q, rec.Location),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}
