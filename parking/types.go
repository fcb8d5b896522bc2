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

// Package parking searches TDX parking data around a coordinate and
// normalizes the results into the tool-response envelope.
package parking

import (
	"encoding/json"
	"fmt"
)

// City is a TDX-supported city code.
type City string

// Supported cities.
const (
	CityTaipei    City = "Taipei"
	CityNewTaipei City = "NewTaipei"
	CityTaichung  City = "Taichung"
	CityTainan    City = "Tainan"
	CityKaohsiung City = "Kaohsiung"
	CityKeelung   City = "Keelung"
	CityHsinchu   City = "Hsinchu"
	CityChiayi    City = "Chiayi"
)

var cities = map[City]bool{
	CityTaipei:    true,
	CityNewTaipei: true,
	CityTaichung:  true,
	CityTainan:    true,
	CityKaohsiung: true,
	CityKeelung:   true,
	CityHsinchu:   true,
	CityChiayi:    true,
}

// ParseCity validates a city string.
func ParseCity(s string) (City, error) {
	c := City(s)
	if !cities[c] {
		return "", fmt.Errorf("unsupported city: %q", s)
	}
	return c, nil
}

// ItemType distinguishes off-street lots from on-street curb segments.
type ItemType string

// Item types.
const (
	TypeOffStreet ItemType = "OffStreet"
	TypeOnStreet  ItemType = "OnStreet"
)

// UnknownSpaces is the literal used when no availability feed covers an
// item.
const UnknownSpaces = "未知"

// Spaces is an available-space count that may be the literal UnknownSpaces
// when the availability feed has no entry for the item.
type Spaces struct {
	Count int
	Known bool
}

// KnownSpaces builds a known count.
func KnownSpaces(n int) Spaces {
	return Spaces{Count: n, Known: true}
}

// MarshalJSON encodes a known count as a number and an unknown one as the
// literal string.
func (s Spaces) MarshalJSON() ([]byte, error) {
	if s.Known {
		return json.Marshal(s.Count)
	}
	return json.Marshal(UnknownSpaces)
}

// UnmarshalJSON accepts both the numeric and the literal form.
func (s *Spaces) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		s.Count = n
		s.Known = true
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("available_spaces must be a number or string: %w", err)
	}
	s.Known = false
	return nil
}

// Item is one parking facility or curb segment near the query point.
type Item struct {
	Type            ItemType `json:"type"`
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	AvailableSpaces Spaces   `json:"available_spaces"`
	Rates           string   `json:"rates,omitempty"`
	ServiceTime     string   `json:"service_time,omitempty"`
}

// Response is the tool-provider envelope.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    []Item `json:"data"`
}

// Success wraps items in a success envelope; Data is never nil.
func Success(items []Item) *Response {
	if items == nil {
		items = []Item{}
	}
	return &Response{Status: "success", Data: items}
}

// Failure wraps a message in an error envelope.
func Failure(message string) *Response {
	return &Response{Status: "error", Message: message, Data: []Item{}}
}
