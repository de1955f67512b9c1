package models

import "strings"

type Sport string

const (
	SportFootball   Sport = "Football"
	SportPadel      Sport = "Padel"
	SportTennis     Sport = "Tennis"
	SportBasketball Sport = "Basketball"
	SportRunning    Sport = "Running"
	SportGym        Sport = "Gym"
)

// AllSports lists the sports in display order.
var AllSports = []Sport{SportFootball, SportPadel, SportTennis, SportBasketball, SportRunning, SportGym}

type Area string

const (
	AreaOlaya   Area = "Olaya"
	AreaMalqa   Area = "Al Malqa"
	AreaDQ      Area = "Diplomatic Quarter"
	AreaNarjis  Area = "Al Narjis"
	AreaHitteen Area = "Hitteen"
	AreaOther   Area = "Other"
)

// AllAreas lists the neighborhoods in display order.
var AllAreas = []Area{AreaOlaya, AreaMalqa, AreaDQ, AreaNarjis, AreaHitteen, AreaOther}

// ParseSport matches s against the known sports, ignoring case and
// surrounding space.
func ParseSport(s string) (Sport, bool) {
	s = strings.TrimSpace(s)
	for _, sport := range AllSports {
		if strings.EqualFold(string(sport), s) {
			return sport, true
		}
	}
	return "", false
}

// ParseArea matches s against the known neighborhoods, ignoring case and
// surrounding space.
func ParseArea(s string) (Area, bool) {
	s = strings.TrimSpace(s)
	for _, area := range AllAreas {
		if strings.EqualFold(string(area), s) {
			return area, true
		}
	}
	return "", false
}
