// Package zkb provides the zKillboard side of the pipeline: parsing
// user-supplied killboard links and fetching paginated kill lists.
package zkb

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// linkPattern matches zKillboard entity URLs of the form
// zkillboard.com/<kind>/<id>, anywhere inside a free-form string.
var linkPattern = regexp.MustCompile(`zkillboard\.com/(\w+)/(\d+)`)

// ErrInvalidLinkFormat is returned when the input does not contain a
// recognizable zKillboard entity URL.
var ErrInvalidLinkFormat = errors.New("invalid zKillboard link format")

// UnsupportedKindError is returned when the link names an entity kind
// the zKillboard API does not support for kill lists.
type UnsupportedKindError struct {
	Kind string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported entity kind: %s", e.Kind)
}

// Kind identifies the type of entity a killboard link points at.
type Kind string

const (
	KindCorporation Kind = "corporation"
	KindAlliance    Kind = "alliance"
	KindCharacter   Kind = "character"
	KindSystem      Kind = "system"
	KindRegion      Kind = "region"
)

// apiParams maps a link kind to the query-parameter name the zKillboard
// API expects in list URLs.
var apiParams = map[Kind]string{
	KindCorporation: "corporationID",
	KindAlliance:    "allianceID",
	KindCharacter:   "characterID",
	KindSystem:      "solarSystemID",
	KindRegion:      "regionID",
}

// EntityRef is a parsed killboard entity reference. It is derived once
// from user input and never mutated.
type EntityRef struct {
	Kind Kind
	ID   int64
}

// APIParam returns the zKillboard API parameter name for the reference's kind.
func (r EntityRef) APIParam() string {
	return apiParams[r.Kind]
}

// ParseLink extracts an entity reference from a free-form string that is
// expected to contain a zKillboard URL.
func ParseLink(link string) (EntityRef, error) {
	m := linkPattern.FindStringSubmatch(link)
	if m == nil {
		return EntityRef{}, ErrInvalidLinkFormat
	}

	kind := Kind(m[1])
	if _, ok := apiParams[kind]; !ok {
		return EntityRef{}, &UnsupportedKindError{Kind: m[1]}
	}

	id, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return EntityRef{}, ErrInvalidLinkFormat
	}

	return EntityRef{Kind: kind, ID: id}, nil
}
