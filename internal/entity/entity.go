package entity

import (
	"errors"
	"strings"
)

// ErrNotFound is returned by repositories and services when no record
// matches the requested id or unique key.
var ErrNotFound = errors.New("entity not found")

// Populate selects which one-level relations a fetch should fill in.
// Flags that do not apply to an entity are ignored.
type Populate struct {
	Owner     bool
	Location  bool
	Locations bool
	Items     bool
	Usages    bool
}

// None requests no relations.
var None = Populate{}

// ParsePopulate reads a comma separated list such as "owner,items".
// Unknown names are ignored.
func ParsePopulate(s string) Populate {
	var p Populate
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "owner":
			p.Owner = true
		case "location":
			p.Location = true
		case "locations":
			p.Locations = true
		case "items":
			p.Items = true
		case "usages", "usage":
			p.Usages = true
		}
	}
	return p
}
