package entity

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Quantity is the count of an item as supplied by the caller. It is kept
// in textual form so malformed input survives until validation.
type Quantity string

// QuantityOf returns a quantity holding n.
func QuantityOf(n int64) *Quantity {
	q := Quantity(strconv.FormatInt(n, 10))
	return &q
}

// RawQuantity returns a quantity holding s verbatim.
func RawQuantity(s string) *Quantity {
	q := Quantity(s)
	return &q
}

// Int64 parses the quantity as a base 10 integer.
func (q Quantity) Int64() (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(string(q)), 10, 64)
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if n, err := q.Int64(); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(q))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (q *Quantity) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*q = Quantity(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("quantity must be a number or a string")
	}
	*q = Quantity(s)
	return nil
}

// Item is a thing kept at a location. A nil Quantity marks an atomic item.
type Item struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	LocationID  int64     `json:"location_id"`
	Description string    `json:"description"`
	Quantity    *Quantity `json:"quantity,omitempty"`

	Owner    *User     `json:"owner,omitempty"`
	Location *Location `json:"location,omitempty"`
	Usages   []*Usage  `json:"usages,omitempty"`
}

// ApplyTo copies the scalar fields of i onto stored.
func (i *Item) ApplyTo(stored *Item) {
	stored.OwnerID = i.OwnerID
	stored.LocationID = i.LocationID
	stored.Description = i.Description
	stored.Quantity = i.Quantity
}
