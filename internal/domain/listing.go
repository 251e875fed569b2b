package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Price is a seller-entered price exactly as it arrived on the wire.
// It may be a JSON string ("$3.50", "3.50", "free") or a JSON number (3.5),
// and it marshals back to the same representation.
type Price struct {
	raw     string
	numeric bool
}

// PriceFromString builds a Price from display text such as "$3.50"
func PriceFromString(s string) Price {
	return Price{raw: s}
}

// PriceFromNumber builds a numeric Price
func PriceFromNumber(f float64) Price {
	return Price{raw: strconv.FormatFloat(f, 'f', -1, 64), numeric: true}
}

// String returns the original price text
func (p Price) String() string {
	return p.raw
}

// IsNumber reports whether the price arrived as a JSON number
func (p Price) IsNumber() bool {
	return p.numeric
}

// IsZero reports whether the price was absent
func (p Price) IsZero() bool {
	return p.raw == "" && !p.numeric
}

// MarshalJSON re-emits the price in its original form
func (p Price) MarshalJSON() ([]byte, error) {
	if p.numeric {
		return []byte(p.raw), nil
	}
	if p.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(p.raw)
}

// UnmarshalJSON accepts a string, a number or null
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*p = Price{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price{raw: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("price must be a string or number, got %s", string(data))
	}
	*p = Price{raw: n.String(), numeric: true}
	return nil
}

// Quantity is an amount of produce. Listing forms submit it as either a
// number or a numeric string; anything unparseable decodes as zero.
type Quantity float64

// UnmarshalJSON accepts a number, a numeric string or null
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*q = 0
		return nil
	}

	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		*q = 0
		return nil
	}
	*q = Quantity(f)
	return nil
}

// ProduceItem is a single priced item in a seller listing
type ProduceItem struct {
	Name     string   `json:"name"`
	Quantity Quantity `json:"quantity"`
	Unit     string   `json:"unit"`
	Price    Price    `json:"price"`
}

// SellerListing is one seller's offering at a location and time, as returned
// by the produce query service
type SellerListing struct {
	UID           string        `json:"uid,omitempty"`
	Name          string        `json:"name,omitempty"`
	UserName      string        `json:"user_name,omitempty"`
	Location      string        `json:"location"`
	Time          string        `json:"time,omitempty"`
	DistanceMiles float64       `json:"distance_miles"`
	Lat           float64       `json:"lat,omitempty"`
	Lon           float64       `json:"lon,omitempty"`
	ProduceItems  []ProduceItem `json:"produce_items"`
}

// DisplayName returns the seller's name, falling back to the user name
func (l SellerListing) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	return l.UserName
}

// ProduceQuery describes a lookup against the produce query service.
// Either Zip or both Lat and Lon must be set.
type ProduceQuery struct {
	Produce string
	Zip     string
	Lat     *float64
	Lon     *float64
	Limit   int
}

// ProduceQueryResponse represents the response from the produce query service
type ProduceQueryResponse struct {
	MatchingListings []SellerListing `json:"matching_listings"`
}
