package faresweep

import "github.com/shopspring/decimal"

type Offer struct {
	Price       OfferPrice  `json:"price"`
	Itineraries []Itinerary `json:"itineraries"`
}

type OfferPrice struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type Itinerary struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	CarrierCode string       `json:"carrierCode"`
	Departure   SegmentPoint `json:"departure"`
	Arrival     SegmentPoint `json:"arrival"`
}

type SegmentPoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal"`
	At       string `json:"at"`
}

type Dictionaries struct {
	Carriers map[string]string `json:"carriers"`
}

// CarrierName resolves a carrier code to the airline display name shipped in
// the response dictionaries. Unknown codes resolve to the code itself.
func (d Dictionaries) CarrierName(code string) string {
	if name, ok := d.Carriers[code]; ok {
		return name
	}
	return code
}

// Record is one flattened (offer, itinerary, segment) row. Timestamps are
// kept exactly as the API sent them; the terminal sentinel "0" stands for an
// absent terminal.
type Record struct {
	Airline      string
	Departure    string
	TerminalFrom string
	Arrival      string
	TerminalTo   string
	Currency     string
	Price        decimal.Decimal
}

type Route struct {
	Origin      string
	Destination string
}
