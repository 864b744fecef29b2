package faresweep

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseOffers flattens one response document into one record per
// (offer, itinerary, segment). The document must carry a top-level "data"
// array; anything else fails with ErrMalformedOffer.
//
// Inside the list the parser is lenient: offers without a parsable price and
// segments without a carrier or timestamps contribute no records, unknown
// carrier codes fall back to the raw code, and a missing terminal becomes
// the sentinel "0".
func ParseOffers(body []byte) ([]Record, error) {
	var doc struct {
		Data         json.RawMessage `json:"data"`
		Dictionaries Dictionaries    `json:"dictionaries"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOffer, err)
	}
	if len(doc.Data) == 0 || bytes.Equal(doc.Data, []byte("null")) {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedOffer)
	}

	var offers []Offer
	if err := json.Unmarshal(doc.Data, &offers); err != nil {
		return nil, fmt.Errorf("%w: data is not a list: %v", ErrMalformedOffer, err)
	}

	var records []Record
	for _, offer := range offers {
		price, err := decimal.NewFromString(offer.Price.Total)
		if err != nil || offer.Price.Currency == "" {
			continue
		}

		for _, itinerary := range offer.Itineraries {
			for _, segment := range itinerary.Segments {
				if segment.CarrierCode == "" || segment.Departure.At == "" || segment.Arrival.At == "" {
					continue
				}

				records = append(records, Record{
					Airline:      doc.Dictionaries.CarrierName(segment.CarrierCode),
					Departure:    segment.Departure.At,
					TerminalFrom: terminalOrSentinel(segment.Departure.Terminal),
					Arrival:      segment.Arrival.At,
					TerminalTo:   terminalOrSentinel(segment.Arrival.Terminal),
					Currency:     offer.Price.Currency,
					Price:        price,
				})
			}
		}
	}

	return records, nil
}

// terminalOrSentinel keeps the upstream convention of terminal "0" meaning
// "no terminal". A real terminal named "0" is indistinguishable from an
// absent one; downstream consumers rely on that.
func terminalOrSentinel(terminal string) string {
	if terminal == "" {
		return "0"
	}
	return terminal
}
