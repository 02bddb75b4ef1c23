package domain

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// RequiredAddFields lists the form fields that must be present on POST /add.
// coffee_price must be present too, although it may be blank.
var RequiredAddFields = []string{
	"name", "map_url", "img_url", "location",
	"has_sockets", "has_toilet", "has_wifi", "can_take_calls",
	"seats", "coffee_price",
}

// ErrBlankField is returned by CafeInput.Validate when a required text
// field is empty after trimming.
var ErrBlankField = errors.New("required field is blank")

// CafeInput carries the attributes of a cafe to be created. It is built by
// the HTTP layer from a form body and consumed by the repository.
type CafeInput struct {
	Name         string
	MapURL       string
	ImgURL       string
	Location     string
	Seats        string
	HasToilet    bool
	HasWifi      bool
	HasSockets   bool
	CanTakeCalls bool
	CoffeePrice  *string
}

// Normalize trims all text fields and converts them to Unicode NFC so that
// visually identical names ("Café" typed two ways) compare equal. A blank
// coffee price becomes nil.
func (in CafeInput) Normalize() CafeInput {
	in.Name = NormalizeText(in.Name)
	in.MapURL = strings.TrimSpace(in.MapURL)
	in.ImgURL = strings.TrimSpace(in.ImgURL)
	in.Location = NormalizeText(in.Location)
	in.Seats = NormalizeText(in.Seats)
	in.CoffeePrice = NormalizePrice(in.CoffeePrice)
	return in
}

// Validate reports ErrBlankField when any required text field is empty.
// Call it on a normalized input.
func (in CafeInput) Validate() error {
	for _, v := range []string{in.Name, in.MapURL, in.ImgURL, in.Location, in.Seats} {
		if v == "" {
			return ErrBlankField
		}
	}
	return nil
}

// Cafe builds the persistence model for this input. The ID is left zero so
// the store assigns it.
func (in CafeInput) Cafe() *Cafe {
	return &Cafe{
		Name:         in.Name,
		MapURL:       in.MapURL,
		ImgURL:       in.ImgURL,
		Location:     in.Location,
		Seats:        in.Seats,
		HasToilet:    in.HasToilet,
		HasWifi:      in.HasWifi,
		HasSockets:   in.HasSockets,
		CanTakeCalls: in.CanTakeCalls,
		CoffeePrice:  in.CoffeePrice,
	}
}

// NormalizeText trims s and returns its NFC form.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizePrice trims a price label, returning nil for nil or blank input.
func NormalizePrice(p *string) *string {
	if p == nil {
		return nil
	}
	v := NormalizeText(*p)
	if v == "" {
		return nil
	}
	return &v
}

// ParseFlag converts a form value into an amenity flag. "true" in any letter
// case is true; everything else, including "1", "yes" and the empty string,
// is false.
func ParseFlag(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
