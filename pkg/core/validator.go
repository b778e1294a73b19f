package core

import (
	"strconv"
	"strings"

	"github.com/nikolaydubina/fpdecimal"
)

// OrderIntent is a raw order intent as delivered by the ingestion adapter.
// All value fields are still text; parsing them is part of validation.
type OrderIntent struct {
	ClientOrderID string
	Instrument    string
	Side          string
	Quantity      string
	Price         string
}

// ParsedIntent holds the fields of an intent that parsed successfully. It is
// populated best-effort even when validation fails, so a Rejected event can
// carry whatever was recovered (zero values for the rest).
type ParsedIntent struct {
	ClientOrderID string
	Instrument    string
	SideCode      int
	Side          Side
	Quantity      int64
	Price         fpdecimal.Decimal
}

// Quantity bounds. Quantities must also be an exact multiple of LotSize.
const (
	MinQuantity = 10
	MaxQuantity = 1000
	LotSize     = 10
)

// Validator checks raw order intents against the static trading rules.
// It is stateless apart from the fixed set of tradable instruments.
type Validator struct {
	instruments map[string]struct{}
}

// NewValidator creates a Validator accepting the given tradable instruments.
func NewValidator(instruments []string) *Validator {
	set := make(map[string]struct{}, len(instruments))
	for _, ins := range instruments {
		set[ins] = struct{}{}
	}
	return &Validator{instruments: set}
}

// Instruments returns the tradable set in no particular order.
func (v *Validator) Instruments() []string {
	out := make([]string, 0, len(v.instruments))
	for ins := range v.instruments {
		out = append(out, ins)
	}
	return out
}

// Tradable reports whether the instrument is a member of the tradable set.
func (v *Validator) Tradable(instrument string) bool {
	_, ok := v.instruments[instrument]
	return ok
}

// Validate checks the intent and returns its parsed form. Checks run in a
// fixed order and the first failure wins. The returned ParsedIntent is always
// usable: on failure it holds the successfully parsed fields and zero values
// for the rest.
func (v *Validator) Validate(intent OrderIntent) (ParsedIntent, error) {
	parsed := ParsedIntent{
		ClientOrderID: intent.ClientOrderID,
		Instrument:    strings.TrimSpace(intent.Instrument),
	}

	if parsed.Instrument == "" {
		return parsed, ErrEmptyInstrument
	}

	// Parse all value fields before deciding, so a rejection still carries
	// everything that was recoverable.
	sideCode, sideErr := strconv.Atoi(strings.TrimSpace(intent.Side))
	if sideErr == nil {
		parsed.SideCode = sideCode
	}

	quantity, qtyErr := strconv.ParseInt(strings.TrimSpace(intent.Quantity), 10, 64)
	if qtyErr == nil {
		parsed.Quantity = quantity
	}

	price, priceErr := fpdecimal.FromString(strings.TrimSpace(intent.Price))
	if priceErr == nil {
		parsed.Price = price
	}

	if sideErr != nil || qtyErr != nil || priceErr != nil {
		return parsed, ErrMalformedField
	}

	side, err := SideFromCode(sideCode)
	if err != nil {
		return parsed, ErrInvalidSide
	}
	parsed.Side = side

	if quantity < MinQuantity || quantity > MaxQuantity || quantity%LotSize != 0 {
		return parsed, ErrInvalidQuantity
	}

	if parsed.Price.LessThanOrEqual(fpdecimal.Zero) {
		return parsed, ErrInvalidPrice
	}

	if !v.Tradable(parsed.Instrument) {
		return parsed, ErrUnknownInstrument
	}

	return parsed, nil
}
