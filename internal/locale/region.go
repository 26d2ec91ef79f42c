package locale

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"
)

var (
	ErrUnknownTimezone = errors.New("unknown timezone")
	ErrUnknownCurrency = errors.New("unknown currency")
)

// Timezone is an IANA time zone name such as "Europe/London".
type Timezone string

// ParseTimezone validates name against the IANA database.
func ParseTimezone(name string) (Timezone, error) {
	name = strings.TrimSpace(name)
	// LoadLocation maps "" to UTC and "Local" to the host zone; neither is a user preference.
	if name == "" || name == "Local" {
		return "", fmt.Errorf("%w: %q", ErrUnknownTimezone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnknownTimezone, name, err)
	}
	return Timezone(loc.String()), nil
}

// Location loads the zone. It only fails for values not produced by ParseTimezone.
func (tz Timezone) Location() (*time.Location, error) {
	return time.LoadLocation(string(tz))
}

func (tz Timezone) String() string { return string(tz) }

func (tz *Timezone) UnmarshalText(text []byte) error {
	parsed, err := ParseTimezone(string(text))
	if err != nil {
		return err
	}
	*tz = parsed
	return nil
}

// Currency is an ISO 4217 currency code such as "EUR".
type Currency string

// ParseCurrency validates code against ISO 4217, ignoring case.
func ParseCurrency(code string) (Currency, error) {
	code = strings.TrimSpace(code)
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return Currency(unit.String()), nil
}

func (c Currency) String() string { return string(c) }

func (c *Currency) UnmarshalText(text []byte) error {
	parsed, err := ParseCurrency(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
