package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"storefront/internal/client"
	"storefront/internal/dto"
	"storefront/internal/validation"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	maxLookupAddresses = 20
	noStreetNumber     = 999999
)

var leadingNumberRe = regexp.MustCompile(`^\d+`)

type AddressService interface {
	Lookup(ctx context.Context, postcode string) ([]dto.Address, error)
}

type addressServiceImpl struct {
	geo client.GeoClient
	log *zap.Logger
}

// NewAddressService returns a lookup backed by geo. A nil geo means no API
// key is configured and every lookup reports the service unavailable.
func NewAddressService(geo client.GeoClient, log *zap.Logger) AddressService {
	return &addressServiceImpl{geo: geo, log: log.Named("address")}
}

func (s *addressServiceImpl) Lookup(ctx context.Context, postcode string) ([]dto.Address, error) {
	if s.geo == nil {
		return nil, Unavailable("Address lookup service is not configured")
	}
	if strings.TrimSpace(postcode) == "" {
		return nil, Invalid("Postcode is required")
	}
	if !validation.ValidateUKPostcode(postcode) {
		return nil, Invalid("Invalid UK postcode format. Expected format: SW1A 1AA")
	}
	formatted := validation.FormatUKPostcode(postcode)

	geocoded, err := s.geo.Geocode(ctx, formatted)
	if err != nil {
		if errors.Is(err, client.ErrZeroResults) {
			return nil, NotFound("Postcode not found. Please check and try again.")
		}
		return nil, fmt.Errorf("geocode postcode: %w", err)
	}
	first := geocoded[0]

	places, err := s.geo.NearbyPremises(ctx, first.Lat, first.Lng)
	if err != nil {
		return nil, fmt.Errorf("search nearby premises: %w", err)
	}

	if len(places) == 0 {
		if addr, ok := parseComponents(first.Components, formatted); ok {
			return []dto.Address{addr}, nil
		}
		return nil, NotFound("No specific addresses found for this postcode. Please enter address manually.")
	}

	addresses := make([]dto.Address, 0, len(places))
	seen := make(map[string]struct{}, len(places))
	for _, p := range places {
		addr, ok := placeAddress(p, formatted)
		if !ok || addr.AddressLine1 == "" {
			continue
		}
		if _, dup := seen[addr.AddressLine1]; dup {
			continue
		}
		seen[addr.AddressLine1] = struct{}{}
		addresses = append(addresses, addr)
	}

	sort.SliceStable(addresses, func(i, j int) bool {
		return streetNumber(addresses[i].AddressLine1) < streetNumber(addresses[j].AddressLine1)
	})

	if len(addresses) == 0 {
		return nil, NotFound("No addresses found for this postcode. Please enter address manually.")
	}
	if len(addresses) > maxLookupAddresses {
		addresses = addresses[:maxLookupAddresses]
	}

	s.log.Debug("address lookup", zap.String("postcode", formatted), zap.Int("results", len(addresses)))
	return addresses, nil
}

func placeAddress(p client.Place, postcode string) (dto.Address, bool) {
	if len(p.Components) > 0 {
		addr, ok := parseComponents(p.Components, postcode)
		addr.PlaceID = p.PlaceID
		return addr, ok
	}

	text := firstNonEmpty(p.FormattedAddress, p.Vicinity, p.Name)
	if text == "" {
		return dto.Address{}, false
	}

	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	line1 := parts[0]
	if line1 == "" {
		line1 = text
	}
	var city string
	if len(parts) > 1 {
		city = parts[1]
	}

	return dto.Address{
		FormattedAddress: text,
		AddressLine1:     line1,
		City:             city,
		Postcode:         postcode,
		PlaceID:          p.PlaceID,
	}, true
}

// parseComponents builds an address from geocoder components. It reports
// false when neither a street nor a town can be found.
func parseComponents(components []client.AddressComponent, postcode string) (dto.Address, bool) {
	number := componentOf(components, "street_number")
	route := componentOf(components, "route")
	city := componentOf(components, "postal_town", "locality", "sublocality")
	county := componentOf(components, "administrative_area_level_2")

	line1 := strings.TrimSpace(number + " " + route)
	if line1 == "" && city == "" {
		return dto.Address{}, false
	}

	var parts []string
	for _, p := range []string{line1, city, county, postcode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if line1 == "" {
		line1 = city
	}

	return dto.Address{
		FormattedAddress: strings.Join(parts, ", "),
		AddressLine1:     line1,
		City:             city,
		County:           county,
		Postcode:         postcode,
	}, true
}

// componentOf returns the long name of the first component carrying any of types.
func componentOf(components []client.AddressComponent, types ...string) string {
	for _, c := range components {
		for _, ct := range c.Types {
			for _, want := range types {
				if ct == want {
					return c.LongName
				}
			}
		}
	}
	return ""
}

func streetNumber(line1 string) int {
	m := leadingNumberRe.FindString(line1)
	if m == "" {
		return noStreetNumber
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return noStreetNumber
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
