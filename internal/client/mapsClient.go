package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

// ErrZeroResults is returned when the geocoder knows nothing about the query.
var ErrZeroResults = errors.New("zero results")

type GeoClient interface {
	Geocode(ctx context.Context, postcode string) ([]GeocodeResult, error)
	NearbyPremises(ctx context.Context, lat, lng float64) ([]Place, error)
}

type AddressComponent struct {
	LongName string
	Types    []string
}

type GeocodeResult struct {
	FormattedAddress string
	Components       []AddressComponent
	Lat              float64
	Lng              float64
}

type Place struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Vicinity         string
	Components       []AddressComponent
}

const nearbyRadiusMeters = 150

type googleMapsClient struct {
	c *maps.Client
}

// NewGoogleMapsClient builds a GeoClient. baseURL is only set in tests.
func NewGoogleMapsClient(apiKey, baseURL string) (GeoClient, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}

	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("new maps client: %w", err)
	}
	return &googleMapsClient{c: c}, nil
}

func (g *googleMapsClient) Geocode(ctx context.Context, postcode string) ([]GeocodeResult, error) {
	res, err := g.c.Geocode(ctx, &maps.GeocodingRequest{
		Address: postcode,
		Region:  "uk",
		Components: map[maps.Component]string{
			maps.ComponentCountry: "GB",
		},
	})
	if err != nil {
		if isZeroResults(err) {
			return nil, ErrZeroResults
		}
		return nil, fmt.Errorf("geocode %s: %w", postcode, err)
	}
	if len(res) == 0 {
		return nil, ErrZeroResults
	}

	out := make([]GeocodeResult, 0, len(res))
	for _, r := range res {
		out = append(out, GeocodeResult{
			FormattedAddress: r.FormattedAddress,
			Components:       toComponents(r.AddressComponents),
			Lat:              r.Geometry.Location.Lat,
			Lng:              r.Geometry.Location.Lng,
		})
	}
	return out, nil
}

func (g *googleMapsClient) NearbyPremises(ctx context.Context, lat, lng float64) ([]Place, error) {
	resp, err := g.c.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: lat, Lng: lng},
		Radius:   nearbyRadiusMeters,
		Type:     maps.PlaceType("premise"),
	})
	if err != nil {
		if isZeroResults(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("nearby search: %w", err)
	}

	out := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, Place{
			PlaceID:          r.PlaceID,
			Name:             r.Name,
			FormattedAddress: r.FormattedAddress,
			Vicinity:         r.Vicinity,
		})
	}
	return out, nil
}

func toComponents(in []maps.AddressComponent) []AddressComponent {
	out := make([]AddressComponent, 0, len(in))
	for _, c := range in {
		out = append(out, AddressComponent{LongName: c.LongName, Types: c.Types})
	}
	return out
}

func isZeroResults(err error) bool {
	return strings.Contains(err.Error(), "ZERO_RESULTS")
}
