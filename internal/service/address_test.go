package service

import (
	"context"
	"errors"
	"fmt"
	"storefront/internal/client"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeo struct {
	geocoded   []client.GeocodeResult
	geocodeErr error
	places     []client.Place
	placesErr  error
	queried    string
}

func (f *fakeGeo) Geocode(_ context.Context, postcode string) ([]client.GeocodeResult, error) {
	f.queried = postcode
	if f.geocodeErr != nil {
		return nil, f.geocodeErr
	}
	return f.geocoded, nil
}

func (f *fakeGeo) NearbyPremises(context.Context, float64, float64) ([]client.Place, error) {
	return f.places, f.placesErr
}

func component(name string, types ...string) client.AddressComponent {
	return client.AddressComponent{LongName: name, Types: types}
}

var westminster = client.GeocodeResult{
	FormattedAddress: "London SW1A 2AA, UK",
	Components: []client.AddressComponent{
		component("SW1A 2AA", "postal_code"),
		component("London", "postal_town"),
		component("Greater London", "administrative_area_level_2"),
	},
	Lat: 51.5034,
	Lng: -0.1276,
}

func TestAddressLookupValidation(t *testing.T) {
	ctx := context.Background()

	_, err := NewAddressService(nil, nopLogger()).Lookup(ctx, "SW1A 2AA")
	assert.True(t, IsKind(err, KindUnavailable))

	svc := NewAddressService(&fakeGeo{}, nopLogger())
	_, err = svc.Lookup(ctx, "  ")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Postcode is required", e.Message)

	_, err = svc.Lookup(ctx, "12345")
	e, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid UK postcode format. Expected format: SW1A 1AA", e.Message)
}

func TestAddressLookupErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewAddressService(&fakeGeo{geocodeErr: client.ErrZeroResults}, nopLogger()).Lookup(ctx, "ZZ9 9ZZ")
	assert.True(t, IsKind(err, KindNotFound))

	_, err = NewAddressService(&fakeGeo{geocodeErr: errors.New("OVER_QUERY_LIMIT")}, nopLogger()).Lookup(ctx, "SW1A 2AA")
	require.Error(t, err)
	_, isServiceErr := AsError(err)
	assert.False(t, isServiceErr)

	geo := &fakeGeo{geocoded: []client.GeocodeResult{{Lat: 1, Lng: 1}}}
	_, err = NewAddressService(geo, nopLogger()).Lookup(ctx, "SW1A 2AA")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "No specific addresses found for this postcode. Please enter address manually.", e.Message)
}

func TestAddressLookupFallsBackToGeocodedAddress(t *testing.T) {
	geo := &fakeGeo{geocoded: []client.GeocodeResult{{
		Components: append([]client.AddressComponent{
			component("10", "street_number"),
			component("Downing Street", "route"),
		}, westminster.Components...),
	}}}

	got, err := NewAddressService(geo, nopLogger()).Lookup(context.Background(), "sw1a2aa")
	require.NoError(t, err)
	assert.Equal(t, "SW1A 2AA", geo.queried)
	require.Len(t, got, 1)
	assert.Equal(t, "10 Downing Street", got[0].AddressLine1)
	assert.Equal(t, "London", got[0].City)
	assert.Equal(t, "Greater London", got[0].County)
	assert.Equal(t, "10 Downing Street, London, Greater London, SW1A 2AA", got[0].FormattedAddress)
}

func TestAddressLookupNearbyPremises(t *testing.T) {
	geo := &fakeGeo{
		geocoded: []client.GeocodeResult{westminster},
		places: []client.Place{
			{PlaceID: "p12", Vicinity: "12 Downing Street, London"},
			{PlaceID: "p10", FormattedAddress: "10 Downing Street, London"},
			{PlaceID: "p10b", Name: "10 Downing Street"},
			{PlaceID: "pcab", Name: "Cabinet Office"},
			{PlaceID: "p2", Components: []client.AddressComponent{
				component("2", "street_number"),
				component("King Charles Street", "route"),
				component("London", "postal_town"),
			}},
			{PlaceID: "empty"},
		},
	}

	got, err := NewAddressService(geo, nopLogger()).Lookup(context.Background(), "SW1A 2AA")
	require.NoError(t, err)

	lines := make([]string, 0, len(got))
	for _, a := range got {
		lines = append(lines, a.AddressLine1)
	}
	assert.Equal(t, []string{"2 King Charles Street", "10 Downing Street", "12 Downing Street", "Cabinet Office"}, lines)
	assert.Equal(t, "p2", got[0].PlaceID)
	assert.Equal(t, "London", got[1].City)
	assert.Equal(t, "SW1A 2AA", got[1].Postcode)
}

func TestAddressLookupCapsResults(t *testing.T) {
	geo := &fakeGeo{geocoded: []client.GeocodeResult{westminster}}
	for i := 30; i > 0; i-- {
		geo.places = append(geo.places, client.Place{Vicinity: fmt.Sprintf("%d Whitehall, London", i)})
	}

	got, err := NewAddressService(geo, nopLogger()).Lookup(context.Background(), "SW1A 2AA")
	require.NoError(t, err)
	require.Len(t, got, maxLookupAddresses)
	assert.Equal(t, "1 Whitehall", got[0].AddressLine1)
	assert.Equal(t, "20 Whitehall", got[19].AddressLine1)
}

func TestStreetNumber(t *testing.T) {
	assert.Equal(t, 42, streetNumber("42 Acacia Avenue"))
	assert.Equal(t, 7, streetNumber("7a High Street"))
	assert.Equal(t, noStreetNumber, streetNumber("Flat B"))
}
