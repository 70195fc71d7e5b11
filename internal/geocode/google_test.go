package geocode

import (
	"testing"

	"googlemaps.github.io/maps"
)

func TestSuggestionFromGoogle(t *testing.T) {
	result := maps.GeocodingResult{
		PlaceID:          "ChIJ0T2NLikpdTERKxE8d61aX_E",
		FormattedAddress: "12 Nguyễn Huệ, Bến Nghé, Quận 1, Thành phố Hồ Chí Minh, Việt Nam",
		AddressComponents: []maps.AddressComponent{
			{LongName: "12", ShortName: "12", Types: []string{"street_number"}},
			{LongName: "Nguyễn Huệ", ShortName: "Nguyễn Huệ", Types: []string{"route"}},
			{LongName: "Bến Nghé", ShortName: "Bến Nghé", Types: []string{"political", "sublocality", "sublocality_level_1"}},
			{LongName: "Quận 1", ShortName: "Quận 1", Types: []string{"administrative_area_level_2", "political"}},
			{LongName: "Thành phố Hồ Chí Minh", ShortName: "Thành phố Hồ Chí Minh", Types: []string{"administrative_area_level_1", "political"}},
			{LongName: "Việt Nam", ShortName: "VN", Types: []string{"country", "political"}},
		},
		Geometry: maps.AddressGeometry{
			Location: maps.LatLng{Lat: 10.7743, Lng: 106.7038},
			Viewport: maps.LatLngBounds{
				NorthEast: maps.LatLng{Lat: 10.78, Lng: 106.71},
				SouthWest: maps.LatLng{Lat: 10.77, Lng: 106.70},
			},
		},
	}

	got := suggestionFromGoogle(result)

	if got.ID != result.PlaceID || got.DisplayName != result.FormattedAddress {
		t.Fatalf("identity fields = %q / %q", got.ID, got.DisplayName)
	}
	if got.Lat != "10.7743000" || got.Lon != "106.7038000" {
		t.Fatalf("coordinates = %s,%s", got.Lat, got.Lon)
	}
	want := AddressParts{
		HouseNumber: "12",
		Road:        "Nguyễn Huệ",
		Suburb:      "Bến Nghé",
		County:      "Quận 1",
		State:       "Thành phố Hồ Chí Minh",
		Country:     "Việt Nam",
		CountryCode: "vn",
	}
	if got.Address != want {
		t.Fatalf("address = %+v, want %+v", got.Address, want)
	}
	if len(got.BoundingBox) != 4 || got.BoundingBox[0] != "10.7700000" || got.BoundingBox[3] != "106.7100000" {
		t.Fatalf("bounding box = %v", got.BoundingBox)
	}

	parsed := Parse(got)
	if parsed.StreetAddress != "12 Nguyễn Huệ" || parsed.Locality != "Bến Nghé" || parsed.Region != "Quận 1" {
		t.Fatalf("parsed = %+v", parsed)
	}
}
