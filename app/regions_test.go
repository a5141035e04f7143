package app

import "testing"

// The two region tables are maintained by hand; these tests keep them
// consistent in both directions.

func TestRegionTablesRoundTrip(t *testing.T) {
	for region, countries := range regionCountries {
		for _, country := range countries {
			if got := RegionOf(country); got != region {
				t.Errorf("RegionOf(%q) = %q, want %q", country, got, region)
			}
		}
	}

	for country, region := range countryRegion {
		found := false
		for _, c := range regionCountries[region] {
			if c == country {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("country %q maps to %q but is missing from its country list", country, region)
		}
	}
}

func TestSubscribableRegionsMatchTable(t *testing.T) {
	if len(SubscribableRegions) != len(regionCountries) {
		t.Fatalf("SubscribableRegions has %d entries, regionCountries has %d", len(SubscribableRegions), len(regionCountries))
	}
	for _, region := range SubscribableRegions {
		if !SubscribableRegion(region) {
			t.Errorf("region %q is listed but not in the table", region)
		}
	}
	if SubscribableRegion(RegionOther) {
		t.Error("Other must not be subscribable")
	}
}

func TestStandaloneBillingRegions(t *testing.T) {
	for _, country := range []string{"United States", "Canada", "Mexico"} {
		if got := RegionOf(country); got != country {
			t.Errorf("RegionOf(%q) = %q, want standalone region", country, got)
		}
	}
	// Central America and the Caribbean are what "North America" sells.
	if got := RegionOf("Jamaica"); got != "North America" {
		t.Errorf("RegionOf(Jamaica) = %q, want North America", got)
	}
	if got := RegionOf("Costa Rica"); got != "North America" {
		t.Errorf("RegionOf(Costa Rica) = %q, want North America", got)
	}
}

func TestRegionOfUnknownCountry(t *testing.T) {
	if got := RegionOf("Atlantis"); got != RegionOther {
		t.Errorf("RegionOf(Atlantis) = %q, want %q", got, RegionOther)
	}
}

func TestCountriesOf(t *testing.T) {
	countries := CountriesOf([]string{"United States", "Oceania"})
	want := map[string]bool{"United States": true, "Australia": true, "New Zealand": true}
	if len(countries) != len(want) {
		t.Fatalf("got %d countries, want %d: %v", len(countries), len(want), countries)
	}
	for _, c := range countries {
		if !want[c] {
			t.Errorf("unexpected country %q", c)
		}
	}

	if got := CountriesOf([]string{"Narnia", RegionOther}); len(got) != 0 {
		t.Errorf("unknown labels must contribute nothing, got %v", got)
	}
	if got := CountriesOf(nil); len(got) != 0 {
		t.Errorf("nil regions must yield no countries, got %v", got)
	}
}
