// Region tables for subscription gating and public stats.
//
// Region names must match the Stripe product metadata `region` values and
// the values stored in agency_subscriptions.subscribed_continents. The two
// tables below are maintained by hand in both directions; regions_test.go
// checks they stay consistent. United States, Canada and Mexico are sold
// as their own regions, so "North America" covers only Central America
// and the Caribbean. That split is a billing decision, not a data error.
package app

// RegionOther buckets unmapped countries in aggregate stats. It is never
// a subscribable region and never a valid input to CountriesOf.
const RegionOther = "Other"

// SubscribableRegions are the region labels an agency can purchase,
// matching the subscribe page and the Stripe product catalog.
var SubscribableRegions = []string{
	"United States",
	"Canada",
	"Mexico",
	"North America",
	"South America",
	"Europe",
	"Africa",
	"Asia",
	"Oceania",
}

// regionCountries maps each subscription region to the countries it covers.
var regionCountries = map[string][]string{
	"United States": {"United States"},
	"Canada":        {"Canada"},
	"Mexico":        {"Mexico"},
	"North America": {
		"Bahamas", "Belize", "Costa Rica", "Cuba", "Dominican Republic",
		"El Salvador", "Guatemala", "Haiti", "Honduras", "Jamaica",
		"Nicaragua", "Panama",
	},
	"South America": {
		"Argentina", "Bolivia", "Brazil", "Chile", "Colombia", "Ecuador",
		"Paraguay", "Peru", "Uruguay", "Venezuela",
	},
	"Europe": {
		"Albania", "Andorra", "Austria", "Belarus", "Belgium",
		"Bosnia and Herzegovina", "Bulgaria", "Croatia", "Cyprus",
		"Czech Republic", "Denmark", "Estonia", "Finland", "France",
		"Georgia", "Germany", "Greece", "Hungary", "Iceland", "Ireland",
		"Italy", "Latvia", "Lithuania", "Luxembourg", "Malta", "Moldova",
		"Montenegro", "Netherlands", "North Macedonia", "Norway", "Poland",
		"Portugal", "Romania", "Russia", "Serbia", "Slovakia", "Slovenia",
		"Spain", "Sweden", "Switzerland", "Turkey", "Ukraine",
		"United Kingdom",
	},
	"Africa": {
		"Algeria", "Angola", "Benin", "Botswana", "Burkina Faso", "Burundi",
		"Cameroon", "Central African Republic", "Chad", "Congo", "Egypt",
		"Ethiopia", "Gabon", "Ghana", "Guinea", "Kenya", "Libya",
		"Madagascar", "Malawi", "Mali", "Morocco", "Mozambique", "Namibia",
		"Niger", "Nigeria", "Rwanda", "Senegal", "Somalia", "South Africa",
		"South Sudan", "Sudan", "Tanzania", "Togo", "Tunisia", "Uganda",
		"Zambia", "Zimbabwe",
	},
	"Asia": {
		"Afghanistan", "Armenia", "Azerbaijan", "Bahrain", "Bangladesh",
		"Brunei", "Cambodia", "China", "India", "Indonesia", "Iran", "Iraq",
		"Israel", "Japan", "Jordan", "Kazakhstan", "Kuwait", "Kyrgyzstan",
		"Laos", "Lebanon", "Malaysia", "Mongolia", "Myanmar", "Nepal",
		"North Korea", "Oman", "Pakistan", "Philippines", "Qatar",
		"Saudi Arabia", "Singapore", "South Korea", "Sri Lanka", "Syria",
		"Taiwan", "Tajikistan", "Thailand", "Turkmenistan",
		"United Arab Emirates", "Uzbekistan", "Vietnam", "Yemen",
	},
	"Oceania": {"Australia", "New Zealand"},
}

// countryRegion maps a country back to its subscription region for the
// public stats rollup.
var countryRegion = map[string]string{
	// Standalone billing regions
	"United States": "United States",
	"Canada":        "Canada",
	"Mexico":        "Mexico",

	// Central America & Caribbean
	"Bahamas": "North America", "Belize": "North America",
	"Costa Rica": "North America", "Cuba": "North America",
	"Dominican Republic": "North America", "El Salvador": "North America",
	"Guatemala": "North America", "Haiti": "North America",
	"Honduras": "North America", "Jamaica": "North America",
	"Nicaragua": "North America", "Panama": "North America",

	// South America
	"Argentina": "South America", "Bolivia": "South America",
	"Brazil": "South America", "Chile": "South America",
	"Colombia": "South America", "Ecuador": "South America",
	"Paraguay": "South America", "Peru": "South America",
	"Uruguay": "South America", "Venezuela": "South America",

	// Europe
	"Albania": "Europe", "Andorra": "Europe", "Austria": "Europe",
	"Belarus": "Europe", "Belgium": "Europe",
	"Bosnia and Herzegovina": "Europe", "Bulgaria": "Europe",
	"Croatia": "Europe", "Cyprus": "Europe", "Czech Republic": "Europe",
	"Denmark": "Europe", "Estonia": "Europe", "Finland": "Europe",
	"France": "Europe", "Georgia": "Europe", "Germany": "Europe",
	"Greece": "Europe", "Hungary": "Europe", "Iceland": "Europe",
	"Ireland": "Europe", "Italy": "Europe", "Latvia": "Europe",
	"Lithuania": "Europe", "Luxembourg": "Europe", "Malta": "Europe",
	"Moldova": "Europe", "Montenegro": "Europe", "Netherlands": "Europe",
	"North Macedonia": "Europe", "Norway": "Europe", "Poland": "Europe",
	"Portugal": "Europe", "Romania": "Europe", "Russia": "Europe",
	"Serbia": "Europe", "Slovakia": "Europe", "Slovenia": "Europe",
	"Spain": "Europe", "Sweden": "Europe", "Switzerland": "Europe",
	"Turkey": "Europe", "Ukraine": "Europe", "United Kingdom": "Europe",

	// Africa
	"Algeria": "Africa", "Angola": "Africa", "Benin": "Africa",
	"Botswana": "Africa", "Burkina Faso": "Africa", "Burundi": "Africa",
	"Cameroon": "Africa", "Central African Republic": "Africa",
	"Chad": "Africa", "Congo": "Africa", "Egypt": "Africa",
	"Ethiopia": "Africa", "Gabon": "Africa", "Ghana": "Africa",
	"Guinea": "Africa", "Kenya": "Africa", "Libya": "Africa",
	"Madagascar": "Africa", "Malawi": "Africa", "Mali": "Africa",
	"Morocco": "Africa", "Mozambique": "Africa", "Namibia": "Africa",
	"Niger": "Africa", "Nigeria": "Africa", "Rwanda": "Africa",
	"Senegal": "Africa", "Somalia": "Africa", "South Africa": "Africa",
	"South Sudan": "Africa", "Sudan": "Africa", "Tanzania": "Africa",
	"Togo": "Africa", "Tunisia": "Africa", "Uganda": "Africa",
	"Zambia": "Africa", "Zimbabwe": "Africa",

	// Asia
	"Afghanistan": "Asia", "Armenia": "Asia", "Azerbaijan": "Asia",
	"Bahrain": "Asia", "Bangladesh": "Asia", "Brunei": "Asia",
	"Cambodia": "Asia", "China": "Asia", "India": "Asia",
	"Indonesia": "Asia", "Iran": "Asia", "Iraq": "Asia", "Israel": "Asia",
	"Japan": "Asia", "Jordan": "Asia", "Kazakhstan": "Asia",
	"Kuwait": "Asia", "Kyrgyzstan": "Asia", "Laos": "Asia",
	"Lebanon": "Asia", "Malaysia": "Asia", "Mongolia": "Asia",
	"Myanmar": "Asia", "Nepal": "Asia", "North Korea": "Asia",
	"Oman": "Asia", "Pakistan": "Asia", "Philippines": "Asia",
	"Qatar": "Asia", "Saudi Arabia": "Asia", "Singapore": "Asia",
	"South Korea": "Asia", "Sri Lanka": "Asia", "Syria": "Asia",
	"Taiwan": "Asia", "Tajikistan": "Asia", "Thailand": "Asia",
	"Turkmenistan": "Asia", "United Arab Emirates": "Asia",
	"Uzbekistan": "Asia", "Vietnam": "Asia", "Yemen": "Asia",

	// Oceania
	"Australia": "Oceania", "New Zealand": "Oceania",
}

// RegionOf resolves a country name to its subscription region, or
// RegionOther when unmapped.
func RegionOf(country string) string {
	if region, ok := countryRegion[country]; ok {
		return region
	}
	return RegionOther
}

// CountriesOf expands subscribed region labels into the full allowed
// country list. Unknown labels contribute nothing.
func CountriesOf(regions []string) []string {
	var countries []string
	for _, region := range regions {
		countries = append(countries, regionCountries[region]...)
	}
	return countries
}

// SubscribableRegion reports whether the label is a purchasable region.
func SubscribableRegion(label string) bool {
	_, ok := regionCountries[label]
	return ok
}
