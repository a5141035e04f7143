package app

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func testContext(t *testing.T, url string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, url, nil)
	return c
}

func TestParseDirectoryFilterDefaults(t *testing.T) {
	c := testContext(t, "/api/directory")
	f := parseDirectoryFilter(c, []string{"United States"})

	if f.Page != 1 {
		t.Errorf("default page = %d, want 1", f.Page)
	}
	if f.PerPage != directoryDefaultPerPage {
		t.Errorf("default per = %d, want %d", f.PerPage, directoryDefaultPerPage)
	}
	if f.MatchAll {
		t.Error("default match mode must be any")
	}
	if !reflect.DeepEqual(f.AllowedCountries, []string{"United States"}) {
		t.Errorf("allowed countries = %v", f.AllowedCountries)
	}
}

func TestParseDirectoryFilterClamps(t *testing.T) {
	cases := []struct {
		url      string
		page     int
		per      int
		matchAll bool
	}{
		{"/api/directory?page=0&per=5", 1, directoryMinPerPage, false},
		{"/api/directory?page=-3&per=500", 1, directoryMaxPerPage, false},
		{"/api/directory?page=7&per=30&match=all", 7, 30, true},
		{"/api/directory?page=abc&per=xyz", 1, directoryDefaultPerPage, false},
	}
	for _, tc := range cases {
		f := parseDirectoryFilter(testContext(t, tc.url), nil)
		if f.Page != tc.page || f.PerPage != tc.per || f.MatchAll != tc.matchAll {
			t.Errorf("%s: got page=%d per=%d matchAll=%t, want page=%d per=%d matchAll=%t",
				tc.url, f.Page, f.PerPage, f.MatchAll, tc.page, tc.per, tc.matchAll)
		}
	}
}

func TestParseIDList(t *testing.T) {
	cases := []struct {
		in   []string
		want []int64
	}{
		{nil, nil},
		{[]string{"1,2,3"}, []int64{1, 2, 3}},
		{[]string{"1", "2"}, []int64{1, 2}},
		{[]string{"1, 2 ,junk,3"}, []int64{1, 2, 3}},
		{[]string{""}, nil},
	}
	for _, tc := range cases {
		if got := parseIDList(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseIDList(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBuildDirectoryQueryAllowedCountries(t *testing.T) {
	f := DirectoryFilter{
		Page:             1,
		PerPage:          25,
		AllowedCountries: []string{"Canada", "Mexico"},
	}
	query, args := buildDirectoryQuery(f)

	if !strings.Contains(query, "country = ANY($1)") {
		t.Errorf("query missing allowed-countries guard:\n%s", query)
	}
	// allowed countries + limit + offset
	if len(args) != 3 {
		t.Fatalf("got %d args, want 3: %v", len(args), args)
	}
}

func TestBuildDirectoryQueryMatchOperators(t *testing.T) {
	base := DirectoryFilter{Page: 1, PerPage: 25, RoleIDs: []int64{1, 2}}

	anyQuery, _ := buildDirectoryQuery(base)
	if !strings.Contains(anyQuery, "role_ids &&") {
		t.Errorf("any-match must use overlap:\n%s", anyQuery)
	}

	base.MatchAll = true
	allQuery, _ := buildDirectoryQuery(base)
	if !strings.Contains(allQuery, "role_ids @>") {
		t.Errorf("all-match must use containment:\n%s", allQuery)
	}
}

func TestBuildDirectoryQuerySearch(t *testing.T) {
	f := DirectoryFilter{Page: 1, PerPage: 25, Search: "miami"}
	query, args := buildDirectoryQuery(f)

	for _, col := range []string{"full_name", "city", "state_region", "country", "instagram_handle", "bio"} {
		if !strings.Contains(query, col+" ILIKE") {
			t.Errorf("search must cover %s:\n%s", col, query)
		}
	}
	// One shared pattern placeholder plus limit and offset.
	if len(args) != 3 {
		t.Fatalf("got %d args, want 3: %v", len(args), args)
	}
	if args[0] != "%miami%" {
		t.Errorf("search arg = %v, want %%miami%%", args[0])
	}
}

func TestBuildDirectoryQueryEmptyFiltersAreNoOps(t *testing.T) {
	f := DirectoryFilter{Page: 3, PerPage: 10}
	query, args := buildDirectoryQuery(f)

	for _, fragment := range []string{"ILIKE", "&&", "@>", "has_vehicle", "willing_to_travel", "experience_level", "availability_status"} {
		if strings.Contains(query, fragment) {
			t.Errorf("empty filter leaked %q into query:\n%s", fragment, query)
		}
	}
	if len(args) != 2 {
		t.Fatalf("got %d args, want limit and offset only: %v", len(args), args)
	}
	if args[0] != 10 || args[1] != 20 {
		t.Errorf("limit/offset = %v/%v, want 10/20", args[0], args[1])
	}
	if !strings.Contains(query, "ORDER BY created_at DESC") {
		t.Errorf("query must order newest-first:\n%s", query)
	}
}

func TestBuildDirectoryQueryScalarFilters(t *testing.T) {
	f := DirectoryFilter{
		Page:            1,
		PerPage:         25,
		Country:         "Canada",
		StateRegion:     "Ontario",
		Experience:      "experienced",
		Availability:    "available",
		HasVehicle:      true,
		WillingToTravel: true,
	}
	query, args := buildDirectoryQuery(f)

	wantArgs := []any{"Canada", "Ontario", "experienced", "available", 25, 0}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
	if !strings.Contains(query, "has_vehicle = TRUE") || !strings.Contains(query, "willing_to_travel = TRUE") {
		t.Errorf("boolean filters missing:\n%s", query)
	}
}
