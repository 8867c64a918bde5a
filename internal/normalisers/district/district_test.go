package district

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

func clock() time.Time {
	return time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
}

func TestTokenSortRatio(t *testing.T) {
	assert.InDelta(t, 100.0, TokenSortRatio("Legislative Lower", "lower_legislative"), 0.001)
	assert.InDelta(t, 94.118, TokenSortRatio("council_district", "council_district_b"), 0.001)
	assert.InDelta(t, 88.235, TokenSortRatio("school_district", "sub_school_district"), 0.001)
	assert.InDelta(t, 82.051, TokenSortRatio("council_district", "council_district_ward_b"), 0.001)
	assert.InDelta(t, 0.0, TokenSortRatio("abc", "xyz"), 0.001)
	assert.InDelta(t, 100.0, TokenSortRatio("", ""), 0.001)
}

func TestTokenSortRatio_Symmetric(t *testing.T) {
	assert.InDelta(t, TokenSortRatio("water_district", "district_water_b"),
		TokenSortRatio("district_water_b", "water_district"), 0.0001)
}

func TestResolve_SuffixedFieldAboveThreshold(t *testing.T) {
	r := NewResolver(WithClock(clock))

	districts := r.Resolve(domain.LevelCity, []domain.Field{{Name: "council_district_b", Value: "B12"}}, Scope{State: "TX"})
	require.Len(t, districts, 1)
	assert.Equal(t, "city council", districts[0].Name)
	assert.Equal(t, "12", districts[0].Number)
	assert.Equal(t, "B", districts[0].Attributes[AttrCodePrefix])
}

func TestResolve_CanonicalLabel(t *testing.T) {
	r := NewResolver(WithClock(clock))

	districts := r.Resolve(domain.LevelCity, []domain.Field{{Name: "council_district", Value: "4"}},
		Scope{State: "TX", City: "Austin", County: "Travis"})

	require.Len(t, districts, 1)
	d := districts[0]
	assert.Equal(t, "city council", d.Name)
	assert.Equal(t, "4", d.Number)
	assert.Equal(t, "Austin", d.City)
	assert.Empty(t, d.County)
	assert.Equal(t, "TX", d.StateAbbv)
	assert.Equal(t, "2024-03-05", d.Attributes[AttrLastUpdated])
	assert.Equal(t, "d0c3622b6df18a07", d.ID)
}

func TestResolve_BelowThresholdKeepsFieldName(t *testing.T) {
	r := NewResolver(WithClock(clock))

	districts := r.Resolve(domain.LevelCity, []domain.Field{{Name: "council_district_ward_b", Value: "B12"}}, Scope{State: "TX"})
	require.Len(t, districts, 1)
	assert.Equal(t, "council_district_ward_b", districts[0].Name)
	assert.Equal(t, "12", districts[0].Number)
	assert.Equal(t, "B", districts[0].Attributes[AttrCodePrefix])

	lenient := NewResolver(WithClock(clock), WithThreshold(80))
	districts = lenient.Resolve(domain.LevelCity, []domain.Field{{Name: "council_district_ward_b", Value: "B12"}}, Scope{State: "TX"})
	assert.Equal(t, "city council", districts[0].Name)
}

func TestResolve_BestContainedCodeWins(t *testing.T) {
	r := NewResolver(WithClock(clock))

	county := r.Resolve(domain.LevelCounty, []domain.Field{{Name: "sub_school_district", Value: "7"}}, Scope{State: "TX"})
	assert.Equal(t, "sub school district", county[0].Name)

	court := r.Resolve(domain.LevelCourt, []domain.Field{{Name: "criminal_appeals", Value: "3"}}, Scope{State: "TX"})
	assert.Equal(t, "criminal appeals", court[0].Name)
}

func TestResolve_UnknownFieldUsesName(t *testing.T) {
	r := NewResolver(WithClock(clock))

	districts := r.Resolve(domain.LevelCounty, []domain.Field{{Name: "precinct", Value: "101"}}, Scope{State: "TX", County: "Travis"})
	require.Len(t, districts, 1)
	assert.Equal(t, "precinct", districts[0].Name)
	assert.Equal(t, "Travis", districts[0].County)
	assert.Equal(t, "101", districts[0].Number)
	assert.NotContains(t, districts[0].Attributes, AttrCodePrefix)
}

func TestResolve_LongestFieldFirst(t *testing.T) {
	r := NewResolver(WithClock(clock))

	districts := r.Resolve(domain.LevelState, []domain.Field{
		{Name: "legislative_upper", Value: "14"},
		{Name: "board_of_education", Value: "5"},
		{Name: "legislative_lower", Value: "49"},
	}, Scope{State: "TX"})

	require.Len(t, districts, 3)
	assert.Equal(t, "board of education", districts[0].Name)
	assert.Equal(t, "legislative lower", districts[1].Name)
	assert.Equal(t, "legislative upper", districts[2].Name)
}

func TestResolveAll(t *testing.T) {
	r := NewResolver(WithClock(clock))

	districts, notes := r.ResolveAll(map[domain.DistrictLevel][]domain.Field{
		domain.LevelFederal: {{Name: "congressional", Value: "25"}},
		domain.LevelCity:    {{Name: "council_district", Value: "9"}},
	}, Scope{State: "TX"})

	require.Len(t, districts, 2)
	assert.Equal(t, domain.LevelCity, districts[0].Type)
	assert.Equal(t, "congressional district", districts[1].Name)
	assert.Contains(t, notes, "city_districts")
	assert.Contains(t, notes, "federal_districts")
	assert.NotContains(t, notes, "state_districts")
}

func TestRemoveText(t *testing.T) {
	r := NewResolver(WithClock(clock))
	districts := r.Resolve(domain.LevelCounty, []domain.Field{{Name: "precinct_travis", Value: "1"}}, Scope{State: "TX"})
	before := districts[0].ID

	notes := RemoveText(districts, []domain.TextCorrection{{Name: "precinct", Text: "_travis", Target: "precinct"}})

	assert.Equal(t, "PRECINCT", districts[0].Name)
	assert.NotEqual(t, before, districts[0].ID)
	assert.Len(t, notes[domain.LevelCounty], 1)
}

func TestRemoveText_NoTarget(t *testing.T) {
	districts := []domain.District{{Type: domain.LevelCity, Name: "city council"}}
	notes := RemoveText(districts, []domain.TextCorrection{{Text: "x", Target: "school"}})
	assert.Empty(t, notes)
	assert.Equal(t, "city council", districts[0].Name)
}

func TestScopeFrom(t *testing.T) {
	s := ScopeFrom(domain.Settings{StateAbbreviation: "TX", CountyName: "Travis"})
	assert.Equal(t, Scope{State: "TX", County: "Travis"}, s)
}
