package district

import "github.com/custodia-labs/vepctl/internal/core/domain"

// Code is one enumerated district kind.
type Code struct {
	// Name is the snake_case code matched against field names.
	Name string

	// Label is the canonical district name.
	Label string
}

// Codes are the enumerated district kinds of each level. Court codes cover
// state, district, county, municipal and special courts.
var Codes = map[domain.DistrictLevel][]Code{
	domain.LevelCity: {
		{"council_district", "city council"},
		{"municipality", "municipality"},
		{"school_board", "school board"},
	},
	domain.LevelCounty: {
		{"commissioner", "commissioner"},
		{"constable", "constable"},
		{"school_district", "school district"},
		{"sub_school_district", "sub school district"},
		{"water_district", "water district"},
		{"mass_transit_authority", "mass transit authority"},
		{"community_college", "community college"},
	},
	domain.LevelState: {
		{"legislative_lower", "legislative lower"},
		{"legislative_upper", "legislative upper"},
		{"board_of_education", "board of education"},
	},
	domain.LevelFederal: {
		{"congressional", "congressional district"},
	},
	domain.LevelCourt: {
		{"supreme_court", "supreme court"},
		{"criminal_appeals", "criminal appeals"},
		{"court_of_appeals", "court of appeals"},
		{"civil", "civil district court"},
		{"criminal", "criminal district court"},
		{"family", "family district court"},
		{"constitutional", "constitutional court"},
		{"probate", "statutory probate court"},
		{"justice_of_the_peace", "justice of the peace"},
		{"traffic", "traffic court"},
		{"drug", "drug court"},
		{"veterans", "veterans court"},
		{"juvenile", "juvenile court"},
	},
}
