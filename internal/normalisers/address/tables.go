package address

// streetSuffixes maps USPS street suffixes and their common spellings to the
// standard abbreviation.
var streetSuffixes = map[string]string{
	"ALLEY": "ALY", "ALY": "ALY",
	"ANNEX": "ANX", "ANX": "ANX",
	"ARCADE": "ARC", "ARC": "ARC",
	"AVENUE": "AVE", "AVE": "AVE", "AV": "AVE", "AVEN": "AVE", "AVN": "AVE",
	"BAYOU": "BYU", "BYU": "BYU",
	"BEND": "BND", "BND": "BND",
	"BLUFF": "BLF", "BLF": "BLF",
	"BOULEVARD": "BLVD", "BLVD": "BLVD", "BOUL": "BLVD",
	"BRANCH": "BR", "BR": "BR",
	"BRIDGE": "BRG", "BRG": "BRG",
	"BROOK": "BRK", "BRK": "BRK",
	"BYPASS": "BYP", "BYP": "BYP",
	"CANYON": "CYN", "CYN": "CYN",
	"CAUSEWAY": "CSWY", "CSWY": "CSWY",
	"CENTER": "CTR", "CTR": "CTR", "CENTRE": "CTR",
	"CIRCLE": "CIR", "CIR": "CIR", "CIRC": "CIR",
	"CLIFF": "CLF", "CLF": "CLF",
	"COMMON": "CMN", "CMN": "CMN",
	"CORNER": "COR", "COR": "COR",
	"COURT": "CT", "CT": "CT",
	"COVE": "CV", "CV": "CV",
	"CREEK": "CRK", "CRK": "CRK",
	"CRESCENT": "CRES", "CRES": "CRES",
	"CROSSING": "XING", "XING": "XING",
	"DRIVE": "DR", "DR": "DR", "DRV": "DR",
	"ESTATE": "EST", "EST": "EST", "ESTATES": "ESTS", "ESTS": "ESTS",
	"EXPRESSWAY": "EXPY", "EXPY": "EXPY", "EXPWY": "EXPY",
	"EXTENSION": "EXT", "EXT": "EXT",
	"FALLS": "FLS", "FLS": "FLS",
	"FIELD": "FLD", "FLD": "FLD",
	"FREEWAY": "FWY", "FWY": "FWY",
	"GARDEN": "GDN", "GDN": "GDN", "GARDENS": "GDNS", "GDNS": "GDNS",
	"GATEWAY": "GTWY", "GTWY": "GTWY",
	"GLEN": "GLN", "GLN": "GLN",
	"GREEN": "GRN", "GRN": "GRN",
	"GROVE": "GRV", "GRV": "GRV",
	"HARBOR": "HBR", "HBR": "HBR",
	"HEIGHTS": "HTS", "HTS": "HTS",
	"HIGHWAY": "HWY", "HWY": "HWY", "HIWAY": "HWY",
	"HILL": "HL", "HL": "HL", "HILLS": "HLS", "HLS": "HLS",
	"HOLLOW": "HOLW", "HOLW": "HOLW",
	"ISLAND": "IS", "IS": "IS",
	"JUNCTION": "JCT", "JCT": "JCT",
	"KNOLL": "KNL", "KNL": "KNL",
	"LAKE": "LK", "LK": "LK",
	"LANDING": "LNDG", "LNDG": "LNDG",
	"LANE": "LN", "LN": "LN",
	"LOOP": "LOOP",
	"MEADOW": "MDW", "MDW": "MDW", "MEADOWS": "MDWS", "MDWS": "MDWS",
	"MILL": "ML", "ML": "ML",
	"MOTORWAY": "MTWY", "MTWY": "MTWY",
	"OVAL": "OVAL",
	"PARK": "PARK",
	"PARKWAY": "PKWY", "PKWY": "PKWY", "PKY": "PKWY",
	"PASS": "PASS",
	"PATH": "PATH",
	"PIKE": "PIKE",
	"PLACE": "PL", "PL": "PL",
	"PLAZA": "PLZ", "PLZ": "PLZ",
	"POINT": "PT", "PT": "PT",
	"PRAIRIE": "PR", "PR": "PR",
	"RANCH": "RNCH", "RNCH": "RNCH",
	"RIDGE": "RDG", "RDG": "RDG",
	"ROAD": "RD", "RD": "RD",
	"ROUTE": "RTE", "RTE": "RTE",
	"ROW": "ROW",
	"RUN": "RUN",
	"SQUARE": "SQ", "SQ": "SQ",
	"STATION": "STA", "STA": "STA",
	"STREET": "ST", "ST": "ST", "STR": "ST",
	"SUMMIT": "SMT", "SMT": "SMT",
	"TERRACE": "TER", "TER": "TER",
	"TRACE": "TRCE", "TRCE": "TRCE",
	"TRAIL": "TRL", "TRL": "TRL",
	"TURNPIKE": "TPKE", "TPKE": "TPKE",
	"VALLEY": "VLY", "VLY": "VLY",
	"VIEW": "VW", "VW": "VW",
	"VILLAGE": "VLG", "VLG": "VLG",
	"VISTA": "VIS", "VIS": "VIS",
	"WALK": "WALK",
	"WAY": "WAY",
}

// directionals maps compass directions to their abbreviation.
var directionals = map[string]string{
	"N": "N", "NORTH": "N",
	"S": "S", "SOUTH": "S",
	"E": "E", "EAST": "E",
	"W": "W", "WEST": "W",
	"NE": "NE", "NORTHEAST": "NE",
	"NW": "NW", "NORTHWEST": "NW",
	"SE": "SE", "SOUTHEAST": "SE",
	"SW": "SW", "SOUTHWEST": "SW",
}

// occupancyTypes maps secondary unit designators to their abbreviation.
var occupancyTypes = map[string]string{
	"APARTMENT": "APT", "APT": "APT",
	"BUILDING": "BLDG", "BLDG": "BLDG",
	"DEPARTMENT": "DEPT", "DEPT": "DEPT",
	"FLOOR": "FL", "FL": "FL",
	"LOT": "LOT",
	"NUMBER": "UNIT", "NO": "UNIT", "#": "UNIT",
	"ROOM": "RM", "RM": "RM",
	"SPACE": "SPC", "SPC": "SPC",
	"SUITE": "STE", "STE": "STE",
	"TRAILER": "TRLR", "TRLR": "TRLR",
	"UNIT": "UNIT",
}

// states maps state names and abbreviations to the USPS abbreviation.
var states = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR",
	"CALIFORNIA": "CA", "COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE",
	"DISTRICT OF COLUMBIA": "DC", "FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI",
	"IDAHO": "ID", "ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA",
	"KANSAS": "KS", "KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME",
	"MARYLAND": "MD", "MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN",
	"MISSISSIPPI": "MS", "MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE",
	"NEVADA": "NV", "NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM",
	"NEW YORK": "NY", "NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH",
	"OKLAHOMA": "OK", "OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI",
	"SOUTH CAROLINA": "SC", "SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX",
	"UTAH": "UT", "VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA",
	"WEST VIRGINIA": "WV", "WISCONSIN": "WI", "WYOMING": "WY",
	"PUERTO RICO": "PR", "GUAM": "GU", "VIRGIN ISLANDS": "VI",
	"AMERICAN SAMOA": "AS", "NORTHERN MARIANA ISLANDS": "MP",
}

func init() {
	abbrs := make([]string, 0, len(states))
	for _, abbr := range states {
		abbrs = append(abbrs, abbr)
	}
	for _, abbr := range abbrs {
		states[abbr] = abbr
	}
}

// boxWords introduce a post office box.
var boxWords = map[string]bool{
	"PO": true, "P": true, "O": true, "POB": true, "POST": true, "OFFICE": true, "BOX": true,
}
