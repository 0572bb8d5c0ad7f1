package extract

// Dictionaries maps canonical tags to their alias phrases for the three
// extraction dimensions. Aliases are matched case-insensitively with
// hyphen/space folding and simple plural tolerance; macronned and plain
// spellings of te reo Māori names are both listed so either form in a
// source matches.
type Dictionaries struct {
	Geography    map[string][]string `yaml:"geography"`
	Methods      map[string][]string `yaml:"methods"`
	Stakeholders map[string][]string `yaml:"stakeholders"`
}

// Defaults returns the built-in dictionaries.
func Defaults() Dictionaries {
	return Dictionaries{
		Geography: map[string][]string{
			"Auckland":         {"auckland", "tāmaki makaurau", "tamaki makaurau", "waitematā", "waitemata"},
			"Wellington":       {"wellington", "te whanganui-a-tara", "hutt valley", "lower hutt", "upper hutt", "porirua", "kapiti"},
			"Christchurch":     {"christchurch", "ōtautahi", "otautahi", "greater christchurch", "canterbury"},
			"Tauranga":         {"tauranga", "western bay of plenty", "mount maunganui", "bay of plenty"},
			"Hamilton-Waikato": {"hamilton", "kirikiriroa", "waikato", "future proof"},
			"Queenstown Lakes": {"queenstown", "queenstown lakes", "wanaka", "central otago"},
			"Rotorua":          {"rotorua", "te arawa"},
			"Hawke's Bay":      {"hawkes bay", "hawke's bay", "napier", "hastings", "te matau-a-māui"},
			"Northland":        {"northland", "tai tokerau", "whangarei", "far north"},
			"Gisborne":         {"gisborne", "tairāwhiti", "tairawhiti", "east coast"},
			"New Zealand":      {"new zealand", "aotearoa", "nz"},
			"Australia":        {"australia", "sydney", "melbourne", "brisbane", "victoria", "nsw"},
			"United Kingdom":   {"united kingdom", "uk", "london", "england", "scotland"},
			"Canada":           {"canada", "vancouver", "toronto", "british columbia"},
			"Ireland":          {"ireland", "dublin"},
			"Minneapolis":      {"minneapolis"},
			"California":       {"california", "san francisco", "los angeles", "bay area", "sf bay area"},
			"Oregon":           {"oregon", "portland", "portland, oregon"},
			"Vienna":           {"vienna", "wien"},
			"Berlin":           {"berlin"},
			"Germany":          {"germany", "deutschland"},
			"Singapore":        {"singapore"},
			"Sweden":           {"sweden", "stockholm"},
			"Denmark":          {"denmark", "copenhagen"},
			"Finland":          {"finland", "helsinki"},
			"France":           {"france", "paris"},
		},
		Methods: map[string][]string{
			"phenomenology-neo":     {"hermann schmitz", "new phenomenology", "neo-phenomenology", "felt body", "corporeal", "leib", "situational atmosphere"},
			"phenomenology-general": {"phenomenology", "phenomenological", "lived experience", "embodiment", "merleau-ponty"},
			"counter-mapping":       {"counter-mapping", "counter mapping", "deep mapping", "critical gis", "qualitative gis"},
			"spatial-justice":       {"spatial justice", "right to the city", "socio-spatial"},
			"kaupapa-maori":         {"kaupapa maori", "kaupapa māori", "mātauranga", "whakapapa", "mana whenua"},
			"talanoa":               {"talanoa", "pacific methodology", "pasifika methodology"},
			"administrative-data":   {"idi", "integrated data infrastructure", "admin data", "tax data", "census"},
			"spatial-analysis":      {"spatial analysis", "gis", "geospatial", "remote sensing", "catchment analysis"},
			"econometrics":          {"econometric", "regression", "difference-in-differences", "hedonic", "causal inference"},
			"survey-data":           {"survey", "questionnaire", "cross-sectional", "household economic survey", "hes"},
			"mixed-methods":         {"mixed methods", "mixed-methods", "triangulation"},
			"ethnography":           {"ethnography", "ethnographic", "participant observation", "fieldwork"},
			"qualitative-general":   {"qualitative", "semi-structured interview", "focus group", "thematic analysis", "content analysis"},
			"case-study":            {"case study", "case-study", "multiple case studies"},
			"systematic-review":     {"systematic review", "meta-analysis", "literature review", "scoping review"},
		},
		Stakeholders: map[string][]string{
			"renters":              {"tenant", "tenants", "renter", "renters", "rental"},
			"homeowners":           {"homeowner", "homeowners", "owner-occupier", "owner occupier"},
			"landlords":            {"landlord", "landlords", "private landlord"},
			"developers":           {"developer", "developers", "housebuilder", "property developer"},
			"local-government":     {"council", "local authority", "municipality", "city council"},
			"national-government":  {"central government", "national government", "ministry", "federal government"},
			"planners":             {"urban planner", "planning authority", "planner", "zoning"},
			"community-groups":     {"community organisation", "community organization", "advocacy group", "resident association"},
			"housing-associations": {"housing association", "social housing", "public housing"},
			"kainga-ora":           {"kainga ora", "kainga-ora", "kāinga ora"},
			"private-sector":       {"private sector", "commercial", "market"},
			"public-sector":        {"public sector", "state", "government intervention"},
			"non-profit":           {"non-profit", "non profit", "ngo", "charity"},
		},
	}
}
