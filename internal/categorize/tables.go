package categorize

// categoryPriority breaks ties between candidates in the same accuracy
// bucket. Categories not listed rank at priority 0.
var categoryPriority = map[string]int{
	"Proteiner":                       10,
	"Bageri":                          9,
	"Kulhydrater":                     8,
	"Grøntsager":                      7,
	"Frugter":                         6,
	"Fedtstoffer & Olier":             5,
	"Tilsætningsstoffer & Krydderier": 3,
	UnknownCategory:                   1,
}

// Priority returns the tie-break priority for a category name.
func Priority(category string) int {
	return categoryPriority[category]
}

// similarityBlocklist holds word pairs that look alike but name different
// things. A pair blocks when one word contains the first side and the other
// word contains the second, in either direction.
var similarityBlocklist = [][2]string{
	{"hel", "hell"},
	{"san", "sand"},
	{"te", "ste"},
	{"te", "ter"},
	{"is", "ris"},
	{"is", "fisk"},
	{"bon", "bacon"},
	{"kit", "kits"},
	{"mix", "mixer"},
	{"bar", "bart"},
	{"ost", "post"},
	{"mou", "mouse"},
	{"blom", "blomme"},
	{"vand", "danskvand"},
	{"dansk", "danskvand"},
	{"spelt", "specialitet"},
	{"ger", "burger"},
	{"øl", "olie"},
	{"is", "chips"},
	{"is", "kiks"},
	// "mel" and "te" only ever match themselves exactly.
	{"mel", "mel"},
	{"te", "te"},
	{"salt", "salat"},
	{"vin", "vingummi"},
	{"vin", "vineddike"},
	{"ost", "postej"},
	{"ost", "frost"},
	{"kar", "karry"},
	{"bar", "barber"},
	{"ris", "pris"},
	{"løg", "løgismose"},
	{"chips", "chili"},
}

// strongPreparedIndicators mark an offer as a finished dish.
var strongPreparedIndicators = []string{
	"færdigret",
	"måltid",
	"aftensmad",
	"sammensat",
	"tilberedt",
	"meal kit",
	"dinner kit",
	"ready meal",
}

// preparedIndicators suggest processing, convenience or a composed product.
var preparedIndicators = []string{
	"dinner kit",
	"kit",
	"meal kit",
	"ready",
	"mikrobølgeovn",
	"færdigret",
	"ret med",
	"ret i",
	"færdig",
	"convenience",
	"frossen ret",
	"let at",
	"hurtig at",
	"parat til",
	"instant",
	"klar til",
	"hurtig",
	"opvarm",
	"ovn",
	"måltid",
	"samlet",
	"sammensat",
	"tilberedt",
	"tilbehør",
	"marineret",
	"marinerede",
	"krydrede",
	"krydret",
	"grillet",
	"stegt",
	"bagt",
	"pakke",
	"meal",
	"frokost",
	"aftensmad",
	"morgenmad",
	"middag",
	"snack",
	"tapas",
	"servering",
	"saltim bocca",
	"sovs",
	"sauce",
	"dressing",
	"mix",
}

// exemptIngredientTerms are indicators that describe a plain purchasable
// ingredient when they stand alone or follow a known base.
var exemptIngredientTerms = map[string]struct{}{
	"sovs":     {},
	"sauce":    {},
	"dressing": {},
	"mix":      {},
}
