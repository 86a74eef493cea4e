package filter

import "regexp"

// nonFoodKeywords flags household, textile and furniture products that
// share a catalog with groceries. An entry anywhere in the name rejects it,
// so "håndsæbe" and "fyrfadslys" are caught as compounds.
var nonFoodKeywords = []string{
	"magazine", "magasin", "blad", "avis", "bog", "kupon", "sæbe", "vaskepulver",
	"shampo", "shampoo", "balsam", "shower", "bad", "toilet", "rengøring",
	"vask", "opvask", "opvaskemiddel", "batteri", "batterier",
	"lighter", "tændstik", "serviet", "toiletpapir", "køkkenrulle", "ble",
	"tandpasta", "tandbørste", "deodorant", "creme", "lotion", "parfume",
	"parfyme", "duft", "lys", "stearinlys", "vinduespudser", "vinduespudsning",
	"vaskemaskine", "opvaskemaskine", "tørretumbler", "tørretumbling",
	"vaskemiddel", "skyllemiddel", "skylle", "skylning",
	"rens", "rensning", "renser", "rensemiddel", "rensemidler",
	"sokker", "strømper", "undertøj", "tøj", "tøjvask", "bukser",
	"skjorte", "sko", "støvler", "jakke", "frakke", "hat", "hue",
	"vanter", "handsker", "tørklæde", "halstørklæde", "bælte", "slips",
	"plastik kasse", "plastikkasse", "kasse", "kasser", "skab", "skabe",
	"skuffe", "skuffer", "bord", "borde", "stol", "stole", "sofa", "sofaer",
	"lampe", "lamper", "ledning", "ledninger", "stik",
	"battery", "batteries", "matches", "soap", "detergent",
	"puder", "dyne", "dyner", "sengetøj", "sengetøjs", "senge", "seng",
	"madrasser", "madras", "pudebetræk", "dynebetræk", "lagnet", "lagner",
	"aida relief blå", "aida relief rød", "aida relief grøn", "aida relief gul",
	"aida relief sort", "aida relief hvid", "aida relief orange", "aida relief lilla",
}

// foodPhrases contain a non-food keyword but are groceries. They are
// blanked out before the keyword scan.
var foodPhrases = []string{
	"creme fraiche",
	"crème fraîche",
	"cremefraiche",
	"æble",        // ble
	"skovbær",     // sko
	"skorzoner",   // sko
	"boghvede",    // bog
	"pudersukker", // puder
	"balsamico",   // balsam
	"bladselleri", // blad
	"salatblad",   // blad
	"laurbærblad", // blad
	"rensdyr",     // rens
	"stikkelsbær", // stik
}

var (
	reMedPattern = regexp.MustCompile(`[\p{L}\p{N}_]+ med [\p{L}\p{N}_]+`)
	reAlcohol    = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(?:øl|vin|spiritus|vodka|gin|rom|whisky|cognac)(?:$|[^\p{L}\p{N}_])`)
	reBeverage   = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(?:sodavand|soda|cola|fanta|sprite|juice|drik|vand)(?:$|[^\p{L}\p{N}_])`)
)
