package receipt

// Static correction tables for recurring tesseract mis-reads on grocery
// receipts. These are exact lookups/substring replacements, deliberately not
// a spell checker; extend them as new mis-reads show up in the field.

// unitCorrections maps a lower-cased unit token to its canonical unit.
var unitCorrections = map[string]string{
	// pound variants ("lbs" and the l->i / l->1 confusions)
	"lbs": "lb",
	"ibs": "lb",
	"its": "lb",
	"ib":  "lb",
	"1b":  "lb",
	"1bs": "lb",
	// gallon variants
	"galon":  "gallon",
	"gallan": "gallon",
	"gailon": "gallon",
	// count variants
	"cound": "count",
	"covnt": "count",
	"c0unt": "count",
	"ct":    "count",
	"cnt":   "count",
	// ounce variants
	"0z":  "oz",
	"ozs": "oz",
	"o2":  "oz",
	// kilogram variants
	"kgs": "kg",
	"k9":  "kg",
	// each
	"ea": "each",
}

type correction struct{ from, to string }

// nameCorrections is applied in order as exact substring replacements on the
// title-cased item name. Order matters for overlapping entries, so this is a
// slice rather than a map.
var nameCorrections = []correction{
	{"Tomatnes", "Tomatoes"},
	{"Tomat0es", "Tomatoes"},
	{"Tomatces", "Tomatoes"},
	{"Tomatos", "Tomatoes"},
	{"Garllc", "Garlic"},
	{"Gar1ic", "Garlic"},
	{"Garlio", "Garlic"},
	{"Mi1k", "Milk"},
	{"M1lk", "Milk"},
	{"Milx", "Milk"},
	{"0nions", "Onions"},
	{"Onlons", "Onions"},
	{"P0tatoes", "Potatoes"},
	{"Potatoe5", "Potatoes"},
	{"Chlcken", "Chicken"},
	{"Ch1cken", "Chicken"},
	{"8read", "Bread"},
	{"Bre4d", "Bread"},
	{"Chee5e", "Cheese"},
	{"Cheeze", "Cheese"},
	{"8utter", "Butter"},
	{"Egqs", "Eggs"},
	{"E995", "Eggs"},
	{"App1es", "Apples"},
	{"Bananna", "Banana"},
	{"0range", "Orange"},
	{"Ce1ery", "Celery"},
	{"Sa1mon", "Salmon"},
}
