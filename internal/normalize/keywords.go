// internal/normalize/keywords.go
package normalize

import "strings"

// Keyword tables are matched by containment on lower-cased input. They are
// read-only package data.
var (
	electricMarkers = []string{
		"electr", "электро", "электромоб", "электрическ", "vehicul electric",
	}
	electricExact = []string{"ev", "bev"}

	phevMarkers = []string{
		"plug-in", "plug in", "phev", "plug–in", "plug – in",
		"плагин-гибрид", "плагин гибрид",
		"plug-in hybrid", "plug in hybrid",
		"plug-in hibrid", "plug in hibrid",
		"плагин-гiбрид", "плагiн-гiбрид", "плагін-гібрид", "плагін гібрид",
	}
	mhevMarkers = []string{
		"mhev", "mild hybrid", "mild-hybrid", "mildhybrid",
		"48v", "48 v", "48-вольт", "48 вольт",
		"мягкий гибрид", "мягкий-гибрид",
		"mild hibrid", "mild-hibrid",
	}
	hybridMarkers = []string{
		"hybrid", "hibrid", "гибрид", "hev", "гибридный", "гибридная",
	}
	lpgMarkers = []string{"gpl", "lpg", "propan", "propane", "gaz/gpl", "пропан", "пропан-бутан"}
	cngMarkers = []string{"cng", "metan", "methan", "metane", "metano", "метан"}

	// DieselWords and PetrolWords decide the sub-variant of a hybrid label.
	DieselWords = []string{
		"diesel", "dizel", "дизел", "дизель",
		"motorină", "motorina", "motorin",
	}
	PetrolWords = []string{
		"benzin", "бензин", "benzina", "benzină",
		"gasoline", "petrol",
	}
	// petrol engine badges that imply petrol when no fuel word is present
	petrolEngineCodes = []string{
		"t-gdi", "tgdi", "gdi", "tsi", "tfsi", "mpi", "ecoboost",
		"t-jet", "tjet", "skyactiv-g", "skyactiv g",
	}

	automaticMarkers = []string{
		"automat", "automată", "automata", "automatic", "автомат",
		"tiptronic", "steptronic", "s-tronic", "s tronic", "stronic",
		"g-tronic", "gtronic", "7g-tronic", "8g-tronic", "9g-tronic",
		"multitronic", "powershift", "speedshift",
		"dsg", "dct", "6dct", "7dct", "8dct", "9dct",
		"a/t", " at", "at ", "at-", "akpp", "акп", "акпп",
		"easytronic", "easy-tronic", "easy shift", "easy-shift",
		"semi-autom", "semi autom", "semi-automată", "semi automată",
		"semiautomat", "semiautomatic", "semi-automatic", "sequential",
		"secvential", "secvenţial", "secvenţială",
	}
	cvtMarkers    = []string{"cvt", "variator", "вариатор", "xtronic", "multidrive"}
	robotMarkers  = []string{"robot", "robotizată", "robotizata", "робот", "dual clutch", "dual-clutch", "double clutch", "dublu ambreiaj"}
	awdMarkers    = []string{"4x4", "4 x 4", "4wd", "awd", "integral", "полный"}
	manualMarkers = []string{
		"manual", "manuală", "manuala", "мех", "механ",
		"m/t", "mt ", " mt", "mkp", "mkpp", "мкп", "мкпп",
		"5mt", "6mt", "7mt", "schimb manual", "cutie manuala",
	}
)

// ContainsAny reports whether s contains any of the keywords.
func ContainsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func lower(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func in(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
