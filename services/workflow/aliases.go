package workflow

import (
	"strings"

	"travelagent/models"
)

// cabinAliases folds the many ways people name a cabin into the closed
// canonical set. Lookup is case-insensitive; anything absent from the
// table means "ask again", never a silent default.
var cabinAliases = map[string]models.CabinClass{
	"economy":         models.CabinEconomy,
	"eco":             models.CabinEconomy,
	"coach":           models.CabinEconomy,
	"standard":        models.CabinEconomy,
	"cheapest":        models.CabinEconomy,
	"basic":           models.CabinEconomy,
	"premium economy": models.CabinPremiumEconomy,
	"premium":         models.CabinPremiumEconomy,
	"premium eco":     models.CabinPremiumEconomy,
	"econ plus":       models.CabinPremiumEconomy,
	"economy plus":    models.CabinPremiumEconomy,
	"business":        models.CabinBusiness,
	"business class":  models.CabinBusiness,
	"biz":             models.CabinBusiness,
	"first":           models.CabinFirst,
	"first class":     models.CabinFirst,
	"1st class":       models.CabinFirst,
}

// resolveCabin maps free text to a canonical cabin class. ok is false
// when the text names no known cabin.
func resolveCabin(text string) (models.CabinClass, bool) {
	key := strings.ToLower(strings.TrimSpace(text))
	key = strings.Trim(key, ".!?,")
	if c, ok := cabinAliases[key]; ok {
		return c, true
	}
	// Longer aliases win so "premium economy" is not read as "economy".
	best := ""
	var bestClass models.CabinClass
	for alias, class := range cabinAliases {
		if strings.Contains(key, alias) && len(alias) > len(best) {
			best = alias
			bestClass = class
		}
	}
	if best == "" {
		return "", false
	}
	return bestClass, true
}
