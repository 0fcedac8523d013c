package silver

import (
	"strings"

	crerr "github.com/cockroachdb/errors"
)

// Canonical tricode → stats-API team ID for the 30 current franchises.
var teamIDByTricode = map[string]int64{
	"ATL": 1610612737,
	"BOS": 1610612738,
	"BKN": 1610612751,
	"CHA": 1610612766,
	"CHI": 1610612741,
	"CLE": 1610612739,
	"DAL": 1610612742,
	"DEN": 1610612743,
	"DET": 1610612765,
	"GSW": 1610612744,
	"HOU": 1610612745,
	"IND": 1610612754,
	"LAC": 1610612746,
	"LAL": 1610612747,
	"MEM": 1610612763,
	"MIA": 1610612748,
	"MIL": 1610612749,
	"MIN": 1610612750,
	"NOP": 1610612740,
	"NYK": 1610612752,
	"OKC": 1610612760,
	"ORL": 1610612753,
	"PHI": 1610612755,
	"PHX": 1610612756,
	"POR": 1610612757,
	"SAC": 1610612758,
	"SAS": 1610612759,
	"TOR": 1610612761,
	"UTA": 1610612762,
	"WAS": 1610612764,
}

// Historical and cross-provider spellings.
var tricodeAliases = map[string]string{
	"BRK": "BKN",
	"PHO": "PHX",
	"NOH": "NOP",
	"CHO": "CHA",
}

// ResolveTeamID maps a tricode to the stats-API team ID, accepting known
// aliases. gameID is included in the error for unknown tricodes so the
// offending game can be traced.
func ResolveTeamID(tricode, gameID string) (int64, error) {
	normalized := strings.ToUpper(strings.TrimSpace(tricode))
	if alias, ok := tricodeAliases[normalized]; ok {
		normalized = alias
	}
	if id, ok := teamIDByTricode[normalized]; ok {
		return id, nil
	}
	if gameID == "" {
		gameID = "unknown"
	}
	return 0, crerr.Newf("unknown team tricode %q for game %s", tricode, gameID)
}

// CanonicalTricode resolves aliases without failing; unknown inputs are
// returned normalized.
func CanonicalTricode(tricode string) string {
	normalized := strings.ToUpper(strings.TrimSpace(tricode))
	if alias, ok := tricodeAliases[normalized]; ok {
		return alias
	}
	return normalized
}
