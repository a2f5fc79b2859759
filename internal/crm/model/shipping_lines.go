package model

import "strings"

// OfficialShippingLines is the fixed list shipping lines are drawn from during data entry.
var OfficialShippingLines = []string{
	"Cosco", "B&G", "Hapag lloyd", "CMA", "SIDRA", "Maersk", "MSC", "ARKAS",
	"OCEAN EXPRESS", "ZIM", "ONE", "ESL", "EGL", "ADMIRAL", "ESG", "YANG MING",
	"MLH", "TARROS", "MEDKON", "OOCL", "TSA", "SEAGLORY EGYPT", "LAT",
}

// CanonicalShippingLine returns the official spelling of line, matched case-insensitively.
func CanonicalShippingLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, official := range OfficialShippingLines {
		if strings.EqualFold(official, line) {
			return official, true
		}
	}
	return line, false
}
