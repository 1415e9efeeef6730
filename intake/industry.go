package intake

import "strings"

// Industries is the closed industry label set. A non-empty Profile.IndustryName
// must be one of these; classifier output is validated against it, never trusted.
var Industries = []string{
	"Aerospace",
	"Agriculture",
	"Finance",
	"Healthcare",
	"Manufacturing",
	"Retail",
	"Technology",
}

// CanonicalIndustry maps a free-form label onto the fixed set, ignoring case and
// surrounding whitespace. The second result reports membership.
func CanonicalIndustry(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, industry := range Industries {
		if strings.EqualFold(label, industry) {
			return industry, true
		}
	}
	return "", false
}
