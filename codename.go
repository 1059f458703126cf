package ifcreader

import "unicode"

// Codename normalizes a display name for lookups: lower-cased, keeping
// letters and digits only. "Identity Data" becomes "identitydata".
func Codename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
