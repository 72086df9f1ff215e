package strings

import (
	"strings"
)

// SplitList parses a comma-separated flag value into its entries. Surrounding
// whitespace is trimmed and empty entries are dropped, so "en, fr,,ht"
// yields [en fr ht].
func SplitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// SquishName makes a free-text name usable inside a file name. Runs of
// whitespace collapse into a single dash.
func SquishName(name string) string {
	return strings.Join(strings.Fields(name), "-")
}
