package lang

import (
	"sort"
	"strconv"

	"github.com/zeebo/xxh3"
)

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// sourceHash returns a short printable digest of a template source for
// log records.
func sourceHash(src string) string {
	return strconv.FormatUint(xxh3.HashString(src), 16)
}
