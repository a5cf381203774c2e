package models

import "strconv"

// metadataInt reads a numeric metadata entry regardless of how it was
// decoded: JSON round-trips turn ints into float64, and older imports
// stored ids as strings.
func metadataInt(meta map[string]interface{}, key string) (int, bool) {
	if meta == nil {
		return 0, false
	}
	switch v := meta[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}
