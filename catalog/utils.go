package catalog

import "strings"

// toString reads a loosely typed attribute value; attributes are free-form JSON.
func toString(intf any) (result string, ok bool) {
	if intf == nil {
		return
	}
	switch v := intf.(type) {
	case string:
		result = strings.TrimSpace(v)
		ok = true
	case []any:
		if len(v) > 0 {
			result, ok = toString(v[0])
		}
	}
	return
}
