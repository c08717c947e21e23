package relationship

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Data is a hydrated relationship reference. Label and Data are both nil when
// the referenced record could not be fetched.
type Data struct {
	ID    string         `json:"id"`
	Label *string        `json:"label,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Missing reports whether the record behind the reference could not be read.
func (d Data) Missing() bool {
	return d.Label == nil && d.Data == nil
}

// MarshalJSON keeps an empty but present data object, which the struct tags
// alone would drop.
func (d Data) MarshalJSON() ([]byte, error) {
	out := map[string]any{"id": d.ID}
	if d.Label != nil {
		out["label"] = *d.Label
	}
	if d.Data != nil {
		out["data"] = d.Data
	}
	return json.Marshal(out)
}

// IDOf extracts the id of a stored or resolved relationship value. It accepts
// {"id": ...} maps and Data values; nil ids report false.
func IDOf(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case Data:
		return t.ID, true
	case *Data:
		if t == nil {
			return "", false
		}
		return t.ID, true
	case map[string]any:
		return idString(t["id"])
	default:
		return "", false
	}
}

func idString(v any) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return id, true
	case json.Number:
		return id.String(), true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	default:
		return fmt.Sprint(id), true
	}
}
