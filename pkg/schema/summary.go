package schema

import "strings"

// SummaryItem is one attribute shown in a compact listing view.
type SummaryItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// String renders the item as "Label: value unit".
func (i SummaryItem) String() string {
	var b strings.Builder
	b.WriteString(i.Label)
	b.WriteString(": ")
	b.WriteString(i.Value)
	if i.Unit != "" {
		b.WriteByte(' ')
		b.WriteString(i.Unit)
	}
	return b.String()
}

// Summary returns the present summary attributes of attrs in schema order.
func Summary(s CategorySchema, attrs Attributes) []SummaryItem {
	var out []SummaryItem
	for _, f := range s.Attributes() {
		if !f.Summary {
			continue
		}
		v := attrs[f.Key]
		if !truthy(v) {
			continue
		}
		out = append(out, SummaryItem{Key: f.Key, Label: f.Label, Value: displayString(v), Unit: f.Unit})
	}
	return out
}
