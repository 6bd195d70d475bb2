package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/reffo/pkg/schema"
)

// parseAttributes turns key=value pairs into attribute values typed by the
// schema's fields: numbers become float64, booleans bool, and select values
// must be one of the field's options. Keys the schema does not declare are
// kept as strings. An empty value maps to nil so updates can remove a key.
func parseAttributes(s schema.CategorySchema, pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attrs := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid attribute %q (expected key=value)", p)
		}
		if raw == "" {
			attrs[key] = nil
			continue
		}
		v, err := coerceAttribute(s, key, raw)
		if err != nil {
			return nil, err
		}
		attrs[key] = v
	}
	return attrs, nil
}

func coerceAttribute(s schema.CategorySchema, key, raw string) (any, error) {
	f, ok := schema.Field(s, key)
	if !ok {
		return raw, nil
	}
	switch f.Type {
	case schema.FieldNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || !isFinite(n) {
			return nil, fmt.Errorf("attribute %s: %q is not a finite number", key, raw)
		}
		return n, nil
	case schema.FieldBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %q is not true or false", key, raw)
		}
		return b, nil
	case schema.FieldSelect:
		if !f.HasOption(raw) {
			return nil, fmt.Errorf("attribute %s: %q is not one of %s", key, raw, strings.Join(f.Options, ", "))
		}
		return raw, nil
	}
	return raw, nil
}

// dropNil removes keys whose value is nil.
func dropNil(attrs map[string]any) map[string]any {
	for k, v := range attrs {
		if v == nil {
			delete(attrs, k)
		}
	}
	return attrs
}
