package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// truthy reports whether an attribute value counts as present. Absent, nil,
// empty strings, false, zero, and NaN are not present. Every other value is,
// including empty maps and slices that are non-nil. Pointers are followed.
//
// Zero is deliberately not present: an attribute such as accidents=0 is
// omitted from linked data.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x != ""
		}
		return f != 0 && !math.IsNaN(f)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return truthy(rv.Elem().Interface())
	case reflect.Map, reflect.Slice:
		return !rv.IsNil()
	}
	return true
}

// displayString renders a scalar attribute the way it is written into
// text-valued Schema.org properties. Whole floats print without a fraction,
// so a year decoded from JSON as 2020.0 renders as "2020".
func displayString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return formatFloat(rv.Float(), 32)
	case reflect.Float64:
		return formatFloat(rv.Float(), 64)
	case reflect.Pointer:
		if rv.IsNil() {
			return "null"
		}
		return displayString(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// quantity wraps a measured value with a UN/CEFACT unit code.
func quantity(value any, unitCode string) LinkedData {
	return LinkedData{"@type": "QuantitativeValue", "value": value, "unitCode": unitCode}
}

// named wraps a value as a typed entity reference, such as a Brand or Person.
func named(typ string, name any) LinkedData {
	return LinkedData{"@type": typ, "name": name}
}

// setIf copies attrs[key] to ld[prop] when the value is present.
func setIf(ld LinkedData, prop string, attrs Attributes, key string) {
	if v := attrs[key]; truthy(v) {
		ld[prop] = v
	}
}

// setStringIf writes the display string of attrs[key] to ld[prop] when the
// value is present.
func setStringIf(ld LinkedData, prop string, attrs Attributes, key string) {
	if v := attrs[key]; truthy(v) {
		ld[prop] = displayString(v)
	}
}
