package fieldbag

import (
	"sort"

	"inventory-server/core/utils"
)

// Kind discriminates the shapes a submitted field value can take.
type Kind int

const (
	// KindString is a scalar text value.
	KindString Kind = iota
	// KindNumber is a scalar numeric value.
	KindNumber
	// KindBool is a scalar boolean value.
	KindBool
	// KindMap is a nested field bag.
	KindMap
	// KindList is an ordered sequence of values.
	KindList
)

// Value is a tagged union over the scalar and composite shapes an agent may
// submit. Agents are loosely typed; reconcilers read values through the
// As* accessors, which coerce across scalar kinds instead of failing.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	m    Item
	list []Value
}

// String builds a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number builds a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool builds a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Map builds a nested item value.
func Map(m Item) Value { return Value{kind: KindMap, m: m} }

// List builds a sequence value.
func List(vs []Value) Value { return Value{kind: KindList, list: vs} }

// From converts an arbitrary decoded JSON/XML value into a Value.
// Unknown types are coerced to their string representation.
func From(val any) Value {
	switch v := val.(type) {
	case nil:
		return String("")
	case string:
		return String(v)
	case bool:
		return Bool(v)
	case float64:
		return Number(v)
	case float32:
		return Number(float64(v))
	case int:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case map[string]any:
		return Map(FromMap(v))
	case []any:
		list := make([]Value, 0, len(v))
		for _, entry := range v {
			list = append(list, From(entry))
		}
		return List(list)
	case []map[string]any:
		list := make([]Value, 0, len(v))
		for _, entry := range v {
			list = append(list, Map(FromMap(entry)))
		}
		return List(list)
	default:
		return String(utils.ToString(v))
	}
}

// Kind returns the value's shape.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the value coerced to a string. Composite values yield "".
func (v Value) AsString() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return utils.ToString(trimFloat(v.num))
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	default:
		return ""
	}
}

// AsInt returns the value coerced to an int.
func (v Value) AsInt() int {
	switch v.kind {
	case KindNumber:
		return int(v.num)
	case KindString:
		return utils.ToInt(v.str)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AsInt64 returns the value coerced to an int64.
func (v Value) AsInt64() int64 {
	switch v.kind {
	case KindNumber:
		return int64(v.num)
	case KindString:
		return utils.ToInt64(v.str)
	default:
		return int64(v.AsInt())
	}
}

// AsFloat returns the value coerced to a float64. XML submissions carry
// every number as a string, fractional ones included.
func (v Value) AsFloat() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return utils.ToFloat(v.str)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AsBool returns the value coerced to a bool.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num == 1
	case KindString:
		return utils.ToBool(v.str)
	default:
		return false
	}
}

// AsMap returns the nested item, or nil for non-map values.
func (v Value) AsMap() Item {
	if v.kind != KindMap {
		return nil
	}
	return v.m
}

// AsList returns the sequence. A map or scalar is wrapped as a single-element
// list so callers can treat "one item" and "many items" submissions uniformly.
func (v Value) AsList() []Value {
	switch v.kind {
	case KindList:
		return v.list
	case KindMap:
		return []Value{v}
	default:
		if v.AsString() == "" {
			return nil
		}
		return []Value{v}
	}
}

// IsEmpty reports whether the value carries no usable content.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString:
		return v.str == ""
	case KindMap:
		return len(v.m) == 0
	case KindList:
		return len(v.list) == 0
	default:
		return false
	}
}

// Item is a raw submitted record: a bag of category-specific fields.
// Reconcilers mutate items in place while preparing them for persistence.
type Item map[string]Value

// FromMap converts a decoded map into an Item, lowercasing field names so
// XML (historically uppercase) and JSON submissions address fields uniformly.
func FromMap(m map[string]any) Item {
	item := make(Item, len(m))
	for name, val := range m {
		item[lowerASCII(name)] = From(val)
	}
	return item
}

// Has reports whether the field is present.
func (it Item) Has(field string) bool {
	_, ok := it[field]
	return ok
}

// GetString returns the field coerced to a string, "" when absent.
func (it Item) GetString(field string) string {
	return it[field].AsString()
}

// GetInt returns the field coerced to an int, 0 when absent.
func (it Item) GetInt(field string) int {
	return it[field].AsInt()
}

// GetBool returns the field coerced to a bool, false when absent.
func (it Item) GetBool(field string) bool {
	return it[field].AsBool()
}

// Set stores a value under the field name.
func (it Item) Set(field string, v Value) {
	it[field] = v
}

// SetString stores a string value under the field name.
func (it Item) SetString(field, s string) {
	it[field] = String(s)
}

// Delete removes a field.
func (it Item) Delete(field string) {
	delete(it, field)
}

// Rename moves origin's value to dest when origin is present.
// Used by reconcilers to map vendor field names onto canonical ones.
func (it Item) Rename(origin, dest string) {
	if v, ok := it[origin]; ok {
		it[dest] = v
		delete(it, origin)
	}
}

// Fields returns the sorted field names, for deterministic encoding.
func (it Item) Fields() []string {
	names := make([]string, 0, len(it))
	for name := range it {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lowerASCII(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func trimFloat(f float64) any {
	if f == float64(int64(f)) {
		return int64(f)
	}
	return f
}
