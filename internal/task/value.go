package task

// Key identifies a slot in a task's scratch store.
//
// The key space is a closed enum rather than free-form strings: lookups on
// the real-time path must not hash strings or box values. Built-in routines
// claim the named keys below; KeyAux0..KeyAux3 are free for callers.
type Key uint8

const (
	// KeyRestart is polled by restartable routines while parked.
	KeyRestart Key = iota
	// KeyValue holds a routine's last published value.
	KeyValue
	// KeyStep holds a pattern routine's step index.
	KeyStep
	// KeyLevel holds the last observed logic level.
	KeyLevel
	// KeyAux0 through KeyAux3 are caller-owned scratch slots.
	KeyAux0
	KeyAux1
	KeyAux2
	KeyAux3

	numKeys
)

// Kind tags the type currently held by a Value slot.
type Kind uint8

const (
	// KindNone marks an empty slot.
	KindNone Kind = iota
	// KindBool marks a boolean slot.
	KindBool
	// KindInt marks an int64 slot.
	KindInt
	// KindFloat marks a float64 slot.
	KindFloat
	// KindString marks a string slot.
	KindString
)

// Value is a kind-tagged union. A flat struct rather than an interface so
// that reads and writes on the real-time path never allocate.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

// BoolValue creates a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue creates an int64 Value.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue creates a float64 Value.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// StringValue creates a string Value.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// Kind returns the slot's current type tag.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean payload. ok is false if the slot holds
// a different kind; the zero value is returned in that case.
func (v Value) Bool() (b, ok bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Int returns the int64 payload, reporting whether the slot held one.
func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// Float returns the float64 payload, reporting whether the slot held one.
func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// String returns the string payload, reporting whether the slot held one.
func (v Value) String() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}
