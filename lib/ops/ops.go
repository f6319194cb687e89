package ops

import "fmt"

// --------------------------------------------------------------------------
// Operation Kinds
// --------------------------------------------------------------------------

// Kind identifies an operation variant. It is used for logging and metrics,
// dispatch on the variant itself goes through a Visitor.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindGet
	KindSet
	KindDelete
	KindExists
	KindFlush
	KindKeys
	KindKeysPrefix
	KindGetPrefix
	KindDeletePrefix
	KindValues
	KindValuesPrefix
	KindSize
	KindCompareAndSwap
)

func (k Kind) String() string {
	switch k {
	case KindGet:
		return "get"
	case KindSet:
		return "set"
	case KindDelete:
		return "delete"
	case KindExists:
		return "exists"
	case KindFlush:
		return "flush"
	case KindKeys:
		return "keys"
	case KindKeysPrefix:
		return "keys_prefix"
	case KindGetPrefix:
		return "get_prefix"
	case KindDeletePrefix:
		return "delete_prefix"
	case KindValues:
		return "values"
	case KindValuesPrefix:
		return "values_prefix"
	case KindSize:
		return "size"
	case KindCompareAndSwap:
		return "compare_and_swap"
	default:
		return "unknown"
	}
}

// AllKinds lists every known operation kind in declaration order.
var AllKinds = []Kind{
	KindGet, KindSet, KindDelete, KindExists, KindFlush, KindKeys, KindKeysPrefix,
	KindGetPrefix, KindDeletePrefix, KindValues, KindValuesPrefix, KindSize, KindCompareAndSwap,
}

// --------------------------------------------------------------------------
// Operation Interface
// --------------------------------------------------------------------------

// Operation is one command against the store. The set of implementations is
// closed: only the types declared in this package satisfy it.
type Operation interface {
	// Kind returns the variant tag of the operation.
	Kind() Kind
	fmt.Stringer

	operation()
}

// Get reads the value stored for Key.
type Get struct {
	Key string
}

// Set stores Value under Key, overwriting any existing value.
type Set struct {
	Key   string
	Value []byte
}

// Delete removes Key. Deleting an absent key is not an error.
type Delete struct {
	Key string
}

// Exists reports whether Key is present.
type Exists struct {
	Key string
}

// Flush removes every key.
type Flush struct{}

// Keys lists every key.
type Keys struct{}

// KeysPrefix lists every key starting with Prefix.
type KeysPrefix struct {
	Prefix string
}

// GetPrefix returns every key-value pair whose key starts with Prefix.
type GetPrefix struct {
	Prefix string
}

// DeletePrefix removes every key starting with Prefix.
type DeletePrefix struct {
	Prefix string
}

// Values lists every stored value.
type Values struct{}

// ValuesPrefix lists the values of every key starting with Prefix.
type ValuesPrefix struct {
	Prefix string
}

// Size returns the number of stored keys.
type Size struct{}

// CompareAndSwap replaces the value of Key with New if the current value equals Old.
// A nil Old requires the key to be absent, a nil New deletes the key on match.
type CompareAndSwap struct {
	Key string
	Old []byte
	New []byte
}

func (Get) Kind() Kind            { return KindGet }
func (Set) Kind() Kind            { return KindSet }
func (Delete) Kind() Kind         { return KindDelete }
func (Exists) Kind() Kind         { return KindExists }
func (Flush) Kind() Kind          { return KindFlush }
func (Keys) Kind() Kind           { return KindKeys }
func (KeysPrefix) Kind() Kind     { return KindKeysPrefix }
func (GetPrefix) Kind() Kind      { return KindGetPrefix }
func (DeletePrefix) Kind() Kind   { return KindDeletePrefix }
func (Values) Kind() Kind         { return KindValues }
func (ValuesPrefix) Kind() Kind   { return KindValuesPrefix }
func (Size) Kind() Kind           { return KindSize }
func (CompareAndSwap) Kind() Kind { return KindCompareAndSwap }

func (Get) operation()            {}
func (Set) operation()            {}
func (Delete) operation()         {}
func (Exists) operation()         {}
func (Flush) operation()          {}
func (Keys) operation()           {}
func (KeysPrefix) operation()     {}
func (GetPrefix) operation()      {}
func (DeletePrefix) operation()   {}
func (Values) operation()         {}
func (ValuesPrefix) operation()   {}
func (Size) operation()           {}
func (CompareAndSwap) operation() {}

func (o Get) String() string    { return fmt.Sprintf("Get{Key: %q}", o.Key) }
func (o Set) String() string    { return fmt.Sprintf("Set{Key: %q, Value: %d bytes}", o.Key, len(o.Value)) }
func (o Delete) String() string { return fmt.Sprintf("Delete{Key: %q}", o.Key) }
func (o Exists) String() string { return fmt.Sprintf("Exists{Key: %q}", o.Key) }
func (Flush) String() string    { return "Flush{}" }
func (Keys) String() string     { return "Keys{}" }
func (o KeysPrefix) String() string {
	return fmt.Sprintf("KeysPrefix{Prefix: %q}", o.Prefix)
}
func (o GetPrefix) String() string {
	return fmt.Sprintf("GetPrefix{Prefix: %q}", o.Prefix)
}
func (o DeletePrefix) String() string {
	return fmt.Sprintf("DeletePrefix{Prefix: %q}", o.Prefix)
}
func (Values) String() string { return "Values{}" }
func (o ValuesPrefix) String() string {
	return fmt.Sprintf("ValuesPrefix{Prefix: %q}", o.Prefix)
}
func (Size) String() string { return "Size{}" }
func (o CompareAndSwap) String() string {
	return fmt.Sprintf("CompareAndSwap{Key: %q, Old: %s, New: %s}", o.Key, describeOptional(o.Old), describeOptional(o.New))
}

func describeOptional(b []byte) string {
	if b == nil {
		return "<none>"
	}
	return fmt.Sprintf("%d bytes", len(b))
}

// --------------------------------------------------------------------------
// Visitor (exhaustive dispatch)
// --------------------------------------------------------------------------

// Visitor handles every operation variant. Implementations must provide a
// method for each variant, so adding a variant is a compile error for every
// consumer until it decides how to handle it.
type Visitor[R any] interface {
	VisitGet(op Get) R
	VisitSet(op Set) R
	VisitDelete(op Delete) R
	VisitExists(op Exists) R
	VisitFlush(op Flush) R
	VisitKeys(op Keys) R
	VisitKeysPrefix(op KeysPrefix) R
	VisitGetPrefix(op GetPrefix) R
	VisitDeletePrefix(op DeletePrefix) R
	VisitValues(op Values) R
	VisitValuesPrefix(op ValuesPrefix) R
	VisitSize(op Size) R
	VisitCompareAndSwap(op CompareAndSwap) R
}

// Visit dispatches op to the matching method of v.
// Pointer variants are accepted and dereferenced.
func Visit[R any](op Operation, v Visitor[R]) R {
	switch o := op.(type) {
	case Get:
		return v.VisitGet(o)
	case *Get:
		return v.VisitGet(*o)
	case Set:
		return v.VisitSet(o)
	case *Set:
		return v.VisitSet(*o)
	case Delete:
		return v.VisitDelete(o)
	case *Delete:
		return v.VisitDelete(*o)
	case Exists:
		return v.VisitExists(o)
	case *Exists:
		return v.VisitExists(*o)
	case Flush:
		return v.VisitFlush(o)
	case *Flush:
		return v.VisitFlush(*o)
	case Keys:
		return v.VisitKeys(o)
	case *Keys:
		return v.VisitKeys(*o)
	case KeysPrefix:
		return v.VisitKeysPrefix(o)
	case *KeysPrefix:
		return v.VisitKeysPrefix(*o)
	case GetPrefix:
		return v.VisitGetPrefix(o)
	case *GetPrefix:
		return v.VisitGetPrefix(*o)
	case DeletePrefix:
		return v.VisitDeletePrefix(o)
	case *DeletePrefix:
		return v.VisitDeletePrefix(*o)
	case Values:
		return v.VisitValues(o)
	case *Values:
		return v.VisitValues(*o)
	case ValuesPrefix:
		return v.VisitValuesPrefix(o)
	case *ValuesPrefix:
		return v.VisitValuesPrefix(*o)
	case Size:
		return v.VisitSize(o)
	case *Size:
		return v.VisitSize(*o)
	case CompareAndSwap:
		return v.VisitCompareAndSwap(o)
	case *CompareAndSwap:
		return v.VisitCompareAndSwap(*o)
	default:
		// unreachable: Operation is sealed by the unexported marker method
		panic(fmt.Sprintf("ops: unknown operation type %T", op))
	}
}
