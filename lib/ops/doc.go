// Package ops defines the operation model of nanoKV: a closed set of command
// variants and the tri-state Result they produce.
//
// Every command that reaches the store, whether it was decoded from the binary
// TCP protocol, received over RPC or built by the HTTP facade, is one of the
// Operation variants declared here:
//
//	Get, Set, Delete, Exists, Flush, Keys, KeysPrefix, GetPrefix,
//	DeletePrefix, Values, ValuesPrefix, Size, CompareAndSwap
//
// The set is sealed through an unexported marker method. Consumers dispatch
// on the variant with Visit and a Visitor implementation. Because Visitor has
// one method per variant, a new variant cannot be added without every
// executor deciding how to handle it.
//
// Result carries one of three outcomes: Ok with a payload, Err with a cause,
// or NotFound. NotFound is not an error; it is the normal answer to a lookup
// of an absent key.
package ops
