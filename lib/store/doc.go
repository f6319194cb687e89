// Package store provides the high-level interface for key-value storage in
// nanoKV together with the executor that runs operations from the ops package
// against it.
//
// Key Components:
//
//   - IStore Interface: The core abstraction over a key-value store. Reads return
//     the data plus an error, an absent key is reported through a boolean (or an
//     empty result) and never as an error. Every facade of the server (binary TCP,
//     HTTP, RPC) talks to the store exclusively through this interface, and the
//     RPC client implements it as well, so applications can swap a local store
//     for a remote one without code changes.
//
//   - Apply: The executor. It accepts any ops.Operation and returns an ops.Reply.
//     It covers the whole operation union through an ops.Visitor, so a new
//     variant does not compile until the executor handles it. An optional
//     Observer is notified once per executed operation (used for metrics).
//
//   - Error System: A structured error reporting mechanism using typed return
//     codes (RetCode) and descriptive messages. ErrNotImplemented marks
//     operations that a facade does not wire to the store.
//
// Implementations:
//
//	- Memory Store (mstore): A concurrent in-memory store on top of a striped
//	  hash map with per-key atomic updates.
//	  Available in the "github.com/ValentinKolb/nanoKV/lib/store/mstore" package.
//
//	- RPC Store: A client that forwards every call to a remote nanoKV server.
//	  Available in the "github.com/ValentinKolb/nanoKV/rpc/client" package.
//
// A shared conformance suite for IStore implementations lives in
// "github.com/ValentinKolb/nanoKV/lib/store/testing".
package store
