// Package rpc groups the framed RPC facade of nanoKV. Unlike the binary
// protocol it carries every operation of the ops union.
//
// The package is organized into several subpackages:
//
//   - common: the Message envelope and its conversion from and to
//     ops.Operation and ops.Reply.
//
//   - transport: framed request/response transport with tcp and unix
//     implementations built on a shared base.
//
//   - serializer: Message encodings (binary, json, gob, proto).
//
//   - server: executes decoded requests against a store.IStore.
//
//   - client: a store.IStore backed by a remote server.
package rpc
