// Package common defines the message exchanged by the nanoKV RPC facade and
// its mapping onto the operation model.
//
//   - Message: one structure for requests and responses. Which fields are used
//     depends on the MessageType, see the field comments.
//   - MessageType: one type per operation variant plus success and error.
//   - NewRequest / Message.Operation: ops.Operation <-> request message. The
//     conversion visits every variant, so each new operation needs a message type.
//   - NewResponse: ops.Reply -> response message. Failures become MsgTError
//     responses carrying the store.RetCode, AsError restores them as *store.Error.
package common
