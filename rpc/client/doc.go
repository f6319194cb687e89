// Package client provides store.IStore on top of the RPC facade.
//
// NewRPCStore connects an IRPCClientTransport and returns a store whose
// operations are sent to a nanoKV server. Any transport and serializer can
// be combined, both sides must use the same serializer.
//
// Usage Example:
//
//	s, err := client.NewRPCStore(
//	  common.ClientConfig{Endpoints: []string{"localhost:7070"}, TimeoutSecond: 5, RetryCount: 3},
//	  tcp.NewTCPClientTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//	if err != nil {
//	  log.Fatal(err)
//	}
//	_ = s.Set("key", []byte("value"))
//
// Server errors are returned as *store.Error with the code set by the server.
package client
