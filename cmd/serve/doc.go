// Package serve implements the serve command. It creates one in-memory store
// and one metrics registry and exposes them through the binary protocol, the
// HTTP/JSON API and the RPC interface. The interfaces run in an errgroup:
// SIGINT or SIGTERM stops all of them, and so does the failure of any one.
package serve
