// Package util holds helpers shared by the nkv commands: help text wrapping,
// environment setup and the selection of RPC transports and serializers by name.
package util
