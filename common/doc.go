// Package common provides the configuration structures and the logger setup
// shared by the nanoKV server facades and clients.
//
//   - ServerConfig: endpoints of the binary protocol, HTTP and RPC facades,
//     timeouts and the log level. Validate rejects a config without any facade.
//   - ClientConfig: endpoints, timeouts and retry behavior of the clients.
//   - InitLoggers: installs a dragonboat logger factory with the
//     "LEVEL | package | message" format and applies the configured level to
//     all package loggers.
package common
