/*
Package wire serves the binary protocol of nanoKV over TCP.

A Server owns one listener and starts one goroutine per accepted connection.
Each connection is handled strictly sequentially: a chunk is read, fed to a
protocol.Decoder, every completed operation is executed against the shared
store in arrival order and one response line per operation is written before
the next read. A slow client only delays its own connection.

Only get, set, delete and flush have a binary frame. The remaining operation
variants are answered with "ERROR: command not implemented" should they ever
reach the handler.

The loop ends on EOF, on a read or write error, on the optional idle timeout
and when the context passed to Serve is cancelled.
*/
package wire
