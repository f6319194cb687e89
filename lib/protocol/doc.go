/*
Package protocol implements the binary wire protocol of nanoKV.

A frame is a one byte opcode followed by a length-prefixed key and value:

	[opcode:1][key_len:2 BE][key][value_len:4 BE][value]

Opcodes: 1 = GET, 2 = SET, 3 = DELETE, 4 = FLUSH. FLUSH is the single opcode
byte without trailing fields. GET and DELETE frames carry a value length of
zero when encoded; a value sent anyway is consumed and ignored.

The Decoder is a resumable state machine that turns an arbitrarily chunked
byte stream into operations. An unknown opcode byte is dropped and counted,
the next byte is tried as opcode.

Every operation is answered with one text line:

	DATA: <value>\n
	OK\n
	NOT_FOUND\n
	ERROR: <message>\n

Client is a small blocking client used by the CLI and the tests.
*/
package protocol
