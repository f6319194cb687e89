package protocol

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ValentinKolb/nanoKV/lib/ops"
)

const (
	dataPrefix  = "DATA: "
	errorPrefix = "ERROR: "
	okLine      = "OK"
	notFound    = "NOT_FOUND"
)

// ErrMalformedResponse is returned by ParseResponse for unknown response lines.
var ErrMalformedResponse = errors.New("malformed response line")

// AppendResponse appends the response line for r to dst.
//
//   - Ok carrying []byte: "DATA: <value>\n" (invalid UTF-8 is replaced)
//   - Ok with any other payload: "OK\n"
//   - NotFound: "NOT_FOUND\n"
//   - Err: "ERROR: <message>\n"
func AppendResponse(dst []byte, r ops.Reply) []byte {
	switch r.Status {
	case ops.StatusOk:
		if v, ok := r.Value.([]byte); ok {
			dst = append(dst, dataPrefix...)
			dst = appendLossy(dst, v)
			return append(dst, '\n')
		}
		return append(dst, okLine+"\n"...)
	case ops.StatusNotFound:
		return append(dst, notFound+"\n"...)
	default:
		msg := "unknown error"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		dst = append(dst, errorPrefix...)
		dst = append(dst, msg...)
		return append(dst, '\n')
	}
}

// FormatResponse returns the response line for r, including the trailing newline.
func FormatResponse(r ops.Reply) string {
	return string(AppendResponse(nil, r))
}

// ParseResponse converts a response line (with or without the trailing
// newline) back into a Reply. DATA lines carry their payload as []byte,
// ERROR lines carry the message as error.
func ParseResponse(line []byte) (ops.Reply, error) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	switch {
	case bytes.HasPrefix(line, []byte(dataPrefix)):
		v := bytes.Clone(line[len(dataPrefix):])
		if v == nil {
			v = []byte{}
		}
		return ops.Erase(ops.Ok(v)), nil
	case string(line) == okLine:
		return ops.Erase(ops.Ok(struct{}{})), nil
	case string(line) == notFound:
		return ops.Erase(ops.NotFound[struct{}]()), nil
	case bytes.HasPrefix(line, []byte(errorPrefix)):
		return ops.Erase(ops.Err[struct{}](errors.New(string(line[len(errorPrefix):])))), nil
	default:
		return ops.Reply{}, fmt.Errorf("%w: %q", ErrMalformedResponse, line)
	}
}
