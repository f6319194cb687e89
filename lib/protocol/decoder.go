package protocol

import (
	"encoding/binary"

	"github.com/ValentinKolb/nanoKV/lib/ops"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("protocol")

// --------------------------------------------------------------------------
// Decoder Stages
// --------------------------------------------------------------------------

type stage uint8

const (
	stageOpCode      stage = iota // needs 1 byte
	stageKeyLength                // needs 2 bytes
	stageKey                      // needs expected bytes
	stageValueLength              // needs 4 bytes
	stageValue                    // needs expected bytes
)

// --------------------------------------------------------------------------
// Decoder
// --------------------------------------------------------------------------

// Decoder reconstructs operations from an arbitrarily fragmented byte stream.
// A decoder belongs to exactly one connection and keeps its parse state
// between calls to Feed.
//
// Thread-safety: A Decoder is not safe for concurrent use.
type Decoder struct {
	buf      []byte // received bytes not yet attributed to a completed operation (buf[pos:])
	pos      int    // read offset into buf
	stage    stage
	expected uint32 // byte count required by stageKey and stageValue
	opcode   OpCode // opcode of the operation in progress
	key      string // key of the operation in progress
	skipped  uint64 // number of unrecognized opcode bytes discarded
}

// NewDecoder creates a decoder waiting for an opcode.
func NewDecoder() *Decoder {
	return &Decoder{stage: stageOpCode}
}

// Feed appends p to the internal buffer and returns every operation that can
// be completed with the bytes received so far, in arrival order. Bytes of an
// incomplete operation stay buffered until a later call completes them.
// Unrecognized opcode bytes are skipped one at a time.
//
// The output does not depend on how the stream is split across calls.
// p is copied and may be reused by the caller.
func (d *Decoder) Feed(p []byte) []ops.Operation {
	d.compact()
	d.buf = append(d.buf, p...)

	skipped := d.skipped
	var out []ops.Operation
	for {
		op, progressed := d.advance()
		if op != nil {
			out = append(out, op)
		}
		if !progressed {
			break
		}
	}
	if d.skipped != skipped {
		Logger.Debugf("skipped %d unknown opcode bytes (%d total)", d.skipped-skipped, d.skipped)
	}
	return out
}

// Buffered returns the number of received bytes that are not yet part of a
// completed operation.
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.pos
}

// Skipped returns the total number of unrecognized opcode bytes discarded so far.
func (d *Decoder) Skipped() uint64 {
	return d.skipped
}

// Reset drops all buffered bytes and returns the decoder to its initial stage.
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
	d.pos = 0
	d.setStage(stageOpCode, 0)
	d.opcode = 0
	d.key = ""
}

// --------------------------------------------------------------------------
// State Machine
// --------------------------------------------------------------------------

// advance tries to commit the current stage. It returns the completed
// operation (if the stage finished one) and whether the stage committed.
// A stage that does not have enough bytes leaves buffer and state untouched.
func (d *Decoder) advance() (ops.Operation, bool) {
	switch d.stage {

	case stageOpCode:
		b, ok := d.take(1)
		if !ok {
			return nil, false
		}
		switch code := OpCode(b[0]); code {
		case OpFlush:
			// flush has no trailing fields
			d.setStage(stageOpCode, 0)
			return ops.Flush{}, true
		case OpGet, OpSet, OpDelete:
			d.opcode = code
			d.setStage(stageKeyLength, 0)
		default:
			// lenient resync: drop the byte and look for the next opcode
			d.skipped++
		}
		return nil, true

	case stageKeyLength:
		b, ok := d.take(2)
		if !ok {
			return nil, false
		}
		d.setStage(stageKey, uint32(binary.BigEndian.Uint16(b)))
		return nil, true

	case stageKey:
		b, ok := d.take(int(d.expected))
		if !ok {
			return nil, false
		}
		d.key = lossyString(b)
		d.setStage(stageValueLength, 0)
		return nil, true

	case stageValueLength:
		b, ok := d.take(4)
		if !ok {
			return nil, false
		}
		d.setStage(stageValue, binary.BigEndian.Uint32(b))
		return nil, true

	case stageValue:
		b, ok := d.take(int(d.expected))
		if !ok {
			return nil, false
		}
		op := d.build(b)
		d.opcode = 0
		d.key = ""
		d.setStage(stageOpCode, 0)
		return op, true

	default:
		// unreachable, but never spin on a corrupt state
		d.setStage(stageOpCode, 0)
		return nil, true
	}
}

// build creates the operation for the captured opcode and key.
// Value bytes of get and delete frames are ignored.
func (d *Decoder) build(value []byte) ops.Operation {
	switch d.opcode {
	case OpGet:
		return ops.Get{Key: d.key}
	case OpSet:
		v := make([]byte, len(value))
		copy(v, value)
		return ops.Set{Key: d.key, Value: v}
	case OpDelete:
		return ops.Delete{Key: d.key}
	default:
		return nil
	}
}

// take consumes exactly n bytes if they are available.
// The returned slice aliases the internal buffer and is valid until the next Feed.
func (d *Decoder) take(n int) ([]byte, bool) {
	if d.Buffered() < n {
		return nil, false
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, true
}

// compact moves unconsumed bytes to the front of the buffer
func (d *Decoder) compact() {
	if d.pos == 0 {
		return
	}
	n := copy(d.buf, d.buf[d.pos:])
	d.buf = d.buf[:n]
	d.pos = 0
}

func (d *Decoder) setStage(next stage, expected uint32) {
	d.stage = next
	d.expected = expected
}
