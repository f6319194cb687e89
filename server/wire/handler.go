package wire

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/ValentinKolb/nanoKV/lib/ops"
	"github.com/ValentinKolb/nanoKV/lib/protocol"
	"github.com/ValentinKolb/nanoKV/lib/store"
)

// --------------------------------------------------------------------------
// Operation dispatch
// --------------------------------------------------------------------------

// wireExecutor decides for every operation variant how the binary protocol
// serves it. Only get, set, delete and flush have a frame on the wire, the
// decoder never produces the other variants.
type wireExecutor struct {
	store    store.IStore
	observer store.Observer
}

func (e wireExecutor) apply(op ops.Operation) ops.Reply {
	return store.Apply(e.store, op, e.observer)
}

func notImplemented() ops.Reply {
	return ops.Err[any](store.ErrNotImplemented)
}

func (e wireExecutor) VisitGet(op ops.Get) ops.Reply       { return e.apply(op) }
func (e wireExecutor) VisitSet(op ops.Set) ops.Reply       { return e.apply(op) }
func (e wireExecutor) VisitDelete(op ops.Delete) ops.Reply { return e.apply(op) }
func (e wireExecutor) VisitFlush(op ops.Flush) ops.Reply   { return e.apply(op) }

func (wireExecutor) VisitExists(ops.Exists) ops.Reply                 { return notImplemented() }
func (wireExecutor) VisitKeys(ops.Keys) ops.Reply                     { return notImplemented() }
func (wireExecutor) VisitKeysPrefix(ops.KeysPrefix) ops.Reply         { return notImplemented() }
func (wireExecutor) VisitGetPrefix(ops.GetPrefix) ops.Reply           { return notImplemented() }
func (wireExecutor) VisitDeletePrefix(ops.DeletePrefix) ops.Reply     { return notImplemented() }
func (wireExecutor) VisitValues(ops.Values) ops.Reply                 { return notImplemented() }
func (wireExecutor) VisitValuesPrefix(ops.ValuesPrefix) ops.Reply     { return notImplemented() }
func (wireExecutor) VisitSize(ops.Size) ops.Reply                     { return notImplemented() }
func (wireExecutor) VisitCompareAndSwap(ops.CompareAndSwap) ops.Reply { return notImplemented() }

// execute runs op and returns the response line for it
func (e wireExecutor) execute(dst []byte, op ops.Operation) []byte {
	return protocol.AppendResponse(dst, ops.Visit[ops.Reply](op, e))
}

// --------------------------------------------------------------------------
// Connection handling
// --------------------------------------------------------------------------

// handleConnection serves one connection strictly sequentially: read a chunk,
// decode it, execute every completed operation in order and write one
// response line per operation before reading again.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr()
	defer func() {
		_ = conn.Close()
		if s.registry != nil {
			s.registry.ConnectionClosed()
		}
	}()

	// shutdown interrupts a blocked read, a batch in progress is still answered
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	executor := wireExecutor{store: s.store}
	if s.registry != nil {
		executor.observer = s.registry
	}

	decoder := protocol.NewDecoder()
	writer := bufio.NewWriter(conn)
	buf := s.bufferPool.Get().([]byte)
	defer s.bufferPool.Put(buf)

	var (
		response []byte
		skipped  uint64
	)

	Logger.Debugf("Connection from %s accepted", remote)

	for {
		if s.idleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.idleTimeout)); err != nil {
				Logger.Errorf("Failed to set read deadline for %s: %v", remote, err)
				return
			}
		}
		if ctx.Err() != nil {
			return
		}

		n, err := conn.Read(buf)
		if n > 0 {
			batch := decoder.Feed(buf[:n])

			if d := decoder.Skipped() - skipped; d > 0 {
				skipped = decoder.Skipped()
				if s.registry != nil {
					s.registry.AddSkippedBytes(d)
				}
			}

			for _, op := range batch {
				response = executor.execute(response[:0], op)
				if _, werr := writer.Write(response); werr != nil {
					Logger.Errorf("Failed to write response to %s: %v", remote, werr)
					return
				}
			}
			if len(batch) > 0 {
				if ferr := writer.Flush(); ferr != nil {
					Logger.Errorf("Failed to write response to %s: %v", remote, ferr)
					return
				}
			}
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			Logger.Debugf("Connection closed by client %s", remote)
		case ctx.Err() != nil:
			Logger.Debugf("Connection to %s closed on shutdown", remote)
		case errors.Is(err, os.ErrDeadlineExceeded):
			Logger.Infof("Connection to %s closed after %s idle", remote, s.idleTimeout)
		default:
			Logger.Errorf("Error reading from %s: %v", remote, err)
		}
		return
	}
}
