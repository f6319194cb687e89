package store

import (
	"github.com/ValentinKolb/nanoKV/lib/ops"
)

// Observer is notified once for every operation an executor runs.
// It is purely observational and must not block.
type Observer interface {
	Observe(kind ops.Kind)
}

// Apply executes op against s and returns its result.
// Every operation variant is supported, see ops.Reply for the payload types.
// If observer is not nil it is notified before the operation runs.
func Apply(s IStore, op ops.Operation, observer Observer) ops.Reply {
	if s == nil {
		return ops.Err[any](NewError(RetCInternalError, "store is nil"))
	}
	if observer != nil {
		observer.Observe(op.Kind())
	}
	return ops.Visit[ops.Reply](op, executor{store: s})
}

// executor runs operations against a store
type executor struct {
	store IStore
}

// done maps a write result to a Reply
func done(err error) ops.Reply {
	if err != nil {
		return ops.Err[any](err)
	}
	return ops.Ok[any](struct{}{})
}

// value maps a read result to a Reply
func value[T any](v T, err error) ops.Reply {
	if err != nil {
		return ops.Err[any](err)
	}
	return ops.Ok[any](v)
}

func (e executor) VisitGet(op ops.Get) ops.Reply {
	val, ok, err := e.store.Get(op.Key)
	if err != nil {
		return ops.Err[any](err)
	}
	if !ok {
		return ops.NotFound[any]()
	}
	return ops.Ok[any](val)
}

func (e executor) VisitSet(op ops.Set) ops.Reply {
	return done(e.store.Set(op.Key, op.Value))
}

func (e executor) VisitDelete(op ops.Delete) ops.Reply {
	return done(e.store.Delete(op.Key))
}

func (e executor) VisitExists(op ops.Exists) ops.Reply {
	return value(e.store.Has(op.Key))
}

func (e executor) VisitFlush(ops.Flush) ops.Reply {
	return done(e.store.Clear())
}

func (e executor) VisitKeys(ops.Keys) ops.Reply {
	return value(e.store.Keys())
}

func (e executor) VisitKeysPrefix(op ops.KeysPrefix) ops.Reply {
	return value(e.store.KeysPrefix(op.Prefix))
}

func (e executor) VisitGetPrefix(op ops.GetPrefix) ops.Reply {
	return value(e.store.GetPrefix(op.Prefix))
}

func (e executor) VisitDeletePrefix(op ops.DeletePrefix) ops.Reply {
	return value(e.store.DeletePrefix(op.Prefix))
}

func (e executor) VisitValues(ops.Values) ops.Reply {
	return value(e.store.Values())
}

func (e executor) VisitValuesPrefix(op ops.ValuesPrefix) ops.Reply {
	return value(e.store.ValuesPrefix(op.Prefix))
}

func (e executor) VisitSize(ops.Size) ops.Reply {
	return value(e.store.Size())
}

func (e executor) VisitCompareAndSwap(op ops.CompareAndSwap) ops.Reply {
	return value(e.store.CompareAndSwap(op.Key, op.Old, op.New))
}
