package server

import (
	"github.com/ValentinKolb/nanoKV/lib/store"
	rpccommon "github.com/ValentinKolb/nanoKV/rpc/common"
)

// NewIStoreServerAdapter creates an adapter that executes requests against s.
// Every executed operation is reported to observer, which may be nil.
func NewIStoreServerAdapter(s store.IStore, observer store.Observer) IRPCServerAdapter {
	return &iStoreServerAdapterImpl{store: s, observer: observer}
}

type iStoreServerAdapterImpl struct {
	store    store.IStore
	observer store.Observer
}

func (adapter *iStoreServerAdapterImpl) Handle(req *rpccommon.Message) *rpccommon.Message {
	op, err := req.Operation()
	if err != nil {
		return rpccommon.NewErrorResponse(uint64(store.CodeOf(err)), err.Error())
	}

	reply := store.Apply(adapter.store, op, adapter.observer)
	return rpccommon.NewResponse(op, reply)
}
