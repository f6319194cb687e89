package client

import (
	"github.com/ValentinKolb/nanoKV/common"
	"github.com/ValentinKolb/nanoKV/lib/ops"
	"github.com/ValentinKolb/nanoKV/lib/store"
	"github.com/ValentinKolb/nanoKV/rpc/serializer"
	"github.com/ValentinKolb/nanoKV/rpc/transport"
)

// NewRPCStore connects the transport and returns a store.IStore whose
// operations are executed by a remote server.
func NewRPCStore(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcStore{
		rpcClientAdapter{
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// Close closes the underlying transport
func (i *rpcStore) Close() error {
	return i.transport.Close()
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Get(key string) (value []byte, loaded bool, err error) {
	resp, err := i.invoke(ops.Get{Key: key})
	if err != nil {
		return nil, false, err
	}
	if !resp.Ok {
		return nil, false, nil
	}
	if resp.Value == nil {
		return []byte{}, true, nil
	}
	return resp.Value, true, nil
}

func (i *rpcStore) Set(key string, value []byte) (err error) {
	_, err = i.invoke(ops.Set{Key: key, Value: value})
	return err
}

func (i *rpcStore) Delete(key string) (err error) {
	_, err = i.invoke(ops.Delete{Key: key})
	return err
}

func (i *rpcStore) Has(key string) (loaded bool, err error) {
	resp, err := i.invoke(ops.Exists{Key: key})
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcStore) Clear() (err error) {
	_, err = i.invoke(ops.Flush{})
	return err
}

func (i *rpcStore) Keys() (keys []string, err error) {
	resp, err := i.invoke(ops.Keys{})
	if err != nil {
		return nil, err
	}
	return nonNil(resp.Keys), nil
}

func (i *rpcStore) KeysPrefix(prefix string) (keys []string, err error) {
	resp, err := i.invoke(ops.KeysPrefix{Prefix: prefix})
	if err != nil {
		return nil, err
	}
	return nonNil(resp.Keys), nil
}

func (i *rpcStore) GetPrefix(prefix string) (entries map[string][]byte, err error) {
	resp, err := i.invoke(ops.GetPrefix{Prefix: prefix})
	if err != nil {
		return nil, err
	}
	return resp.Pairs()
}

func (i *rpcStore) DeletePrefix(prefix string) (removed int, err error) {
	resp, err := i.invoke(ops.DeletePrefix{Prefix: prefix})
	if err != nil {
		return 0, err
	}
	return int(resp.Count), nil
}

func (i *rpcStore) Values() (values [][]byte, err error) {
	resp, err := i.invoke(ops.Values{})
	if err != nil {
		return nil, err
	}
	return nonNilValues(resp.Values), nil
}

func (i *rpcStore) ValuesPrefix(prefix string) (values [][]byte, err error) {
	resp, err := i.invoke(ops.ValuesPrefix{Prefix: prefix})
	if err != nil {
		return nil, err
	}
	return nonNilValues(resp.Values), nil
}

func (i *rpcStore) Size() (size int, err error) {
	resp, err := i.invoke(ops.Size{})
	if err != nil {
		return 0, err
	}
	return int(resp.Count), nil
}

func (i *rpcStore) CompareAndSwap(key string, oldValue, newValue []byte) (swapped bool, err error) {
	resp, err := i.invoke(ops.CompareAndSwap{Key: key, Old: oldValue, New: newValue})
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

// Info reports the key count only, value statistics are not part of the protocol
func (i *rpcStore) Info() (info store.Info, err error) {
	size, err := i.Size()
	if err != nil {
		return store.Info{}, err
	}
	return store.Info{
		Keys:     size,
		Metadata: map[string]string{"engine": "rpc"},
	}, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func nonNil(keys []string) []string {
	if keys == nil {
		return []string{}
	}
	return keys
}

// nonNilValues restores empty values, serializers may drop them to nil
func nonNilValues(values [][]byte) [][]byte {
	if values == nil {
		return [][]byte{}
	}
	for i, v := range values {
		if v == nil {
			values[i] = []byte{}
		}
	}
	return values
}
