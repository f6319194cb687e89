package serializer

import "github.com/ValentinKolb/nanoKV/rpc/common"

// IRPCSerializer converts Messages to bytes and back.
// Client and server must use the same implementation.
type IRPCSerializer interface {
	// Serialize encodes msg
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize decodes b into msg. Fields of msg not present in b are reset.
	Deserialize(b []byte, msg *common.Message) error
}
