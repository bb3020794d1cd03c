package blockstore

import (
	"bytes"
	"encoding/gob"

	"github.com/groundx/ledgercore/model"
)

func init() {
	gob.Register(model.AddAssetQuantity{})
	gob.Register(model.SubtractAssetQuantity{})
	gob.Register(model.TransferAsset{})
	gob.Register(model.AddPeer{})
	gob.Register(model.RemovePeer{})
	gob.Register(model.AddSignatory{})
	gob.Register(model.RemoveSignatory{})
	gob.Register(model.SetQuorum{})
	gob.Register(model.CreateAccount{})
	gob.Register(model.CreateAsset{})
	gob.Register(model.CreateDomain{})
	gob.Register(model.CreateRole{})
	gob.Register(model.AppendRole{})
	gob.Register(model.DetachRole{})
	gob.Register(model.GrantPermission{})
	gob.Register(model.RevokePermission{})
	gob.Register(model.SetAccountDetail{})
	gob.Register(model.CompareAndSetAccountDetail{})
	gob.Register(model.CallEngine{})
	gob.Register(model.SetSettingValue{})
}

// encodeBlock serializes a block for a backend's value store. This gob
// encoding only needs to round-trip within one node's own storage; the
// peer-facing wire format lives at the transport layer.
func encodeBlock(b *model.Block) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeBlock(data []byte) (*model.Block, error) {
	var b model.Block
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}
