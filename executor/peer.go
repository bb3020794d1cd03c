package executor

import (
	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

func (e *Executor) addPeer(tx wsv.Transaction, creator common.AccountID, c model.AddPeer, validate bool) *model.CommandError {
	if !requirePermission(validate, wsv.HasRolePermission(tx, creator, model.PermAddPeer)) {
		return cmdErr(c, CodeNoPermission, c.Peer.Address)
	}
	for _, p := range tx.GetPeers() {
		if string(p.PublicKey) == string(c.Peer.PublicKey) {
			return cmdErr(c, CodeAlreadyExistsOrAbsentRelation, c.Peer.Address)
		}
	}
	tx.AddPeer(c.Peer)
	return nil
}

// removePeer refuses to remove the last remaining peer.
func (e *Executor) removePeer(tx wsv.Transaction, creator common.AccountID, c model.RemovePeer, validate bool) *model.CommandError {
	if !requirePermission(validate, wsv.HasRolePermission(tx, creator, model.PermRemovePeer)) {
		return cmdErr(c, CodeNoPermission, "")
	}
	if tx.PeerCount() <= 1 {
		return cmdErr(c, CodeInvariantViolated, "cannot remove last peer")
	}
	if !tx.RemovePeer(c.PublicKey) {
		return cmdErr(c, CodeSubjectAbsent, "")
	}
	return nil
}
