// Package node implements the ledger startup decision: given whatever
// the block store and WSV already hold on disk, and whatever
// genesis/overwrite flags the operator passed, decide once, at process
// start, which of restore/rebuild/reset/insert-genesis applies.
package node

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/groundx/ledgercore/blockstore"
	"github.com/groundx/ledgercore/executor"
	"github.com/groundx/ledgercore/log"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

var logger = log.NewModuleLogger(log.ModuleNode)

// wsvHeightKey is a reserved setting under which the WSV persists the
// height it was last rebuilt to, since ReadView carries no height of
// its own. Genesis and ordinary transactions never write this key.
const wsvHeightKey = "__node_wsv_height__"

// Options carries the semantic startup flags.
type Options struct {
	// GenesisBlock, when non-nil, is inserted as block 1 of an empty
	// ledger, or offered to the decision table otherwise.
	GenesisBlock *model.Block
	// OverwriteLedger requests dropping existing state in favor of
	// GenesisBlock, or (with no genesis given) resetting the WSV to be
	// rebuilt from the block store.
	OverwriteLedger bool
}

// Bootstrap reconciles store and ws at process start and returns
// once both are in the state that Simulate/Execute expect to find at
// round 1: block store and WSV agreeing on a top height.
func Bootstrap(store blockstore.Storage, ws wsv.WorldState, exec *executor.Executor, opts Options) error {
	size, err := store.Size()
	if err != nil {
		return errors.Wrap(err, "node: read block store size")
	}

	switch {
	case size == 0 && opts.GenesisBlock != nil:
		logger.Info("bootstrapping empty ledger from genesis block")
		return insertGenesis(store, ws, exec, opts.GenesisBlock)

	case size == 0 && opts.GenesisBlock == nil:
		logger.Crit("empty block store and no genesis block given, nothing to start from")
		return nil // unreachable: Crit exits the process

	case size > 0 && opts.GenesisBlock != nil && !opts.OverwriteLedger:
		logger.Warn("genesis block given but ledger already has state and overwrite was not requested, ignoring genesis")
		return restoreOrRebuild(store, ws, exec)

	case size > 0 && opts.GenesisBlock != nil && opts.OverwriteLedger:
		logger.Warn("overwrite requested, dropping existing ledger for the given genesis block")
		if err := store.Clear(); err != nil {
			return errors.Wrap(err, "node: clear block store")
		}
		if err := ws.Reset(); err != nil {
			return errors.Wrap(err, "node: reset wsv")
		}
		return insertGenesis(store, ws, exec, opts.GenesisBlock)

	case size > 0 && opts.GenesisBlock == nil && opts.OverwriteLedger:
		logger.Warn("overwrite requested with no genesis block, resetting WSV and rebuilding from the block store")
		if err := ws.Reset(); err != nil {
			return errors.Wrap(err, "node: reset wsv")
		}
		return rebuildWSV(ws, store, exec, 0)

	default: // size > 0, no genesis, no overwrite
		return restoreOrRebuild(store, ws, exec)
	}
}

// restoreOrRebuild reuses the WSV as-is if its recorded height already
// matches the block store's top height, otherwise rebuilds it from
// scratch by re-applying every block's commands with validate=false.
func restoreOrRebuild(store blockstore.Storage, ws wsv.WorldState, exec *executor.Executor) error {
	top, err := store.Size()
	if err != nil {
		return errors.Wrap(err, "node: read block store size")
	}
	if wsvHeight(ws) == top {
		logger.Info("wsv height matches block store, reusing both", "height", top)
		return nil
	}
	logger.Info("wsv height does not match block store, rebuilding", "wsv_height", wsvHeight(ws), "block_store_height", top)
	if err := ws.Reset(); err != nil {
		return errors.Wrap(err, "node: reset wsv before rebuild")
	}
	return rebuildWSV(ws, store, exec, 0)
}

func wsvHeight(v wsv.ReadView) uint64 {
	s, ok := v.GetSetting(wsvHeightKey)
	if !ok {
		return 0
	}
	var h uint64
	if _, err := fmt.Sscanf(s, "%d", &h); err != nil {
		return 0
	}
	return h
}

// rebuildWSV replays every block above fromHeight on top of whatever
// the WSV currently holds (its callers Reset it first), applying each
// transaction's commands
// unvalidated: they were already stateful-valid when first committed,
// so the rebuild does not re-run admission control.
func rebuildWSV(ws wsv.WorldState, store blockstore.Storage, exec *executor.Executor, fromHeight uint64) error {
	tx, err := ws.Begin()
	if err != nil {
		return errors.Wrap(err, "node: begin wsv transaction")
	}
	var applyErr error
	err = store.ForEach(func(b *model.Block) bool {
		if b.Header.Height <= fromHeight {
			return true
		}
		for _, t := range b.Transactions {
			h := t.Hash()
			for i, cmd := range t.Commands {
				if cerr := exec.Execute(tx, t.CreatorAccountID, h, i, cmd, false); cerr != nil {
					applyErr = errors.Wrapf(cerr, "node: replay block %d", b.Header.Height)
					return false
				}
			}
		}
		tx.SetSetting(wsvHeightKey, fmt.Sprintf("%d", b.Header.Height))
		return true
	})
	if err != nil {
		tx.Discard()
		return errors.Wrap(err, "node: scan block store")
	}
	if applyErr != nil {
		tx.Discard()
		return applyErr
	}
	if err := tx.PrepareBlock(); err != nil {
		tx.Discard()
		return errors.Wrap(err, "node: prepare rebuilt wsv")
	}
	return tx.Commit()
}

// insertGenesis applies genesis's commands with validate=false (the
// creator of a genesis block acts before any role exists to gate it),
// inserts it as block 1, and records the WSV's height.
func insertGenesis(store blockstore.Storage, ws wsv.WorldState, exec *executor.Executor, genesis *model.Block) error {
	if genesis.Header.Height != 1 {
		return errors.Errorf("node: genesis block must be height 1, got %d", genesis.Header.Height)
	}
	tx, err := ws.Begin()
	if err != nil {
		return errors.Wrap(err, "node: begin wsv transaction")
	}
	for _, t := range genesis.Transactions {
		h := t.Hash()
		for i, cmd := range t.Commands {
			if cerr := exec.Execute(tx, t.CreatorAccountID, h, i, cmd, false); cerr != nil {
				tx.Discard()
				return errors.Wrap(cerr, "node: apply genesis command")
			}
		}
	}
	tx.SetSetting(wsvHeightKey, "1")
	if err := tx.PrepareBlock(); err != nil {
		tx.Discard()
		return errors.Wrap(err, "node: prepare genesis wsv")
	}
	ok, err := store.Insert(genesis)
	if err != nil {
		tx.Discard()
		return errors.Wrap(err, "node: insert genesis block")
	}
	if !ok {
		tx.Discard()
		return errors.New("node: block store rejected genesis insert (non-empty store)")
	}
	return tx.Commit()
}
