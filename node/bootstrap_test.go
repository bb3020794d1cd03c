package node

import (
	"testing"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/executor"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

type fakeStore struct {
	blocks []*model.Block
}

func (f *fakeStore) Insert(b *model.Block) (bool, error) {
	if b.Header.Height != uint64(len(f.blocks))+1 {
		return false, nil
	}
	f.blocks = append(f.blocks, b)
	return true, nil
}

func (f *fakeStore) Fetch(height uint64) (*model.Block, bool, error) {
	if height == 0 || height > uint64(len(f.blocks)) {
		return nil, false, nil
	}
	return f.blocks[height-1], true, nil
}

func (f *fakeStore) ForEach(fn func(*model.Block) bool) error {
	for _, b := range f.blocks {
		if !fn(b) {
			break
		}
	}
	return nil
}

func (f *fakeStore) Size() (uint64, error) { return uint64(len(f.blocks)), nil }
func (f *fakeStore) Clear() error          { f.blocks = nil; return nil }
func (f *fakeStore) Close() error          { return nil }

// genesisBlock builds a one-transaction genesis that creates the
// domain's admin role and the domain itself, and returns the account
// id a CreateAccount command for name/domain will resolve to.
func genesisBlock(name string, domain common.DomainID) (*model.Block, common.AccountID) {
	id := common.NewAccountID(name, domain)
	tx := &model.Transaction{
		CreatorAccountID: id,
		CreatedTime:      1,
		Quorum:           1,
		Commands: []model.Command{
			model.CreateRole{RoleName: "admin", Permissions: model.NewPermissionSet(model.PermRoot)},
			model.CreateDomain{Domain: domain, DefaultRole: "admin"},
			model.CreateAccount{AccountName: name, Domain: domain},
		},
	}
	return &model.Block{Header: model.Header{Height: 1, CreatedTime: 1}, Transactions: []*model.Transaction{tx}}, id
}

func TestBootstrapInsertsGenesisIntoEmptyStore(t *testing.T) {
	store := &fakeStore{}
	ws := wsv.NewMemWorldState()
	exec := executor.New(executor.DefaultConfig(), nil)
	genesis, creator := genesisBlock("genesis", "test")

	if err := Bootstrap(store, ws, exec, Options{GenesisBlock: genesis}); err != nil {
		t.Fatal(err)
	}
	size, err := store.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != 1 {
		t.Fatalf("expected the genesis block inserted at height 1, got size %d", size)
	}
	if _, ok := ws.GetAccount(creator); !ok {
		t.Fatal("expected the genesis account to exist in the wsv")
	}
}

func TestBootstrapReusesMatchingState(t *testing.T) {
	store := &fakeStore{}
	ws := wsv.NewMemWorldState()
	exec := executor.New(executor.DefaultConfig(), nil)
	genesis, creator := genesisBlock("genesis", "test")

	if err := Bootstrap(store, ws, exec, Options{GenesisBlock: genesis}); err != nil {
		t.Fatal(err)
	}

	// Second bootstrap, no genesis given: heights already agree, so the
	// existing wsv state must be reused untouched.
	if err := Bootstrap(store, ws, exec, Options{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := ws.GetAccount(creator); !ok {
		t.Fatal("expected the account to still be present after reuse")
	}
}

func TestBootstrapRebuildsWhenWSVBehindBlockStore(t *testing.T) {
	store := &fakeStore{}
	genesis, creator := genesisBlock("genesis", "test")
	if _, err := store.Insert(genesis); err != nil {
		t.Fatal(err)
	}

	ws := wsv.NewMemWorldState() // fresh, empty WSV: behind the block store
	exec := executor.New(executor.DefaultConfig(), nil)

	if err := Bootstrap(store, ws, exec, Options{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := ws.GetAccount(creator); !ok {
		t.Fatal("expected the account to be rebuilt from the block store")
	}
}

func TestBootstrapOverwriteDropsExistingLedger(t *testing.T) {
	store := &fakeStore{}
	ws := wsv.NewMemWorldState()
	exec := executor.New(executor.DefaultConfig(), nil)
	firstGenesis, first := genesisBlock("genesis", "test")
	if err := Bootstrap(store, ws, exec, Options{GenesisBlock: firstGenesis}); err != nil {
		t.Fatal(err)
	}

	secondGenesis, second := genesisBlock("newgenesis", "other")
	if err := Bootstrap(store, ws, exec, Options{GenesisBlock: secondGenesis, OverwriteLedger: true}); err != nil {
		t.Fatal(err)
	}
	if _, ok := ws.GetAccount(first); ok {
		t.Fatal("expected the old account to be gone after overwrite")
	}
	if _, ok := ws.GetAccount(second); !ok {
		t.Fatal("expected the new genesis account to be present")
	}
	size, err := store.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != 1 {
		t.Fatalf("expected exactly the new genesis block, got size %d", size)
	}
}

func TestBootstrapIgnoresGenesisWithoutOverwrite(t *testing.T) {
	store := &fakeStore{}
	ws := wsv.NewMemWorldState()
	exec := executor.New(executor.DefaultConfig(), nil)
	firstGenesis, first := genesisBlock("genesis", "test")
	if err := Bootstrap(store, ws, exec, Options{GenesisBlock: firstGenesis}); err != nil {
		t.Fatal(err)
	}

	secondGenesis, second := genesisBlock("newgenesis", "other")
	if err := Bootstrap(store, ws, exec, Options{GenesisBlock: secondGenesis}); err != nil {
		t.Fatal(err)
	}
	if _, ok := ws.GetAccount(first); !ok {
		t.Fatal("expected the original account to survive an ignored genesis")
	}
	if _, ok := ws.GetAccount(second); ok {
		t.Fatal("expected the ignored genesis account to never be applied")
	}
	size, err := store.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != 1 {
		t.Fatalf("expected the ignored genesis to leave the block store untouched, got size %d", size)
	}
}
