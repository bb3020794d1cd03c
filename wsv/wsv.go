// Package wsv implements the World-State View: the replicated mapping of
// domain entities (accounts, domains, assets, roles, peers, balances,
// grants, settings) and the scoped write-transaction contract the
// Command Executor mutates through.
package wsv

import (
	"errors"
	"sync"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/log"
	"github.com/groundx/ledgercore/model"
)

var logger = log.NewModuleLogger(log.ModuleWSV)

// ErrWriteInProgress is returned by Begin while another write
// transaction against the same WSV is still open. At most one write
// transaction may exist at a time.
var ErrWriteInProgress = errors.New("wsv: a write transaction is already open")

// ReadView exposes the entity read operations over either the committed
// WSV or the staged view inside an open Transaction. Missing entities
// are reported via the bool, never an error.
type ReadView interface {
	GetAccount(id common.AccountID) (model.Account, bool)
	GetDomain(id common.DomainID) (model.Domain, bool)
	GetAsset(id common.AssetID) (model.Asset, bool)
	GetRole(id common.RoleID) (model.Role, bool)
	GetRoles() []model.Role
	GetPeers() []model.Peer
	GetBalance(account common.AccountID, asset common.AssetID) (common.Amount, bool)
	GetGrantedPermissions(key model.GrantKey) (model.PermissionSet, bool)
	GetSetting(key string) (string, bool)
	// GetAccountDetail returns the value writer wrote under key on
	// account, and whether it is present.
	GetAccountDetail(account common.AccountID, writer common.AccountID, key string) (string, bool)
	// AllAccountDetails returns every writer->key->value entry for account.
	AllAccountDetails(account common.AccountID) map[common.AccountID]map[string]string
	// EffectivePermissions unions every role's PermissionSet attached to account.
	EffectivePermissions(account common.AccountID) model.PermissionSet
}

// Transaction is the scoped write handle: a buffered set of mutations
// invisible to readers until Commit, with PrepareBlock staging the
// write so a later Commit is fast but still atomic.
type Transaction interface {
	ReadView

	PutAccount(a model.Account)
	PutDomain(d model.Domain)
	PutAsset(a model.Asset)
	PutRole(r model.Role)
	AddPeer(p model.Peer)
	RemovePeer(publicKey []byte) bool
	PeerCount() int
	SetBalance(account common.AccountID, asset common.AssetID, amount common.Amount)
	SetGrantedPermissions(key model.GrantKey, perms model.PermissionSet)
	SetSetting(key, value string)
	SetAccountDetail(account common.AccountID, writer common.AccountID, key, value string)

	// PrepareBlock stages the buffered writes so a following Commit is
	// fast but still atomic; it performs no validation of its own.
	PrepareBlock() error
	// Commit makes every buffered write visible to readers.
	Commit() error
	// Discard abandons every buffered write.
	Discard()

	// Savepoint captures the transaction's current buffered state, for
	// the simulator to roll back one failed transaction's partial
	// effects without discarding the whole write transaction.
	Savepoint() interface{}
	// Restore resets the buffered state to a value previously returned
	// by Savepoint.
	Restore(sp interface{})
}

// WorldState is the top-level WSV contract: read access to the
// committed state and a factory for scoped write transactions.
type WorldState interface {
	ReadView
	// Begin opens a new write Transaction. It fails with
	// ErrWriteInProgress if one is already open.
	Begin() (Transaction, error)
	// Reset discards every committed entry, returning the WSV to its
	// newly-created state. Used by node startup when rebuilding from
	// the block store or replacing the ledger with a fresh genesis
	// block.
	Reset() error
}

// state is the mutable data held by the WSV, shared between the
// committed store and any open transaction's staged delta.
type state struct {
	accounts map[common.AccountID]model.Account
	domains  map[common.DomainID]model.Domain
	assets   map[common.AssetID]model.Asset
	roles    map[common.RoleID]model.Role
	peers    []model.Peer
	balances map[string]common.Amount // "account|asset" -> amount
	grants   map[model.GrantKey]model.PermissionSet
	settings map[string]string
	details  map[common.AccountID]map[common.AccountID]map[string]string
}

func newState() *state {
	return &state{
		accounts: make(map[common.AccountID]model.Account),
		domains:  make(map[common.DomainID]model.Domain),
		assets:   make(map[common.AssetID]model.Asset),
		roles:    make(map[common.RoleID]model.Role),
		balances: make(map[string]common.Amount),
		grants:   make(map[model.GrantKey]model.PermissionSet),
		settings: make(map[string]string),
		details:  make(map[common.AccountID]map[common.AccountID]map[string]string),
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.accounts {
		acc := v
		acc.Signatories = append([]common.Hash(nil), v.Signatories...)
		acc.Roles = append([]common.RoleID(nil), v.Roles...)
		out.accounts[k] = acc
	}
	for k, v := range s.domains {
		out.domains[k] = v
	}
	for k, v := range s.assets {
		out.assets[k] = v
	}
	for k, v := range s.roles {
		out.roles[k] = v
	}
	out.peers = append([]model.Peer(nil), s.peers...)
	for k, v := range s.balances {
		out.balances[k] = v
	}
	for k, v := range s.grants {
		out.grants[k] = v
	}
	for k, v := range s.settings {
		out.settings[k] = v
	}
	for acc, byWriter := range s.details {
		cp := make(map[common.AccountID]map[string]string, len(byWriter))
		for w, kv := range byWriter {
			kv2 := make(map[string]string, len(kv))
			for k, v := range kv {
				kv2[k] = v
			}
			cp[w] = kv2
		}
		out.details[acc] = cp
	}
	return out
}

func balanceKey(account common.AccountID, asset common.AssetID) string {
	return string(account) + "|" + string(asset)
}

func (s *state) GetAccount(id common.AccountID) (model.Account, bool) {
	a, ok := s.accounts[id]
	return a, ok
}

func (s *state) GetDomain(id common.DomainID) (model.Domain, bool) {
	d, ok := s.domains[id]
	return d, ok
}

func (s *state) GetAsset(id common.AssetID) (model.Asset, bool) {
	a, ok := s.assets[id]
	return a, ok
}

func (s *state) GetRole(id common.RoleID) (model.Role, bool) {
	r, ok := s.roles[id]
	return r, ok
}

func (s *state) GetPeers() []model.Peer {
	return append([]model.Peer(nil), s.peers...)
}

func (s *state) GetRoles() []model.Role {
	out := make([]model.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	return out
}

func (s *state) GetBalance(account common.AccountID, asset common.AssetID) (common.Amount, bool) {
	a, ok := s.balances[balanceKey(account, asset)]
	return a, ok
}

func (s *state) GetGrantedPermissions(key model.GrantKey) (model.PermissionSet, bool) {
	p, ok := s.grants[key]
	return p, ok
}

func (s *state) GetSetting(key string) (string, bool) {
	v, ok := s.settings[key]
	return v, ok
}

func (s *state) GetAccountDetail(account, writer common.AccountID, key string) (string, bool) {
	byWriter, ok := s.details[account]
	if !ok {
		return "", false
	}
	kv, ok := byWriter[writer]
	if !ok {
		return "", false
	}
	v, ok := kv[key]
	return v, ok
}

func (s *state) AllAccountDetails(account common.AccountID) map[common.AccountID]map[string]string {
	out := make(map[common.AccountID]map[string]string)
	for w, kv := range s.details[account] {
		cp := make(map[string]string, len(kv))
		for k, v := range kv {
			cp[k] = v
		}
		out[w] = cp
	}
	return out
}

func (s *state) EffectivePermissions(account common.AccountID) model.PermissionSet {
	var out model.PermissionSet
	acc, ok := s.accounts[account]
	if !ok {
		return out
	}
	for _, rid := range acc.Roles {
		if role, ok := s.roles[rid]; ok {
			out = out.Union(role.Permissions)
		}
	}
	return out
}

func (s *state) PutAccount(a model.Account) { s.accounts[a.ID] = a }
func (s *state) PutDomain(d model.Domain)   { s.domains[d.ID] = d }
func (s *state) PutAsset(a model.Asset)     { s.assets[a.ID] = a }
func (s *state) PutRole(r model.Role)       { s.roles[r.ID] = r }
func (s *state) SetBalance(account common.AccountID, asset common.AssetID, amount common.Amount) {
	s.balances[balanceKey(account, asset)] = amount
}
func (s *state) SetGrantedPermissions(key model.GrantKey, perms model.PermissionSet) {
	s.grants[key] = perms
}
func (s *state) SetSetting(key, value string) { s.settings[key] = value }
func (s *state) SetAccountDetail(account, writer common.AccountID, key, value string) {
	byWriter, ok := s.details[account]
	if !ok {
		byWriter = make(map[common.AccountID]map[string]string)
		s.details[account] = byWriter
	}
	kv, ok := byWriter[writer]
	if !ok {
		kv = make(map[string]string)
		byWriter[writer] = kv
	}
	kv[key] = value
}

func (s *state) AddPeer(p model.Peer) {
	s.peers = append(s.peers, p)
}

func (s *state) RemovePeer(publicKey []byte) bool {
	for i, p := range s.peers {
		if string(p.PublicKey) == string(publicKey) {
			s.peers = append(s.peers[:i], s.peers[i+1:]...)
			return true
		}
	}
	return false
}

func (s *state) PeerCount() int { return len(s.peers) }

// MemWorldState is the in-memory WorldState implementation: the
// committed store plus single-writer serialization. Only the simulator
// writes, through a single active transaction; queries read the
// committed snapshot.
type MemWorldState struct {
	mu        sync.RWMutex
	committed *state
	writeOpen bool
}

// NewMemWorldState returns an empty WSV.
func NewMemWorldState() *MemWorldState {
	return &MemWorldState{committed: newState()}
}

func (w *MemWorldState) snapshot() *state {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.committed
}

func (w *MemWorldState) GetAccount(id common.AccountID) (model.Account, bool) {
	return w.snapshot().GetAccount(id)
}
func (w *MemWorldState) GetDomain(id common.DomainID) (model.Domain, bool) {
	return w.snapshot().GetDomain(id)
}
func (w *MemWorldState) GetAsset(id common.AssetID) (model.Asset, bool) {
	return w.snapshot().GetAsset(id)
}
func (w *MemWorldState) GetRole(id common.RoleID) (model.Role, bool) {
	return w.snapshot().GetRole(id)
}
func (w *MemWorldState) GetRoles() []model.Role { return w.snapshot().GetRoles() }
func (w *MemWorldState) GetPeers() []model.Peer { return w.snapshot().GetPeers() }
func (w *MemWorldState) GetBalance(account common.AccountID, asset common.AssetID) (common.Amount, bool) {
	return w.snapshot().GetBalance(account, asset)
}
func (w *MemWorldState) GetGrantedPermissions(key model.GrantKey) (model.PermissionSet, bool) {
	return w.snapshot().GetGrantedPermissions(key)
}
func (w *MemWorldState) GetSetting(key string) (string, bool) { return w.snapshot().GetSetting(key) }
func (w *MemWorldState) GetAccountDetail(account, writer common.AccountID, key string) (string, bool) {
	return w.snapshot().GetAccountDetail(account, writer, key)
}
func (w *MemWorldState) AllAccountDetails(account common.AccountID) map[common.AccountID]map[string]string {
	return w.snapshot().AllAccountDetails(account)
}
func (w *MemWorldState) EffectivePermissions(account common.AccountID) model.PermissionSet {
	return w.snapshot().EffectivePermissions(account)
}

// Reset discards every committed entry. It fails with
// ErrWriteInProgress if a write transaction is currently open.
func (w *MemWorldState) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeOpen {
		return ErrWriteInProgress
	}
	w.committed = newState()
	return nil
}

// Begin opens a write Transaction over a copy-on-write clone of the
// committed state.
func (w *MemWorldState) Begin() (Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeOpen {
		return nil, ErrWriteInProgress
	}
	w.writeOpen = true
	tx := &memTransaction{
		ws:       w,
		staged:   w.committed.clone(),
		prepared: false,
	}
	return tx, nil
}

type memTransaction struct {
	ws       *MemWorldState
	staged   *state
	prepared bool
	done     bool
}

func (t *memTransaction) ensureOpen() {
	if t.done {
		panic("wsv: use of transaction after commit/discard")
	}
}

func (t *memTransaction) GetAccount(id common.AccountID) (model.Account, bool) {
	t.ensureOpen()
	return t.staged.GetAccount(id)
}
func (t *memTransaction) GetDomain(id common.DomainID) (model.Domain, bool) {
	t.ensureOpen()
	return t.staged.GetDomain(id)
}
func (t *memTransaction) GetAsset(id common.AssetID) (model.Asset, bool) {
	t.ensureOpen()
	return t.staged.GetAsset(id)
}
func (t *memTransaction) GetRole(id common.RoleID) (model.Role, bool) {
	t.ensureOpen()
	return t.staged.GetRole(id)
}
func (t *memTransaction) GetRoles() []model.Role {
	t.ensureOpen()
	return t.staged.GetRoles()
}
func (t *memTransaction) GetPeers() []model.Peer {
	t.ensureOpen()
	return t.staged.GetPeers()
}
func (t *memTransaction) GetBalance(account common.AccountID, asset common.AssetID) (common.Amount, bool) {
	t.ensureOpen()
	return t.staged.GetBalance(account, asset)
}
func (t *memTransaction) GetGrantedPermissions(key model.GrantKey) (model.PermissionSet, bool) {
	t.ensureOpen()
	return t.staged.GetGrantedPermissions(key)
}
func (t *memTransaction) GetSetting(key string) (string, bool) {
	t.ensureOpen()
	return t.staged.GetSetting(key)
}
func (t *memTransaction) GetAccountDetail(account, writer common.AccountID, key string) (string, bool) {
	t.ensureOpen()
	return t.staged.GetAccountDetail(account, writer, key)
}
func (t *memTransaction) AllAccountDetails(account common.AccountID) map[common.AccountID]map[string]string {
	t.ensureOpen()
	return t.staged.AllAccountDetails(account)
}
func (t *memTransaction) EffectivePermissions(account common.AccountID) model.PermissionSet {
	t.ensureOpen()
	return t.staged.EffectivePermissions(account)
}

func (t *memTransaction) PutAccount(a model.Account) { t.ensureOpen(); t.staged.PutAccount(a) }
func (t *memTransaction) PutDomain(d model.Domain)   { t.ensureOpen(); t.staged.PutDomain(d) }
func (t *memTransaction) PutAsset(a model.Asset)     { t.ensureOpen(); t.staged.PutAsset(a) }
func (t *memTransaction) PutRole(r model.Role)       { t.ensureOpen(); t.staged.PutRole(r) }
func (t *memTransaction) AddPeer(p model.Peer)       { t.ensureOpen(); t.staged.AddPeer(p) }
func (t *memTransaction) RemovePeer(publicKey []byte) bool {
	t.ensureOpen()
	return t.staged.RemovePeer(publicKey)
}
func (t *memTransaction) PeerCount() int { t.ensureOpen(); return t.staged.PeerCount() }
func (t *memTransaction) SetBalance(account common.AccountID, asset common.AssetID, amount common.Amount) {
	t.ensureOpen()
	t.staged.SetBalance(account, asset, amount)
}
func (t *memTransaction) SetGrantedPermissions(key model.GrantKey, perms model.PermissionSet) {
	t.ensureOpen()
	t.staged.SetGrantedPermissions(key, perms)
}
func (t *memTransaction) SetSetting(key, value string) {
	t.ensureOpen()
	t.staged.SetSetting(key, value)
}
func (t *memTransaction) SetAccountDetail(account, writer common.AccountID, key, value string) {
	t.ensureOpen()
	t.staged.SetAccountDetail(account, writer, key, value)
}

// PrepareBlock is a no-op over the in-memory backend beyond marking the
// transaction as staged: there is no separate "fast commit" step to
// perform when the staged state already lives in memory. The
// database-backed Transaction (see sqlstore) likewise only marks itself
// prepared; it writes to the database in Commit.
func (t *memTransaction) PrepareBlock() error {
	t.ensureOpen()
	t.prepared = true
	return nil
}

func (t *memTransaction) Commit() error {
	t.ensureOpen()
	t.ws.mu.Lock()
	defer t.ws.mu.Unlock()
	t.ws.committed = t.staged
	t.ws.writeOpen = false
	t.done = true
	return nil
}

func (t *memTransaction) Savepoint() interface{} {
	t.ensureOpen()
	return t.staged.clone()
}

func (t *memTransaction) Restore(sp interface{}) {
	t.ensureOpen()
	t.staged = sp.(*state)
}

func (t *memTransaction) Discard() {
	if t.done {
		return
	}
	t.ws.mu.Lock()
	defer t.ws.mu.Unlock()
	t.ws.writeOpen = false
	t.done = true
	logger.Debug("write transaction discarded")
}
