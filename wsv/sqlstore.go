package wsv

import (
	"strconv"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
)

// SQL-backed persistent WorldState. It front-loads the committed state
// into the same in-memory `state` structure the memory backend clones
// and queries, and persists rows to SQL only on Commit. The world state
// is derived and rebuildable from the block store, so the in-memory
// copy is authoritative at runtime; SQL exists for restart
// survivability and external inspection.

type accountRow struct {
	ID          string `gorm:"primary_key"`
	Domain      string
	Quorum      uint16
	Roles       string // comma-separated RoleIDs
	Signatories string // comma-separated hex-encoded public keys
}

type domainRow struct {
	ID          string `gorm:"primary_key"`
	DefaultRole string
}

type assetRow struct {
	ID        string `gorm:"primary_key"`
	Domain    string
	Precision uint8
}

type roleRow struct {
	ID          string `gorm:"primary_key"`
	Permissions string // comma-separated Permission indices
}

type peerRow struct {
	Address   string `gorm:"primary_key"`
	PublicKey []byte
}

type balanceRow struct {
	AccountID string `gorm:"primary_key"`
	AssetID   string `gorm:"primary_key"`
	Units     string
	Precision uint8
}

type settingRow struct {
	Key   string `gorm:"primary_key"`
	Value string
}

type grantRow struct {
	Grantor     string `gorm:"primary_key"`
	Grantee     string `gorm:"primary_key"`
	Permissions string
}

type detailRow struct {
	AccountID string `gorm:"primary_key"`
	Writer    string `gorm:"primary_key"`
	Key       string `gorm:"primary_key"`
	Value     string
}

// SQLWorldState is a WorldState backed by a SQL database via gorm,
// fronted by the same copy-on-write `state` snapshot the in-memory
// backend uses.
type SQLWorldState struct {
	mu        sync.RWMutex
	db        *gorm.DB
	committed *state
	writeOpen bool
}

// OpenSQLWorldState opens (or creates) the schema on the given gorm
// dialect/connection string and loads the committed snapshot into memory.
func OpenSQLWorldState(dialect, args string) (*SQLWorldState, error) {
	db, err := gorm.Open(dialect, args)
	if err != nil {
		return nil, errors.Wrap(err, "wsv: open sql store")
	}
	db.AutoMigrate(&accountRow{}, &domainRow{}, &assetRow{}, &roleRow{}, &peerRow{}, &balanceRow{}, &settingRow{}, &grantRow{}, &detailRow{})

	w := &SQLWorldState{db: db, committed: newState()}
	if err := w.reload(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying database handle.
func (w *SQLWorldState) Close() error {
	return w.db.Close()
}

// Reset truncates every table and returns the in-memory snapshot to
// empty. It fails with ErrWriteInProgress if a write transaction is
// currently open.
func (w *SQLWorldState) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeOpen {
		return ErrWriteInProgress
	}
	for _, row := range []interface{}{&accountRow{}, &domainRow{}, &assetRow{}, &roleRow{}, &peerRow{}, &balanceRow{}, &settingRow{}, &grantRow{}, &detailRow{}} {
		if err := w.db.Delete(row, "1 = 1").Error; err != nil {
			return errors.Wrap(err, "wsv: reset table")
		}
	}
	w.committed = newState()
	return nil
}

func (w *SQLWorldState) reload() error {
	s := newState()

	var accounts []accountRow
	if err := w.db.Find(&accounts).Error; err != nil {
		return err
	}
	for _, r := range accounts {
		s.accounts[common.AccountID(r.ID)] = model.Account{
			ID:          common.AccountID(r.ID),
			Domain:      common.DomainID(r.Domain),
			Quorum:      r.Quorum,
			Roles:       decodeRoleList(r.Roles),
			Signatories: decodeSignatoryList(r.Signatories),
		}
	}

	var domains []domainRow
	if err := w.db.Find(&domains).Error; err != nil {
		return err
	}
	for _, r := range domains {
		s.domains[common.DomainID(r.ID)] = model.Domain{ID: common.DomainID(r.ID), DefaultRole: common.RoleID(r.DefaultRole)}
	}

	var assets []assetRow
	if err := w.db.Find(&assets).Error; err != nil {
		return err
	}
	for _, r := range assets {
		s.assets[common.AssetID(r.ID)] = model.Asset{ID: common.AssetID(r.ID), Domain: common.DomainID(r.Domain), Precision: r.Precision}
	}

	var roles []roleRow
	if err := w.db.Find(&roles).Error; err != nil {
		return err
	}
	for _, r := range roles {
		s.roles[common.RoleID(r.ID)] = model.Role{ID: common.RoleID(r.ID), Permissions: decodePermissionSet(r.Permissions)}
	}

	var peers []peerRow
	if err := w.db.Find(&peers).Error; err != nil {
		return err
	}
	for _, r := range peers {
		s.peers = append(s.peers, model.Peer{Address: r.Address, PublicKey: r.PublicKey})
	}

	var balances []balanceRow
	if err := w.db.Find(&balances).Error; err != nil {
		return err
	}
	for _, r := range balances {
		amt, err := common.ParseAmount(r.Units, r.Precision)
		if err != nil {
			return errors.Wrapf(err, "wsv: corrupt balance row %s/%s", r.AccountID, r.AssetID)
		}
		s.balances[balanceKey(common.AccountID(r.AccountID), common.AssetID(r.AssetID))] = amt
	}

	var settings []settingRow
	if err := w.db.Find(&settings).Error; err != nil {
		return err
	}
	for _, r := range settings {
		s.settings[r.Key] = r.Value
	}

	var grants []grantRow
	if err := w.db.Find(&grants).Error; err != nil {
		return err
	}
	for _, r := range grants {
		key := model.GrantKey{Grantor: common.AccountID(r.Grantor), Grantee: common.AccountID(r.Grantee)}
		s.grants[key] = decodePermissionSet(r.Permissions)
	}

	var details []detailRow
	if err := w.db.Find(&details).Error; err != nil {
		return err
	}
	for _, r := range details {
		s.SetAccountDetail(common.AccountID(r.AccountID), common.AccountID(r.Writer), r.Key, r.Value)
	}

	w.committed = s
	return nil
}

func (w *SQLWorldState) snapshot() *state {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.committed
}

func (w *SQLWorldState) GetAccount(id common.AccountID) (model.Account, bool) {
	return w.snapshot().GetAccount(id)
}
func (w *SQLWorldState) GetDomain(id common.DomainID) (model.Domain, bool) {
	return w.snapshot().GetDomain(id)
}
func (w *SQLWorldState) GetAsset(id common.AssetID) (model.Asset, bool) {
	return w.snapshot().GetAsset(id)
}
func (w *SQLWorldState) GetRole(id common.RoleID) (model.Role, bool) { return w.snapshot().GetRole(id) }
func (w *SQLWorldState) GetRoles() []model.Role                      { return w.snapshot().GetRoles() }
func (w *SQLWorldState) GetPeers() []model.Peer                      { return w.snapshot().GetPeers() }
func (w *SQLWorldState) GetBalance(account common.AccountID, asset common.AssetID) (common.Amount, bool) {
	return w.snapshot().GetBalance(account, asset)
}
func (w *SQLWorldState) GetGrantedPermissions(key model.GrantKey) (model.PermissionSet, bool) {
	return w.snapshot().GetGrantedPermissions(key)
}
func (w *SQLWorldState) GetSetting(key string) (string, bool) { return w.snapshot().GetSetting(key) }
func (w *SQLWorldState) GetAccountDetail(account, writer common.AccountID, key string) (string, bool) {
	return w.snapshot().GetAccountDetail(account, writer, key)
}
func (w *SQLWorldState) AllAccountDetails(account common.AccountID) map[common.AccountID]map[string]string {
	return w.snapshot().AllAccountDetails(account)
}
func (w *SQLWorldState) EffectivePermissions(account common.AccountID) model.PermissionSet {
	return w.snapshot().EffectivePermissions(account)
}

// Begin opens a write Transaction. Writes accumulate in memory via the
// same staged-clone strategy as MemWorldState; Commit additionally
// persists the staged snapshot's rows to SQL inside one gorm
// transaction, so a crash between PrepareBlock and Commit leaves SQL
// untouched and the in-memory copy discarded on restart.
func (w *SQLWorldState) Begin() (Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeOpen {
		return nil, ErrWriteInProgress
	}
	w.writeOpen = true
	return &sqlTransaction{w: w, staged: w.committed.clone()}, nil
}

type sqlTransaction struct {
	w        *SQLWorldState
	staged   *state
	prepared bool
	done     bool
}

func (t *sqlTransaction) ensureOpen() {
	if t.done {
		panic("wsv: use of transaction after commit/discard")
	}
}

func (t *sqlTransaction) GetAccount(id common.AccountID) (model.Account, bool) {
	t.ensureOpen()
	return t.staged.GetAccount(id)
}
func (t *sqlTransaction) GetDomain(id common.DomainID) (model.Domain, bool) {
	t.ensureOpen()
	return t.staged.GetDomain(id)
}
func (t *sqlTransaction) GetAsset(id common.AssetID) (model.Asset, bool) {
	t.ensureOpen()
	return t.staged.GetAsset(id)
}
func (t *sqlTransaction) GetRole(id common.RoleID) (model.Role, bool) {
	t.ensureOpen()
	return t.staged.GetRole(id)
}
func (t *sqlTransaction) GetRoles() []model.Role { t.ensureOpen(); return t.staged.GetRoles() }
func (t *sqlTransaction) GetPeers() []model.Peer { t.ensureOpen(); return t.staged.GetPeers() }
func (t *sqlTransaction) GetBalance(account common.AccountID, asset common.AssetID) (common.Amount, bool) {
	t.ensureOpen()
	return t.staged.GetBalance(account, asset)
}
func (t *sqlTransaction) GetGrantedPermissions(key model.GrantKey) (model.PermissionSet, bool) {
	t.ensureOpen()
	return t.staged.GetGrantedPermissions(key)
}
func (t *sqlTransaction) GetSetting(key string) (string, bool) {
	t.ensureOpen()
	return t.staged.GetSetting(key)
}
func (t *sqlTransaction) GetAccountDetail(account, writer common.AccountID, key string) (string, bool) {
	t.ensureOpen()
	return t.staged.GetAccountDetail(account, writer, key)
}
func (t *sqlTransaction) AllAccountDetails(account common.AccountID) map[common.AccountID]map[string]string {
	t.ensureOpen()
	return t.staged.AllAccountDetails(account)
}
func (t *sqlTransaction) EffectivePermissions(account common.AccountID) model.PermissionSet {
	t.ensureOpen()
	return t.staged.EffectivePermissions(account)
}

func (t *sqlTransaction) PutAccount(a model.Account) { t.ensureOpen(); t.staged.PutAccount(a) }
func (t *sqlTransaction) PutDomain(d model.Domain)   { t.ensureOpen(); t.staged.PutDomain(d) }
func (t *sqlTransaction) PutAsset(a model.Asset)     { t.ensureOpen(); t.staged.PutAsset(a) }
func (t *sqlTransaction) PutRole(r model.Role)       { t.ensureOpen(); t.staged.PutRole(r) }
func (t *sqlTransaction) AddPeer(p model.Peer)       { t.ensureOpen(); t.staged.AddPeer(p) }
func (t *sqlTransaction) RemovePeer(publicKey []byte) bool {
	t.ensureOpen()
	return t.staged.RemovePeer(publicKey)
}
func (t *sqlTransaction) PeerCount() int { t.ensureOpen(); return t.staged.PeerCount() }
func (t *sqlTransaction) SetBalance(account common.AccountID, asset common.AssetID, amount common.Amount) {
	t.ensureOpen()
	t.staged.SetBalance(account, asset, amount)
}
func (t *sqlTransaction) SetGrantedPermissions(key model.GrantKey, perms model.PermissionSet) {
	t.ensureOpen()
	t.staged.SetGrantedPermissions(key, perms)
}
func (t *sqlTransaction) SetSetting(key, value string) {
	t.ensureOpen()
	t.staged.SetSetting(key, value)
}
func (t *sqlTransaction) SetAccountDetail(account, writer common.AccountID, key, value string) {
	t.ensureOpen()
	t.staged.SetAccountDetail(account, writer, key, value)
}

func (t *sqlTransaction) Savepoint() interface{} {
	t.ensureOpen()
	return t.staged.clone()
}

func (t *sqlTransaction) Restore(sp interface{}) {
	t.ensureOpen()
	t.staged = sp.(*state)
}

func (t *sqlTransaction) PrepareBlock() error {
	t.ensureOpen()
	t.prepared = true
	return nil
}

// Commit persists the staged snapshot to SQL inside one gorm
// transaction, then swaps it in as the new committed in-memory state.
func (t *sqlTransaction) Commit() error {
	t.ensureOpen()
	tx := t.w.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	for _, a := range t.staged.accounts {
		row := accountRow{
			ID:          string(a.ID),
			Domain:      string(a.Domain),
			Quorum:      a.Quorum,
			Roles:       encodeRoleList(a.Roles),
			Signatories: encodeSignatoryList(a.Signatories),
		}
		if err := tx.Save(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, r := range t.staged.roles {
		row := roleRow{ID: string(r.ID), Permissions: encodePermissionSet(r.Permissions)}
		if err := tx.Save(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, d := range t.staged.domains {
		row := domainRow{ID: string(d.ID), DefaultRole: string(d.DefaultRole)}
		if err := tx.Save(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, a := range t.staged.assets {
		row := assetRow{ID: string(a.ID), Domain: string(a.Domain), Precision: a.Precision}
		if err := tx.Save(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	for key, amt := range t.staged.balances {
		account, asset := splitBalanceKey(key)
		row := balanceRow{AccountID: string(account), AssetID: string(asset), Units: amt.Units().String(), Precision: amt.Precision()}
		if err := tx.Save(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	for k, v := range t.staged.settings {
		row := settingRow{Key: k, Value: v}
		if err := tx.Save(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	// Peers and grants can shrink (RemovePeer, RevokePermission), so
	// unlike the append-only tables above these are rewritten in full
	// rather than upserted row by row.
	if err := tx.Delete(&peerRow{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	for _, p := range t.staged.peers {
		row := peerRow{Address: p.Address, PublicKey: p.PublicKey}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Delete(&grantRow{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	for key, perms := range t.staged.grants {
		row := grantRow{Grantor: string(key.Grantor), Grantee: string(key.Grantee), Permissions: encodePermissionSet(perms)}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	for account, byWriter := range t.staged.details {
		for writer, kv := range byWriter {
			for k, v := range kv {
				row := detailRow{AccountID: string(account), Writer: string(writer), Key: k, Value: v}
				if err := tx.Save(&row).Error; err != nil {
					tx.Rollback()
					return err
				}
			}
		}
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	t.w.mu.Lock()
	t.w.committed = t.staged
	t.w.writeOpen = false
	t.w.mu.Unlock()
	t.done = true
	return nil
}

func (t *sqlTransaction) Discard() {
	if t.done {
		return
	}
	t.w.mu.Lock()
	t.w.writeOpen = false
	t.w.mu.Unlock()
	t.done = true
}

func encodeRoleList(roles []common.RoleID) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

func decodeRoleList(s string) []common.RoleID {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]common.RoleID, len(parts))
	for i, p := range parts {
		out[i] = common.RoleID(p)
	}
	return out
}

func encodeSignatoryList(sigs []common.Hash) string {
	parts := make([]string, len(sigs))
	for i, s := range sigs {
		parts[i] = s.Hex()
	}
	return strings.Join(parts, ",")
}

func decodeSignatoryList(s string) []common.Hash {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]common.Hash, 0, len(parts))
	for _, p := range parts {
		h, err := common.HexToHash(p)
		if err != nil {
			continue
		}
		out = append(out, h)
	}
	return out
}

func encodePermissionSet(ps model.PermissionSet) string {
	parts := make([]string, 0, 4)
	for _, p := range ps.List() {
		parts = append(parts, strconv.Itoa(int(p)))
	}
	return strings.Join(parts, ",")
}

func decodePermissionSet(s string) model.PermissionSet {
	var ps model.PermissionSet
	if s == "" {
		return ps
	}
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		ps.Set(model.Permission(n))
	}
	return ps
}

func splitBalanceKey(key string) (common.AccountID, common.AssetID) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return common.AccountID(key[:i]), common.AssetID(key[i+1:])
		}
	}
	return common.AccountID(key), ""
}
