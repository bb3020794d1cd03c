package executor

import (
	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

// addSignatory appends a new signatory public key. An account must keep
// at least quorum signatories after any mutation; adding satisfies that
// trivially, removeSignatory does the real check.
func (e *Executor) addSignatory(tx wsv.Transaction, creator common.AccountID, c model.AddSignatory, validate bool) *model.CommandError {
	acc, ok := tx.GetAccount(c.AccountID)
	if !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.AccountID))
	}
	allowed := wsv.CanActOnSelfOrGranted(tx, creator, c.AccountID, model.PermAddSignatory, model.PermAddMySignatory)
	if !requirePermission(validate, allowed) {
		return cmdErr(c, CodeNoPermission, string(c.AccountID))
	}
	for _, s := range acc.Signatories {
		if s == c.PublicKey {
			return cmdErr(c, CodeAlreadyExistsOrAbsentRelation, string(c.AccountID))
		}
	}
	acc.Signatories = append(acc.Signatories, c.PublicKey)
	tx.PutAccount(acc)
	return nil
}

func (e *Executor) removeSignatory(tx wsv.Transaction, creator common.AccountID, c model.RemoveSignatory, validate bool) *model.CommandError {
	acc, ok := tx.GetAccount(c.AccountID)
	if !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.AccountID))
	}
	allowed := wsv.CanActOnSelfOrGranted(tx, creator, c.AccountID, model.PermRemoveSignatory, model.PermRemoveMySignatory)
	if !requirePermission(validate, allowed) {
		return cmdErr(c, CodeNoPermission, string(c.AccountID))
	}
	idx := -1
	for i, s := range acc.Signatories {
		if s == c.PublicKey {
			idx = i
			break
		}
	}
	if idx < 0 {
		return cmdErr(c, CodeSubjectAbsent, "signatory")
	}
	remaining := len(acc.Signatories) - 1
	if remaining < int(acc.Quorum) {
		return cmdErr(c, CodeInvariantViolated, "would drop below quorum")
	}
	acc.Signatories = append(acc.Signatories[:idx], acc.Signatories[idx+1:]...)
	tx.PutAccount(acc)
	return nil
}

func (e *Executor) setQuorum(tx wsv.Transaction, creator common.AccountID, c model.SetQuorum, validate bool) *model.CommandError {
	acc, ok := tx.GetAccount(c.AccountID)
	if !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.AccountID))
	}
	allowed := wsv.CanActOnSelfOrGranted(tx, creator, c.AccountID, model.PermSetQuorum, model.PermSetMyQuorum)
	if !requirePermission(validate, allowed) {
		return cmdErr(c, CodeNoPermission, string(c.AccountID))
	}
	if int(c.Quorum) > len(acc.Signatories) || c.Quorum < 1 || c.Quorum > model.MaxQuorum {
		return cmdErr(c, CodeInvariantViolated, "quorum exceeds signatory count")
	}
	acc.Quorum = c.Quorum
	tx.PutAccount(acc)
	return nil
}

// createAccount requires the domain's default role to exist and, unless
// the creator holds root, that the creator holds every permission of
// that role.
func (e *Executor) createAccount(tx wsv.Transaction, creator common.AccountID, c model.CreateAccount, validate bool) *model.CommandError {
	if !requirePermission(validate, wsv.HasRolePermission(tx, creator, model.PermCreateAccount)) {
		return cmdErr(c, CodeNoPermission, c.AccountName)
	}
	domain, ok := tx.GetDomain(c.Domain)
	if !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.Domain))
	}
	role, ok := tx.GetRole(domain.DefaultRole)
	if !ok {
		return cmdErr(c, CodeSubjectAbsent, string(domain.DefaultRole))
	}
	if validate && !wsv.HasRolePermission(tx, creator, model.PermRoot) {
		creatorPerms := tx.EffectivePermissions(creator)
		if !creatorPerms.HasAll(role.Permissions.List()...) {
			return cmdErr(c, CodeNoPermission, string(domain.DefaultRole))
		}
	}
	id := common.NewAccountID(c.AccountName, c.Domain)
	if _, exists := tx.GetAccount(id); exists {
		return cmdErr(c, CodeAlreadyExistsOrAbsentRelation, string(id))
	}
	tx.PutAccount(model.Account{
		ID:          id,
		Domain:      c.Domain,
		Quorum:      1,
		Signatories: []common.Hash{c.PublicKey},
		Roles:       []common.RoleID{domain.DefaultRole},
	})
	return nil
}

// setAccountDetail allows writing on yourself, with the global
// set-detail permission, or under a set-my-account-detail grant.
func (e *Executor) setAccountDetail(tx wsv.Transaction, creator common.AccountID, c model.SetAccountDetail, validate bool) *model.CommandError {
	if _, ok := tx.GetAccount(c.AccountID); !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.AccountID))
	}
	allowed := creator == c.AccountID ||
		wsv.HasRolePermission(tx, creator, model.PermSetDetail) ||
		wsv.HasGrantedPermission(tx, c.AccountID, creator, model.PermSetMyAccountDetail)
	if !requirePermission(validate, allowed) {
		return cmdErr(c, CodeNoPermission, string(c.AccountID))
	}
	tx.SetAccountDetail(c.AccountID, creator, c.Key, c.Value)
	return nil
}

// compareAndSetAccountDetail needs both write access (as
// setAccountDetail) and read access to the detail, and acts only when
// the stored value equals Expected, treating an absent entry per
// CheckEmpty.
func (e *Executor) compareAndSetAccountDetail(tx wsv.Transaction, creator common.AccountID, c model.CompareAndSetAccountDetail, validate bool) *model.CommandError {
	if _, ok := tx.GetAccount(c.AccountID); !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.AccountID))
	}
	allowed := creator == c.AccountID ||
		wsv.HasRolePermission(tx, creator, model.PermSetDetail) ||
		wsv.HasGrantedPermission(tx, c.AccountID, creator, model.PermSetMyAccountDetail)
	if !requirePermission(validate, allowed) {
		return cmdErr(c, CodeNoPermission, string(c.AccountID))
	}
	canRead := creator == c.AccountID ||
		wsv.HasRolePermission(tx, creator, model.PermGetMyAccountDetail) ||
		wsv.HasGrantedPermission(tx, c.AccountID, creator, model.PermGetMyAccountDetail)
	if !requirePermission(validate, canRead) {
		return cmdErr(c, CodeNoPermission, c.Key)
	}

	current, present := tx.GetAccountDetail(c.AccountID, creator, c.Key)
	matches := false
	switch {
	case c.Expected == nil && c.CheckEmpty:
		matches = !present || current == ""
	case c.Expected == nil:
		matches = !present
	default:
		matches = (present && current == *c.Expected) ||
			(!present && c.CheckEmpty && *c.Expected == "")
	}
	if !matches {
		return cmdErr(c, CodeInvariantViolated, "expected value mismatch")
	}
	tx.SetAccountDetail(c.AccountID, creator, c.Key, c.Value)
	return nil
}
