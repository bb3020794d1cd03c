package executor

import (
	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

func (e *Executor) createDomain(tx wsv.Transaction, creator common.AccountID, c model.CreateDomain, validate bool) *model.CommandError {
	if !requirePermission(validate, wsv.HasRolePermission(tx, creator, model.PermCreateDomain)) {
		return cmdErr(c, CodeNoPermission, string(c.Domain))
	}
	if _, ok := tx.GetRole(c.DefaultRole); !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.DefaultRole))
	}
	if _, exists := tx.GetDomain(c.Domain); exists {
		return cmdErr(c, CodeAlreadyExistsOrAbsentRelation, string(c.Domain))
	}
	tx.PutDomain(model.Domain{ID: c.Domain, DefaultRole: c.DefaultRole})
	return nil
}
