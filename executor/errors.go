package executor

import "github.com/groundx/ledgercore/model"

// Stable numeric error codes. Codes 1-5 are generic across every
// command; TransferAsset additionally uses 6-8 for its own failure
// modes.
const (
	CodeInternal                      = 1
	CodeNoPermission                  = 2
	CodeSubjectAbsent                 = 3
	CodeInvariantViolated             = 4
	CodeAlreadyExistsOrAbsentRelation = 5

	// TransferAsset-specific.
	CodeInsufficientSourceQuantity = 6
	CodeReceiverCannotReceive      = 7
	CodeDescriptionTooLong         = 8
)

func cmdErr(cmd model.Command, code int, args string) *model.CommandError {
	return &model.CommandError{CommandName: cmd.CommandName(), Code: code, QueryArgs: args}
}
