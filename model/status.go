package model

// TxStatusKind enumerates the observable per-transaction status states.
type TxStatusKind int

const (
	NotReceived TxStatusKind = iota
	StatelessValid
	MstPending
	EnoughSignaturesCollected
	StatefulValid
	StatefulFailed
	StatelessFailed
	Committed
	Rejected
	MstExpired
)

var statusNames = [...]string{
	NotReceived:               "NotReceived",
	StatelessValid:            "StatelessValid",
	MstPending:                "MstPending",
	EnoughSignaturesCollected: "EnoughSignaturesCollected",
	StatefulValid:             "StatefulValid",
	StatefulFailed:            "StatefulFailed",
	StatelessFailed:           "StatelessFailed",
	Committed:                 "Committed",
	Rejected:                  "Rejected",
	MstExpired:                "MstExpired",
}

func (k TxStatusKind) String() string {
	if int(k) >= 0 && int(k) < len(statusNames) {
		return statusNames[k]
	}
	return "Unknown"
}

// Terminal reports whether k is a terminal state: once reached, no
// further transition is allowed.
func (k TxStatusKind) Terminal() bool {
	switch k {
	case Committed, Rejected, StatelessFailed, MstExpired:
		return true
	default:
		return false
	}
}

// allowedTransitions lists, for each state, the states it may move to.
// Re-publishing the current state (a self-loop) is always allowed and
// treated as a no-op by callers.
var allowedTransitions = map[TxStatusKind]map[TxStatusKind]bool{
	NotReceived: {
		StatelessValid:  true,
		StatelessFailed: true,
	},
	StatelessValid: {
		MstPending:                true,
		EnoughSignaturesCollected: true,
	},
	MstPending: {
		EnoughSignaturesCollected: true,
		MstExpired:                true,
	},
	EnoughSignaturesCollected: {
		StatefulValid:  true,
		StatefulFailed: true,
	},
	StatefulValid: {
		Committed: true,
		Rejected:  true,
	},
}

// CanTransition reports whether moving from 'from' to 'to' is a valid
// status transition, or a same-state no-op.
func CanTransition(from, to TxStatusKind) bool {
	if from == to {
		return true
	}
	return allowedTransitions[from][to]
}

// TxStatus is the full observable status for one transaction hash:
// kind plus any command-error context for StatefulFailed.
type TxStatus struct {
	Kind    TxStatusKind
	ErrInfo *CommandError // non-nil only for StatefulFailed
}
