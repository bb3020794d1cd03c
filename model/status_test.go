package model

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to TxStatusKind
		want     bool
	}{
		{NotReceived, NotReceived, true},
		{NotReceived, StatelessValid, true},
		{NotReceived, Committed, false},
		{StatelessValid, MstPending, true},
		{MstPending, EnoughSignaturesCollected, true},
		{MstPending, MstExpired, true},
		{EnoughSignaturesCollected, StatefulValid, true},
		{StatefulValid, Committed, true},
		{StatefulValid, Rejected, true},
		{Committed, Rejected, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%v, %v) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, k := range []TxStatusKind{Committed, Rejected, StatelessFailed, MstExpired} {
		if !k.Terminal() {
			t.Errorf("%v should be terminal", k)
		}
	}
	for _, k := range []TxStatusKind{NotReceived, StatelessValid, MstPending, EnoughSignaturesCollected, StatefulValid} {
		if k.Terminal() {
			t.Errorf("%v should not be terminal", k)
		}
	}
}
