package model

import (
	"bytes"
	"encoding/gob"
	"testing"
)

func TestPermissionSetRootImpliesAll(t *testing.T) {
	var s PermissionSet
	s.Set(PermRoot)
	if !s.Has(PermCreateAccount) {
		t.Fatal("root should imply every other permission")
	}
	if !s.Has(PermGetAllTxs) {
		t.Fatal("root should imply query permissions too")
	}
}

func TestPermissionSetHasAll(t *testing.T) {
	s := NewPermissionSet(PermCreateAccount, PermCreateAsset)
	if !s.HasAll(PermCreateAccount, PermCreateAsset) {
		t.Fatal("expected both permissions set")
	}
	if s.HasAll(PermCreateAccount, PermCreateDomain) {
		t.Fatal("PermCreateDomain was never set")
	}
}

func TestPermissionSetUnion(t *testing.T) {
	a := NewPermissionSet(PermCreateAccount)
	b := NewPermissionSet(PermCreateAsset)
	u := a.Union(b)
	if !u.Has(PermCreateAccount) || !u.Has(PermCreateAsset) {
		t.Fatal("union should hold both permissions")
	}
	if u.Has(PermCreateDomain) {
		t.Fatal("union should not gain permissions neither side had")
	}
}

func TestPermissionSetList(t *testing.T) {
	s := NewPermissionSet(PermCreateAccount, PermCreateAsset)
	list := s.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 permissions, got %d", len(list))
	}
}

func TestPermissionSetGobRoundTrip(t *testing.T) {
	s := NewPermissionSet(PermCreateAccount, PermTransfer, PermGetAllTxs)
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		t.Fatal(err)
	}
	var decoded PermissionSet
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	if decoded != s {
		t.Fatal("permission set changed across gob round-trip")
	}
	if decoded.Has(PermCreateDomain) {
		t.Fatal("round-trip should not gain permissions")
	}
}
