package crypto

import "testing"

func TestSignVerifyRoundTrip(t *testing.T) {
	signer, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	payload := []byte("block hash payload")
	sig, err := signer.Sign(payload)
	if err != nil {
		t.Fatal(err)
	}
	if !DefaultVerifier.Verify(payload, sig) {
		t.Fatal("expected a freshly signed payload to verify")
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	signer, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	sig, err := signer.Sign([]byte("original"))
	if err != nil {
		t.Fatal(err)
	}
	if DefaultVerifier.Verify([]byte("tampered"), sig) {
		t.Fatal("expected verification to fail for a tampered payload")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	signerA, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	signerB, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	payload := []byte("payload")
	sig, err := signerA.Sign(payload)
	if err != nil {
		t.Fatal(err)
	}
	sig.PublicKey = signerB.PublicKey()
	if DefaultVerifier.Verify(payload, sig) {
		t.Fatal("expected verification to fail when the public key doesn't match the signature")
	}
}

func TestVerifyRejectsBadKeyLength(t *testing.T) {
	sig := Signature{PublicKey: PublicKey([]byte{1, 2, 3}), Payload: []byte("x")}
	if DefaultVerifier.Verify([]byte("x"), sig) {
		t.Fatal("expected verification to fail for a malformed public key")
	}
}
