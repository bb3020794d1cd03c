package common

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountRoundTrip(t *testing.T) {
	a, err := ParseAmount("12.34", 2)
	require.NoError(t, err)
	assert.Equal(t, "12.34", a.String())
}

func TestParseAmountRejectsNegative(t *testing.T) {
	_, err := ParseAmount("-1", 0)
	assert.Error(t, err)
}

func TestParseAmountRejectsExcessFractionalDigits(t *testing.T) {
	_, err := ParseAmount("1.234", 2)
	assert.Error(t, err)
}

func TestAmountAddAndSub(t *testing.T) {
	a, _ := ParseAmount("10", 0)
	b, _ := ParseAmount("4", 0)
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "14", sum.String())
	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "6", diff.String())
}

func TestAmountSubInsufficientFails(t *testing.T) {
	a, _ := ParseAmount("1", 0)
	b, _ := ParseAmount("2", 0)
	_, err := a.Sub(b)
	assert.Error(t, err)
}

func TestAmountPrecisionMismatch(t *testing.T) {
	a, _ := ParseAmount("1", 0)
	b, _ := ParseAmount("1", 2)
	_, err := a.Add(b)
	assert.Error(t, err)
	_, err = a.Cmp(b)
	assert.Error(t, err)
}

func TestAmountCmp(t *testing.T) {
	a, _ := ParseAmount("5", 2)
	b, _ := ParseAmount("5.01", 2)
	cmp, err := a.Cmp(b)
	require.NoError(t, err)
	assert.Negative(t, cmp)
}

func TestAmountIsZero(t *testing.T) {
	z := ZeroAmount(2)
	assert.True(t, z.IsZero())
	nz, _ := ParseAmount("0.01", 2)
	assert.False(t, nz.IsZero())
}

func TestAmountGobRoundTrip(t *testing.T) {
	a, err := ParseAmount("98765.4321", 4)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(a))
	var decoded Amount
	require.NoError(t, gob.NewDecoder(&buf).Decode(&decoded))

	assert.Equal(t, "98765.4321", decoded.String())
	assert.Equal(t, uint8(4), decoded.Precision())
}
