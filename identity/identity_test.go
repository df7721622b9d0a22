// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package identity

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPhrase  = "tribe arm stock armed bridge useful tray shield scatter begin shiver mystery"
	testKey     = "0xf7ac167c96b9cfd930448e8078254bf1e7dd54b31935ae2cbb488a4f584fa97d"
	testAddress = "0x157FB2D82Cbb6EF9911a78496671a9AC3589d383"
)

var (
	keyPattern  = regexp.MustCompile(`^0x[a-f0-9]{64}$`)
	addrPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
)

func TestGenerateMnemonic(t *testing.T) {
	for i := 0; i < 8; i++ {
		m := GenerateMnemonic()
		require.Len(t, m, MnemonicWords)
		require.NoError(t, m.Validate())
		for _, w := range m {
			assert.Equal(t, strings.ToLower(w), w)
		}
		key, err := DeriveKeyFromMnemonic(m)
		require.NoError(t, err)
		assert.Regexp(t, keyPattern, key.String())
	}
	assert.NotEqual(t, GenerateMnemonic(), GenerateMnemonic())
}

func TestDeriveKnownVector(t *testing.T) {
	m, err := ParseMnemonicString(testPhrase)
	require.NoError(t, err)

	key, err := DeriveKeyFromMnemonic(m)
	require.NoError(t, err)
	assert.Equal(t, testKey, key.String())

	addr, err := DeriveAddressFromKey(key.String())
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr.String())

	// determinism
	for i := 0; i < 3; i++ {
		again, err := DeriveKeyFromMnemonic(m)
		require.NoError(t, err)
		assert.Equal(t, key, again)
	}
}

func TestDeriveAccountIndex(t *testing.T) {
	m, err := ParseMnemonicString(testPhrase)
	require.NoError(t, err)

	acc, err := Deriver{Path: AccountPath(1)}.Account(m)
	require.NoError(t, err)
	assert.Equal(t, "0x445010ec75b448980016072af3cafdf61e87480c758e2bdae8ef30d6732b93e9", acc.PrivateKey.String())
	assert.Equal(t, "0x3D1760030CC071dD5Cb32C3Ae302D94b0741E581", acc.Address.String())

	acc0, err := Deriver{Path: AccountPath(0)}.Account(m)
	require.NoError(t, err)
	assert.Equal(t, testKey, acc0.PrivateKey.String())
}

func TestDerivePassphraseChangesKey(t *testing.T) {
	m, err := ParseMnemonicString(testPhrase)
	require.NoError(t, err)
	key, err := Deriver{Passphrase: "secret"}.Derive(m)
	require.NoError(t, err)
	assert.NotEqual(t, testKey, key.String())
}

func TestParseMnemonicRejects(t *testing.T) {
	tests := []struct {
		name string
		in   any
		err  error
	}{
		{name: "string", in: "not an array", err: ErrInvalidMnemonicShape},
		{name: "nil", in: nil, err: ErrInvalidMnemonicShape},
		{name: "number", in: 12, err: ErrInvalidMnemonicShape},
		{name: "mixed list", in: []any{"tribe", 1}, err: ErrInvalidMnemonicShape},
		{name: "short", in: []string{"word1", "word2", "word3"}, err: ErrInvalidMnemonicLength},
		{name: "empty", in: []string{}, err: ErrInvalidMnemonicLength},
		{name: "long", in: strings.Fields(testPhrase + " tribe"), err: ErrInvalidMnemonicLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMnemonic(tt.in)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDeriveRejectsInvalidPhrase(t *testing.T) {
	junk := []string{"invalid", "mnemonic", "phrase"}
	for len(junk) < MnemonicWords {
		junk = append(junk, "junk")
	}
	// valid words, broken checksum
	swapped := strings.Fields(testPhrase)
	swapped[0], swapped[1] = swapped[1], swapped[0]

	tests := []struct {
		name string
		in   Mnemonic
		err  error
	}{
		{name: "junk words", in: junk, err: ErrInvalidMnemonicChecksum},
		{name: "bad checksum", in: swapped, err: ErrInvalidMnemonicChecksum},
		{name: "uppercase", in: strings.Fields(strings.ToUpper(testPhrase)), err: ErrInvalidMnemonicChecksum},
		{name: "embedded space", in: append(Mnemonic{"tribe arm"}, strings.Fields(testPhrase)[2:]...), err: ErrInvalidMnemonicLength},
		{name: "short", in: Mnemonic{"word1", "word2", "word3"}, err: ErrInvalidMnemonicLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DeriveKeyFromMnemonic(tt.in)
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, PrivateKey{}, key)
		})
	}
}

func TestDeriveAddressFromKey(t *testing.T) {
	addr, err := DeriveAddressFromKey(strings.TrimPrefix(testKey, "0x"))
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr.String())
	assert.Regexp(t, addrPattern, addr.String())

	one := "0x0000000000000000000000000000000000000000000000000000000000000001"
	addr, err = DeriveAddressFromKey(one)
	require.NoError(t, err)
	assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", addr.String())

	// prefix and digits in any case
	for _, s := range []string{
		"0X" + strings.TrimPrefix(testKey, "0x"),
		"0X" + strings.ToUpper(strings.TrimPrefix(testKey, "0x")),
		strings.ToUpper(strings.TrimPrefix(testKey, "0x")),
	} {
		addr, err = DeriveAddressFromKey(s)
		require.NoError(t, err, s)
		assert.Equal(t, testAddress, addr.String())
	}
}

func TestDeriveAddressRejects(t *testing.T) {
	for _, s := range []string{
		"invalidPrivateKey",
		"",
		"0x",
		"0xf7ac167c96b9cfd930448e8078254bf1e7dd54b31935ae2cbb488a4f584fa9",   // 31 bytes
		"0xf7ac167c96b9cfd930448e8078254bf1e7dd54b31935ae2cbb488a4f584fa97d00", // 33 bytes
		"0xz7ac167c96b9cfd930448e8078254bf1e7dd54b31935ae2cbb488a4f584fa97d",
		"0x0000000000000000000000000000000000000000000000000000000000000000",
		"0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", // curve order
	} {
		_, err := DeriveAddressFromKey(s)
		assert.ErrorIs(t, err, ErrInvalidPrivateKey, s)
	}
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress(testAddress)
	require.NoError(t, err)
	assert.Equal(t, testAddress, a.String())

	b, err := ParseAddress(strings.ToLower(testAddress))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	_, err = ParseAddress("0x157fB2D82Cbb6EF9911a78496671a9AC3589d383")
	assert.ErrorIs(t, err, ErrInvalidAddress)
	_, err = ParseAddress("0x1234")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath(DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, Path{0x8000002c, 0x8000003c, 0x80000000, 0, 0}, p)

	_, err = ParsePath("m/not/a/path")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestAccountJSON(t *testing.T) {
	m, err := ParseMnemonicString(testPhrase)
	require.NoError(t, err)
	acc, err := DefaultDeriver.Account(m)
	require.NoError(t, err)

	buf, err := json.Marshal(acc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"mnemonic": ["tribe","arm","stock","armed","bridge","useful","tray","shield","scatter","begin","shiver","mystery"],
		"private_key": "`+testKey+`",
		"address": "`+testAddress+`"
	}`, string(buf))

	var back Account
	require.NoError(t, json.Unmarshal(buf, &back))
	assert.Equal(t, acc, back)

	var bad Account
	err = json.Unmarshal([]byte(`{"mnemonic":"tribe arm"}`), &bad)
	assert.ErrorIs(t, err, ErrInvalidMnemonicShape)
}
