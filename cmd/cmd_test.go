// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package cmd

import (
	"path/filepath"
	"testing"

	"blockwatch.cc/easkit/identity"
	"github.com/echa/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetKeyFlags() {
	keyIndex, keyPath, keyPassphrase = -1, "", ""
}

func TestDeriverFlags(t *testing.T) {
	defer resetKeyFlags()

	resetKeyFlags()
	d, err := deriver()
	require.NoError(t, err)
	assert.Equal(t, identity.DefaultPath, d.Path)

	keyIndex = 3
	d, err = deriver()
	require.NoError(t, err)
	assert.Equal(t, "m/44'/60'/0'/0/3", d.Path)

	resetKeyFlags()
	keyPath = "m/44'/60'/1'/0/0"
	keyPassphrase = "secret"
	d, err = deriver()
	require.NoError(t, err)
	assert.Equal(t, "m/44'/60'/1'/0/0", d.Path)
	assert.Equal(t, "secret", d.Passphrase)

	keyIndex = 1
	_, err = deriver()
	assert.Error(t, err)

	resetKeyFlags()
	keyPath = "x/1/2"
	_, err = deriver()
	assert.ErrorIs(t, err, identity.ErrInvalidPath)

	resetKeyFlags()
	keyIndex = 1 << 31
	_, err = deriver()
	assert.Error(t, err)
}

func TestDBOpts(t *testing.T) {
	config.Set("catalog.nosync", true)
	defer config.Set("catalog.nosync", false)

	opts := DBOpts(false)
	assert.False(t, opts.ReadOnly)
	assert.True(t, opts.NoSync)

	opts = DBOpts(true)
	assert.True(t, opts.ReadOnly)
	assert.False(t, opts.NoSync)
}

func TestOpenCatalog(t *testing.T) {
	config.Set("catalog.path", filepath.Join(t.TempDir(), "test.db"))
	cat, err := openCatalog(false)
	require.NoError(t, err)
	rec, err := cat.Register("string userID", common.Address{}, true)
	require.NoError(t, err)
	assert.Equal(t, "0xc1c317af2ee267424274872bd806ec8c4811d0d16e264e1b98a183e0ee9f5873", rec.UID.Hex())
	require.NoError(t, cat.Close())
}

func TestNewRPCClientUnset(t *testing.T) {
	config.Set("rpc.url", "")
	c, err := newRPCClient()
	require.NoError(t, err)
	assert.Nil(t, c)

	config.Set("rpc.url", "http://127.0.0.1:8545")
	defer config.Set("rpc.url", "")
	c, err = newRPCClient()
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, UserAgent, c.UserAgent)
}
