package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	tmrand "github.com/tendermint/tendermint/libs/rand"
	tmdb "github.com/tendermint/tm-db"

	"statementnet_demo/types"
)

func newTestStore() *AvailabilityStore {
	return NewAvailabilityStore(tmdb.NewMemDB(), log.TestingLogger())
}

func TestAvailabilityStoreRoundTrip(t *testing.T) {
	store := newTestStore()

	blockData := types.BlockData(tmrand.Bytes(128))
	extrinsic := types.Extrinsic(tmrand.Bytes(64))
	hash := blockData.Hash()

	added, err := store.Add(hash, blockData, extrinsic)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, store.Has(hash))

	gotBD, err := store.BlockData(hash)
	require.NoError(t, err)
	assert.Equal(t, blockData, gotBD)

	gotEx, err := store.Extrinsic(hash)
	require.NoError(t, err)
	assert.Equal(t, extrinsic, gotEx)
}

func TestAvailabilityStoreAddIsIdempotent(t *testing.T) {
	store := newTestStore()

	blockData := types.BlockData("some block data")
	hash := blockData.Hash()

	added, err := store.Add(hash, blockData, nil)
	require.NoError(t, err)
	assert.True(t, added)

	// second add with different content must not overwrite
	added, err = store.Add(hash, types.BlockData("other data"), nil)
	require.NoError(t, err)
	assert.False(t, added)

	got, err := store.BlockData(hash)
	require.NoError(t, err)
	assert.Equal(t, blockData, got)
}

func TestAvailabilityStoreMiss(t *testing.T) {
	store := newTestStore()

	hash := types.BlockData("never stored").Hash()
	assert.False(t, store.Has(hash))

	_, err := store.BlockData(hash)
	assert.Equal(t, ErrNotAvailable, err)

	_, err = store.Extrinsic(hash)
	assert.Equal(t, ErrNotAvailable, err)
}
