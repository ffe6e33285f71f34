package network

import (
	"github.com/pkg/errors"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	"github.com/tendermint/tendermint/libs/log"
	tmdb "github.com/tendermint/tm-db"

	"statementnet_demo/types"
)

var (
	// ErrNotAvailable is returned when content for a candidate is not in
	// the local store. Peer-side retrieval happens behind the Service seam;
	// this store only answers for content it has already been handed.
	ErrNotAvailable = errors.New("candidate content not available locally")
)

var (
	blockDataPrefix = []byte("bd/")
	extrinsicPrefix = []byte("ex/")
)

// AvailabilityStore keeps candidate content keyed by candidate hash. Backed
// by a tm-db database; the default node wiring uses an in-memory one, since
// nothing in this layer persists across restarts.
type AvailabilityStore struct {
	db     tmdb.DB
	logger log.Logger
}

func NewAvailabilityStore(db tmdb.DB, logger log.Logger) *AvailabilityStore {
	return &AvailabilityStore{db: db, logger: logger}
}

// Add stores block data and extrinsic for a candidate hash in one batch.
// Returns false if the hash was already stored.
func (as *AvailabilityStore) Add(hash tmbytes.HexBytes, blockData types.BlockData, extrinsic types.Extrinsic) (bool, error) {
	has, err := as.db.Has(blockDataKey(hash))
	if err != nil {
		return false, errors.Wrap(err, "checking availability store")
	}
	if has {
		return false, nil
	}

	batch := as.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(blockDataKey(hash), blockData); err != nil {
		return false, errors.Wrap(err, "storing block data")
	}
	if err := batch.Set(extrinsicKey(hash), extrinsic); err != nil {
		return false, errors.Wrap(err, "storing extrinsic")
	}
	if err := batch.Write(); err != nil {
		return false, errors.Wrap(err, "writing availability batch")
	}

	as.logger.Debug("candidate content stored", "hash", hash, "size", blockData.Size())
	return true, nil
}

// BlockData returns the stored block data for a candidate hash.
func (as *AvailabilityStore) BlockData(hash tmbytes.HexBytes) (types.BlockData, error) {
	value, err := as.db.Get(blockDataKey(hash))
	if err != nil {
		return nil, errors.Wrap(err, "reading availability store")
	}
	if value == nil {
		return nil, ErrNotAvailable
	}
	return types.BlockData(value), nil
}

// Extrinsic returns the stored extrinsic for a candidate hash.
func (as *AvailabilityStore) Extrinsic(hash tmbytes.HexBytes) (types.Extrinsic, error) {
	value, err := as.db.Get(extrinsicKey(hash))
	if err != nil {
		return nil, errors.Wrap(err, "reading availability store")
	}
	if value == nil {
		return nil, ErrNotAvailable
	}
	return types.Extrinsic(value), nil
}

// Has reports whether content for the hash is stored locally.
func (as *AvailabilityStore) Has(hash tmbytes.HexBytes) bool {
	has, err := as.db.Has(blockDataKey(hash))
	if err != nil {
		as.logger.Error("availability store read failed", "err", err)
		return false
	}
	return has
}

func blockDataKey(hash tmbytes.HexBytes) []byte {
	return append(blockDataPrefix, hash...)
}

func extrinsicKey(hash tmbytes.HexBytes) []byte {
	return append(extrinsicPrefix, hash...)
}
