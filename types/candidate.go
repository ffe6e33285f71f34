package types

import (
	"errors"

	"github.com/tendermint/tendermint/crypto/tmhash"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	tmjson "github.com/tendermint/tendermint/libs/json"
)

// BlockData is the full body of a candidate block.
type BlockData []byte

func (bd BlockData) Hash() tmbytes.HexBytes {
	return tmhash.Sum(bd)
}

func (bd BlockData) Size() int64 {
	return int64(len(bd))
}

// Extrinsic is the outgoing-message payload that accompanies a candidate.
type Extrinsic []byte

func (ex Extrinsic) Hash() tmbytes.HexBytes {
	return tmhash.Sum(ex)
}

// CandidateReceipt describes a candidate block without carrying its body.
// The receipt hash is the candidate hash used everywhere in this layer.
type CandidateReceipt struct {
	ParaID        uint32           `json:"para_id"`
	Collator      tmbytes.HexBytes `json:"collator"`
	HeadData      tmbytes.HexBytes `json:"head_data"`
	BlockDataHash tmbytes.HexBytes `json:"block_data_hash"`
}

// Hash returns the content hash identifying the candidate.
func (c *CandidateReceipt) Hash() tmbytes.HexBytes {
	bz, err := tmjson.Marshal(c)
	if err != nil {
		panic(err)
	}
	return tmhash.Sum(bz)
}

func (c *CandidateReceipt) ValidateBasic() error {
	if len(c.BlockDataHash) == 0 {
		return errors.New("candidate receipt without block data hash")
	}
	return nil
}

// Collation is the candidate payload subject to the validity check.
type Collation struct {
	Receipt   CandidateReceipt `json:"receipt"`
	BlockData BlockData        `json:"block_data"`
	Extrinsic Extrinsic        `json:"extrinsic"`
}

// BlockID identifies a checked parent block the validity check runs against.
type BlockID struct {
	Hash tmbytes.HexBytes `json:"hash"`
}
