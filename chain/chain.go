package chain

import (
	"statementnet_demo/types"
)

// Querier is the blockchain-query capability the router validates
// collations through.
type Querier interface {
	// ValidateCollation runs the collation-validity check against the
	// checked parent block. nil means valid; any error means the collation
	// is bad or the check itself failed.
	ValidateCollation(parent types.BlockID, collation *types.Collation) error
}

// NopQuerier accepts every collation. A real deployment plugs in a relay
// chain client here; this layer only defines the seam.
type NopQuerier struct{}

var _ Querier = NopQuerier{}

func (NopQuerier) ValidateCollation(_ types.BlockID, _ *types.Collation) error {
	return nil
}
