package types

import (
	"bytes"

	"github.com/tendermint/tendermint/crypto"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
)

// SessionKey is the opaque identity a validator uses for one consensus
// session. It is the raw public key bytes, not the derived address.
type SessionKey []byte

func SessionKeyFromPubKey(key crypto.PubKey) SessionKey {
	return SessionKey(key.Bytes())
}

func (k SessionKey) Equal(other SessionKey) bool {
	if k == nil || other == nil {
		return false
	}
	return bytes.Equal(k, other)
}

func (k SessionKey) String() string {
	return tmbytes.HexBytes(k).String()
}

func (k SessionKey) MarshalJSON() ([]byte, error) {
	return tmbytes.HexBytes(k).MarshalJSON()
}

func (k *SessionKey) UnmarshalJSON(data []byte) error {
	return (*tmbytes.HexBytes)(k).UnmarshalJSON(data)
}
