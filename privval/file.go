package privval

import (
	"fmt"
	"io/ioutil"

	"github.com/tendermint/tendermint/crypto"
	"github.com/tendermint/tendermint/crypto/ed25519"
	tmjson "github.com/tendermint/tendermint/libs/json"
	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tendermint/tendermint/libs/tempfile"

	"statementnet_demo/types"
)

//-------------------------------------------------------------------------------

// FilePVKey stores the immutable part of PrivValidator.
type FilePVKey struct {
	SessionKey types.SessionKey `json:"session_key"`
	PubKey     crypto.PubKey    `json:"pub_key"`
	PrivKey    crypto.PrivKey   `json:"priv_key"`

	filePath string
}

// Save persists the FilePVKey to its filePath.
func (pvKey FilePVKey) Save() {
	outFile := pvKey.filePath
	if outFile == "" {
		panic("cannot save PrivValidator key: filePath not set")
	}

	jsonBytes, err := tmjson.MarshalIndent(pvKey, "", "  ")
	if err != nil {
		panic(err)
	}
	err = tempfile.WriteFileAtomic(outFile, jsonBytes, 0600)
	if err != nil {
		panic(err)
	}
}

//-------------------------------------------------------------------------------

// FilePV implements PrivValidator using a key persisted to disk. Statement
// signing is stateless, so there is no last-sign-state companion file.
// NOTE: the directory containing pv.Key.filePath must already exist.
type FilePV struct {
	Key FilePVKey
}

var _ types.PrivValidator = (*FilePV)(nil)

// NewFilePV generates a new validator from the given key and path.
func NewFilePV(privKey crypto.PrivKey, keyFilePath string) *FilePV {
	return &FilePV{
		Key: FilePVKey{
			SessionKey: types.SessionKeyFromPubKey(privKey.PubKey()),
			PubKey:     privKey.PubKey(),
			PrivKey:    privKey,
			filePath:   keyFilePath,
		},
	}
}

// GenFilePV generates a new validator with randomly generated private key
// and sets the filePath, but does not call Save().
func GenFilePV(keyFilePath string) *FilePV {
	return NewFilePV(ed25519.GenPrivKey(), keyFilePath)
}

// LoadFilePV loads a FilePV from the keyFilePath. If the file path does not
// exist, the program will exit.
func LoadFilePV(keyFilePath string) *FilePV {
	keyJSONBytes, err := ioutil.ReadFile(keyFilePath)
	if err != nil {
		tmos.Exit(err.Error())
	}
	pvKey := FilePVKey{}
	err = tmjson.Unmarshal(keyJSONBytes, &pvKey)
	if err != nil {
		tmos.Exit(fmt.Sprintf("Error reading PrivValidator key from %v: %v\n", keyFilePath, err))
	}

	// overwrite pubkey and session key for convenience
	pvKey.PubKey = pvKey.PrivKey.PubKey()
	pvKey.SessionKey = types.SessionKeyFromPubKey(pvKey.PubKey)
	pvKey.filePath = keyFilePath

	return &FilePV{
		Key: pvKey,
	}
}

// LoadOrGenFilePV loads a FilePV from the given filePath
// or else generates a new one and saves it there.
func LoadOrGenFilePV(keyFilePath string) *FilePV {
	var pv *FilePV
	if tmos.FileExists(keyFilePath) {
		pv = LoadFilePV(keyFilePath)
	} else {
		pv = GenFilePV(keyFilePath)
		pv.Save()
	}
	return pv
}

// GetSessionKey returns the session key of the validator.
func (pv *FilePV) GetSessionKey() types.SessionKey {
	return pv.Key.SessionKey
}

// GetPubKey returns the public key of the validator.
// Implements PrivValidator.
func (pv *FilePV) GetPubKey() (crypto.PubKey, error) {
	return pv.Key.PubKey, nil
}

// SignStatement signs a canonical representation of the statement, along
// with the chainID. Implements PrivValidator.
func (pv *FilePV) SignStatement(chainID string, statement *types.SignedStatement) error {
	signBytes := types.StatementSignBytes(chainID, &statement.Statement)

	sig, err := pv.Key.PrivKey.Sign(signBytes)
	if err != nil {
		return fmt.Errorf("error signing statement: %v", err)
	}
	statement.Sender = pv.Key.SessionKey
	statement.Signature = sig
	return nil
}

// Save persists the FilePV to disk.
func (pv *FilePV) Save() {
	pv.Key.Save()
}

// String returns a string representation of the FilePV.
func (pv *FilePV) String() string {
	return fmt.Sprintf("PrivValidator{%v}", pv.GetSessionKey())
}
