package keystore

import (
	"encoding/json"
	"github.com/kurumiimari/hammer/chain"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"io/ioutil"
	"os"
)

var (
	ErrKeyExists   = errors.New("key already exists")
	ErrKeyNotFound = errors.New("key not found")
)

type keyFile struct {
	Name    string          `json:"name"`
	Network string          `json:"network"`
	Box     json.RawMessage `json:"box"`
}

// Store keeps password-sealed mnemonics in a network directory.
type Store struct {
	dd      *DataDir
	network *chain.Network
}

func NewStore(dd *DataDir, network *chain.Network) (*Store, error) {
	if err := dd.EnsureNetwork(network.Name); err != nil {
		return nil, err
	}
	return &Store{
		dd:      dd,
		network: network,
	}, nil
}

func (s *Store) List() ([]string, error) {
	return s.dd.ListKeys(s.network.Name)
}

// Import seals mnemonic under password and writes it as name.
func (s *Store) Import(name, mnemonic, password string) error {
	if !bip39.IsMnemonicValid(mnemonic) {
		return errors.New("invalid mnemonic")
	}

	p := s.dd.keyPath(s.network.Name, name)
	if _, err := os.Stat(p); err == nil {
		return errors.Wrapf(ErrKeyExists, "key %s", name)
	}

	box, err := Seal([]byte(mnemonic), password)
	if err != nil {
		return errors.Wrap(err, "error sealing mnemonic")
	}
	boxJSON, err := json.Marshal(box)
	if err != nil {
		return errors.Wrap(err, "error encoding secret box")
	}
	out, err := json.MarshalIndent(&keyFile{
		Name:    name,
		Network: s.network.Name,
		Box:     boxJSON,
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error encoding key file")
	}
	if err := ioutil.WriteFile(p, out, 0o600); err != nil {
		return errors.Wrap(err, "error writing key file")
	}
	return nil
}

// Generate creates a fresh mnemonic and stores it as name.
func (s *Store) Generate(name, password string) (string, error) {
	_, mnemonic := chain.GenerateRandomSeed("")
	if err := s.Import(name, mnemonic, password); err != nil {
		return "", err
	}
	return mnemonic, nil
}

// Mnemonic opens the key file name with password.
func (s *Store) Mnemonic(name, password string) (string, error) {
	raw, err := ioutil.ReadFile(s.dd.keyPath(s.network.Name, name))
	if os.IsNotExist(err) {
		return "", errors.Wrapf(ErrKeyNotFound, "key %s", name)
	}
	if err != nil {
		return "", errors.Wrap(err, "error reading key file")
	}

	kf := new(keyFile)
	if err := json.Unmarshal(raw, kf); err != nil {
		return "", errors.Wrap(err, "error decoding key file")
	}
	if kf.Network != s.network.Name {
		return "", errors.Errorf("key %s belongs to network %s", name, kf.Network)
	}
	box, err := UnmarshalSecretBox(kf.Box)
	if err != nil {
		return "", err
	}
	pt, err := box.Open(password)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

func (s *Store) KeyRing(name, password string) (*chain.KeyRing, error) {
	mnemonic, err := s.Mnemonic(name, password)
	if err != nil {
		return nil, err
	}
	return chain.NewKeyRingFromMnemonic(mnemonic, "", s.network)
}
