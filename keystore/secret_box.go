package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

const (
	Argon2IDAESGCM256BoxType = "argon2id-aes-gcm-256"
)

var ErrBadPassword = errors.New("invalid password")

type SecretBox interface {
	Open(password string) ([]byte, error)
}

// Argon2AESGCM256SecretBox seals a secret under an argon2id-derived
// AES-256-GCM key.
type Argon2AESGCM256SecretBox struct {
	Type    string `json:"type"`
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memory"`
	Threads uint8  `json:"threads"`
	Salt    []byte `json:"salt"`
	KeyLen  uint32 `json:"key_len"`
	Nonce   []byte `json:"nonce"`
	AD      []byte `json:"ad"`
	CT      []byte `json:"ct"`
}

func Seal(pt []byte, password string) (SecretBox, error) {
	box := &Argon2AESGCM256SecretBox{
		Type:    Argon2IDAESGCM256BoxType,
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		Salt:    RandBytes(32),
		KeyLen:  32,
		Nonce:   RandBytes(12),
		AD:      RandBytes(32),
	}

	gcm, err := box.cipher(password)
	if err != nil {
		return nil, err
	}
	box.CT = gcm.Seal(nil, box.Nonce, pt, box.AD)
	return box, nil
}

func (b *Argon2AESGCM256SecretBox) Open(password string) ([]byte, error) {
	gcm, err := b.cipher(password)
	if err != nil {
		return nil, err
	}
	pt, err := gcm.Open(nil, b.Nonce, b.CT, b.AD)
	if err != nil {
		return nil, ErrBadPassword
	}
	return pt, nil
}

func (b *Argon2AESGCM256SecretBox) cipher(password string) (cipher.AEAD, error) {
	key := argon2.IDKey(
		[]byte(password),
		b.Salt,
		b.Time,
		b.Memory,
		b.Threads,
		b.KeyLen,
	)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize block cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCM cipher")
	}
	return gcm, nil
}

func UnmarshalSecretBox(in []byte) (SecretBox, error) {
	tmp := struct {
		Type string `json:"type"`
	}{}
	if err := json.Unmarshal(in, &tmp); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling box type")
	}

	var box SecretBox
	switch tmp.Type {
	case Argon2IDAESGCM256BoxType:
		box = &Argon2AESGCM256SecretBox{}
	default:
		return nil, errors.Errorf("unknown secret box type %q", tmp.Type)
	}

	if err := json.Unmarshal(in, box); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling secret box")
	}
	return box, nil
}
