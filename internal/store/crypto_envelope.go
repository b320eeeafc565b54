package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"dalkeystore/internal/util/memzero"
)

const (
	// The current supported version of the encrypted blob format stored on disk.
	envelopeFormatVersion = 1

	codecZstd = "zstd"

	// Decompressed snapshots never legitimately exceed this.
	maxPlaintext = 4 << 20
)

var (
	// Returned when the passphrase is incorrect or the ciphertext has been modified / corrupted.
	errWrongPassphrase = errors.New("wrong passphrase or corrupted snapshot")
	errEmptyPassphrase = errors.New("passphrase required")
)

// blob is the on-disk JSON structure holding the ciphertext and KDF parameters.
type blob struct {
	V      int    `json:"v"`
	Codec  string `json:"codec"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// seal compresses raw, derives a key from passphrase and encrypts the result
// into a JSON blob.
func seal(passphrase string, raw []byte, N, r, p int) ([]byte, error) {
	if passphrase == "" {
		return nil, errEmptyPassphrase
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	packed := enc.EncodeAll(raw, nil)
	_ = enc.Close()
	defer memzero.Zero(packed)

	var salt [16]byte
	if _, err := rand.Read(salt[:] /* #nosec G404 */); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; salt-bound key is unique per seal
	ct := aead.Seal(nil, nonce[:], packed, salt[:])

	return json.Marshal(blob{
		V:      envelopeFormatVersion,
		Codec:  codecZstd,
		Salt:   salt[:],
		N:      N,
		R:      r,
		P:      p,
		Cipher: ct,
	})
}

// open decrypts and decompresses the JSON blob using a key derived from
// passphrase.
func open(passphrase string, b []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, errEmptyPassphrase
	}
	var bl blob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, err
	}
	if bl.V > envelopeFormatVersion {
		return nil, fmt.Errorf("unsupported snapshot envelope version %d", bl.V)
	}
	if bl.Codec != codecZstd {
		return nil, fmt.Errorf("unsupported snapshot codec %q", bl.Codec)
	}

	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	packed, err := aead.Open(nil, nonce[:], bl.Cipher, bl.Salt)
	if err != nil {
		return nil, errWrongPassphrase
	}
	defer memzero.Zero(packed)

	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPlaintext))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(packed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	return raw, nil
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }
