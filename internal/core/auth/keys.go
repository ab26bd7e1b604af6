package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"os"
)

// KeySource hands out the PEM-encoded RSA private key used for access tokens.
type KeySource interface {
	PrivateKeyPEM() ([]byte, error)
}

// FileKey reads the key from disk on each call, so a provisioned key can be
// replaced without a restart and a missing file only fails the current request.
type FileKey string

func (p FileKey) PrivateKeyPEM() ([]byte, error) { return os.ReadFile(string(p)) }

type StaticKey []byte

func (k StaticKey) PrivateKeyPEM() ([]byte, error) { return k, nil }

type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type JWKSet struct {
	Keys []JWK `json:"keys"`
}

// JWKS publishes the public half of the access-token key. kid is the
// RFC 7638 thumbprint unless keyID is set.
func (t *TokenIssuer) JWKS(keyID string) (JWKSet, error) {
	key, err := t.privateKey()
	if err != nil {
		return JWKSet{}, err
	}
	pub := key.PublicKey
	n := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())
	if keyID == "" {
		keyID = thumbprint(n, e)
	}
	return JWKSet{Keys: []JWK{{Kty: "RSA", Use: "sig", Alg: "RS256", Kid: keyID, N: n, E: e}}}, nil
}

func thumbprint(n, e string) string {
	// required members in lexicographic order
	b, _ := json.Marshal(struct {
		E   string `json:"e"`
		Kty string `json:"kty"`
		N   string `json:"n"`
	}{E: e, Kty: "RSA", N: n})
	sum := sha256.Sum256(b)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
