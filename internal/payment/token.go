package payment

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// ErrBadToken covers malformed, forged and foreign correlation tokens.
var ErrBadToken = errors.New("payment: invalid correlation token")

const tokenPrefix = "unlock"

// Claims is what a correlation token vouches for.
type Claims struct {
	MatchID uint64
	PayerID int64
	Nonce   string
}

// Signer issues and verifies correlation tokens of the form
// unlock:<matchId>:<payerId>:<nonce>.<mac> where mac is keyed BLAKE2b-256.
type Signer struct {
	key []byte
}

// NewSigner derives a 32-byte MAC key from secret.
func NewSigner(secret string) *Signer {
	sum := blake2b.Sum256([]byte(secret))
	return &Signer{key: sum[:]}
}

// Issue returns a token for payerID unlocking matchID.
func (s *Signer) Issue(matchID uint64, payerID int64) (string, error) {
	body := fmt.Sprintf("%s:%d:%d:%s", tokenPrefix, matchID, payerID, uuid.NewString())
	mac, err := s.mac(body)
	if err != nil {
		return "", err
	}
	return body + "." + mac, nil
}

// Parse verifies the MAC and returns the claims.
func (s *Signer) Parse(token string) (Claims, error) {
	body, mac, ok := strings.Cut(token, ".")
	if !ok {
		return Claims{}, ErrBadToken
	}
	want, err := s.mac(body)
	if err != nil {
		return Claims{}, err
	}
	if subtle.ConstantTimeCompare([]byte(mac), []byte(want)) != 1 {
		return Claims{}, ErrBadToken
	}

	parts := strings.Split(body, ":")
	if len(parts) != 4 || parts[0] != tokenPrefix {
		return Claims{}, ErrBadToken
	}
	matchID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return Claims{}, ErrBadToken
	}
	payerID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Claims{}, ErrBadToken
	}
	return Claims{MatchID: matchID, PayerID: payerID, Nonce: parts[3]}, nil
}

func (s *Signer) mac(body string) (string, error) {
	h, err := blake2b.New256(s.key)
	if err != nil {
		return "", err
	}
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil)), nil
}
