package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// Action is what a signed URL permits.
type Action string

const (
	ActionUpload   Action = "upload"
	ActionDownload Action = "download"
)

var (
	ErrBadSignature = errors.New("signed url: bad signature")
	ErrExpired      = errors.New("signed url: expired")
	ErrWrongAction  = errors.New("signed url: wrong action")
)

// Grant is the signed content of a transfer URL. ExpiresAt is in unix milliseconds.
type Grant struct {
	Action    Action `json:"action"`
	ObjectKey string `json:"objectKey"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Signer issues and checks HMAC-SHA256 signed grants.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a signer whose grants live for ttl.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns the base64url payload and signature for a grant.
func (s *Signer) Sign(action Action, objectKey string) (payload, sig string) {
	grant := Grant{
		Action:    action,
		ObjectKey: objectKey,
		ExpiresAt: s.now().Add(s.ttl).UnixMilli(),
	}
	raw, _ := json.Marshal(grant)
	return base64.RawURLEncoding.EncodeToString(raw), s.mac(raw)
}

// Verify checks the signature, expiry and action of a payload.
func (s *Signer) Verify(payload, sig string, action Action) (*Grant, error) {
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrBadSignature
	}
	if !hmac.Equal([]byte(sig), []byte(s.mac(raw))) {
		return nil, ErrBadSignature
	}

	var grant Grant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return nil, ErrBadSignature
	}
	if s.now().UnixMilli() > grant.ExpiresAt {
		return nil, ErrExpired
	}
	if grant.Action != action {
		return nil, ErrWrongAction
	}
	return &grant, nil
}

func (s *Signer) mac(raw []byte) string {
	m := hmac.New(sha256.New, s.secret)
	m.Write(raw)
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}
