package domain

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Credential is one backend access key bound to the environment slot it was
// read from. The secret never appears in String output.
type Credential struct {
	slot   string
	secret string
}

// NewCredential builds a Credential for the given slot.
func NewCredential(slot, secret string) Credential {
	return Credential{slot: slot, secret: secret}
}

// Slot returns the environment slot name the credential came from.
func (c Credential) Slot() string {
	return c.slot
}

// Secret returns the raw key. Only backend adapters should call it.
func (c Credential) Secret() string {
	return c.secret
}

func (c Credential) String() string {
	return c.slot + "=[redacted]"
}

// LoadCredentials reads each slot through getenv and keeps the non-empty ones
// in slot order.
func LoadCredentials(slots []string, getenv func(string) string) []Credential {
	var creds []Credential

	for _, slot := range slots {
		secret := strings.TrimSpace(getenv(slot))
		if secret == "" {
			continue
		}

		creds = append(creds, NewCredential(slot, secret))
	}

	return creds
}

// CredentialPool owns a fixed set of interchangeable credentials and rotates
// through them round-robin. It is safe for concurrent use.
type CredentialPool struct {
	creds     []Credential
	exhausted []atomic.Bool
	index     atomic.Uint64
}

// NewCredentialPool returns a pool over creds, or ErrNoCredentials when empty.
func NewCredentialPool(creds ...Credential) (*CredentialPool, error) {
	if len(creds) == 0 {
		return nil, ErrNoCredentials
	}

	return &CredentialPool{
		creds:     append([]Credential(nil), creds...),
		exhausted: make([]atomic.Bool, len(creds)),
	}, nil
}

// Size returns the number of credentials in the pool.
func (p *CredentialPool) Size() int {
	return len(p.creds)
}

// Next returns the current credential without advancing.
func (p *CredentialPool) Next() Credential {
	return p.creds[p.position(p.index.Load())]
}

// Rotate advances to the next credential and returns it.
func (p *CredentialPool) Rotate() Credential {
	return p.creds[p.position(p.index.Add(1))]
}

// MarkExhausted flags c as rate limited.
func (p *CredentialPool) MarkExhausted(c Credential) {
	if i := p.find(c); i >= 0 {
		p.exhausted[i].Store(true)
	}
}

// MarkHealthy clears the rate-limit flag of c.
func (p *CredentialPool) MarkHealthy(c Credential) {
	if i := p.find(c); i >= 0 {
		p.exhausted[i].Store(false)
	}
}

// IsExhausted reports whether every credential is currently flagged.
func (p *CredentialPool) IsExhausted() bool {
	for i := range p.exhausted {
		if !p.exhausted[i].Load() {
			return false
		}
	}

	return true
}

func (p *CredentialPool) String() string {
	return fmt.Sprintf("CredentialPool(size=%d)", len(p.creds))
}

func (p *CredentialPool) position(index uint64) int {
	return int(index % uint64(len(p.creds)))
}

func (p *CredentialPool) find(c Credential) int {
	for i, cred := range p.creds {
		if cred == c {
			return i
		}
	}

	return -1
}
