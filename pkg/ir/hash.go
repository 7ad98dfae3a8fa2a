package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainState  = "storeplex/state/v1"
	DomainAction = "storeplex/action/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateHash computes a content-addressed fingerprint of a state tree.
// Two states hash equal exactly when their canonical JSON is equal, so the
// hash is stable across map iteration order and process restarts.
func StateHash(state IRValue) (string, error) {
	canonical, err := MarshalCanonical(state)
	if err != nil {
		return "", fmt.Errorf("StateHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// ActionHash fingerprints a dispatched action by type and payload.
func ActionHash(actionType string, payload IRValue) (string, error) {
	obj := IRObject{
		"type":    IRString(actionType),
		"payload": payload,
	}
	if payload == nil {
		obj["payload"] = IRNull{}
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ActionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAction, canonical), nil
}

// MustStateHash is like StateHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustStateHash(state IRValue) string {
	hash, err := StateHash(state)
	if err != nil {
		panic(err)
	}
	return hash
}
