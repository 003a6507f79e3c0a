package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainAction = "multistore/action/v1"
	DomainRound  = "multistore/round/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00}) // separator prevents domain/data boundary ambiguity
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ActionDigest computes the content digest of an action.
// Structurally equal actions share a digest; the flow token, not the digest,
// identifies a dispatch call.
func ActionDigest(action IRObject) (string, error) {
	canonical, err := MarshalCanonical(action)
	if err != nil {
		return "", fmt.Errorf("ActionDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAction, canonical), nil
}

// RoundID computes the identity of one round of a dispatch call.
func RoundID(flowToken string, attempt int, seq int64) string {
	obj := IRObject{
		"flow_token": IRString(flowToken),
		"attempt":    IRInt(attempt),
		"seq":        IRInt(seq),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		// Unreachable: every field is a string or int.
		panic(err)
	}
	return hashWithDomain(DomainRound, canonical)
}

