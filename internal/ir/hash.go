package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes keep hashes of different record kinds from colliding.
// The version suffix leaves room for algorithm changes.
const (
	DomainBundle = "suiterun/bundle/v1"
	DomainCase   = "suiterun/case/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data).
// The null separator removes any ambiguity at the domain/data boundary.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BundleHash returns the content hash of a bundle file.
// The JSON is decoded and re-encoded canonically first, so formatting and
// key order do not affect the result.
func BundleHash(data []byte) (string, error) {
	v, err := UnmarshalValue(data)
	if err != nil {
		return "", fmt.Errorf("BundleHash: decode: %w", err)
	}
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("BundleHash: canonicalize: %w", err)
	}
	return hashWithDomain(DomainBundle, canonical), nil
}

// CaseID identifies a test case by module and name, independent of run.
// Used as the stable key when comparing runs in the history store.
func CaseID(module, name string) string {
	canonical, err := MarshalCanonical(Object{
		"module": String(module),
		"name":   String(name),
	})
	if err != nil {
		// Only strings go in; canonical encoding of strings cannot fail.
		panic(err)
	}
	return hashWithDomain(DomainCase, canonical)
}
