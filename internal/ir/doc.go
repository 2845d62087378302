// Package ir provides the canonical value model used for hashing bundles.
//
// Bundles are plain JSON on disk, but their identity must not depend on
// whitespace, key order or Unicode normalization. Values are decoded into
// the sealed Value types defined here and re-encoded with MarshalCanonical
// (RFC 8785) before hashing.
//
// Constraints:
//   - No floats. Numbers are int64.
//   - No null in canonical output.
//   - Object keys sort by UTF-16 code units.
//
// ir imports nothing internal.
package ir
