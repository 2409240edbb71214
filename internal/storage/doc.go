// Package storage persists the session credential between runs.
//
//   - store.go: the CredentialStore contract and the stored Record
//   - badger.go: durable store on Badger v3 with per-entry TTL
//   - seal.go: ChaCha20-Poly1305 sealing of stored values, keys from HKDF
//   - memory.go: in-process store, used in tests
//
// A store holds at most one credential. Expiry is checked against an
// injected clock so it can be tested without waiting.
package storage
