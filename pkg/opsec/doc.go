// Package opsec provides the defensive memory-hygiene primitives the shell
// relies on: deterministic shredding of secret buffers, scoped acquisition of
// decrypted plaintext, core dump prevention, and memory locking.
package opsec
