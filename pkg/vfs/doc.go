// Package vfs implements the encrypted in-memory virtual filesystem and its
// dual-namespace path resolver. Every file's bytes are encrypted at rest under
// a per-file key and nonce, secret material is shredded on deletion, and one
// resolution algorithm decides per token whether a path addresses the virtual
// tree or the real host filesystem.
//
// Erasure is best-effort defense-in-depth: it does not prevent copies retained
// by the garbage collector, prior stack frames, or swapped memory. The tree is
// never persisted; its lifetime equals process lifetime.
package vfs
