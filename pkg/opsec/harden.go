package opsec

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DisableCoreDumps prevents process memory from reaching disk through core
// files. It combines prctl PR_SET_DUMPABLE, RLIMIT_CORE, and coredump_filter;
// a dumped core would contain decrypted file plaintext and per-file keys.
func DisableCoreDumps() error {
	// PR_SET_DUMPABLE = 0 also restricts /proc/pid/mem access from other
	// processes.
	if err := unix.Prctl(unix.PR_SET_DUMPABLE, 0, 0, 0, 0); err != nil {
		return fmt.Errorf("opsec: failed to set PR_SET_DUMPABLE: %w", err)
	}

	rlimit := unix.Rlimit{Cur: 0, Max: 0}
	if err := unix.Setrlimit(unix.RLIMIT_CORE, &rlimit); err != nil {
		return fmt.Errorf("opsec: failed to set RLIMIT_CORE to 0: %w", err)
	}

	// Non-fatal: this file may not be writable in all contexts.
	_ = os.WriteFile("/proc/self/coredump_filter", []byte("0"), 0)

	return nil
}

// LockMemory locks all current and future pages into RAM so key material and
// transient plaintext cannot be written to swap. Requires CAP_IPC_LOCK or a
// sufficient RLIMIT_MEMLOCK; callers treat failure as advisory.
func LockMemory() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("opsec: mlockall failed: %w", err)
	}
	return nil
}
