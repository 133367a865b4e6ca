// Package shared provides small host-identity helpers used by the shell
// binary for its banner and prompt.
package shared

import (
	"os"
	"os/user"
)

// Hostname returns the system hostname, or "" on error.
func Hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}

// Username returns the current user's name, or "" on error.
func Username() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}
