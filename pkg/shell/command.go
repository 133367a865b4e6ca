package shell

import (
	"context"
	"fmt"
	"sync"
)

// HandlerFunc is the signature for all verb handlers. It returns printable
// output for the operator terminal and an optional error; handlers never
// print directly.
type HandlerFunc func(ctx context.Context, sh *Shell, args []string) (string, error)

// Registry dispatches verbs to registered handler functions.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRegistry creates an empty verb registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Register adds a handler for the given verb. Safe for concurrent use.
func (r *Registry) Register(verb string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[verb] = fn
}

// Handle dispatches a parsed command line to its handler.
func (r *Registry) Handle(ctx context.Context, sh *Shell, verb string, args []string) (string, error) {
	r.mu.RLock()
	fn, ok := r.handlers[verb]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("shell: unknown command %q", verb)
	}
	return fn(ctx, sh, args)
}

// RegisterDefaults registers the built-in verb set.
func (r *Registry) RegisterDefaults() {
	r.Register("ls", cmdLs)
	r.Register("cat", cmdCat)
	r.Register("put", cmdPut)
	r.Register("mkdir", cmdMkdir)
	r.Register("rm", cmdRm)
	r.Register("cp", cmdCp)
	r.Register("upload", cmdUpload)
	r.Register("download", cmdDownload)
	r.Register("cd", cmdCd)
	r.Register("pwd", cmdPwd)
	r.Register("info", cmdInfo)
	r.Register("vfs-export", cmdExport)
	r.Register("vfs-import", cmdImport)
	r.Register("stomp", cmdStomp)
	r.Register("jobs", cmdJobs)
	r.Register("kill", cmdKill)
	r.Register("version", cmdVersion)
	r.Register("help", cmdHelp)
	r.Register("exit", cmdExit)
}
