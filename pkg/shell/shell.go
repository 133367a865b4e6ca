// Package shell implements the interactive operator command layer: a verb
// registry dispatching over the virtual store and the real-filesystem
// adapter, with foreground execution and cancellable background jobs.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"brackish/pkg/config"
	"brackish/pkg/realfs"
	"brackish/pkg/vfs"
)

// ErrExit signals that the operator asked the shell to terminate.
var ErrExit = errors.New("shell: exit requested")

// Shell owns the session state: the store handle, the resolver, the current
// directory, and the background job table. One Shell serves one operator
// session; the store and adapter it wraps are safe for the concurrent use
// the job table makes of them.
type Shell struct {
	store    *vfs.Store
	resolver *vfs.Resolver
	expander *vfs.Expander
	disk     *realfs.FS
	cfg      *config.OperatorConfig
	jobs     *JobTable
	registry *Registry
	out      io.Writer

	mu  sync.Mutex
	cwd vfs.ResolvedPath
}

// New wires a session together. The initial current directory comes from the
// profile's StartDir token; an unresolvable token falls back to the virtual
// root.
func New(cfg *config.OperatorConfig, out io.Writer) *Shell {
	store := vfs.NewStore()
	resolver := vfs.NewResolver()
	disk := realfs.New()
	disk.Passes = cfg.SecureDeletePasses

	sh := &Shell{
		store:    store,
		resolver: resolver,
		expander: &vfs.Expander{Resolver: resolver, Store: store, Real: disk},
		disk:     disk,
		cfg:      cfg,
		jobs:     NewJobTable(),
		registry: NewRegistry(),
		out:      out,
		cwd:      vfs.VirtualRoot(),
	}
	if start, err := resolver.Resolve(vfs.VirtualRoot(), cfg.StartDir); err == nil {
		sh.cwd = start
	}
	sh.registry.RegisterDefaults()
	return sh
}

// Store exposes the session's virtual store.
func (sh *Shell) Store() *vfs.Store {
	return sh.store
}

// CWD returns the tagged current directory.
func (sh *Shell) CWD() vfs.ResolvedPath {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.cwd
}

func (sh *Shell) setCWD(p vfs.ResolvedPath) {
	sh.mu.Lock()
	sh.cwd = p
	sh.mu.Unlock()
}

// Prompt renders the operator prompt for the current directory.
func (sh *Shell) Prompt() string {
	return fmt.Sprintf("%s %s> ", sh.cfg.Prompt, sh.CWD().String())
}

// Execute parses one input line and runs it. A trailing "&" detaches the
// command onto a background job; everything else runs in the foreground
// under ctx, so the caller's Ctrl+C cancellation reaches the handler.
// Execute returns ErrExit when the operator ends the session; all other
// failures are reported to the output writer and swallowed.
func (sh *Shell) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	background := false
	if fields[len(fields)-1] == "&" {
		background = true
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 {
		return nil
	}
	verb, args := fields[0], fields[1:]

	if background {
		// Jobs outlive the foreground command's context; Ctrl+C only
		// cancels the foreground. The kill verb (or exit) stops jobs.
		job := sh.jobs.Run(context.Background(), strings.TrimSuffix(strings.TrimSpace(line), "&"), sh.cfg.JobTimeout,
			func(jobCtx context.Context) (string, error) {
				return sh.registry.Handle(jobCtx, sh, verb, args)
			})
		fmt.Fprintf(sh.out, "[%d] started\n", job.ID)
		return nil
	}

	output, err := sh.registry.Handle(ctx, sh, verb, args)
	if output != "" {
		fmt.Fprintln(sh.out, output)
	}
	if errors.Is(err, ErrExit) {
		return ErrExit
	}
	if err != nil {
		fmt.Fprintf(sh.out, "error: %v\n", err)
	}
	return nil
}

// expandArgs runs wildcard expansion over each argument against the current
// directory. Arguments that match nothing expand to nothing; the verb decides
// whether an empty argument list is an error.
func (sh *Shell) expandArgs(args []string) ([]string, error) {
	cwd := sh.CWD()
	expanded := make([]string, 0, len(args))
	for _, arg := range args {
		tokens, err := sh.expander.Expand(cwd, arg)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, tokens...)
	}
	return expanded, nil
}

// resolve resolves a single token against the current directory.
func (sh *Shell) resolve(token string) (vfs.ResolvedPath, error) {
	return sh.resolver.Resolve(sh.CWD(), token)
}
