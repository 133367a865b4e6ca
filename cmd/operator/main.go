package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"brackish/internal/shared"
	"brackish/pkg/config"
	"brackish/pkg/opsec"
	"brackish/pkg/shell"
	"brackish/pkg/version"
)

func main() {
	profilePath := flag.String("profile", "", "path to a YAML operator profile")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg := config.DefaultConfig()
	if *profilePath != "" {
		loaded, err := config.LoadProfile(*profilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "operator: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if cfg.HardenProcess {
		// Advisory: a container or unprivileged user may deny either;
		// the shell still functions without them.
		_ = opsec.DisableCoreDumps()
		_ = opsec.LockMemory()
	}

	sh := shell.New(cfg, os.Stdout)

	fmt.Printf("brackish %s — %s@%s\n", version.Version, shared.Username(), shared.Hostname())
	fmt.Println("type 'help' for commands; the vfs: tree lives in memory only")

	// Ctrl+C cancels the running foreground command without leaving the
	// shell; background jobs are stopped with the kill verb or at exit.
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for {
		fmt.Print(sh.Prompt())
		if !scanner.Scan() {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()

		err := sh.Execute(ctx, scanner.Text())
		signal.Stop(sigCh)
		cancel()

		if errors.Is(err, shell.ErrExit) {
			return
		}
	}
}
