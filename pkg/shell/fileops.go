package shell

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"brackish/pkg/crypto"
	"brackish/pkg/opsec"
	"brackish/pkg/realfs"
	"brackish/pkg/vfs"
	"brackish/pkg/version"
)

func formatVirtual(info vfs.Info) string {
	flag := "-"
	name := info.Name
	if info.IsDir() {
		flag = "d"
		name += "/"
	}
	return fmt.Sprintf("%s %8d  %s  %-10s %s",
		flag, info.Size, info.Modified.Format("2006-01-02 15:04:05"), info.Owner, name)
}

func formatReal(entry realfs.FileEntry) string {
	name := entry.Name
	if entry.IsDir {
		name += "/"
	}
	return fmt.Sprintf("%s %8d  %s  %s", entry.Mode, entry.Size, entry.ModTime, name)
}

func leafOf(p vfs.ResolvedPath) string {
	if p.Namespace == vfs.NamespaceVirtual {
		_, leaf := vfs.SplitLeaf(p.Path)
		return leaf
	}
	if idx := strings.LastIndexAny(p.Path, `/\`); idx >= 0 {
		return p.Path[idx+1:]
	}
	return p.Path
}

// cmdLs lists each target, virtual or real, in the store's ordering. With no
// arguments it lists the current directory.
func cmdLs(ctx context.Context, sh *Shell, args []string) (string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	targets, err := sh.expandArgs(args)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return b.String(), err
		}
		resolved, err := sh.resolve(target)
		if err != nil {
			return b.String(), err
		}
		if len(targets) > 1 {
			fmt.Fprintf(&b, "%s:\n", resolved.String())
		}
		if resolved.Namespace == vfs.NamespaceVirtual {
			infos, err := sh.store.List(resolved.Path)
			if err != nil {
				return b.String(), err
			}
			for _, info := range infos {
				b.WriteString(formatVirtual(info))
				b.WriteByte('\n')
			}
			continue
		}
		entries, err := sh.disk.List(resolved.Path)
		if err != nil {
			return b.String(), err
		}
		for _, entry := range entries {
			b.WriteString(formatReal(entry))
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// cmdCat prints file contents. Virtual plaintext is decrypted fresh and
// shredded once copied into the output; the rendered string itself is beyond
// shredding, as all display output is.
func cmdCat(ctx context.Context, sh *Shell, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("shell: cat: missing path")
	}
	targets, err := sh.expandArgs(args)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		resolved, err := sh.resolve(target)
		if err != nil {
			return "", err
		}
		if resolved.Namespace == vfs.NamespaceVirtual {
			plaintext, err := sh.store.ReadFile(resolved.Path)
			if err != nil {
				return "", err
			}
			opsec.WithShredded(plaintext, func(p []byte) {
				b.Write(p)
			})
			continue
		}
		data, err := sh.disk.ReadFile(resolved.Path)
		if err != nil {
			return "", err
		}
		b.Write(data)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// cmdPut writes literal text to a file: put <path> <text...>.
func cmdPut(ctx context.Context, sh *Shell, args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("shell: put: usage: put <path> <text>")
	}
	resolved, err := sh.resolve(args[0])
	if err != nil {
		return "", err
	}
	data := []byte(strings.Join(args[1:], " "))
	size := len(data)

	if resolved.Namespace == vfs.NamespaceVirtual {
		if err := sh.store.WriteFile(resolved.Path, data, sh.cfg.Owner); err != nil {
			return "", err
		}
	} else if err := sh.disk.WriteFile(resolved.Path, data); err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %d bytes to %s", size, resolved.String()), nil
}

// cmdMkdir creates each named directory, intermediate segments included.
func cmdMkdir(ctx context.Context, sh *Shell, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("shell: mkdir: missing path")
	}
	for _, arg := range args {
		resolved, err := sh.resolve(arg)
		if err != nil {
			return "", err
		}
		if resolved.Namespace == vfs.NamespaceVirtual {
			if err := sh.store.Mkdir(resolved.Path, sh.cfg.Owner); err != nil {
				return "", err
			}
			continue
		}
		if err := sh.disk.Mkdir(resolved.Path); err != nil {
			return "", err
		}
	}
	return "", nil
}

// cmdRm deletes targets. -r recurses into directories; -s secure-deletes
// real files with multi-pass overwrite (ignored for virtual paths, whose
// secrets are shredded on every delete regardless).
func cmdRm(ctx context.Context, sh *Shell, args []string) (string, error) {
	recursive := false
	secure := false
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		switch args[0] {
		case "-r":
			recursive = true
		case "-s":
			secure = true
		case "-rs", "-sr":
			recursive = true
			secure = true
		default:
			return "", fmt.Errorf("shell: rm: unknown flag %s", args[0])
		}
		args = args[1:]
	}
	if len(args) == 0 {
		return "", fmt.Errorf("shell: rm: missing path")
	}

	targets, err := sh.expandArgs(args)
	if err != nil {
		return "", err
	}
	if len(targets) == 0 {
		return "", fmt.Errorf("shell: rm: no matches")
	}

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		resolved, err := sh.resolve(target)
		if err != nil {
			return "", err
		}
		if resolved.Namespace == vfs.NamespaceVirtual {
			if err := sh.store.Delete(resolved.Path, recursive); err != nil {
				return "", err
			}
			continue
		}
		switch {
		case secure && sh.disk.IsDir(resolved.Path):
			err = sh.disk.SecureDeleteDir(resolved.Path)
		case secure:
			err = sh.disk.SecureDelete(resolved.Path)
		default:
			err = sh.disk.Delete(resolved.Path, recursive)
		}
		if err != nil {
			return "", err
		}
	}
	return "", nil
}

// cmdCp copies one file between any pair of namespaces. A directory
// destination receives the source's leaf name.
func cmdCp(ctx context.Context, sh *Shell, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("shell: cp: usage: cp <src> <dst>")
	}
	src, err := sh.resolve(args[0])
	if err != nil {
		return "", err
	}
	dst, err := sh.resolve(args[1])
	if err != nil {
		return "", err
	}
	return copyFile(sh, src, dst)
}

// cmdUpload pulls a real file into the virtual tree: upload <real-src> <vfs-dst>.
func cmdUpload(ctx context.Context, sh *Shell, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("shell: upload: usage: upload <real-src> <vfs-dst>")
	}
	src, err := sh.resolve(args[0])
	if err != nil {
		return "", err
	}
	dst, err := sh.resolve(args[1])
	if err != nil {
		return "", err
	}
	if src.Namespace != vfs.NamespaceReal || dst.Namespace != vfs.NamespaceVirtual {
		return "", fmt.Errorf("shell: upload: source must be real, destination virtual")
	}
	return copyFile(sh, src, dst)
}

// cmdDownload stages a virtual file onto disk: download <vfs-src> <real-dst>.
func cmdDownload(ctx context.Context, sh *Shell, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("shell: download: usage: download <vfs-src> <real-dst>")
	}
	src, err := sh.resolve(args[0])
	if err != nil {
		return "", err
	}
	dst, err := sh.resolve(args[1])
	if err != nil {
		return "", err
	}
	if src.Namespace != vfs.NamespaceVirtual || dst.Namespace != vfs.NamespaceReal {
		return "", fmt.Errorf("shell: download: source must be virtual, destination real")
	}
	return copyFile(sh, src, dst)
}

func copyFile(sh *Shell, src, dst vfs.ResolvedPath) (string, error) {
	// Destination directory: copy under the source's leaf name.
	if dst.Namespace == vfs.NamespaceVirtual {
		if info, err := sh.store.Stat(dst.Path); err == nil && info.IsDir() {
			dst = dst.Child(leafOf(src))
		}
	} else if sh.disk.IsDir(dst.Path) {
		dst = dst.Child(leafOf(src))
	}

	var data []byte
	var err error
	fromVirtual := src.Namespace == vfs.NamespaceVirtual
	if fromVirtual {
		data, err = sh.store.ReadFile(src.Path)
	} else {
		data, err = sh.disk.ReadFile(src.Path)
	}
	if err != nil {
		return "", err
	}

	if dst.Namespace == vfs.NamespaceVirtual {
		// WriteFile takes ownership of data and shreds it.
		if err := sh.store.WriteFile(dst.Path, data, sh.cfg.Owner); err != nil {
			return "", err
		}
	} else {
		err := sh.disk.WriteFile(dst.Path, data)
		if fromVirtual {
			// The decrypted copy leaves memory even though a plaintext
			// copy now intentionally exists on disk.
			opsec.Shred(data)
		}
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("copied %s -> %s", src.String(), dst.String()), nil
}

// cmdCd changes the current directory after verifying the target exists and
// is a directory in its namespace.
func cmdCd(ctx context.Context, sh *Shell, args []string) (string, error) {
	token := vfs.Scheme
	if len(args) > 0 {
		token = args[0]
	}
	resolved, err := sh.resolve(token)
	if err != nil {
		return "", err
	}
	if resolved.Namespace == vfs.NamespaceVirtual {
		info, err := sh.store.Stat(resolved.Path)
		if err != nil {
			return "", err
		}
		if !info.IsDir() {
			return "", fmt.Errorf("shell: cd: %s: %w", resolved.String(), vfs.ErrTypeConflict)
		}
	} else if !sh.disk.IsDir(resolved.Path) {
		return "", fmt.Errorf("shell: cd: %s: %w", resolved.String(), vfs.ErrNotFound)
	}
	sh.setCWD(resolved)
	return "", nil
}

func cmdPwd(ctx context.Context, sh *Shell, args []string) (string, error) {
	return sh.CWD().String(), nil
}

// cmdInfo prints one entry's metadata snapshot.
func cmdInfo(ctx context.Context, sh *Shell, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("shell: info: missing path")
	}
	targets, err := sh.expandArgs(args)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, target := range targets {
		resolved, err := sh.resolve(target)
		if err != nil {
			return "", err
		}
		if resolved.Namespace == vfs.NamespaceVirtual {
			info, err := sh.store.Stat(resolved.Path)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%s\n  kind: %s\n  owner: %s\n  size: %d\n  modified: %s\n  children: %d\n",
				resolved.String(), info.Kind, info.Owner, info.Size,
				info.Modified.Format("2006-01-02 15:04:05"), info.Children)
			continue
		}
		entry, err := sh.disk.Stat(resolved.Path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s\n  mode: %s\n  size: %d\n  modified: %s\n",
			resolved.String(), entry.Mode, entry.Size, entry.ModTime)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// cmdExport seals a virtual file under a passphrase and writes the blob to a
// real path, in the format the companion decrypt script understands.
func cmdExport(ctx context.Context, sh *Shell, args []string) (string, error) {
	if len(args) != 3 {
		return "", fmt.Errorf("shell: vfs-export: usage: vfs-export <vfs-src> <real-dst> <passphrase>")
	}
	src, err := sh.resolve(args[0])
	if err != nil {
		return "", err
	}
	dst, err := sh.resolve(args[1])
	if err != nil {
		return "", err
	}
	if src.Namespace != vfs.NamespaceVirtual || dst.Namespace != vfs.NamespaceReal {
		return "", fmt.Errorf("shell: vfs-export: source must be virtual, destination real")
	}

	plaintext, err := sh.store.ReadFile(src.Path)
	if err != nil {
		return "", err
	}
	blob, sealErr := crypto.SealWithPassphrase(args[2], plaintext)
	opsec.Shred(plaintext)
	if sealErr != nil {
		return "", sealErr
	}
	if err := sh.disk.WriteFile(dst.Path, blob); err != nil {
		return "", err
	}
	return fmt.Sprintf("exported %s -> %s (%d bytes sealed)", src.String(), dst.Path, len(blob)), nil
}

// cmdImport opens a passphrase-sealed blob from disk and stores the
// plaintext into the virtual tree.
func cmdImport(ctx context.Context, sh *Shell, args []string) (string, error) {
	if len(args) != 3 {
		return "", fmt.Errorf("shell: vfs-import: usage: vfs-import <real-src> <vfs-dst> <passphrase>")
	}
	src, err := sh.resolve(args[0])
	if err != nil {
		return "", err
	}
	dst, err := sh.resolve(args[1])
	if err != nil {
		return "", err
	}
	if src.Namespace != vfs.NamespaceReal || dst.Namespace != vfs.NamespaceVirtual {
		return "", fmt.Errorf("shell: vfs-import: source must be real, destination virtual")
	}

	blob, err := sh.disk.ReadFile(src.Path)
	if err != nil {
		return "", err
	}
	plaintext, err := crypto.OpenWithPassphrase(args[2], blob)
	if err != nil {
		return "", err
	}
	// WriteFile shreds the decrypted buffer after re-encrypting it.
	if err := sh.store.WriteFile(dst.Path, plaintext, sh.cfg.Owner); err != nil {
		return "", err
	}
	return fmt.Sprintf("imported %s -> %s", src.Path, dst.String()), nil
}

// cmdStomp copies timestamps from a reference file onto a real target.
func cmdStomp(ctx context.Context, sh *Shell, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("shell: stomp: usage: stomp <target> <reference>")
	}
	target, err := sh.resolve(args[0])
	if err != nil {
		return "", err
	}
	reference, err := sh.resolve(args[1])
	if err != nil {
		return "", err
	}
	if target.Namespace != vfs.NamespaceReal || reference.Namespace != vfs.NamespaceReal {
		return "", fmt.Errorf("shell: stomp: both paths must be real")
	}
	if err := sh.disk.Timestomp(target.Path, reference.Path); err != nil {
		return "", err
	}
	return "", nil
}

// cmdJobs reports finished jobs (and reaps them) followed by running ones.
func cmdJobs(ctx context.Context, sh *Shell, args []string) (string, error) {
	var b strings.Builder
	for _, job := range sh.jobs.Reap() {
		output, err := job.Result()
		if err != nil {
			fmt.Fprintf(&b, "[%d] failed: %s: %v\n", job.ID, job.Desc, err)
		} else {
			fmt.Fprintf(&b, "[%d] done: %s\n", job.ID, job.Desc)
		}
		if output != "" {
			b.WriteString(output)
			b.WriteByte('\n')
		}
	}
	for _, job := range sh.jobs.Snapshot() {
		fmt.Fprintf(&b, "[%d] running: %s (since %s)\n", job.ID, job.Desc, job.Started.Format("15:04:05"))
	}
	if b.Len() == 0 {
		return "no jobs", nil
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// cmdKill cancels a background job by ID.
func cmdKill(ctx context.Context, sh *Shell, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("shell: kill: usage: kill <job-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("shell: kill: bad job id %q", args[0])
	}
	if err := sh.jobs.Kill(id); err != nil {
		return "", err
	}
	return fmt.Sprintf("[%d] cancelled", id), nil
}

func cmdVersion(ctx context.Context, sh *Shell, args []string) (string, error) {
	return version.String(), nil
}

func cmdHelp(ctx context.Context, sh *Shell, args []string) (string, error) {
	return strings.TrimSpace(`
ls [path...]                      list directory or file (wildcards ok)
cat <path...>                     print file contents
put <path> <text...>              write literal text to a file
mkdir <path...>                   create directories
rm [-r] [-s] <path...>            delete; -r recursive, -s secure (real fs)
cp <src> <dst>                    copy across or within namespaces
upload <real-src> <vfs-dst>       pull a host file into the encrypted tree
download <vfs-src> <real-dst>     stage a tree file onto the host
cd [path]                         change directory (default: vfs root)
pwd                               print current directory
info <path...>                    entry metadata
vfs-export <src> <dst> <pass>     seal virtual file to disk under passphrase
vfs-import <src> <dst> <pass>     load sealed blob into the virtual tree
stomp <target> <reference>        copy timestamps onto a real file
jobs                              list background jobs; collect finished
kill <job-id>                     cancel a background job
version                           build information
exit                              leave the shell

Paths: vfs:/... addresses the encrypted in-memory tree; drive-letter, UNC,
leading-separator and ~ paths address the host filesystem; anything else is
relative to the current directory. Append & to run a command in the
background.`), nil
}

func cmdExit(ctx context.Context, sh *Shell, args []string) (string, error) {
	sh.jobs.CancelAll()
	return "", ErrExit
}
