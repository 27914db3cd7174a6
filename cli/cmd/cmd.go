package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/jmes/pkg"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	stdioKey struct{}
	stdio    struct {
		in  io.Reader
		out io.Writer
	}
)

// WithStdio returns a new context.Context whose commands read stdin from in
// and write results to out. Nil arguments keep os.Stdin and os.Stdout.
func WithStdio(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, stdioKey{}, stdio{in: in, out: out})
}

func stdioFrom(ctx context.Context) (io.Reader, io.Writer) {
	s, _ := ctx.Value(stdioKey{}).(stdio)

	var (
		in  io.Reader = os.Stdin
		out io.Writer = os.Stdout
	)

	if s.in != nil {
		in = s.in
	}

	if s.out != nil {
		out = s.out
	}

	return in, out
}

// stdinSource is the special source name for reading from stdin.
const stdinSource = "-"

// source is one named input of a command.
type source struct {
	name string
	r    io.Reader
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens the files named by paths in order.
//
// Paths naming the same file (through symlinks or relative and absolute
// spellings) are opened once. Every "-" collapses into a single stdin source
// placed last. With no paths the only source is stdin.
//
// The returned func closes every opened file. A path that cannot be opened
// is an error wrapping [pkg.ErrReadInput].
func openSources(paths []string, stdin io.Reader) ([]source, func(), error) {
	if len(paths) == 0 {
		return []source{{name: stdinSource, r: stdin}}, func() {}, nil
	}

	var (
		srcs     []source
		files    []*os.File
		hasStdin bool
	)

	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	seen := make(map[fileKey]struct{})

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		file, dup, err := openUniqueFile(path, seen)
		if err != nil {
			closeAll()

			return nil, func() {}, pkg.ErrReadInput.Wrap(err)
		}

		if dup {
			continue
		}

		files = append(files, file)
		srcs = append(srcs, source{name: path, r: file})
	}

	if hasStdin {
		srcs = append(srcs, source{name: stdinSource, r: stdin})
	}

	return srcs, closeAll, nil
}

// openUniqueFile opens the file at path unless a file with the same device
// and inode is already in seen.
func openUniqueFile(
	path string,
	seen map[fileKey]struct{},
) (file *os.File, dup bool, err error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, false, err
	}

	file, err = os.Open(resolved)
	if err != nil {
		return nil, false, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()

		return nil, false, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			file.Close()

			return nil, true, nil
		}

		seen[key] = struct{}{}
	}

	return file, false, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}
