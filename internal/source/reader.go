// Package source reads review records from a Yelp-style review dump: one JSON
// object per line, optionally gzip or zstd compressed, or piped through an
// external decompressor such as zcat.
package source

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"

	"github.com/flab03/ymatch-analysis/internal/matcher"
)

// maxLineSize bounds a single review line. Review text is usually a few KB.
const maxLineSize = 16 * 1024 * 1024

// Options selects the review corpus and how to decompress it.
type Options struct {
	// Path is the corpus file. "-" reads Stdin.
	Path string
	// Decompressor, when set, is run as "<Decompressor> <Path>" and its
	// stdout is read instead of the file. For Path "-" the path argument is
	// omitted and the process reads Stdin.
	Decompressor string
	// Stdin replaces os.Stdin for Path "-".
	Stdin io.Reader
}

// rawReview is the subset of a review line the matcher needs.
type rawReview struct {
	Type       string   `json:"type" validate:"required,eq=review"`
	BusinessID string   `json:"business_id" validate:"required"`
	UserID     string   `json:"user_id" validate:"required"`
	Stars      *float64 `json:"stars" validate:"required"`
}

// Reader yields validated review records one line at a time.
type Reader struct {
	scanner  *bufio.Scanner
	counter  *countingReader
	size     int64
	line     int
	validate *validator.Validate
	closers  []func() error

	cmd    *exec.Cmd
	stderr bytes.Buffer
	eof    bool
}

// Open opens the corpus described by opts.
func Open(ctx context.Context, opts Options) (*Reader, error) {
	if opts.Path == "" {
		return nil, eris.New("no review corpus configured (set --input or input.path)")
	}

	r := &Reader{validate: validator.New(validator.WithRequiredStructEnabled())}

	if opts.Decompressor != "" {
		if err := r.openCommand(ctx, opts); err != nil {
			return nil, err
		}
	} else if err := r.openNative(opts); err != nil {
		r.Close()
		return nil, err
	}

	r.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return r, nil
}

// openCommand streams the corpus through an external decompressor process.
func (r *Reader) openCommand(ctx context.Context, opts Options) error {
	fields := strings.Fields(opts.Decompressor)
	if len(fields) == 0 {
		return eris.New("source: empty decompressor command")
	}
	args := fields[1:]
	if opts.Path != "-" {
		args = append(args, opts.Path)
	}
	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdin = stdinOf(opts)
	cmd.Stderr = &r.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return eris.Wrapf(err, "source: pipe %s", fields[0])
	}
	if err := cmd.Start(); err != nil {
		return eris.Wrapf(err, "source: start %s", fields[0])
	}

	r.cmd = cmd
	r.counter = &countingReader{r: stdout}
	r.scanner = bufio.NewScanner(r.counter)
	return nil
}

// openNative opens the file and picks a decoder from its extension.
// Progress counts bytes of the file itself, compressed or not.
func (r *Reader) openNative(opts Options) error {
	var in io.Reader
	if opts.Path == "-" {
		in = stdinOf(opts)
	} else {
		f, err := os.Open(opts.Path)
		if err != nil {
			return eris.Wrapf(err, "source: open %s", opts.Path)
		}
		r.closers = append(r.closers, f.Close)
		if info, err := f.Stat(); err == nil {
			r.size = info.Size()
		}
		in = f
	}
	r.counter = &countingReader{r: in}

	var data io.Reader
	switch strings.ToLower(filepath.Ext(opts.Path)) {
	case ".gz":
		gz, err := gzip.NewReader(r.counter)
		if err != nil {
			return eris.Wrapf(err, "source: gzip header of %s", opts.Path)
		}
		r.closers = append(r.closers, gz.Close)
		data = gz
	case ".zst":
		zr, err := zstd.NewReader(r.counter)
		if err != nil {
			return eris.Wrapf(err, "source: zstd reader for %s", opts.Path)
		}
		r.closers = append(r.closers, func() error { zr.Close(); return nil })
		data = zr
	default:
		data = r.counter
	}

	r.scanner = bufio.NewScanner(data)
	return nil
}

// stdinOf returns the reader behind Path "-", or nil for a file path.
func stdinOf(opts Options) io.Reader {
	if opts.Path != "-" {
		return nil
	}
	if opts.Stdin != nil {
		return opts.Stdin
	}
	return os.Stdin
}

// Next returns the next review record, or io.EOF after the last one.
// Malformed lines return a *RecordError.
func (r *Reader) Next() (matcher.Record, error) {
	for r.scanner.Scan() {
		r.line++
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return r.decode(line)
	}
	if err := r.scanner.Err(); err != nil {
		return matcher.Record{}, eris.Wrapf(err, "source: read line %d", r.line+1)
	}
	r.eof = true
	return matcher.Record{}, io.EOF
}

func (r *Reader) decode(line []byte) (matcher.Record, error) {
	var raw rawReview
	if err := json.Unmarshal(line, &raw); err != nil {
		return matcher.Record{}, &RecordError{Line: r.line, Err: err}
	}
	if err := r.validate.Struct(&raw); err != nil {
		return matcher.Record{}, &RecordError{Line: r.line, Err: describeValidation(err)}
	}
	return matcher.Record{
		BusinessID: raw.BusinessID,
		UserID:     raw.UserID,
		Stars:      *raw.Stars,
	}, nil
}

// Line returns the number of lines consumed so far.
func (r *Reader) Line() int {
	return r.line
}

// BytesRead returns the number of input bytes consumed so far.
func (r *Reader) BytesRead() int64 {
	return r.counter.n
}

// Size returns the input size in bytes, or 0 when unknown.
func (r *Reader) Size() int64 {
	return r.size
}

// Close releases the input. For an external decompressor the process exit
// status is checked only if the whole stream was read.
func (r *Reader) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && firstErr == nil {
			firstErr = eris.Wrap(err, "source: close")
		}
	}
	r.closers = nil

	if r.cmd != nil {
		cmd := r.cmd
		r.cmd = nil
		if !r.eof && cmd.Process != nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			return firstErr
		}
		if err := cmd.Wait(); err != nil && firstErr == nil {
			msg := strings.TrimSpace(r.stderr.String())
			firstErr = eris.Wrapf(err, "source: %s failed: %s", cmd.Path, msg)
		}
	}
	return firstErr
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
