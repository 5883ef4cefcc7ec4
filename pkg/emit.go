package jackc

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// IRBuffer accumulates the VM IR lines generated for a single class. Discard marks a buffer
// whose source class should never reach disk — the mechanism by which JackOS standard-library
// classes populate program scope for resolution purposes without ever producing a .vm file,
// a single flag in place of the source compiler's create-then-delete dance.
type IRBuffer struct {
	Class   string
	Lines   []string
	Discard bool
}

// NewIRBuffer returns an empty buffer for the given class name.
func NewIRBuffer(class string) *IRBuffer {
	return &IRBuffer{Class: class}
}

// Emit appends one already-formatted IR line.
func (b *IRBuffer) Emit(line string) {
	b.Lines = append(b.Lines, line)
}

// Len returns the number of lines currently buffered.
func (b *IRBuffer) Len() int {
	return len(b.Lines)
}

// Emitter writes a batch of [IRBuffer]s to disk, one .vm file per non-discarded buffer. File
// writes happen only after every class has been parsed and the resolver's patch pass has run,
// per the no-partial-output contract; writes are independent across files so they fan out
// across an errgroup.Group rather than running strictly sequentially.
type Emitter struct {
	dir string
}

// NewEmitter returns an [Emitter] that writes into dir.
func NewEmitter(dir string) *Emitter {
	return &Emitter{dir: dir}
}

// WriteAll writes every non-discarded buffer to "<dir>/<Class>.vm", one instruction per line
// with a trailing newline, concurrently. The first write error is returned once every write
// has completed or failed.
func (e *Emitter) WriteAll(buffers []*IRBuffer) error {
	var g errgroup.Group

	for _, b := range buffers {
		if b.Discard {
			continue
		}

		b := b
		g.Go(func() error {
			return e.writeOne(b)
		})
	}

	return g.Wait()
}

func (e *Emitter) writeOne(b *IRBuffer) error {
	path := filepath.Join(e.dir, b.Class+".vm")

	var sb strings.Builder
	for _, line := range b.Lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	return nil
}
