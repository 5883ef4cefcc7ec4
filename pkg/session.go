package jackc

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Config holds everything a [Session] needs, assembled by cmd/jackc from flags (or by a test
// directly).
type Config struct {
	// Input is a single .jack file or a directory of them.
	Input string
	// OutputDir receives the generated .vm files; defaults to Input's directory (or Input
	// itself, if it's a directory).
	OutputDir string
	// JackOSDir, if non-empty, is ingested into program scope before user files are parsed,
	// then discarded: its declarations become resolvable but its own IR never reaches disk.
	JackOSDir string
	// WarningsAsError promotes every [CompileWarning] the [Resolver] raises to a fatal
	// [CompileError].
	WarningsAsError bool
	// Verbose raises [Diagnostics] to debug level.
	Verbose bool
}

// Session orchestrates one whole-program compilation: lex and parse every class (JackOS
// first, if configured, then every user file), resolve the program as a whole, and emit every
// surviving buffer. It mirrors the teacher compiler's single entry-point Compile method,
// generalized from one file to a whole program.
type Session struct {
	cfg   Config
	diag  *Diagnostics
	scope *ScopeStack
	work  *WorkList
}

// NewSession returns a Session over cfg, logging to w.
func NewSession(cfg Config, w io.Writer) *Session {
	return &Session{
		cfg:   cfg,
		diag:  NewDiagnostics(w, cfg.Verbose),
		scope: NewScopeStack(),
		work:  NewWorkList(),
	}
}

// Result is what a successful [Session.Run] produces: every warning the resolver raised across
// the whole program, in the order it raised them. The warnings each [Parser] records itself
// (see [Parser.Warnings]) are not included.
type Result struct {
	Warnings []*CompileWarning
}

// Run lexes, parses, resolves, and emits the whole program. It returns as soon as any phase
// produces a fatal [CompileError].
func (s *Session) Run() (*Result, error) {
	if s.cfg.JackOSDir != "" {
		if err := s.ingestJackOS(); err != nil {
			return nil, errors.Wrap(err, "ingesting JackOS")
		}
	}

	files, err := s.sourceFiles(s.cfg.Input)
	if err != nil {
		return nil, errors.Wrap(err, "listing source files")
	}

	var buffers []*IRBuffer
	for _, f := range files {
		buf, err := s.parseFile(f)
		if err != nil {
			return nil, err
		}

		buffers = append(buffers, buf)
	}

	s.diag.Resolving(len(s.work.All()))
	resolver := NewResolver(s.scope, s.work, buffers, s.cfg.WarningsAsError)
	warnings, err := resolver.Resolve()
	if err != nil {
		return nil, err
	}
	s.diag.Resolved(0, len(warnings))

	outDir := s.outputDir()
	s.diag.Emitting(len(buffers))
	if err := NewEmitter(outDir).WriteAll(buffers); err != nil {
		return nil, errors.Wrap(err, "writing VM output")
	}

	return &Result{Warnings: warnings}, nil
}

// parseFile lexes and parses one class, logging progress, and returns its accumulated buffer.
func (s *Session) parseFile(path string) (buf *IRBuffer, err error) {
	s.diag.Tokenizing(path)

	lexer, ferr := NewLexer(path)
	if ferr != nil {
		return nil, errors.Wrapf(ferr, "opening %s", path)
	}

	p := NewParser(lexer, s.scope, s.work, s.diag)
	buf, err = p.ParseClass()
	if err != nil {
		return nil, err
	}

	s.diag.Parsed(buf.Class, buf.Len(), len(s.work.All()))
	return buf, nil
}

// ingestJackOS parses every .jack file under JackOSDir so their classes and subroutines enter
// program scope, then discards both the obligations they themselves recorded (assumed to be
// internally consistent) and the IR they produced (never written to disk) — a single Discard
// flag in place of the source compiler's create-then-delete buffer dance.
func (s *Session) ingestJackOS() error {
	files, err := s.sourceFiles(s.cfg.JackOSDir)
	if err != nil {
		return err
	}

	for _, f := range files {
		buf, err := s.parseFile(f)
		if err != nil {
			return err
		}

		buf.Discard = true
	}

	s.work.Reset()
	return nil
}

// sourceFiles returns every .jack file at path, sorted, or path itself if it already names
// one.
func (s *Session) sourceFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jack" {
			continue
		}

		out = append(out, filepath.Join(path, e.Name()))
	}

	sort.Strings(out)
	return out, nil
}

func (s *Session) outputDir() string {
	if s.cfg.OutputDir != "" {
		return s.cfg.OutputDir
	}

	info, err := os.Stat(s.cfg.Input)
	if err == nil && info.IsDir() {
		return s.cfg.Input
	}

	return filepath.Dir(s.cfg.Input)
}
