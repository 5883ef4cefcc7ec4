package jackc

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Diagnostics is the ambient structured-logging sink for compiler progress: files tokenized,
// classes parsed, obligations recorded, resolver pass summaries. It never carries the
// required Error/Warning diagnostic text of spec section 7 — those are produced by
// [CompileError]/[CompileWarning] and printed verbatim regardless of verbosity.
type Diagnostics struct {
	log *logrus.Logger
}

// NewDiagnostics returns a [Diagnostics] writing to w at the given verbosity. verbose raises
// the level to Debug; otherwise only Info and above are emitted.
func NewDiagnostics(w io.Writer, verbose bool) *Diagnostics {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	return &Diagnostics{log: log}
}

// Tokenizing logs the start of lexing for a file.
func (d *Diagnostics) Tokenizing(file string) {
	d.log.WithField("file", file).Debug("tokenizing")
}

// Parsed logs that a class finished parsing, with the number of IR lines and obligations
// recorded so far it produced.
func (d *Diagnostics) Parsed(class string, irLines, obligations int) {
	d.log.WithFields(logrus.Fields{
		"class":       class,
		"ir_lines":    irLines,
		"obligations": obligations,
	}).Debug("parsed class")
}

// Resolving logs the start of the whole-program resolver pass.
func (d *Diagnostics) Resolving(obligations int) {
	d.log.WithField("obligations", obligations).Info("resolving program")
}

// Resolved logs the outcome of the resolver pass.
func (d *Diagnostics) Resolved(errors, warnings int) {
	d.log.WithFields(logrus.Fields{
		"errors":   errors,
		"warnings": warnings,
	}).Info("resolved program")
}

// Emitting logs the start of the emit phase.
func (d *Diagnostics) Emitting(files int) {
	d.log.WithField("files", files).Debug("emitting VM files")
}

// SymbolTable logs a scope's accumulated symbol table as it is popped, the verbose-only
// equivalent of the source compiler's PrintSymbolTable dev dump. scope names the class or
// "Class.subroutine" whose table is being dumped; level is "class" or "subroutine".
func (d *Diagnostics) SymbolTable(scope, level, dump string) {
	d.log.WithFields(logrus.Fields{
		"scope": scope,
		"level": level,
	}).Debug("symbol table:\n" + dump)
}
