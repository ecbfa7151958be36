package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arr-ai/descent/gotree"
	"github.com/arr-ai/descent/meta"
)

// ErrorKind classifies parse failures by how they propagate.
type ErrorKind int

const (
	// Mismatch is a soft failure: a symbol did not match here.
	Mismatch ErrorKind = iota
	// EmptyMatch means a pattern matched zero bytes.
	EmptyMatch
	// CustomThrow is an author-declared failure. It skips the remaining rules of its
	// variant but may still be recovered by the rule that raised it.
	CustomThrow
	// RecursionDetected means a variant was re-entered at the same input position.
	RecursionDetected
	// VariantExhausted means every rule of a variant failed softly.
	VariantExhausted
	// StepLimitExceeded means the per-call step budget ran out.
	StepLimitExceeded
	// InvalidTransform means a rule transform returned a node whose raw text or range
	// differs from the match it was given.
	InvalidTransform
)

var kindNames = map[ErrorKind]string{
	Mismatch:          "mismatch",
	EmptyMatch:        "empty match",
	CustomThrow:       "custom throw",
	RecursionDetected: "recursion detected",
	VariantExhausted:  "variant exhausted",
	StepLimitExceeded: "step limit exceeded",
	InvalidTransform:  "invalid transform",
}

func (k ErrorKind) String() string {
	if name, has := kindNames[k]; has {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// soft reports whether a failure of this kind lets the engine try something else:
// skip an optional unit, stop a greedy repetition or try the next rule.
func (k ErrorKind) soft() bool {
	switch k {
	case Mismatch, EmptyMatch, VariantExhausted:
		return true
	}
	return false
}

// recoverable reports whether a rule's recovery matcher may replace the failure.
func (k ErrorKind) recoverable() bool {
	return k.soft() || k == CustomThrow
}

// ParseError is a failure to match input.
type ParseError struct {
	Kind     ErrorKind
	Msg      string
	Variant  string        // innermost variant being parsed, if any
	Offset   int           // byte offset at which the failing attempt started
	Furthest int           // furthest offset reached by this attempt or any nested attempt
	Location meta.Location // zero until the error reaches the top of a parse
	children []error
}

func newParseError(kind ErrorKind, offset int, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Kind:     kind,
		Msg:      fmt.Sprintf(format, args...),
		Offset:   offset,
		Furthest: offset,
	}
}

func (e *ParseError) withChildren(children ...error) *ParseError {
	e.children = children
	for _, child := range children {
		var pe *ParseError
		if errors.As(child, &pe) && pe.Furthest > e.Furthest {
			e.Furthest = pe.Furthest
		}
	}
	return e
}

// Children returns the failures that led to this one.
func (e *ParseError) Children() []error {
	return append([]error(nil), e.children...)
}

func (e *ParseError) Error() string {
	if len(e.children) == 0 {
		return e.summary()
	}
	tree := gotree.New(e.summary())
	for _, child := range e.children {
		walkErrors(tree, child)
	}
	return tree.Print()
}

func walkErrors(parent gotree.Tree, err error) {
	var pe *ParseError
	if !errors.As(err, &pe) {
		parent.Add(err.Error())
		return
	}
	x := parent.Add(pe.summary())
	for _, child := range pe.children {
		walkErrors(x, child)
	}
}

func (e *ParseError) summary() string {
	var sb strings.Builder
	if e.Variant != "" {
		fmt.Fprintf(&sb, "variant(%s) ", e.Variant)
	}
	sb.WriteString(e.Kind.String())
	if e.Location.Line > 0 {
		fmt.Fprintf(&sb, " at %s", e.Location)
	}
	fmt.Fprintf(&sb, " (offset %d)", e.Offset)
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	return sb.String()
}

// locate fills in line and column information for e and its children.
func (e *ParseError) locate(source string) {
	e.Location = meta.Position(source, e.Offset)
	for _, child := range e.children {
		var pe *ParseError
		if errors.As(child, &pe) {
			pe.locate(source)
		}
	}
}

// KindOf returns the kind of a parse failure. ok is false for any other error.
func KindOf(err error) (kind ErrorKind, ok bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

func isSoft(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind.soft()
}

func isRecoverable(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind.recoverable()
}

// ConfigError reports a grammar that cannot be used, independently of any input.
type ConfigError struct {
	errs []error
}

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{errs: []error{fmt.Errorf(format, args...)}}
}

// Errors returns every problem found.
func (c *ConfigError) Errors() []error {
	return append([]error(nil), c.errs...)
}

func (c *ConfigError) Error() string {
	if len(c.errs) == 1 {
		return "grammar configuration: " + c.errs[0].Error()
	}
	tree := gotree.New("grammar configuration")
	for _, err := range c.errs {
		tree.Add(err.Error())
	}
	return tree.Print()
}

// excerpt renders the start of the remaining input for error messages.
func excerpt(source string) string {
	if source == "" {
		return "end of input"
	}
	return quoted(source)
}

func quoted(s string) string {
	const limit = 40
	if len(s) > limit {
		return fmt.Sprintf("%q...", s[:limit])
	}
	return fmt.Sprintf("%q", s)
}
