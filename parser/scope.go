package parser

import (
	"fmt"
	"strings"

	"github.com/arr-ai/frozen"
	"github.com/sirupsen/logrus"
)

// Scope is the call-scoped state threaded through every parse call. It is a
// persistent value: entering a variant yields a new Scope and leaves the caller's
// untouched, so the recursion guard unwinds with the Go call stack and is never
// shared between parse calls.
type Scope struct {
	m frozen.Map[string, any]
}

const (
	grammarKey   = ".Grammar-key."
	activeKey    = ".Active-key."
	callStackKey = ".CallStack-key."
	budgetKey    = ".Budget-key."
)

func newScope(g *Grammar, b *budget) Scope {
	return Scope{}.
		With(grammarKey, g).
		With(budgetKey, b).
		With(activeKey, frozen.NewSet[string]())
}

func (s Scope) String() string {
	return s.GetCallStack().String()
}

func (s Scope) With(ident string, v any) Scope {
	s.m = s.m.With(ident, v)
	return s
}

func (s Scope) Has(ident string) bool {
	return s.m.Has(ident)
}

func (s Scope) grammar() *Grammar {
	v, _ := s.m.Get(grammarKey)
	g, _ := v.(*Grammar)
	return g
}

func (s Scope) budget() *budget {
	if v, has := s.m.Get(budgetKey); has {
		return v.(*budget)
	}
	return &budget{}
}

func (s Scope) active() frozen.Set[string] {
	if v, has := s.m.Get(activeKey); has {
		return v.(frozen.Set[string])
	}
	return frozen.NewSet[string]()
}

func activation(variant string, remaining int) string {
	return fmt.Sprintf("%s@%d", variant, remaining)
}

// enter registers variant as active with remaining bytes of input left. It fails with
// RecursionDetected if the same variant is already active at the same position.
func (s Scope) enter(variant string, remaining, offset int) (Scope, error) {
	key := activation(variant, remaining)
	active := s.active()
	if active.Has(key) {
		return s, &ParseError{
			Kind:     RecursionDetected,
			Msg:      fmt.Sprintf("%s > %s", s.GetCallStack(), variant),
			Variant:  variant,
			Offset:   offset,
			Furthest: offset,
		}
	}
	return s.With(activeKey, active.With(key)).PushCall(variant, offset), nil
}

// step charges one match attempt at offset against the call's budget.
func (s Scope) step(offset int) error {
	return s.budget().charge(offset)
}

type call struct {
	variant string
	offset  int
	parent  *call
}

// CallStack lists the variants entered on the way to the current position.
type CallStack struct {
	top   *call
	depth int
}

func (c CallStack) Depth() int {
	return c.depth
}

func (c CallStack) String() string {
	parts := make([]string, c.depth)
	i := c.depth
	for x := c.top; x != nil; x = x.parent {
		i--
		parts[i] = x.variant
	}
	return strings.Join(parts, " > ")
}

func (s Scope) PushCall(variant string, offset int) Scope {
	cs := s.GetCallStack()
	return s.With(callStackKey, CallStack{
		top:   &call{variant: variant, offset: offset, parent: cs.top},
		depth: cs.depth + 1,
	})
}

func (s Scope) GetCallStack() CallStack {
	v, _ := s.m.Get(callStackKey)
	cs, _ := v.(CallStack)
	return cs
}

// budget is the only mutable per-call state. It is created by Grammar.Parse and
// never outlives the call.
type budget struct {
	limit    int
	steps    int
	logger   *logrus.Logger
	exceeded *ParseError
}

func (b *budget) charge(offset int) error {
	if b.exceeded != nil {
		return b.exceeded
	}
	b.steps++
	if b.limit > 0 && b.steps > b.limit {
		b.exceeded = newParseError(StepLimitExceeded, offset, "more than %d match attempts", b.limit)
		return b.exceeded
	}
	return nil
}
