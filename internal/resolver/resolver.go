// Package resolver expands wildcard template expressions into concrete text
// by drawing from a wildcard tree.
package resolver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/grammar"
	"github.com/agentic-research/wildcards/internal/tree"
	"go.uber.org/zap"
)

const (
	// DefaultMaxDepth bounds recursion for Process.
	DefaultMaxDepth = 12
	// DefaultMaxQuantifier caps the N of "N#__path__".
	DefaultMaxQuantifier = 1000
	// NotFound replaces references that draw from nothing.
	NotFound = "[wildcard not found]"
)

// Resolver expands expressions against the tree published by its source.
// A Resolver is not safe for concurrent use because the injected random
// source usually is not.
type Resolver struct {
	src           tree.Source
	rng           grammar.Rand
	log           *zap.Logger
	maxQuantifier int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for missing-reference diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithMaxQuantifier overrides DefaultMaxQuantifier.
func WithMaxQuantifier(n int) Option {
	return func(r *Resolver) { r.maxQuantifier = n }
}

// New builds a resolver. A nil rng draws from runtime entropy.
func New(src tree.Source, rng grammar.Rand, opts ...Option) *Resolver {
	if rng == nil {
		rng = grammar.NewRandomRand()
	}
	r := &Resolver{
		src:           src,
		rng:           rng,
		log:           zap.NewNop(),
		maxQuantifier: DefaultMaxQuantifier,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Process resolves expr with DefaultMaxDepth.
func (r *Resolver) Process(expr string) string {
	return r.Resolve(expr, 0, DefaultMaxDepth)
}

// Resolve expands quantifiers, then wildcard references, then selection
// groups. Past maxDepth the expression is returned untouched.
func (r *Resolver) Resolve(expr string, depth, maxDepth int) string {
	return r.resolve(r.src.Snapshot(), expr, depth, maxDepth)
}

func (r *Resolver) resolve(root *api.Node, expr string, depth, maxDepth int) string {
	if depth > maxDepth {
		return expr
	}
	out := r.expandQuantifiers(expr)
	out = r.expandWildcards(root, out, depth, maxDepth)
	return r.expandGroups(root, out, depth, maxDepth)
}

// expandQuantifiers rewrites "N#__p__" into "{__p__|__p__|...}".
func (r *Resolver) expandQuantifiers(expr string) string {
	qs := grammar.Quantifiers(expr)
	if len(qs) == 0 {
		return expr
	}
	var b strings.Builder
	prev := 0
	for _, q := range qs {
		b.WriteString(expr[prev:q.Start])
		n := q.Count
		if n > r.maxQuantifier {
			r.log.Debug("quantifier capped", zap.Int("count", n), zap.Int("max", r.maxQuantifier))
			n = r.maxQuantifier
		}
		ref := "__" + q.Path + "__"
		b.WriteByte('{')
		for i := range n {
			if i > 0 {
				b.WriteByte('|')
			}
			b.WriteString(ref)
		}
		b.WriteByte('}')
		prev = q.End
	}
	b.WriteString(expr[prev:])
	return b.String()
}

func (r *Resolver) expandWildcards(root *api.Node, expr string, depth, maxDepth int) string {
	toks := grammar.Wildcards(expr)
	if len(toks) == 0 {
		return expr
	}
	var b strings.Builder
	prev := 0
	for _, tok := range toks {
		b.WriteString(expr[prev:tok.Start])
		b.WriteString(r.reference(root, tok.Path, depth, maxDepth))
		prev = tok.End
	}
	b.WriteString(expr[prev:])
	return b.String()
}

// reference draws one item for a wildcard path and resolves it one level
// deeper.
func (r *Resolver) reference(root *api.Node, ref string, depth, maxDepth int) string {
	norm := tree.Normalize(ref)

	var pool []any
	switch {
	case strings.HasPrefix(norm, "*/"):
		pool = tree.MatchBasename(root, norm[2:])
	case strings.Contains(norm, "*"):
		pool = tree.MatchGlob(root, norm)
	default:
		if n := tree.Lookup(root, ref); n.IsList() {
			pool = n.Items
		}
	}

	if len(pool) == 0 {
		r.log.Debug("wildcard not found", zap.String("ref", ref))
		return NotFound
	}
	item := pool[r.rng.IntN(len(pool))]
	return r.resolve(root, itemText(item), depth+1, maxDepth)
}

func itemText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func (r *Resolver) expandGroups(root *api.Node, expr string, depth, maxDepth int) string {
	scan := grammar.Groups(expr, false)
	if len(scan.Groups) == 0 {
		return expr
	}
	var b strings.Builder
	prev := 0
	for _, g := range scan.Groups {
		b.WriteString(expr[prev:g.Start])
		b.WriteString(r.evalGroup(root, g.Content, depth+1, maxDepth))
		prev = g.End
	}
	// Stray '}' and an unclosed tail stay literal.
	b.WriteString(expr[prev:])
	return b.String()
}

// evalGroup evaluates the body of one "{...}". Options are resolved one
// level below the group.
func (r *Resolver) evalGroup(root *api.Node, content string, depth, maxDepth int) string {
	g := grammar.ParseGroup(content, 0)
	if g.Multi {
		return r.evalMulti(root, g, depth, maxDepth)
	}

	if len(g.Options) == 1 {
		return r.resolve(root, g.Options[0].Raw, depth+1, maxDepth)
	}

	opts := make([]grammar.Option, len(g.Options))
	total := 0.0
	for i, o := range g.Options {
		opts[i] = grammar.Option{
			Weight: o.Weight,
			Value:  r.resolve(root, o.Value, depth+1, maxDepth),
		}
		total += o.Weight
	}
	if total <= 0 {
		return ""
	}
	return grammar.ChooseWeighted(opts, r.rng)
}

func (r *Resolver) evalMulti(root *api.Node, g grammar.Group, depth, maxDepth int) string {
	sep := " "
	if g.HasSeparator {
		sep = g.Separator
	}

	var pool []grammar.Option
	for _, o := range g.Options {
		v := r.resolve(root, o.Value, depth+1, maxDepth)
		if strings.TrimSpace(v) == "" {
			continue
		}
		pool = append(pool, grammar.Option{Weight: o.Weight, Value: v})
	}
	if len(pool) == 0 {
		return ""
	}

	count := grammar.ParseCountSpec(g.CountSpec, len(pool), r.rng)
	picked := make([]string, 0, count)
	for range count {
		if len(pool) == 0 {
			break
		}
		i := grammar.ChooseWeightedIndex(pool, r.rng)
		picked = append(picked, pool[i].Value)
		pool = slices.Delete(pool, i, i+1)
	}
	return strings.Join(picked, sep)
}
