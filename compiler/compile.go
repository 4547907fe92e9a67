// Package compiler turns pattern source text into a pattern.Compiled
// bytecode record: a hand-written recursive-descent parser (parser.go,
// escapes.go) builds an AST (ast.go), which a validation pass
// (validate.go) checks against the engine's compile-time error list
// before a tree-walking emitter (emitter.go, emit_ast.go) turns it into
// opcode.Word instructions, finished off by the minimum-match-length
// (minlen.go) and start-optimisation (startopt.go) passes.
package compiler

import (
	"github.com/tarcv/uregex/opcode"
	"github.com/tarcv/uregex/pattern"
	"github.com/tarcv/uregex/uerrors"
)

// Config bounds the resources a single Compile call and the patterns it
// produces may use.
type Config struct {
	// MaxCaptureGroups caps the number of capturing groups a pattern may
	// declare; exceeding it is REGEX_PATTERN_TOO_BIG.
	MaxCaptureGroups int

	// MaxLookbehindLength caps a bounded lookbehind's maximum length, in
	// code units; exceeding it is REGEX_LOOK_BEHIND_LIMIT.
	MaxLookbehindLength int

	// InitialStackCapacity and MaxStackCapacity are checked by Compile but
	// not passed on: a vm.Machine sizes its Stack64 from vm.Config.
	InitialStackCapacity uint64
	MaxStackCapacity     uint64
}

// DefaultConfig returns the package's default resource limits.
func DefaultConfig() Config {
	return Config{
		MaxCaptureGroups:     1000,
		MaxLookbehindLength:  255,
		InitialStackCapacity: 128,
		MaxStackCapacity:     1 << 20,
	}
}

// Validate reports whether cfg's limits are internally consistent.
func (c Config) Validate() error {
	if c.MaxCaptureGroups <= 0 {
		return &uerrors.StateError{Kind: uerrors.InvalidState, Message: "MaxCaptureGroups must be positive"}
	}
	if c.MaxLookbehindLength <= 0 {
		return &uerrors.StateError{Kind: uerrors.InvalidState, Message: "MaxLookbehindLength must be positive"}
	}
	if c.MaxStackCapacity < c.InitialStackCapacity {
		return &uerrors.StateError{Kind: uerrors.InvalidState, Message: "MaxStackCapacity must be >= InitialStackCapacity"}
	}
	return nil
}

// Compile parses and assembles source under flags into a pattern.Compiled
// record, the engine's sole entry point for turning pattern text into
// runnable bytecode.
func Compile(source string, flags pattern.Flags, cfg Config) (*pattern.Compiled, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !flags.Valid() {
		return nil, &uerrors.SyntaxError{Kind: uerrors.InvalidFlag, Pattern: source, Message: "unrecognised flag bits"}
	}

	p := newParser(source, flags)
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	if p.groupCount > cfg.MaxCaptureGroups {
		return nil, &uerrors.SyntaxError{Kind: uerrors.PatternTooBig, Pattern: source, Message: "too many capture groups"}
	}
	if err := validate(root, flags, p.groupCount, p.namedGroups, source); err != nil {
		return nil, err
	}
	if min, max := lookbehindBoundsOf(root); max > cfg.MaxLookbehindLength {
		_ = min
		return nil, &uerrors.SyntaxError{Kind: uerrors.LookBehindLimit, Pattern: source, Message: "lookbehind length exceeds configured maximum"}
	}

	e := newEmitter()
	frameSize := 2 + 2*(p.groupCount+1)

	ac := &astCompiler{e: e, flags: flags, groupNames: p.groupNames, namedGroups: p.namedGroups}
	ac.e.emit(opcode.START_CAPTURE, 2) // group 0: whole match
	ac.compileNode(root)
	ac.e.emit(opcode.END_CAPTURE, 2)
	e.emit(opcode.END, 0)

	start := computeStartInfo(root, flags, e)
	minLen, _ := minMaxMatchLen(root)
	_, lbMax := lookbehindBoundsOf(root)

	groupMap := make([]int, p.groupCount+1)
	for i := range groupMap {
		groupMap[i] = 2 + 2*i
	}
	namedCaptureMap := make(map[string]int, len(p.namedGroups))
	for name, num := range p.namedGroups {
		namedCaptureMap[name] = num
	}

	return &pattern.Compiled{
		Source:          source,
		FlagBits:        flags,
		Code:            e.code,
		Literals:        e.literals,
		Sets:            e.sets,
		GroupMap:        groupMap,
		NamedCaptureMap: namedCaptureMap,
		FrameSize:       frameSize,
		DataSize:        e.dataSize,
		Start:           start,
		MinMatchLen:     minLen,
		LookbehindMax:   lbMax,
	}, nil
}

// MustCompile is like Compile but panics on error, for tests and
// package-level pattern literals.
func MustCompile(source string, flags pattern.Flags, cfg Config) *pattern.Compiled {
	c, err := Compile(source, flags, cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// lookbehindBoundsOf finds the largest bounded-lookbehind max length
// anywhere in the tree, for pattern.Compiled.LookbehindMax.
func lookbehindBoundsOf(n node) (min, max int) {
	switch v := n.(type) {
	case nConcat:
		for _, s := range v.subs {
			_, m := lookbehindBoundsOf(s)
			if m > max {
				max = m
			}
		}
	case nAlt:
		for _, s := range v.subs {
			_, m := lookbehindBoundsOf(s)
			if m > max {
				max = m
			}
		}
	case nGroup:
		return lookbehindBoundsOf(v.sub)
	case nQuant:
		return lookbehindBoundsOf(v.sub)
	case nLook:
		_, subMax := lookbehindBoundsOf(v.sub)
		if !v.ahead {
			_, m := minMaxMatchLen(v.sub)
			if m > subMax {
				subMax = m
			}
		}
		return 0, subMax
	}
	return 0, max
}
