package compiler

import (
	"github.com/tarcv/uregex/pattern"
	"github.com/tarcv/uregex/uerrors"
)

// validate walks the AST once before emission, catching the compile-time
// errors the recursive-descent parser itself cannot see locally:
// unbounded lookbehind bodies, backreferences to groups that don't
// exist, and CANON_EQ (unsupported, so requesting it is a
// REGEX_INVALID_FLAG, not silently ignored).
func validate(root node, flags pattern.Flags, groupCount int, namedGroups map[string]int, src string) error {
	if flags.Has(pattern.CanonEq) {
		return &uerrors.SyntaxError{Kind: uerrors.InvalidFlag, Pattern: src, Message: "CANON_EQ is not supported"}
	}
	if !flags.Valid() {
		return &uerrors.SyntaxError{Kind: uerrors.InvalidFlag, Pattern: src, Message: "unrecognised flag bits"}
	}
	return validateNode(root, groupCount, namedGroups, src)
}

func validateNode(n node, groupCount int, namedGroups map[string]int, src string) error {
	switch v := n.(type) {
	case nConcat:
		for _, s := range v.subs {
			if err := validateNode(s, groupCount, namedGroups, src); err != nil {
				return err
			}
		}
	case nAlt:
		for _, s := range v.subs {
			if err := validateNode(s, groupCount, namedGroups, src); err != nil {
				return err
			}
		}
	case nGroup:
		return validateNode(v.sub, groupCount, namedGroups, src)
	case nQuant:
		return validateNode(v.sub, groupCount, namedGroups, src)
	case nBackref:
		if v.name != "" {
			if _, ok := namedGroups[v.name]; !ok {
				return &uerrors.SyntaxError{Kind: uerrors.InvalidBackRef, Pattern: src, Message: "backreference to undefined named group " + v.name}
			}
			return nil
		}
		if v.num < 1 || v.num > groupCount {
			return &uerrors.SyntaxError{Kind: uerrors.InvalidBackRef, Pattern: src, Message: "backreference to nonexistent group"}
		}
		return nil
	case nLook:
		if !v.ahead {
			_, max := minMaxMatchLen(v.sub)
			if max == -1 {
				return &uerrors.SyntaxError{Kind: uerrors.LookBehindLimit, Pattern: src, Message: "lookbehind must have a bounded maximum length"}
			}
		}
		return validateNode(v.sub, groupCount, namedGroups, src)
	}
	return nil
}
