// Package uerrors defines the error kinds shared by package compiler and
// package vm: sentinel errors for each kind, wrapped by a struct that
// carries extra context.
package uerrors

import (
	"errors"
	"strconv"
)

// Kind identifies one of the engine's public error kinds.
type Kind uint8

const (
	InternalError Kind = iota
	RuleSyntax
	InvalidState
	BadEscapeSequence
	PropertySyntax
	Unimplemented
	MismatchedParen
	NumberTooBig
	BadInterval
	MaxLtMin
	InvalidBackRef
	InvalidFlag
	LookBehindLimit
	SetContainsString
	MissingCloseBracket
	InvalidRange
	StackOverflow
	TimeOut
	StoppedByCaller
	PatternTooBig
	InvalidCaptureGroupName
)

var kindNames = map[Kind]string{
	InternalError:           "REGEX_INTERNAL_ERROR",
	RuleSyntax:              "REGEX_RULE_SYNTAX",
	InvalidState:            "REGEX_INVALID_STATE",
	BadEscapeSequence:       "REGEX_BAD_ESCAPE_SEQUENCE",
	PropertySyntax:          "REGEX_PROPERTY_SYNTAX",
	Unimplemented:           "REGEX_UNIMPLEMENTED",
	MismatchedParen:         "REGEX_MISMATCHED_PAREN",
	NumberTooBig:            "REGEX_NUMBER_TOO_BIG",
	BadInterval:             "REGEX_BAD_INTERVAL",
	MaxLtMin:                "REGEX_MAX_LT_MIN",
	InvalidBackRef:          "REGEX_INVALID_BACK_REF",
	InvalidFlag:             "REGEX_INVALID_FLAG",
	LookBehindLimit:         "REGEX_LOOK_BEHIND_LIMIT",
	SetContainsString:       "REGEX_SET_CONTAINS_STRING",
	MissingCloseBracket:     "REGEX_MISSING_CLOSE_BRACKET",
	InvalidRange:            "REGEX_INVALID_RANGE",
	StackOverflow:           "REGEX_STACK_OVERFLOW",
	TimeOut:                 "REGEX_TIME_OUT",
	StoppedByCaller:         "REGEX_STOPPED_BY_CALLER",
	PatternTooBig:           "REGEX_PATTERN_TOO_BIG",
	InvalidCaptureGroupName: "REGEX_INVALID_CAPTURE_GROUP_NAME",
}

// String renders the kind's wire name, e.g. "REGEX_MISMATCHED_PAREN".
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "REGEX_UNKNOWN"
}

// SyntaxError is a compile-time error carrying the source location: line,
// offset-in-line, and up to 16 code units of context on either side.
type SyntaxError struct {
	Kind        Kind
	Pattern     string
	Line        int
	Offset      int
	PreContext  string
	PostContext string
	Message     string
}

func (e *SyntaxError) Error() string {
	if e.Message != "" {
		return e.Kind.String() + ": " + e.Message + " (line " + strconv.Itoa(e.Line) + ", offset " + strconv.Itoa(e.Offset) + ")"
	}
	return e.Kind.String() + " (line " + strconv.Itoa(e.Line) + ", offset " + strconv.Itoa(e.Offset) + ")"
}

// Unwrap lets errors.Is/As match against the Kind's sentinel below.
func (e *SyntaxError) Unwrap() error { return sentinelFor(e.Kind) }

// RuntimeError reports a matching-time failure: stack overflow, timeout,
// or caller-initiated abort.
type RuntimeError struct {
	Kind    Kind
	Message string
}

func (e *RuntimeError) Error() string {
	if e.Message != "" {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String()
}

func (e *RuntimeError) Unwrap() error { return sentinelFor(e.Kind) }

// StateError reports a programmer error: calling Group before a
// successful match, or asking for an unknown named group.
type StateError struct {
	Kind    Kind
	Message string
}

func (e *StateError) Error() string {
	if e.Message != "" {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String()
}

func (e *StateError) Unwrap() error { return sentinelFor(e.Kind) }

// Sentinel errors, one per Kind, so callers can errors.Is(err,
// uerrors.ErrMismatchedParen) without type-asserting to a concrete
// struct.
var (
	ErrInternalError           = errors.New(InternalError.String())
	ErrRuleSyntax              = errors.New(RuleSyntax.String())
	ErrInvalidState            = errors.New(InvalidState.String())
	ErrBadEscapeSequence       = errors.New(BadEscapeSequence.String())
	ErrPropertySyntax          = errors.New(PropertySyntax.String())
	ErrUnimplemented           = errors.New(Unimplemented.String())
	ErrMismatchedParen         = errors.New(MismatchedParen.String())
	ErrNumberTooBig            = errors.New(NumberTooBig.String())
	ErrBadInterval             = errors.New(BadInterval.String())
	ErrMaxLtMin                = errors.New(MaxLtMin.String())
	ErrInvalidBackRef          = errors.New(InvalidBackRef.String())
	ErrInvalidFlag             = errors.New(InvalidFlag.String())
	ErrLookBehindLimit         = errors.New(LookBehindLimit.String())
	ErrSetContainsString       = errors.New(SetContainsString.String())
	ErrMissingCloseBracket     = errors.New(MissingCloseBracket.String())
	ErrInvalidRange            = errors.New(InvalidRange.String())
	ErrStackOverflow           = errors.New(StackOverflow.String())
	ErrTimeOut                 = errors.New(TimeOut.String())
	ErrStoppedByCaller         = errors.New(StoppedByCaller.String())
	ErrPatternTooBig           = errors.New(PatternTooBig.String())
	ErrInvalidCaptureGroupName = errors.New(InvalidCaptureGroupName.String())
)

func sentinelFor(k Kind) error {
	switch k {
	case InternalError:
		return ErrInternalError
	case RuleSyntax:
		return ErrRuleSyntax
	case InvalidState:
		return ErrInvalidState
	case BadEscapeSequence:
		return ErrBadEscapeSequence
	case PropertySyntax:
		return ErrPropertySyntax
	case Unimplemented:
		return ErrUnimplemented
	case MismatchedParen:
		return ErrMismatchedParen
	case NumberTooBig:
		return ErrNumberTooBig
	case BadInterval:
		return ErrBadInterval
	case MaxLtMin:
		return ErrMaxLtMin
	case InvalidBackRef:
		return ErrInvalidBackRef
	case InvalidFlag:
		return ErrInvalidFlag
	case LookBehindLimit:
		return ErrLookBehindLimit
	case SetContainsString:
		return ErrSetContainsString
	case MissingCloseBracket:
		return ErrMissingCloseBracket
	case InvalidRange:
		return ErrInvalidRange
	case StackOverflow:
		return ErrStackOverflow
	case TimeOut:
		return ErrTimeOut
	case StoppedByCaller:
		return ErrStoppedByCaller
	case PatternTooBig:
		return ErrPatternTooBig
	case InvalidCaptureGroupName:
		return ErrInvalidCaptureGroupName
	default:
		return ErrInternalError
	}
}

