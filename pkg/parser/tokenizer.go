package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Tokenize splits one data line into its time delta and arguments.
//
// The time field runs up to the first space. Each following space-separated
// token is an argument; the last one is cut at the final ';' on the line, so
// anything after the last semicolon is dropped. Trailing blanks are ignored.
//
// The returned error is non-nil in three cases:
//   - ErrTooManyArguments: more than maxArgs arguments (maxArgs <= 0 means no
//     limit). The line must not be used.
//   - ErrMissingArguments: the line has no space and so no arguments. The
//     delta is still valid.
//   - ErrInvalidDelta: the time field is not a non-negative integer. The
//     delta is a lenient reading clamped at zero.
//
// The last two may be joined and are safe to log and continue past.
func Tokenize(raw string, maxArgs int) (Line, error) {
	raw = strings.TrimRight(raw, " \t\r")
	semi := strings.LastIndexByte(raw, ';')

	sp := strings.IndexByte(raw, ' ')
	if sp < 0 {
		field := raw
		if semi >= 0 {
			field = raw[:semi]
		}
		delta, ok := parseDelta(field)
		err := ErrMissingArguments
		if !ok {
			err = errors.Join(err, fmt.Errorf("%w: %q", ErrInvalidDelta, field))
		}
		return Line{Delta: delta}, err
	}

	var flags error
	delta, ok := parseDelta(raw[:sp])
	if !ok {
		flags = fmt.Errorf("%w: %q", ErrInvalidDelta, raw[:sp])
	}

	line := Line{Delta: delta}
	begin := sp + 1
	for {
		next := strings.IndexByte(raw[begin:], ' ')
		if next < 0 {
			break
		}
		line.Args = append(line.Args, raw[begin:begin+next])
		begin += next + 1
	}

	switch {
	case semi < 0:
		line.Args = append(line.Args, raw[begin:])
	case semi >= begin:
		line.Args = append(line.Args, raw[begin:semi])
	default:
		// The last ';' sits in an earlier token: the final token is
		// trailing content and is dropped.
	}

	if maxArgs > 0 && len(line.Args) > maxArgs {
		return Line{Delta: delta}, fmt.Errorf("%w: %d (max %d)", ErrTooManyArguments, len(line.Args), maxArgs)
	}
	return line, flags
}
