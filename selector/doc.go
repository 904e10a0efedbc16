// Package selector picks one name from a name file using a draw from an
// entropy source.
//
// # Selection
//
// The file is split on newlines (a trailing newline yields a trailing
// empty entry) and the draw is mapped with
//
//	index = draw mod (len(names) - 1)
//
// so the last entry is never chosen and a single entry list is an error
// (names.ErrDivisionByZero). Draws are requested in [DrawMin, DrawMax].
//
// # Usage
//
//	src, err := entropy.New(entropy.Config{})
//	if err != nil {
//	    return err
//	}
//	sl := selector.NewSelector(src, log, nil)
//	res, err := sl.Pick(ctx, "names.txt")
package selector
