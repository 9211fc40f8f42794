package resource

import "errors"

var (
	ErrInvalidCoordinate    = errors.New("invalid tile coordinate")
	ErrInvalidRatio         = errors.New("invalid pixel ratio")
	ErrUnresolvableTemplate = errors.New("unresolvable url template")
)
