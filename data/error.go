package data

import "github.com/ardnew/tmpl/lang"

var (
	ErrNotFound      = lang.NewError(lang.ClassLookup, "data file not found")
	ErrUnknownFormat = lang.NewError(lang.ClassIO, "unrecognized data format")
	ErrDecode        = lang.NewError(lang.ClassIO, "failed to decode data")
	ErrNotMapping    = lang.NewError(lang.ClassType, "data document is not a mapping")
	ErrAssignment    = lang.NewError(lang.ClassSyntax, "malformed assignment")
)
