package objfile

import "errors"

var (
	UnknownFormatError = errors.New("unrecognized object file format")
)
