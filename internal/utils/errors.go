package utils

import (
	"fmt"
	"strings"
)

// NotFoundError reports that a data directory yielded no usable input.
// It is fatal to the run.
type NotFoundError struct {
	Path string
	Msg  string
}

func (e *NotFoundError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("no CSV files found in %s", e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// SchemaError reports a CSV file whose header lacks required columns.
// It is recoverable: the offending file is skipped and the run continues.
type SchemaError struct {
	File    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.File, strings.Join(e.Missing, ", "))
}

// ContractError reports an internal alignment mismatch between detector
// output and ground truth. It is fatal and indicates a bug.
type ContractError struct {
	Op   string
	Want int
	Got  int
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: misaligned input: want %d rows, got %d", e.Op, e.Want, e.Got)
}
