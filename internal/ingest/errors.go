package ingest

import (
	"fmt"
	"sort"
	"strings"
)

// UnrecognizedFormatError means no sheet in the workbook could be identified
// as carrying estimate metadata.
type UnrecognizedFormatError struct {
	Detail string
}

func (e *UnrecognizedFormatError) Error() string {
	if e.Detail != "" {
		return "unrecognized workbook format: " + e.Detail
	}
	return "unrecognized workbook format"
}

// MissingFieldsError reports every metadata field that is absent or
// unusable, keyed by field name. It is raised before anything is persisted.
type MissingFieldsError struct {
	Fields map[string]string
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "missing required metadata fields: " + strings.Join(names, ", ")
}

// UnresolvedReferenceError means a project type or location reference could
// not be resolved by id or by name.
type UnresolvedReferenceError struct {
	Field string
	Value string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("could not resolve %s %q", e.Field, e.Value)
}

// RowError is a non-fatal failure for a single item row. Rows with errors
// are skipped; the rest of the batch proceeds.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}
