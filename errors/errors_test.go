package errors_test

import (
	"errors"
	"fmt"
	"testing"

	dberrors "task_api/errors"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{dberrors.NewDBError("ping failed"), "Database error: ping failed"},
		{dberrors.NewQueryError("no such table"), "Query error: no such table"},
		{dberrors.NewConfigError("missing dsn"), "Configuration error: missing dsn"},
		{dberrors.NewServerError("bind"), "Server error: bind"},
		{dberrors.NewNotFoundError("abc"), "Not found: task abc"},
		{dberrors.NewInputError("bad json"), "Input error: bad json"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestNotFoundSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("delete: %w", dberrors.NewNotFoundError("abc"))

	var nf *dberrors.NotFoundError
	if !errors.As(wrapped, &nf) {
		t.Fatalf("errors.As failed on %v", wrapped)
	}
	if nf.ID != "abc" {
		t.Errorf("ID = %q, want abc", nf.ID)
	}

	var qErr *dberrors.QueryError
	if errors.As(wrapped, &qErr) {
		t.Errorf("NotFoundError must not match QueryError")
	}
}
