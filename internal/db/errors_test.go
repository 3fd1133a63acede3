package db

import (
	"errors"
	"testing"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"without key", &Error{Op: OpScan, Err: errors.New("timeout")}, "SCAN: timeout"},
		{"with key", &Error{Op: OpHGetAll, Key: "movie:1", Err: ErrWrongType},
			"HGETALL movie:1: db: key holds the wrong kind of value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := error(&Error{Op: OpHGetAll, Key: "k", Err: ErrWrongType})
	if !errors.Is(err, ErrWrongType) {
		t.Error("expected errors.Is to find ErrWrongType")
	}
	var dbErr *Error
	if !errors.As(err, &dbErr) || dbErr.Key != "k" {
		t.Errorf("expected errors.As to yield the db.Error, got %v", dbErr)
	}
}
