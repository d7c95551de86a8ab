package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", Busy, Busy},
		{"wrapped E", Wrap(FetchFailed, "weather", errors.New("eof")), FetchFailed},
		{"fmt wrapped code", fmt.Errorf("ctx: %w", Timeout), Timeout},
		{"E around code keeps outer", Wrap(JoinFailed, "join", Timeout), JoinFailed},
		{"plain error", errors.New("boom"), Error},
	}
	for _, tc := range cases {
		if got := Of(tc.err); got != tc.want {
			t.Errorf("%s: Of() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(Error, "op", nil) != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
}

func TestErrorsIsMatchesCode(t *testing.T) {
	cause := errors.New("short write")
	err := Wrap(StorageFailed, "storage.save", cause)
	if !errors.Is(err, StorageFailed) {
		t.Fatal("errors.Is should match the code")
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should reach the cause")
	}
	if got := err.Error(); got != "storage.save: storage_failed: short write" {
		t.Fatalf("Error() = %q", got)
	}
}
