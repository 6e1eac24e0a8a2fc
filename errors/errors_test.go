package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseParams,
				Kind:   KindInvalidParams,
				Field:  "parallelism",
				Detail: "must be at least 1",
			},
			contains: []string{"[params]", "invalid_params", "at parallelism", "must be at least 1"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindInvalidEncoding,
			},
			contains: []string{"[decode]", "invalid_encoding"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseAlloc,
				Kind:   KindAllocation,
				Detail: "arena full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[alloc]", "allocation", "arena full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseHash,
		Kind:  KindInvalidInput,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseParams,
		Kind:  KindInvalidParams,
		Field: "memory_cost",
	}

	if !err.Is(&Error{Phase: PhaseParams, Kind: KindInvalidParams}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindInvalidParams}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseParams, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrInvalidParams) {
		t.Error("errors.Is should match kind sentinel")
	}
	if errors.Is(err, ErrInvalidEncoding) {
		t.Error("errors.Is should not match other sentinel")
	}
}

func TestError_IsThroughWrap(t *testing.T) {
	inner := InvalidEncoding("salt", "bad base64")
	outer := Wrap(PhaseVerify, KindInvalidInput, inner, "verify")

	if !errors.Is(outer, ErrInvalidEncoding) {
		t.Error("sentinel should match wrapped cause")
	}

	var target *Error
	if !errors.As(outer, &target) || target.Kind != KindInvalidInput {
		t.Errorf("errors.As returned %v", target)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseParams, KindInvalidParams).
		Field("parallelism").
		Value(0).
		Cause(cause).
		Detail("expected %s, got %d", ">= 1", 0).
		Build()

	if err.Phase != PhaseParams {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseParams)
	}
	if err.Kind != KindInvalidParams {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidParams)
	}
	if err.Field != "parallelism" {
		t.Errorf("Field = %v, want parallelism", err.Field)
	}
	if err.Value != 0 {
		t.Errorf("Value = %v, want 0", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected >= 1, got 0" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseAlloc, 1024, 4)
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		err := InvalidUTF8(PhaseVerify, "hash", []byte{0xff, 0xfe})
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
		if !strings.Contains(err.Detail, "fffe") {
			t.Errorf("Detail = %v, should contain preview", err.Detail)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseRuntime, 65530, 10, 65536)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != uint32(65530) {
			t.Errorf("Value = %v, want 65530", err.Value)
		}
	})

	t.Run("deallocation misuse", func(t *testing.T) {
		cases := []struct {
			err  *Error
			kind Kind
		}{
			{UnknownPointer(8, 4), KindUnknownPointer},
			{DoubleFree(8, 4), KindDoubleFree},
			{SizeMismatch(8, 4, 16), KindSizeMismatch},
		}
		for _, c := range cases {
			if c.err.Kind != c.kind {
				t.Errorf("Kind = %v, want %v", c.err.Kind, c.kind)
			}
			if c.err.Phase != PhaseAlloc {
				t.Errorf("Phase = %v, want %v", c.err.Phase, PhaseAlloc)
			}
		}
	})

	t.Run("GuestPanic", func(t *testing.T) {
		err := GuestPanic("panicked at guest.go:10:\nboom", nil)
		if !errors.Is(err, ErrGuestPanic) {
			t.Error("GuestPanic should match ErrGuestPanic")
		}
	})
}
