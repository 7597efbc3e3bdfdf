// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package assert contains common assertion helpers for tests.
package assert

import (
	"reflect"
	"strings"
	"testing"
)

// Assert fails the test if cond is false.
func Assert(t *testing.T, cond bool) {
	t.Helper()
	if !cond {
		t.Fatal("assertion failed")
	}
}

// NilError fails the test if err is non-nil.
func NilError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// NonNilError fails the test if err is nil.
func NonNilError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

// ErrorContains fails the test unless err is non-nil and its message
// contains substr.
func ErrorContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error containing %q, got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Fatalf("error %q does not contain %q", err.Error(), substr)
	}
}

// StringsEqual fails the test if got != want.
func StringsEqual(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// IntsEqual fails the test if got != want.
func IntsEqual(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

// StringArrsEqual fails the test if the two slices differ.
func StringArrsEqual(t *testing.T, got, want []string) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// BoolsEqual fails the test if got != want.
func BoolsEqual(t *testing.T, got, want bool) {
	t.Helper()
	if got != want {
		t.Fatalf("got %t, want %t", got, want)
	}
}
