// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Widget: {
	name!:  string
	count?: int & >=0
}
`

type widget struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	data := []byte(`
name:  "gear"
count: 3
`)

	result, err := ParseAndDecodeString[widget](testSchema, data, "#Widget")
	if err != nil {
		t.Fatalf("ParseAndDecodeString() error = %v", err)
	}

	if result.Value.Name != "gear" {
		t.Errorf("Name = %q, want %q", result.Value.Name, "gear")
	}
	if result.Value.Count != 3 {
		t.Errorf("Count = %d, want 3", result.Value.Count)
	}
	if !result.Unified.Exists() {
		t.Error("Unified value should exist")
	}
}

func TestParseAndDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{
			name: "syntax error",
			data: `name: "gear`,
		},
		{
			name: "schema violation",
			data: `name: "gear"` + "\n" + `count: -1`,
		},
		{
			name: "wrong type",
			data: `name: 42`,
		},
		{
			name: "unknown field",
			data: `name: "gear"` + "\n" + `bogus: true`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseAndDecodeString[widget](testSchema, []byte(tt.data), "#Widget", WithFilename("widget.cue"))
			if err == nil {
				t.Fatal("ParseAndDecodeString() should have failed")
			}
			if !strings.Contains(err.Error(), "widget.cue") {
				t.Errorf("error should mention the filename, got: %v", err)
			}
		})
	}
}

func TestParseAndDecodeMissingSchemaPath(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecodeString[widget](testSchema, []byte(`name: "x"`), "#Nope")
	if err == nil {
		t.Fatal("ParseAndDecodeString() should fail for an unknown schema path")
	}
	if !strings.Contains(err.Error(), "internal error") {
		t.Errorf("error = %v, want internal error", err)
	}
}

func TestParseAndDecodeFileSizeLimit(t *testing.T) {
	t.Parallel()

	data := []byte(`name: "gear"`)
	_, err := ParseAndDecodeString[widget](testSchema, data, "#Widget", WithMaxFileSize(4))
	if err == nil {
		t.Fatal("ParseAndDecodeString() should enforce the size limit")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("error = %v, want size limit message", err)
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize([]byte("abc"), 3, "f.cue"); err != nil {
		t.Errorf("CheckFileSize at limit should pass, got %v", err)
	}
	if err := CheckFileSize([]byte("abcd"), 3, "f.cue"); err == nil {
		t.Error("CheckFileSize over limit should fail")
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "f.cue") != nil {
		t.Error("FormatError(nil) should return nil")
	}

	plain := errors.New("boom")
	got := FormatError(plain, "f.cue")
	if got == nil || !strings.Contains(got.Error(), "f.cue") {
		t.Errorf("FormatError() = %v, want filename prefix", got)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"recipes"}, "recipes"},
		{[]string{"recipes", "0", "name"}, "recipes[0].name"},
		{[]string{"ui", "verbose"}, "ui.verbose"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
