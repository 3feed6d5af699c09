// SPDX-License-Identifier: MPL-2.0

package rundownfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const publisherFile = `
bindings: [
	{name: "chain_id", value: "31337"},
	{name: "rpc_url", value: "http://localhost:8545"},
	{name: "image_id", exec: "cat image_id.txt"},
]

env: {
	vars: {
		RUST_LOG: "info"
	}
}

recipes: [
	{
		name: "build"
		description: "Build the project"
		steps: ["cargo build --release"]
	},
	{
		name: "publish"
		description: "Publish a proof request"
		params: [
			{name: "input"},
			{name: "prover", default: "local"},
		]
		steps: [
			"./publisher --chain-id={{chain_id}} --rpc-url={{rpc_url}} --input={{input}} --prover={{prover}}",
		]
	},
]
`

func TestParseBytes(t *testing.T) {
	t.Parallel()

	file, err := ParseBytes([]byte(publisherFile), "rundown.cue")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if got, want := len(file.Recipes), 2; got != want {
		t.Errorf("len(Recipes) = %d, want %d", got, want)
	}
	if got, want := len(file.Bindings), 3; got != want {
		t.Errorf("len(Bindings) = %d, want %d", got, want)
	}

	publish := file.FindRecipe("publish")
	if publish == nil {
		t.Fatal("FindRecipe(publish) = nil")
	}
	if got, want := len(publish.Params), 2; got != want {
		t.Fatalf("len(publish.Params) = %d, want %d", got, want)
	}
	if publish.Params[0].Default != nil {
		t.Error("publish.Params[0] should be required")
	}
	if publish.Params[1].Default == nil || *publish.Params[1].Default != "local" {
		t.Errorf("publish.Params[1].Default = %v, want %q", publish.Params[1].Default, "local")
	}

	imageID := file.FindBinding("image_id")
	if imageID == nil {
		t.Fatal("FindBinding(image_id) = nil")
	}
	if !imageID.IsExec() {
		t.Error("image_id should be an exec binding")
	}

	if got, want := file.Env.GetVars()["RUST_LOG"], "info"; got != want {
		t.Errorf("env var RUST_LOG = %q, want %q", got, want)
	}
}

func TestParseBytesErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "duplicate recipe",
			content: `recipes: [
				{name: "build", steps: ["echo one"]},
				{name: "build", steps: ["echo two"]},
			]`,
			wantErr: ErrDuplicateRecipe,
		},
		{
			name: "required param after defaulted",
			content: `recipes: [
				{
					name: "deploy"
					params: [
						{name: "target", default: "local"},
						{name: "tag"},
					]
					steps: ["echo {{tag}} {{target}}"]
				},
			]`,
			wantErr: ErrInvalidParamOrder,
		},
		{
			name: "duplicate binding",
			content: `
			bindings: [
				{name: "version", value: "1"},
				{name: "version", value: "2"},
			]
			recipes: [{name: "noop", steps: ["true"]}]`,
			wantErr: ErrDuplicateBinding,
		},
		{
			name: "binding with both value and exec",
			content: `
			bindings: [{name: "v", value: "1", exec: "echo 1"}]
			recipes: [{name: "noop", steps: ["true"]}]`,
			wantErr: ErrInvalidBindingValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseBytes([]byte(tt.content), "rundown.cue")
			if err == nil {
				t.Fatal("ParseBytes() error = nil, want error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseBytes() error = %v, want errors.Is(%v)", err, tt.wantErr)
			}
		})
	}
}

func TestParseBytesSchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"syntax error", `recipes: [`},
		{"no recipes", `bindings: [{name: "v", value: "1"}]`},
		{"empty steps", `recipes: [{name: "noop", steps: []}]`},
		{"invalid recipe name", `recipes: [{name: "9lives", steps: ["true"]}]`},
		{"unknown field", `recipes: [{name: "noop", steps: ["true"], dependencies: ["other"]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseBytes([]byte(tt.content), "rundown.cue"); err == nil {
				t.Error("ParseBytes() error = nil, want error")
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte(publisherFile), 0o644); err != nil {
		t.Fatal(err)
	}

	file, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got, want := file.FilePath, path; got != want {
		t.Errorf("FilePath = %q, want %q", got, want)
	}
	if got, want := file.BaseDir(), dir; got != want {
		t.Errorf("BaseDir() = %q, want %q", got, want)
	}
}

func TestParseMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Parse(filepath.Join(t.TempDir(), "nope.cue")); err == nil {
		t.Error("Parse() error = nil, want error")
	}
}

func TestRecipeNamesSorted(t *testing.T) {
	t.Parallel()

	file, err := ParseBytes([]byte(`recipes: [
		{name: "zeta", steps: ["true"]},
		{name: "alpha", steps: ["true"]},
		{name: "mid", steps: ["true"]},
	]`), "rundown.cue")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	got := file.RecipeNames()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("RecipeNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RecipeNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
