// SPDX-License-Identifier: MPL-2.0

package rundownfile

import (
	_ "embed"
	"fmt"
	"os"

	"rundown-cli/pkg/cueutil"
)

// DefaultFileName is the recipe file rundown looks for when no --file
// flag is given.
const DefaultFileName = "rundown.cue"

//go:embed rundownfile_schema.cue
var rundownfileSchema string

// Parse reads and parses a rundown file from the given path.
func Parse(path string) (*Rundownfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rundown file at %s: %w", path, err)
	}

	return ParseBytes(data, path)
}

// ParseBytes parses rundown file content from bytes.
// Uses cueutil.ParseAndDecodeString for the 3-step CUE parsing flow:
// compile schema → compile user data → validate and decode.
func ParseBytes(data []byte, path string) (*Rundownfile, error) {
	result, err := cueutil.ParseAndDecodeString[Rundownfile](
		rundownfileSchema,
		data,
		"#Rundownfile",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	file := result.Value
	file.FilePath = path

	if errs := file.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return file, nil
}
