// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	RundownfileNotFoundId Id = iota + 1
	RundownfileParseErrorId
	RecipeNotFoundId
	ArgumentMismatchId
	BindingResolutionFailedId
	BindingCycleId
	UnresolvedPlaceholderId
	ShellNotFoundId
	ConfigLoadFailedId
	ServeStartFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	rundownfileNotFoundIssue = &Issue{
		id: RundownfileNotFoundId,
		mdMsg: `
# No rundown.cue found!

We searched for a rundown.cue file but couldn't find one.

## Search locations (in order of precedence):
1. The path given via --file
2. Current directory

## Things you can try:
- Create a rundown.cue in your current directory:
~~~
$ rundown init
~~~

- Or point at an existing file:
~~~
$ rundown run --file /path/to/rundown.cue build
~~~`,
	}

	rundownfileParseErrorIssue = &Issue{
		id: RundownfileParseErrorId,
		mdMsg: `
# Failed to parse rundown.cue!

Your rundown.cue contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- A recipe defined twice under the same name
- A required parameter declared after a defaulted one
- A recipe with no steps

## Things you can try:
- Check the error message above for the specific line/column
- Validate the file without running anything:
~~~
$ rundown validate
~~~

## Example of a valid recipe definition:
~~~cue
recipes: [
  {
    name: "build"
    description: "Build the project"
    steps: ["go build ./..."]
  },
]
~~~`,
	}

	recipeNotFoundIssue = &Issue{
		id: RecipeNotFoundId,
		mdMsg: `
# Recipe not found!

The recipe you specified does not exist in the rundown.cue file.

## Things you can try:
- List all available recipes:
~~~
$ rundown list
~~~

- Check for typos in the recipe name
- Use tab completion:
~~~
$ rundown run <TAB>
~~~`,
	}

	argumentMismatchIssue = &Issue{
		id: ArgumentMismatchId,
		mdMsg: `
# Wrong number of arguments!

The recipe was invoked with arguments that don't match its parameter list.
Required parameters must be supplied; defaulted ones may be omitted from
the end of the argument list.

## Things you can try:
- Check the recipe's parameters:
~~~
$ rundown list
~~~

- Supply a value for every parameter shown as <required>
- Drop any extra trailing arguments`,
	}

	bindingResolutionFailedIssue = &Issue{
		id: BindingResolutionFailedId,
		mdMsg: `
# Binding resolution failed!

A command-substitution binding's subprocess exited with a non-zero status,
so no recipe was run.

## Things you can try:
- Run the binding's command manually in your shell
- Check that the tools the binding invokes are installed and in PATH
- Inspect all bindings without running anything:
~~~
$ rundown bindings
~~~`,
	}

	bindingCycleIssue = &Issue{
		id: BindingCycleId,
		mdMsg: `
# Binding cycle detected!

Your bindings reference each other in a loop, so no resolution order exists.

## Example of a cycle:
~~~cue
bindings: [
  {name: "a", value: "{{b}}"},
  {name: "b", value: "{{a}}"},  // Cycle: a -> b -> a
]
~~~

## Things you can try:
- Review the {{...}} references in your binding values
- Break the loop by inlining one of the values`,
	}

	unresolvedPlaceholderIssue = &Issue{
		id: UnresolvedPlaceholderId,
		mdMsg: `
# Unresolved placeholder!

A step references a {{name}} that is neither a binding nor a parameter of
the recipe. Placeholders never expand to the empty string, so the run was
aborted before any step executed.

## Things you can try:
- Check the placeholder name for typos
- Add a binding with that name:
~~~cue
bindings: [
  {name: "version", value: "1.0.0"},
]
~~~

- Or add it as a recipe parameter`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Shell not found!

Could not find a suitable shell for the 'native' runtime.

## Shells we look for:
- Linux/macOS: $SHELL, bash, sh
- Windows: pwsh, powershell, cmd

## Things you can try:
- Install bash or another POSIX shell
- Set the SHELL environment variable
- Use the 'virtual' runtime instead (built-in shell):
~~~
$ rundown run --runtime virtual build
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the rundown configuration file.

## Configuration file locations:
- Linux: ~/.config/rundown/config.cue
- macOS: ~/Library/Application Support/rundown/config.cue
- Windows: %APPDATA%\rundown\config.cue

## Things you can try:
- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/rundown/config.cue
~~~

## Example configuration:
~~~cue
default_runtime: "native"

ui: {
  color_scheme: "auto"
  verbose: false
}
~~~`,
	}

	serveStartFailedIssue = &Issue{
		id: ServeStartFailedId,
		mdMsg: `
# Failed to start the SSH server!

The 'rundown serve' listener could not be started.

## Common causes:
- The port is already in use
- Binding to a privileged port (< 1024) without permission

## Things you can try:
- Pick a different port:
~~~
$ rundown serve --port 2223
~~~

- Check what is listening on the port:
~~~
$ ss -tlnp | grep 2222
~~~`,
	}

	issues = map[Id]*Issue{
		rundownfileNotFoundIssue.Id():     rundownfileNotFoundIssue,
		rundownfileParseErrorIssue.Id():   rundownfileParseErrorIssue,
		recipeNotFoundIssue.Id():          recipeNotFoundIssue,
		argumentMismatchIssue.Id():        argumentMismatchIssue,
		bindingResolutionFailedIssue.Id(): bindingResolutionFailedIssue,
		bindingCycleIssue.Id():            bindingCycleIssue,
		unresolvedPlaceholderIssue.Id():   unresolvedPlaceholderIssue,
		shellNotFoundIssue.Id():           shellNotFoundIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		serveStartFailedIssue.Id():        serveStartFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
