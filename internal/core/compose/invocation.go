package compose

import "strings"

// =============================================================================
// Flags
// =============================================================================

// Flag names understood by docker compose.
const (
	FlagEnvFile     = "--env-file"
	FlagProjectName = "--project-name"
	FlagComposeFile = "-f"
	FlagFile        = "--file" // same as -f, used for user overrides
)

// Flag is one compose flag with its value.
type Flag struct {
	Name  string
	Value string
}

func (f Flag) String() string {
	return f.Name + " " + f.Value
}

func (f Flag) isFile() bool {
	return f.Name == FlagComposeFile || f.Name == FlagFile
}

// =============================================================================
// Invocation
// =============================================================================

// Invocation is an ordered compose command line for one app.
// Later --env-file entries override earlier ones, later compose files
// are layered on top of earlier ones.
type Invocation struct {
	AppID   string
	Layout  Layout
	Flags   []Flag
	command string
	tokens  []string
}

// Command returns the sub-command token as given, e.g. "up -d".
func (i *Invocation) Command() string {
	return i.command
}

// Strings returns one entry per flag followed by the command token.
//
//	["--env-file /data/app-data/web/app.env", "--project-name web", ..., "up -d"]
func (i *Invocation) Strings() []string {
	out := make([]string, 0, len(i.Flags)+1)
	for _, f := range i.Flags {
		out = append(out, f.String())
	}
	return append(out, i.command)
}

// Argv returns the tokenized arguments to pass to the compose tool.
func (i *Invocation) Argv() []string {
	out := make([]string, 0, 2*len(i.Flags)+len(i.tokens))
	for _, f := range i.Flags {
		out = append(out, f.Name, f.Value)
	}
	return append(out, i.tokens...)
}

// String renders the invocation as a single command line.
func (i *Invocation) String() string {
	return strings.Join(i.Strings(), " ")
}

// ProjectName returns the value of --project-name.
func (i *Invocation) ProjectName() string {
	for _, f := range i.Flags {
		if f.Name == FlagProjectName {
			return f.Value
		}
	}
	return ""
}

// EnvFiles returns env files in precedence order, lowest first.
func (i *Invocation) EnvFiles() []string {
	var files []string
	for _, f := range i.Flags {
		if f.Name == FlagEnvFile {
			files = append(files, f.Value)
		}
	}
	return files
}

// ComposeFiles returns compose files in layering order, base first.
func (i *Invocation) ComposeFiles() []string {
	var files []string
	for _, f := range i.Flags {
		if f.isFile() {
			files = append(files, f.Value)
		}
	}
	return files
}
