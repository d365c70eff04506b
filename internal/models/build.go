package models

import (
	"fmt"
	"strings"
)

// Result is the terminal result of a build. The zero value means the build
// has no result yet.
type Result string

const (
	ResultNone     Result = ""
	ResultSuccess  Result = "SUCCESS"
	ResultUnstable Result = "UNSTABLE"
	ResultFailure  Result = "FAILURE"
	ResultNotBuilt Result = "NOT_BUILT"
	ResultAborted  Result = "ABORTED"
)

// ParseResult converts a Jenkins result name into a Result
func ParseResult(s string) (Result, error) {
	switch r := Result(strings.ToUpper(strings.TrimSpace(s))); r {
	case ResultNone, ResultSuccess, ResultUnstable, ResultFailure, ResultNotBuilt, ResultAborted:
		return r, nil
	}
	return ResultNone, fmt.Errorf("unknown build result %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Result) UnmarshalText(text []byte) error {
	parsed, err := ParseResult(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// CauseKind identifies what triggered a build
type CauseKind string

const (
	CauseUser     CauseKind = "user"
	CauseUpstream CauseKind = "upstream"
	CauseTimer    CauseKind = "timer"
	CauseOther    CauseKind = "other"
)

// Cause is one reason a build was triggered
type Cause struct {
	Kind             CauseKind `json:"kind"`
	UserID           string    `json:"user_id,omitempty"`
	UserName         string    `json:"user_name,omitempty"`
	ShortDescription string    `json:"short_description,omitempty"`
}

// ChangeEntry is a single SCM commit recorded against a build
type ChangeEntry struct {
	CommitID string `json:"commit_id"`
	Message  string `json:"message"`
	Author   string `json:"author"`
}

// HostInfo describes the CI host that produced the event
type HostInfo struct {
	RootURL string `json:"root_url"`
	Version string `json:"version,omitempty"`
}

// RootBuild references the top-level build of a chained pipeline
type RootBuild struct {
	Number      int           `json:"number"`
	ProjectName string        `json:"project_name"`
	ChangeSet   []ChangeEntry `json:"change_set,omitempty"`
}

// BuildEvent is a snapshot of one build at the moment of notification.
// Builders only read it.
type BuildEvent struct {
	FullDisplayName   string
	URL               string // relative to the host root URL
	Number            int
	ProjectName       string
	StartTimeMillis   int64
	DurationMillis    int64
	Building          bool
	Result            Result
	Causes            []Cause
	Description       string
	ParentDescription string
	BuiltOn           string
	ChangeSet         []ChangeEntry
	Host              HostInfo
	Root              *RootBuild
}

// RootNumber returns the build number of the root build
func (e *BuildEvent) RootNumber() int {
	if e.Root != nil {
		return e.Root.Number
	}
	return e.Number
}

// RootProjectName returns the project name of the root build
func (e *BuildEvent) RootProjectName() string {
	if e.Root != nil {
		return e.Root.ProjectName
	}
	return e.ProjectName
}

// RootChangeSet returns the change set recorded on the root build
func (e *BuildEvent) RootChangeSet() []ChangeEntry {
	if e.Root != nil {
		return e.Root.ChangeSet
	}
	return e.ChangeSet
}
