package services

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/imyashkale/bigpanda-notifier/internal/models"
)

// EnvironmentSource gives access to a build's environment variables.
// Retrieval may fail; callers treat a failure as "no data".
type EnvironmentSource interface {
	Environment() (map[string]string, error)
}

// StaticEnvironment is an EnvironmentSource backed by a fixed map
type StaticEnvironment struct {
	Vars map[string]string
	Err  error
}

// Environment implements EnvironmentSource
func (s StaticEnvironment) Environment() (map[string]string, error) {
	return s.Vars, s.Err
}

// BuildChange derives the BigPanda change for a build event.
// Environment failures are written to the console and otherwise ignored.
func BuildChange(event *models.BuildEvent, env EnvironmentSource, console *Console) models.Change {
	summary := SanitizeSummary(event.FullDisplayName)

	change := models.Change{
		Status:     ChangeStatus(event),
		Identifier: Identifier(summary, event.StartTimeMillis),
		Start:      event.StartTimeMillis / 1000,
		Summary:    summary,
		TicketURL:  event.Host.RootURL + event.URL,
	}
	if event.DurationMillis != 0 {
		end := (event.StartTimeMillis + event.DurationMillis) / 1000
		change.End = &end
	}

	tags := models.ChangeTags{
		Description:    changeDescription(event),
		JenkinsVersion: event.Host.Version,
	}
	tags.UserID, tags.UserName = causer(event.Causes)

	vars, err := env.Environment()
	if err != nil {
		console.Println("BigPanda Notifier: Could not retrieve environment.")
		vars = nil
	}
	lookup := func(name string) *string {
		if value, ok := vars[name]; ok {
			return &value
		}
		return nil
	}
	tags.GitURL = lookup("GIT_URL")
	tags.GitCommit = lookup("GIT_COMMIT")
	tags.BranchName = lookup("BRANCH_NAME")
	tags.NodeNames = lookup("NODE_NAME")
	tags.NodeLabels = lookup("NODE_LABELS")

	change.Tags = tags
	return change
}

// ChangeStatus maps a build onto a BigPanda change status
func ChangeStatus(event *models.BuildEvent) string {
	if event.Building {
		return models.ChangeStatusInProgress
	}
	switch event.Result {
	case models.ResultFailure, models.ResultAborted, models.ResultNotBuilt:
		return models.ChangeStatusCanceled
	}
	return models.ChangeStatusDone
}

// SanitizeSummary drops every character outside [A-Za-z0-9-# ]
func SanitizeSummary(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '#', r == ' ':
			return r
		}
		return -1
	}, name)
}

// Identifier is the change dedup key: the lowercase hex MD5 of the
// sanitized summary followed by the start time in milliseconds.
func Identifier(summary string, startMillis int64) string {
	sum := md5.Sum([]byte(summary + strconv.FormatInt(startMillis, 10)))
	return hex.EncodeToString(sum[:])
}

// causer resolves user_id and user_name from the first cause only
func causer(causes []models.Cause) (userID, userName string) {
	if len(causes) == 0 {
		return "", ""
	}
	switch cause := causes[0]; cause.Kind {
	case models.CauseUser:
		return orAnonymous(cause.UserID), orAnonymous(cause.UserName)
	case models.CauseUpstream:
		return "upstream", ""
	case models.CauseTimer:
		return "timer", ""
	default:
		return "Unknown", "SYSTEM"
	}
}

func orAnonymous(s string) string {
	if s == "" {
		return "Anonymous"
	}
	return s
}

// changeDescription returns the build description, falling back to the
// parent job. The parent check is inverted: a blank parent description is
// passed through and a non-blank one yields "No Description".
// TODO: confirm with BigPanda whether the parent description should win.
func changeDescription(event *models.BuildEvent) *string {
	if strings.TrimSpace(event.Description) != "" {
		d := event.Description
		return &d
	}
	if strings.TrimSpace(event.ParentDescription) == "" {
		if event.ParentDescription == "" {
			return nil
		}
		d := event.ParentDescription
		return &d
	}
	d := "No Description"
	return &d
}
