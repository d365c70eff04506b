package services

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/imyashkale/bigpanda-notifier/internal/models"
)

// DefaultHost is reported when a build ran on an unnamed node
const DefaultHost = "master"

// folderSeparator is the escaped form of the » Jenkins puts between folders
const folderSeparator = `\u00BB`

// BuildDeployment derives the BigPanda deployment event for a build.
// Status fields are only filled in once the deployment has ended.
func BuildDeployment(event *models.BuildEvent, state models.DeploymentState, useNodeName bool) models.DeploymentPayload {
	payload := models.DeploymentPayload{
		Version:      strconv.Itoa(event.RootNumber()),
		Source:       "Jenkins: " + event.Host.RootURL + " Version: " + event.Host.Version,
		SourceSystem: "jenkins",
		Hosts:        []string{deploymentHost(event, useNodeName)},
		Component:    strings.ReplaceAll(JavaScriptEscape(event.RootProjectName()), folderSeparator, "/"),
	}

	payload.Owner, payload.Description = ownership(event)

	if state != models.DeploymentStarted {
		if event.Result == models.ResultSuccess {
			payload.Status = "success"
		} else {
			payload.Status = "failure"
			payload.ErrorMessage = resultMessage(event.Result)
		}
	}

	return payload
}

func deploymentHost(event *models.BuildEvent, useNodeName bool) string {
	host := event.BuiltOn
	if !useNodeName && event.ProjectName != event.RootProjectName() {
		host = event.ProjectName
	}
	if host == "" {
		host = DefaultHost
	}
	return host
}

// ownership picks owner and description from the root change set, or from
// the first cause when nothing was committed.
func ownership(event *models.BuildEvent) (owner, description string) {
	if strings.TrimSpace(event.Description) != "" {
		description = event.Description
	}

	entries := event.RootChangeSet()
	if len(entries) == 0 {
		owner = "unknown"
		if len(event.Causes) > 0 {
			first := event.Causes[0]
			if first.Kind == models.CauseUser && strings.TrimSpace(first.UserName) != "" {
				owner = first.UserName
			}
			if description == "" {
				description = first.ShortDescription
			}
		}
		return owner, description
	}

	var authors, commits []string
	seenAuthor := map[string]bool{}
	seenCommit := map[string]bool{}
	for _, entry := range entries {
		if !seenAuthor[entry.Author] {
			seenAuthor[entry.Author] = true
			authors = append(authors, entry.Author)
		}
		commit := entry.CommitID + ":" + entry.Message
		if !seenCommit[commit] {
			seenCommit[commit] = true
			commits = append(commits, commit)
		}
	}

	owner = strings.Join(authors, ", ")
	if description == "" {
		description = strings.Join(commits, ", ")
	}
	return owner, description
}

func resultMessage(result models.Result) string {
	switch result {
	case models.ResultSuccess:
		return "Success"
	case models.ResultFailure:
		return "FAILURE"
	case models.ResultAborted:
		return "ABORTED"
	case models.ResultNotBuilt:
		return "Not built"
	case models.ResultUnstable:
		return "Unstable"
	}
	return "Unknown"
}

// JavaScriptEscape escapes s for use inside a JavaScript string literal.
// Non-ASCII characters become \uXXXX escapes of their UTF-16 code units.
func JavaScriptEscape(s string) string {
	var b strings.Builder
	for _, u := range utf16.Encode([]rune(s)) {
		switch {
		case u > 0x7f:
			fmt.Fprintf(&b, `\u%04X`, u)
		case u == '\b':
			b.WriteString(`\b`)
		case u == '\n':
			b.WriteString(`\n`)
		case u == '\t':
			b.WriteString(`\t`)
		case u == '\f':
			b.WriteString(`\f`)
		case u == '\r':
			b.WriteString(`\r`)
		case u < 0x20:
			fmt.Fprintf(&b, `\u%04X`, u)
		case u == '\'', u == '"', u == '\\', u == '/':
			b.WriteByte('\\')
			b.WriteByte(byte(u))
		default:
			b.WriteByte(byte(u))
		}
	}
	return b.String()
}
