package services

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/imyashkale/bigpanda-notifier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hex32 = regexp.MustCompile(`^[0-9a-f]{32}$`)

func strPtr(s string) *string { return &s }

func sampleEvent() *models.BuildEvent {
	return &models.BuildEvent{
		FullDisplayName: "My Build #3",
		URL:             "job/my-build/3/",
		Number:          3,
		ProjectName:     "my-build",
		StartTimeMillis: 1000000000000,
		Result:          models.ResultSuccess,
		Causes:          []models.Cause{{Kind: models.CauseUser, UserID: "alice", UserName: "Alice"}},
		Host:            models.HostInfo{RootURL: "https://ci.example.com/", Version: "2.440.1"},
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		start   int64
		want    string
	}{
		{"documented example", "My Build #3", 1000000000000, "598cccc71902e7cfcdb4de5f847d04a4"},
		{"keeps leading zeros", "job #20", 1000, "00f7cad435fd1216033c6cbe37b6a806"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Identifier(tt.summary, tt.start)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, hex32, got)
			assert.Equal(t, got, Identifier(tt.summary, tt.start))
		})
	}
}

func TestIdentifierAlwaysThirtyTwoHex(t *testing.T) {
	for i := int64(0); i < 500; i++ {
		assert.Regexp(t, hex32, Identifier("job #1", i))
	}
}

func TestSanitizeSummary(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Build #3", "My Build #3"},
		{"folder » api #12 (prod)", "folder  api #12 prod"},
		{"ünïcode_test.v2", "ncodetestv2"},
		{"release-1 #4", "release-1 #4"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SanitizeSummary(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, SanitizeSummary(got), "sanitizing must be idempotent")
		})
	}
}

func TestChangeStatus(t *testing.T) {
	tests := []struct {
		name     string
		building bool
		result   models.Result
		want     string
	}{
		{"building", true, models.ResultNone, models.ChangeStatusInProgress},
		{"building wins over result", true, models.ResultFailure, models.ChangeStatusInProgress},
		{"failure", false, models.ResultFailure, models.ChangeStatusCanceled},
		{"aborted", false, models.ResultAborted, models.ChangeStatusCanceled},
		{"not built", false, models.ResultNotBuilt, models.ChangeStatusCanceled},
		{"success", false, models.ResultSuccess, models.ChangeStatusDone},
		{"unstable", false, models.ResultUnstable, models.ChangeStatusDone},
		{"no result", false, models.ResultNone, models.ChangeStatusDone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &models.BuildEvent{Building: tt.building, Result: tt.result}
			assert.Equal(t, tt.want, ChangeStatus(event))
		})
	}
}

func TestBuildChangeTimes(t *testing.T) {
	event := sampleEvent()
	event.StartTimeMillis = 1000000000123

	change := BuildChange(event, StaticEnvironment{}, NewConsole("test"))
	assert.Equal(t, int64(1000000000), change.Start)
	assert.Nil(t, change.End)

	event.DurationMillis = 1500
	change = BuildChange(event, StaticEnvironment{}, NewConsole("test"))
	require.NotNil(t, change.End)
	assert.Equal(t, int64(1000000001), *change.End)
}

func TestBuildChangeFields(t *testing.T) {
	event := sampleEvent()
	event.FullDisplayName = "My Build (nightly) #3"

	change := BuildChange(event, StaticEnvironment{}, NewConsole("test"))

	assert.Equal(t, "My Build nightly #3", change.Summary)
	assert.Equal(t, Identifier("My Build nightly #3", event.StartTimeMillis), change.Identifier)
	assert.Equal(t, "https://ci.example.com/job/my-build/3/", change.TicketURL)
	assert.Equal(t, models.ChangeStatusDone, change.Status)
	assert.Equal(t, "2.440.1", change.Tags.JenkinsVersion)
}

func TestCauser(t *testing.T) {
	tests := []struct {
		name     string
		causes   []models.Cause
		wantID   string
		wantName string
	}{
		{"user", []models.Cause{{Kind: models.CauseUser, UserID: "alice", UserName: "Alice"}}, "alice", "Alice"},
		{"anonymous user", []models.Cause{{Kind: models.CauseUser}}, "Anonymous", "Anonymous"},
		{"upstream", []models.Cause{{Kind: models.CauseUpstream}}, "upstream", ""},
		{"timer", []models.Cause{{Kind: models.CauseTimer}}, "timer", ""},
		{"other", []models.Cause{{Kind: models.CauseOther}}, "Unknown", "SYSTEM"},
		{"first cause wins", []models.Cause{{Kind: models.CauseTimer}, {Kind: models.CauseUser, UserID: "bob"}}, "timer", ""},
		{"unknown first cause is not skipped", []models.Cause{{Kind: models.CauseOther}, {Kind: models.CauseUser, UserID: "bob"}}, "Unknown", "SYSTEM"},
		{"no causes", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, name := causer(tt.causes)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestBuildChangeSCMTags(t *testing.T) {
	env := StaticEnvironment{Vars: map[string]string{
		"GIT_URL":     "git@example.com:team/app.git",
		"GIT_COMMIT":  "abc123",
		"BRANCH_NAME": "",
		"NODE_NAME":   "agent-1",
	}}

	tags := BuildChange(sampleEvent(), env, NewConsole("test")).Tags

	assert.Equal(t, strPtr("git@example.com:team/app.git"), tags.GitURL)
	assert.Equal(t, strPtr("abc123"), tags.GitCommit)
	assert.Equal(t, strPtr(""), tags.BranchName)
	assert.Equal(t, strPtr("agent-1"), tags.NodeNames)
	assert.Nil(t, tags.NodeLabels)
}

func TestBuildChangeEnvironmentUnavailable(t *testing.T) {
	console := NewConsole("test")
	env := StaticEnvironment{
		Vars: map[string]string{"GIT_URL": "ignored"},
		Err:  errors.New("agent offline"),
	}

	tags := BuildChange(sampleEvent(), env, console).Tags

	assert.Nil(t, tags.GitURL)
	lines := console.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "BigPanda Notifier: Could not retrieve environment.", lines[0].Message)
}

func TestChangeDescription(t *testing.T) {
	tests := []struct {
		name   string
		build  string
		parent string
		want   *string
	}{
		{"build description", "deploys api", "parent", strPtr("deploys api")},
		{"non-blank parent yields placeholder", "", "parent job", strPtr("No Description")},
		{"blank parent passes through", "  ", "   ", strPtr("   ")},
		{"empty parent is omitted", "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &models.BuildEvent{Description: tt.build, ParentDescription: tt.parent}
			assert.Equal(t, tt.want, changeDescription(event))
		})
	}
}

func TestChangePayloadOmitsAbsentFields(t *testing.T) {
	event := sampleEvent()
	event.Causes = nil

	payload := models.ChangePayload{
		APIKey: "api",
		AppKey: "app",
		Change: BuildChange(event, StaticEnvironment{}, NewConsole("test")),
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	change := doc["change"].(map[string]interface{})
	tags := change["tags"].(map[string]interface{})

	assert.NotContains(t, change, "end")
	for _, key := range []string{"description", "user_id", "user_name", "git_url", "git_commit", "branch_name", "node_names", "node_labels"} {
		assert.NotContains(t, tags, key)
	}
	assert.Equal(t, "2.440.1", tags["jenkins_version"])
	assert.False(t, strings.Contains(string(data), "null"))
}

func TestBuildChangeDoesNotMutateEvent(t *testing.T) {
	event := sampleEvent()
	event.DurationMillis = 2000
	before := *event
	before.Causes = append([]models.Cause(nil), event.Causes...)

	BuildChange(event, StaticEnvironment{}, NewConsole("test"))

	assert.Equal(t, before, *event)
}
