package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/imyashkale/bigpanda-notifier/internal/models"
	"github.com/imyashkale/bigpanda-notifier/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadEventFromJenkinsEnvironment(t *testing.T) {
	getenv := envMap(map[string]string{
		"JOB_NAME":      "folder/deploy-api",
		"BUILD_NUMBER":  "42",
		"JENKINS_URL":   "https://ci.example.com/",
		"BUILD_URL":     "https://ci.example.com/job/folder/job/deploy-api/42/",
		"NODE_NAME":     "agent-7",
		"BUILD_USER_ID": "alice",
		"BUILD_USER":    "Alice Doe",
	})

	req, err := loadEvent("", getenv)
	require.NoError(t, err)

	assert.Equal(t, "folder/deploy-api #42", req.FullDisplayName)
	assert.Equal(t, 42, req.Number)
	assert.Equal(t, "https://ci.example.com/", req.Host.RootURL)
	assert.Equal(t, "job/folder/job/deploy-api/42/", req.URL)
	assert.Equal(t, "agent-7", req.BuiltOn)
	assert.Equal(t, []models.Cause{{Kind: models.CauseUser, UserID: "alice", UserName: "Alice Doe"}}, req.Causes)
}

func TestLoadEventFileTakesPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.json")
	body := `{"full_display_name":"api #7","project_name":"api","number":7,"result":"FAILURE","start_time_millis":1000}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	req, err := loadEvent(path, envMap(map[string]string{
		"JOB_NAME":     "other",
		"BUILD_NUMBER": "99",
		"NODE_NAME":    "agent-1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "api #7", req.FullDisplayName)
	assert.Equal(t, 7, req.Number)
	assert.Equal(t, models.ResultFailure, req.Result)
	assert.Equal(t, "agent-1", req.BuiltOn)
}

func TestLoadEventRejectsUnknownResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"full_display_name":"x","result":"BROKEN"}`), 0o600))

	_, err := loadEvent(path, envMap(nil))
	assert.Error(t, err)
}

func TestLoadEventWithoutBuild(t *testing.T) {
	_, err := loadEvent("", envMap(nil))
	assert.Error(t, err)
}

func TestBuildEnvironmentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.env")
	require.NoError(t, os.WriteFile(path, []byte("GIT_COMMIT=abc123\nBRANCH_NAME=main\n"), 0o600))

	vars, err := newBuildEnvironment(path).Environment()
	require.NoError(t, err)
	assert.Equal(t, "abc123", vars["GIT_COMMIT"])
	assert.Equal(t, "main", vars["BRANCH_NAME"])

	_, err = newBuildEnvironment(filepath.Join(t.TempDir(), "missing.env")).Environment()
	assert.Error(t, err)
}

func jenkinsEnv() func(string) string {
	return envMap(map[string]string{
		"JOB_NAME":     "api",
		"BUILD_NUMBER": "5",
		"JENKINS_URL":  "https://ci.example.com/",
		"BUILD_URL":    "https://ci.example.com/job/api/5/",
	})
}

func TestChangeStartedIsInProgress(t *testing.T) {
	req, err := loadEvent("", jenkinsEnv())
	require.NoError(t, err)

	now := time.UnixMilli(1700000000123)
	markStarted(req, 0, now)

	change := services.BuildChange(req.ToDomain(), services.StaticEnvironment{}, services.NewConsole(req.FullDisplayName))
	assert.Equal(t, models.ChangeStatusInProgress, change.Status)
	assert.Equal(t, int64(1700000000), change.Start)
	assert.Nil(t, change.End)
}

func TestMarkStartedKeepsKnownStartTime(t *testing.T) {
	req, err := loadEvent("", jenkinsEnv())
	require.NoError(t, err)

	markStarted(req, 1600000000000, time.UnixMilli(1700000000000))
	assert.Equal(t, int64(1600000000000), req.StartTimeMillis)
	assert.True(t, req.Building)
}

func TestMarkCompletedResult(t *testing.T) {
	now := time.UnixMilli(1700000060000)

	tests := []struct {
		name    string
		flag    string
		env     string
		want    models.Result
		wantErr bool
	}{
		{"flag", "success", "", models.ResultSuccess, false},
		{"flag wins over environment", "FAILURE", "SUCCESS", models.ResultFailure, false},
		{"environment", "", "UNSTABLE", models.ResultUnstable, false},
		{"nothing given", "", "", models.ResultNone, false},
		{"unknown", "GREEN", "", models.ResultNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := loadEvent("", jenkinsEnv())
			require.NoError(t, err)

			err = markCompleted(req, 1700000000000, tt.flag, envMap(map[string]string{"BUILD_RESULT": tt.env}), now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Result)
			assert.False(t, req.Building)
			assert.Equal(t, int64(60000), req.DurationMillis)
		})
	}
}

func TestDeployEndAfterSuccessfulBuild(t *testing.T) {
	req, err := loadEvent("", jenkinsEnv())
	require.NoError(t, err)

	require.NoError(t, markCompleted(req, 0, "SUCCESS", envMap(nil), time.UnixMilli(1700000000000)))

	payload := services.BuildDeployment(req.ToDomain(), models.DeploymentStateFor(req.Result), false)
	assert.Equal(t, "success", payload.Status)
	assert.Empty(t, payload.ErrorMessage)
}

func TestDeployEndRequiresResult(t *testing.T) {
	t.Setenv("JOB_NAME", "api")
	t.Setenv("BUILD_NUMBER", "5")
	t.Setenv("BUILD_RESULT", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"deploy", "end", "--result", "", "--event", ""})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build result unknown")
}
