package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/imyashkale/bigpanda-notifier/internal/models"
	"github.com/joho/godotenv"
)

// loadEvent reads the event file, if any, and fills the gaps from the
// Jenkins build environment.
func loadEvent(path string, getenv func(string) string) (*models.BuildEventRequest, error) {
	req := &models.BuildEventRequest{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read event file: %w", err)
		}
		if err := json.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("failed to parse event file %s: %w", path, err)
		}
	}

	if req.Number == 0 {
		req.Number, _ = strconv.Atoi(getenv("BUILD_NUMBER"))
	}
	if req.ProjectName == "" {
		req.ProjectName = getenv("JOB_NAME")
	}
	if req.FullDisplayName == "" && req.ProjectName != "" {
		display := getenv("BUILD_DISPLAY_NAME")
		if display == "" {
			display = "#" + strconv.Itoa(req.Number)
		}
		req.FullDisplayName = req.ProjectName + " " + display
	}
	if req.Host.RootURL == "" {
		req.Host.RootURL = getenv("JENKINS_URL")
	}
	if req.URL == "" {
		req.URL = strings.TrimPrefix(getenv("BUILD_URL"), req.Host.RootURL)
	}
	if req.BuiltOn == "" {
		req.BuiltOn = getenv("NODE_NAME")
	}
	if len(req.Causes) == 0 {
		if userID := getenv("BUILD_USER_ID"); userID != "" {
			req.Causes = []models.Cause{{
				Kind:     models.CauseUser,
				UserID:   userID,
				UserName: getenv("BUILD_USER"),
			}}
		}
	}

	if req.FullDisplayName == "" {
		return nil, errors.New("build name unknown: pass --event or run inside a Jenkins build")
	}
	return req, nil
}

// markStarted describes a build that is still running
func markStarted(req *models.BuildEventRequest, startMillis int64, now time.Time) {
	req.Building = true
	if req.StartTimeMillis == 0 {
		req.StartTimeMillis = startMillis
	}
	if req.StartTimeMillis == 0 {
		req.StartTimeMillis = now.UnixMilli()
	}
}

// markCompleted describes a finished build. The result comes from the event
// file, then the flag, then BUILD_RESULT. Duration runs until now when the
// start time is known.
func markCompleted(req *models.BuildEventRequest, startMillis int64, result string, getenv func(string) string, now time.Time) error {
	req.Building = false
	if req.Result == models.ResultNone {
		if result == "" {
			result = getenv("BUILD_RESULT")
		}
		parsed, err := models.ParseResult(result)
		if err != nil {
			return err
		}
		req.Result = parsed
	}

	if req.StartTimeMillis == 0 {
		req.StartTimeMillis = startMillis
	}
	if req.StartTimeMillis == 0 {
		req.StartTimeMillis = now.UnixMilli()
		return nil
	}
	if req.DurationMillis == 0 {
		req.DurationMillis = now.UnixMilli() - req.StartTimeMillis
	}
	return nil
}

// buildEnvironment is the process environment, optionally overlaid with
// a KEY=VALUE file written by an earlier build step
type buildEnvironment struct {
	file string
}

func newBuildEnvironment(file string) buildEnvironment {
	return buildEnvironment{file: file}
}

// Environment implements services.EnvironmentSource
func (e buildEnvironment) Environment() (map[string]string, error) {
	vars := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	if e.file == "" {
		return vars, nil
	}

	extra, err := godotenv.Read(e.file)
	if err != nil {
		return nil, fmt.Errorf("failed to read build environment: %w", err)
	}
	for k, v := range extra {
		vars[k] = v
	}
	return vars, nil
}
