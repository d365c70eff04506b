package models

import "time"

// BuildEventRequest is the body a CI host posts to report a lifecycle event
type BuildEventRequest struct {
	FullDisplayName   string            `json:"full_display_name" binding:"required"`
	URL               string            `json:"url"`
	Number            int               `json:"number" binding:"gte=0"`
	ProjectName       string            `json:"project_name" binding:"required"`
	StartTimeMillis   int64             `json:"start_time_millis" binding:"gte=0"`
	DurationMillis    int64             `json:"duration_millis"`
	Building          bool              `json:"building"`
	Result            Result            `json:"result"`
	Causes            []Cause           `json:"causes"`
	Description       string            `json:"description"`
	ParentDescription string            `json:"parent_description"`
	BuiltOn           string            `json:"built_on"`
	ChangeSet         []ChangeEntry     `json:"change_set"`
	Host              HostInfo          `json:"host"`
	Root              *RootBuild        `json:"root,omitempty"`
	Environment       map[string]string `json:"environment,omitempty"`
	// EnvironmentError is set by hosts that failed to read the build environment
	EnvironmentError string `json:"environment_error,omitempty"`
}

// ToDomain converts the request DTO into a BuildEvent snapshot
func (req *BuildEventRequest) ToDomain() *BuildEvent {
	event := &BuildEvent{
		FullDisplayName:   req.FullDisplayName,
		URL:               req.URL,
		Number:            req.Number,
		ProjectName:       req.ProjectName,
		StartTimeMillis:   req.StartTimeMillis,
		DurationMillis:    req.DurationMillis,
		Building:          req.Building,
		Result:            req.Result,
		Causes:            append([]Cause(nil), req.Causes...),
		Description:       req.Description,
		ParentDescription: req.ParentDescription,
		BuiltOn:           req.BuiltOn,
		ChangeSet:         append([]ChangeEntry(nil), req.ChangeSet...),
		Host:              req.Host,
	}
	if req.Root != nil {
		root := *req.Root
		root.ChangeSet = append([]ChangeEntry(nil), req.Root.ChangeSet...)
		event.Root = &root
	}
	return event
}

// ConsoleLine is a single line written to a build's console
type ConsoleLine struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
	Message   string    `json:"message"`
}

// Notification statuses reported back to the CI host
const (
	NotificationDelivered = "delivered"
	NotificationFailed    = "failed"
	NotificationDisabled  = "disabled"
)

// NotificationResponse is returned to the CI host after an event is handled
type NotificationResponse struct {
	Status    string        `json:"status"`
	FailBuild bool          `json:"fail_build"`
	Console   []ConsoleLine `json:"console"`
}
