package models

// ChangePayload is the document posted to the BigPanda changes webhook
type ChangePayload struct {
	APIKey string `json:"apiKey"`
	AppKey string `json:"appKey"`
	Change Change `json:"change"`
}

// Change describes a build as a BigPanda change
type Change struct {
	Status     string     `json:"status"`
	Identifier string     `json:"identifier"`
	Start      int64      `json:"start"`
	End        *int64     `json:"end,omitempty"`
	Summary    string     `json:"summary"`
	TicketURL  string     `json:"ticket_url"`
	Tags       ChangeTags `json:"tags"`
}

// ChangeTags holds the free-form tags of a change. Pointer fields are
// omitted when the underlying data is absent.
type ChangeTags struct {
	Description    *string `json:"description,omitempty"`
	JenkinsVersion string  `json:"jenkins_version"`
	UserID         string  `json:"user_id,omitempty"`
	UserName       string  `json:"user_name,omitempty"`
	GitURL         *string `json:"git_url,omitempty"`
	GitCommit      *string `json:"git_commit,omitempty"`
	BranchName     *string `json:"branch_name,omitempty"`
	NodeNames      *string `json:"node_names,omitempty"`
	NodeLabels     *string `json:"node_labels,omitempty"`
}

// Change statuses understood by BigPanda
const (
	ChangeStatusInProgress = "In Progress"
	ChangeStatusCanceled   = "Canceled"
	ChangeStatusDone       = "Done"
)

// DeploymentState is the lifecycle position of a deployment event
type DeploymentState int

const (
	DeploymentStarted DeploymentState = iota
	DeploymentSuccessful
	DeploymentFailed
)

func (s DeploymentState) String() string {
	switch s {
	case DeploymentStarted:
		return "STARTED"
	case DeploymentSuccessful:
		return "SUCCESSFUL"
	case DeploymentFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Endpoint returns the deployments API path segment for the state
func (s DeploymentState) Endpoint() string {
	if s == DeploymentStarted {
		return "start"
	}
	return "end"
}

// DeploymentStateFor picks the terminal state for a finished build
func DeploymentStateFor(result Result) DeploymentState {
	if result == ResultSuccess {
		return DeploymentSuccessful
	}
	return DeploymentFailed
}

// DeploymentPayload is the document posted to the BigPanda deployments API
type DeploymentPayload struct {
	Version      string   `json:"version"`
	Source       string   `json:"source"`
	SourceSystem string   `json:"source_system"`
	Hosts        []string `json:"hosts"`
	Owner        string   `json:"owner"`
	Description  string   `json:"description,omitempty"`
	Component    string   `json:"component"`
	Status       string   `json:"status,omitempty"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
}
