package services

import (
	"context"

	"github.com/imyashkale/bigpanda-notifier/internal/config"
	"github.com/imyashkale/bigpanda-notifier/internal/logger"
	"github.com/imyashkale/bigpanda-notifier/internal/models"
)

// Deliverer posts a payload to a destination
type Deliverer interface {
	Deliver(ctx context.Context, dest Destination, payload interface{}) error
}

// Outcome is the result of one notification attempt
type Outcome struct {
	Status    string
	FailBuild bool
	Err       error
	Console   []models.ConsoleLine
}

// ToResponse converts the outcome for the CI host
func (o Outcome) ToResponse() models.NotificationResponse {
	return models.NotificationResponse{
		Status:    o.Status,
		FailBuild: o.FailBuild,
		Console:   o.Console,
	}
}

// Notifier reacts to build lifecycle events. It never returns an error:
// delivery problems end up in the outcome and on the build console.
type Notifier struct {
	client Deliverer
}

// NewNotifier creates a notifier that delivers through client
func NewNotifier(client Deliverer) *Notifier {
	return &Notifier{client: client}
}

// OnStarted sends a change when a build starts
func (n *Notifier) OnStarted(ctx context.Context, settings config.NotifierSettings, event *models.BuildEvent, env EnvironmentSource) Outcome {
	return n.publishChange(ctx, settings, event, env)
}

// OnCompleted sends a change when a build completes
func (n *Notifier) OnCompleted(ctx context.Context, settings config.NotifierSettings, event *models.BuildEvent, env EnvironmentSource) Outcome {
	return n.publishChange(ctx, settings, event, env)
}

func (n *Notifier) publishChange(ctx context.Context, settings config.NotifierSettings, event *models.BuildEvent, env EnvironmentSource) Outcome {
	console := NewConsole(event.FullDisplayName)
	if !settings.ChangesEnabled() {
		return Outcome{Status: models.NotificationDisabled, Err: ErrNotifierDisabled, Console: console.Lines()}
	}

	payload := models.ChangePayload{
		APIKey: settings.APIKey,
		AppKey: settings.AppKey,
		Change: BuildChange(event, env, console),
	}

	log := logger.WithFields(map[string]interface{}{
		"build":      event.FullDisplayName,
		"variant":    "change",
		"identifier": payload.Change.Identifier,
		"status":     payload.Change.Status,
	})

	if err := n.client.Deliver(ctx, ChangeDestination(settings), payload); err != nil {
		console.Println("BigPanda Notifier:  Failed: " + err.Error())
		log.WithField("error", err.Error()).Warn("Change notification failed")
		return Outcome{Status: models.NotificationFailed, Err: err, Console: console.Lines()}
	}

	console.Println("BigPanda Notifier: Success")
	log.Info("Change notification delivered")
	return Outcome{Status: models.NotificationDelivered, Console: console.Lines()}
}

// PreBuild announces the start of a deployment. A failed delivery is
// reported but never fails the build.
func (n *Notifier) PreBuild(ctx context.Context, settings config.NotifierSettings, event *models.BuildEvent) Outcome {
	return n.publishDeployment(ctx, settings, event, models.DeploymentStarted)
}

// PostBuild announces the end of a deployment. A failed delivery fails the
// build step.
func (n *Notifier) PostBuild(ctx context.Context, settings config.NotifierSettings, event *models.BuildEvent) Outcome {
	outcome := n.publishDeployment(ctx, settings, event, models.DeploymentStateFor(event.Result))
	outcome.FailBuild = outcome.Status == models.NotificationFailed
	return outcome
}

func (n *Notifier) publishDeployment(ctx context.Context, settings config.NotifierSettings, event *models.BuildEvent, state models.DeploymentState) Outcome {
	console := NewConsole(event.FullDisplayName)
	if !settings.DeploymentsEnabled() {
		console.Warn("WARNING: BigPanda Notification Disabled - Not configured.")
		console.Warn("Configure your BigPanda Notification at the global system settings...")
		return Outcome{Status: models.NotificationDisabled, Err: ErrNotifierDisabled, Console: console.Lines()}
	}

	payload := BuildDeployment(event, state, settings.UseNodeNameInsteadOfLabels)

	log := logger.WithFields(map[string]interface{}{
		"build":   event.FullDisplayName,
		"variant": "deployment",
		"state":   state.String(),
	})

	if err := n.client.Deliver(ctx, DeploymentDestination(settings, state), payload); err != nil {
		console.Error("Failed to execute BigPanda Notifier")
		console.Error(err.Error())
		log.WithField("error", err.Error()).Warn("Deployment notification failed")
		return Outcome{Status: models.NotificationFailed, Err: err, Console: console.Lines()}
	}

	console.Println("BigPanda Notifier executed")
	log.Info("Deployment notification delivered")
	return Outcome{Status: models.NotificationDelivered, Console: console.Lines()}
}
