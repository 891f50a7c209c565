package models

import "github.com/aws/aws-lambda-go/events"

const (
	scheduledSource     = "aws.events"
	scheduledDetailType = "Scheduled Event"
)

// Event is the EventBridge payload that triggers a cleanup run.
type Event = events.CloudWatchEvent

// IsScheduled reports whether e was emitted by an EventBridge schedule rather than invoked by hand.
func IsScheduled(e Event) bool {
	return e.Source == scheduledSource && e.DetailType == scheduledDetailType
}
