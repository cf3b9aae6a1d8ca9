package nats

// Stream names.
const (
	StreamEvents = "DAILYQUOTA_EVENTS"
)

// Subject constants.
const (
	SubjectEventsWildcard = "dailyquota.events.>"
	SubjectUsageEvent     = "dailyquota.events.usage"
)
