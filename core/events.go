package core

import "time"

// EventType enumerates lifecycle events.
type EventType string

const (
	EventFirstRun      EventType = "first_run"
	EventStartup       EventType = "startup"
	EventPushSeen      EventType = "push_seen"
	EventInAppSeen     EventType = "in_app_seen"
	EventCoreCreated   EventType = "core_created"
	EventCoreDestroyed EventType = "core_destroyed"
)

// Event is an immutable record of something that happened to a core instance.
type Event struct {
	Type     EventType `json:"type"`
	Time     time.Time `json:"time"`
	Instance string    `json:"instance"`
	State    State     `json:"state"`
	// Changed is false when the handler found nothing to update, e.g. a repeated first run.
	Changed bool `json:"changed"`
}

func NewEvent(typ EventType, instance string, state State, changed bool) Event {
	return Event{Type: typ, Time: time.Now().UTC(), Instance: instance, State: state, Changed: changed}
}

// SeenEvent returns the event type recorded when p is marked seen.
func SeenEvent(p Prompt) EventType {
	if p == PromptPush {
		return EventPushSeen
	}
	return EventInAppSeen
}
