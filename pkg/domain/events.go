package domain

import "encoding/json"

// EventType tags every protocol event.
type EventType string

const (
	EventProgress EventType = "progress"
	EventLog      EventType = "log"
	EventArtifact EventType = "artifact"
	EventResult   EventType = "result"

	EventSessionStart  EventType = "session_start"
	EventAwaitingInput EventType = "awaiting_input"
	EventSessionEnd    EventType = "session_end"
)

// StreamEvent is one entry of the one-way streaming vocabulary. Events
// marshal flat: a type field plus the kind-specific fields; a result event
// is the full response envelope merged with type "result".
type StreamEvent struct {
	Type     EventType
	Message  string
	Percent  *int
	Level    string
	Name     string
	URI      string
	Response *Response
}

// Progress reports forward motion. The optional percent is emitted only
// when given.
func Progress(message string, percent ...int) StreamEvent {
	ev := StreamEvent{Type: EventProgress, Message: message}
	if len(percent) > 0 {
		p := percent[0]
		ev.Percent = &p
	}
	return ev
}

// Log emits a leveled log line inside the stream.
func Log(level, message string) StreamEvent {
	return StreamEvent{Type: EventLog, Level: level, Message: message}
}

// Artifact announces a produced artifact by name and URI.
func Artifact(name, uri string) StreamEvent {
	return StreamEvent{Type: EventArtifact, Name: name, URI: uri}
}

// Result carries the terminal envelope of a stream. The driver returns the
// last one seen.
func Result(resp Response) StreamEvent {
	return StreamEvent{Type: EventResult, Response: &resp}
}

// MarshalJSON renders the flat tagged object for the event kind.
func (e StreamEvent) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventResult:
		merged := map[string]any{}
		if e.Response != nil {
			raw, err := json.Marshal(e.Response)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(raw, &merged); err != nil {
				return nil, err
			}
		}
		merged["type"] = string(EventResult)
		return json.Marshal(merged)
	case EventLog:
		return json.Marshal(map[string]any{
			"type":    string(e.Type),
			"level":   e.Level,
			"message": e.Message,
		})
	case EventArtifact:
		return json.Marshal(map[string]any{
			"type": string(e.Type),
			"name": e.Name,
			"uri":  e.URI,
		})
	default:
		obj := map[string]any{
			"type":    string(e.Type),
			"message": e.Message,
		}
		if e.Percent != nil {
			obj["percent"] = *e.Percent
		}
		return json.Marshal(obj)
	}
}

// SessionEvent is one entry of the bidirectional session vocabulary.
// Opaque events carry raw fields and marshal as-is, so tools can extend the
// protocol without the driver caring.
type SessionEvent struct {
	Type   EventType
	Msg    string
	Prompt string
	Status string
	Fields map[string]any
}

// SessionStart opens a session with a greeting and the default "> " prompt.
func SessionStart(message string) SessionEvent {
	return SessionEvent{Type: EventSessionStart, Msg: message, Prompt: "> "}
}

// Awaiting asks the caller for the next input line.
func Awaiting(prompt string) SessionEvent {
	return SessionEvent{Type: EventAwaitingInput, Prompt: prompt}
}

// SessionEndEvent closes the session with a success status.
func SessionEndEvent() SessionEvent {
	return SessionEvent{Type: EventSessionEnd, Status: "success"}
}

// Opaque wraps arbitrary fields as a session event.
func Opaque(fields map[string]any) SessionEvent {
	return SessionEvent{Fields: fields}
}

// Kind resolves the effective event type, looking inside opaque fields so
// the driver can honor a hand-built session_end.
func (e SessionEvent) Kind() EventType {
	if e.Type != "" {
		return e.Type
	}
	if t, ok := e.Fields["type"].(string); ok {
		return EventType(t)
	}
	return ""
}

// MarshalJSON renders the tagged object for the event kind.
func (e SessionEvent) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventSessionStart:
		return json.Marshal(map[string]any{
			"type":    string(e.Type),
			"message": e.Msg,
			"prompt":  e.Prompt,
		})
	case EventAwaitingInput:
		return json.Marshal(map[string]any{
			"type":   string(e.Type),
			"prompt": e.Prompt,
		})
	case EventSessionEnd:
		return json.Marshal(map[string]any{
			"type":   string(e.Type),
			"status": e.Status,
		})
	default:
		if e.Fields == nil {
			return []byte("null"), nil
		}
		return json.Marshal(e.Fields)
	}
}
