// Package telnyx holds the call-control REST client and the webhook event
// payload shapes delivered by Telnyx.
package telnyx

// Call lifecycle event types delivered to the call-control webhook.
const (
	EventCallInitiated        = "call.initiated"
	EventCallAnswered         = "call.answered"
	EventCallHangup           = "call.hangup"
	EventMachineDetectionEnd  = "call.machine.detection.ended"
	EventAIAssistantStarted   = "call.ai.started"
	EventAIAssistantReady     = "call.ai.ready"
	EventAIAssistantEnded     = "call.ai.ended"
	EventAIAssistantError     = "call.ai.error"
)

// Event is one webhook delivery: {"data": {"event_type", "payload"}}.
// Deliveries are at-least-once with no ordering guarantee; each event is
// handled independently and statelessly.
type Event struct {
	Data EventData `json:"data"`
}

type EventData struct {
	EventType string       `json:"event_type"`
	Payload   EventPayload `json:"payload"`
}

type EventPayload struct {
	CallControlID string `json:"call_control_id"`
	CallLegID     string `json:"call_leg_id,omitempty"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
	Direction     string `json:"direction,omitempty"`
	HangupCause   string `json:"hangup_cause,omitempty"`
	HangupSource  string `json:"hangup_source,omitempty"`
	Result        string `json:"result,omitempty"`
	Reason        string `json:"reason,omitempty"`
	ErrorCode     string `json:"error_code,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}
