package audit

import (
	"time"

	id "meridian/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention. Every sovereignty
	// decision lands here: an unaudited decision is a compliance gap.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility, such as deployment lifecycle changes. These can be sampled
	// or aggregated with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category     EventCategory
	Timestamp    time.Time
	TenantID     id.TenantID
	Jurisdiction string
	// Action is the domain event type, e.g. "routing.decision".
	Action string
	// Subject identifies the entity the event is about (rule, policy,
	// deployment, or model registration ID).
	Subject string
	// Decision carries the outcome for decision events (enforcement action or
	// selected deployment ID).
	Decision string
	// Reason explains the outcome ("primary", "fallback:0",
	// "no_compliant_deployment", matched rule ID, ...).
	Reason string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
}

// EventType enumerates the domain events this service publishes.
type EventType string

const (
	EventResidencyDecision   EventType = "residency.decision"
	EventResidencyViolation  EventType = "residency.violation"
	EventRuleCreated         EventType = "residency.rule_created"
	EventDeploymentInitiated EventType = "deployment.initiated"
	EventDeploymentActive    EventType = "deployment.active"
	EventRoutingDecision     EventType = "routing.decision"
	EventMappingCreated      EventType = "compliance.mapping_created"
	EventModelRegistered     EventType = "model.registered"
	EventModelApproved       EventType = "model.approved"
)

// eventCategories maps each event type to its category.
// Compliance: decision trail for regulators, long retention.
// Operations: lifecycle visibility, can be sampled.
var eventCategories = map[EventType]EventCategory{
	EventResidencyDecision:   CategoryCompliance,
	EventResidencyViolation:  CategoryCompliance,
	EventRuleCreated:         CategoryCompliance,
	EventRoutingDecision:     CategoryCompliance,
	EventMappingCreated:      CategoryCompliance,
	EventModelApproved:       CategoryCompliance,
	EventDeploymentInitiated: CategoryOperations,
	EventDeploymentActive:    CategoryOperations,
	EventModelRegistered:     CategoryOperations,
}

// Category returns the EventCategory for this event type.
// Unknown events default to CategoryOperations.
func (e EventType) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
