package task

import (
	"fmt"
	"strings"
)

// Status is the GTD list a task currently sits on.
type Status string

const (
	StatusNextAction   Status = "Next Action"
	StatusWaitingFor   Status = "Waiting For"
	StatusSomedayMaybe Status = "Someday/Maybe"
	StatusReference    Status = "Reference"
	StatusCompleted    Status = "Completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusNextAction,
	StatusWaitingFor,
	StatusSomedayMaybe,
	StatusReference,
	StatusCompleted,
}

var statusAliases = map[string]Status{
	"nextaction":   StatusNextAction,
	"next":         StatusNextAction,
	"waitingfor":   StatusWaitingFor,
	"waiting":      StatusWaitingFor,
	"somedaymaybe": StatusSomedayMaybe,
	"someday":      StatusSomedayMaybe,
	"reference":    StatusReference,
	"completed":    StatusCompleted,
	"complete":     StatusCompleted,
	"done":         StatusCompleted,
}

// ParseStatus accepts the canonical status names as well as compact forms
// such as "next_action", "waiting" or "someday-maybe".
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "_", "", "-", "", "/", "").Replace(key)
	if status, ok := statusAliases[key]; ok {
		return status, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// Valid reports whether s is one of the closed set of statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Energy levels a task may be tagged with.
const (
	EnergyLow    = "low"
	EnergyMedium = "medium"
	EnergyHigh   = "high"
)

// ValidEnergyLevel reports whether level is empty or a known energy level.
func ValidEnergyLevel(level string) bool {
	switch level {
	case "", EnergyLow, EnergyMedium, EnergyHigh:
		return true
	}
	return false
}
