package normalize

import (
	"strings"

	"gatehouse-hq/keystone/pkg/extract"
)

// RequiredFields lists the fields a submission must carry before it can be
// accepted, in the order they are reported missing.
var RequiredFields = []string{
	extract.FieldSummary,
	extract.FieldCategory,
	extract.FieldLocation,
	extract.FieldEventTime,
}

// Record is the canonical, type-normalized projection of best candidates per
// tracked field. An empty string or empty list is canonical absence.
type Record struct {
	Summary         string   `json:"summary,omitempty"`
	Category        string   `json:"category,omitempty"`
	Location        string   `json:"location,omitempty"`
	EventTime       string   `json:"event_time,omitempty"`
	Severity        string   `json:"severity,omitempty"`
	PeopleInvolved  []string `json:"people_involved,omitempty"`
	RequestedAction string   `json:"requested_action,omitempty"`
}

// Lookup resolves a tracked-field name to its canonical value. The second
// return is false for names the record does not track.
func (r *Record) Lookup(name string) (any, bool) {
	switch name {
	case extract.FieldSummary:
		return r.Summary, true
	case extract.FieldCategory:
		return r.Category, true
	case extract.FieldLocation:
		return r.Location, true
	case extract.FieldEventTime:
		return r.EventTime, true
	case extract.FieldSeverity:
		return r.Severity, true
	case extract.FieldPeopleInvolved:
		return r.PeopleInvolved, true
	case extract.FieldRequestedAction:
		return r.RequestedAction, true
	default:
		return nil, false
	}
}

// FieldAbsent reports whether the named field holds no canonical value.
// Unknown field names count as absent, keeping condition evaluation
// fail-closed rather than panicking on a typo in a policy document.
func (r *Record) FieldAbsent(name string) bool {
	v, ok := r.Lookup(name)
	if !ok {
		return true
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	default:
		return true
	}
}

// FieldString returns the string form of the named field and whether the
// field holds a value. List fields join their elements with ", ".
func (r *Record) FieldString(name string) (string, bool) {
	v, ok := r.Lookup(name)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case []string:
		if len(t) == 0 {
			return "", false
		}
		return strings.Join(t, ", "), true
	default:
		return "", false
	}
}
