package domain

import "fmt"

// Delta is the structural difference between two snapshots.
// Every list is sorted by identifier.
type Delta struct {
	AddedFollowers     []string           `json:"addedFollowers"`
	RemovedFollowers   []string           `json:"removedFollowers"`
	AddedSubscribers   []Subscriber       `json:"addedSubscribers"`
	RemovedSubscribers []Subscriber       `json:"removedSubscribers"`
	ChangedSubscribers []SubscriberChange `json:"changedSubscribers"`
}

// SubscriberChange describes a subscriber present in both snapshots whose
// record differs.
type SubscriberChange struct {
	ID     string     `json:"id"`
	Before Subscriber `json:"before"`
	After  Subscriber `json:"after"`

	// Fields lists the JSON names of the fields that differ.
	Fields []string `json:"fields"`
}

// IsEmpty reports whether the two snapshots were equivalent.
func (d Delta) IsEmpty() bool {
	return len(d.AddedFollowers) == 0 &&
		len(d.RemovedFollowers) == 0 &&
		len(d.AddedSubscribers) == 0 &&
		len(d.RemovedSubscribers) == 0 &&
		len(d.ChangedSubscribers) == 0
}

// Summary returns a one-line description suitable for logs.
func (d Delta) Summary() string {
	if d.IsEmpty() {
		return "no changes"
	}
	return fmt.Sprintf("followers +%d -%d, subscribers +%d -%d ~%d",
		len(d.AddedFollowers), len(d.RemovedFollowers),
		len(d.AddedSubscribers), len(d.RemovedSubscribers), len(d.ChangedSubscribers))
}
