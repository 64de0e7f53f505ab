package services

import (
	"reflect"
	"sort"
	"strings"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// subscriberField is a Subscriber struct field and its JSON name.
type subscriberField struct {
	index int
	name  string
}

var subscriberFields = func() []subscriberField {
	t := reflect.TypeOf(domain.Subscriber{})
	fields := make([]subscriberField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" {
			name = f.Name
		}
		fields = append(fields, subscriberField{index: i, name: name})
	}
	return fields
}()

// Diff computes the structural change from prev to cur.
//
// Followers are compared by followerId and subscribers by id. A subscriber
// present in both snapshots is changed when any field differs. If an
// identifier repeats inside one snapshot, the last occurrence wins. Output
// lists are sorted by identifier, so the result does not depend on
// snapshot order.
func Diff(prev, cur domain.SyncData) domain.Delta {
	delta := domain.Delta{
		AddedFollowers:     []string{},
		RemovedFollowers:   []string{},
		AddedSubscribers:   []domain.Subscriber{},
		RemovedSubscribers: []domain.Subscriber{},
		ChangedSubscribers: []domain.SubscriberChange{},
	}

	prevFollowers := followerSet(prev.Followers)
	curFollowers := followerSet(cur.Followers)
	for id := range curFollowers {
		if _, ok := prevFollowers[id]; !ok {
			delta.AddedFollowers = append(delta.AddedFollowers, id)
		}
	}
	for id := range prevFollowers {
		if _, ok := curFollowers[id]; !ok {
			delta.RemovedFollowers = append(delta.RemovedFollowers, id)
		}
	}
	sort.Strings(delta.AddedFollowers)
	sort.Strings(delta.RemovedFollowers)

	prevSubs := subscriberIndex(prev.Subscribers)
	curSubs := subscriberIndex(cur.Subscribers)
	for id, after := range curSubs {
		before, ok := prevSubs[id]
		switch {
		case !ok:
			delta.AddedSubscribers = append(delta.AddedSubscribers, after)
		case before != after:
			delta.ChangedSubscribers = append(delta.ChangedSubscribers, domain.SubscriberChange{
				ID:     id,
				Before: before,
				After:  after,
				Fields: changedFields(before, after),
			})
		}
	}
	for id, before := range prevSubs {
		if _, ok := curSubs[id]; !ok {
			delta.RemovedSubscribers = append(delta.RemovedSubscribers, before)
		}
	}
	sortSubscribers(delta.AddedSubscribers)
	sortSubscribers(delta.RemovedSubscribers)
	sort.Slice(delta.ChangedSubscribers, func(i, j int) bool {
		return delta.ChangedSubscribers[i].ID < delta.ChangedSubscribers[j].ID
	})

	return delta
}

// Dedupe returns a copy of data with repeated identifiers collapsed onto
// their last occurrence, keeping first-seen order.
func Dedupe(data domain.SyncData) domain.SyncData {
	out := domain.SyncData{SyncDataURL: data.SyncDataURL}

	followerPos := make(map[string]int, len(data.Followers))
	out.Followers = make([]domain.Follower, 0, len(data.Followers))
	for _, f := range data.Followers {
		if i, ok := followerPos[f.FollowerID]; ok {
			out.Followers[i] = f
			continue
		}
		followerPos[f.FollowerID] = len(out.Followers)
		out.Followers = append(out.Followers, f)
	}

	subPos := make(map[string]int, len(data.Subscribers))
	out.Subscribers = make([]domain.Subscriber, 0, len(data.Subscribers))
	for _, s := range data.Subscribers {
		if i, ok := subPos[s.ID]; ok {
			out.Subscribers[i] = s
			continue
		}
		subPos[s.ID] = len(out.Subscribers)
		out.Subscribers = append(out.Subscribers, s)
	}

	return out
}

func followerSet(followers []domain.Follower) map[string]struct{} {
	set := make(map[string]struct{}, len(followers))
	for _, f := range followers {
		set[f.FollowerID] = struct{}{}
	}
	return set
}

// subscriberIndex maps id to record; later duplicates overwrite earlier ones.
func subscriberIndex(subs []domain.Subscriber) map[string]domain.Subscriber {
	idx := make(map[string]domain.Subscriber, len(subs))
	for _, s := range subs {
		idx[s.ID] = s
	}
	return idx
}

func changedFields(a, b domain.Subscriber) []string {
	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)

	var names []string
	for _, f := range subscriberFields {
		if va.Field(f.index).Interface() != vb.Field(f.index).Interface() {
			names = append(names, f.name)
		}
	}
	return names
}

func sortSubscribers(subs []domain.Subscriber) {
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
}
