package domain

// SyncData is a snapshot of an account's audience at one point in time.
// A snapshot is never modified after a fetch produces it; a new snapshot
// replaces the old one inside Config.
type SyncData struct {
	Followers   []Follower   `json:"followers"`
	Subscribers []Subscriber `json:"subscribers"`

	// SyncDataURL points at a fuller export of this snapshot, if one was uploaded.
	SyncDataURL string `json:"sync_data_url"`
}

// Follower is a single follower, identified by FollowerID.
type Follower struct {
	FollowerID string `json:"followerId"`
}

// Subscriber is a single subscription record, identified by ID.
type Subscriber struct {
	ID                    string `json:"id"`
	HistoryID             string `json:"historyId"`
	SubscriberID          string `json:"subscriberId"`
	SubscriptionTierID    string `json:"subscriptionTierId"`
	SubscriptionTierName  string `json:"subscriptionTierName"`
	SubscriptionTierColor string `json:"subscriptionTierColor"`
	PlanID                string `json:"planId"`

	PromoID    Optional[string] `json:"promoId"`
	GiftCodeID Optional[string] `json:"giftCodeId"`

	PaymentMethodID    string `json:"paymentMethodId"`
	Status             int64  `json:"status"`
	Price              int64  `json:"price"`
	RenewPrice         int64  `json:"renewPrice"`
	RenewCorrelationID string `json:"renewCorrelationId"`
	AutoRenew          int64  `json:"autoRenew"`
	BillingCycle       int64  `json:"billingCycle"`
	Duration           int64  `json:"duration"`
	RenewDate          int64  `json:"renewDate"`
	Version            int64  `json:"version"`
	CreatedAt          int64  `json:"createdAt"`
	UpdatedAt          int64  `json:"updatedAt"`
	EndsAt             int64  `json:"endsAt"`

	PromoPrice    Optional[int64] `json:"promoPrice"`
	PromoDuration Optional[int64] `json:"promoDuration"`
	PromoStatus   Optional[int64] `json:"promoStatus"`
	PromoStartsAt Optional[int64] `json:"promoStartsAt"`
	PromoEndsAt   Optional[int64] `json:"promoEndsAt"`
}

// EmptySyncData returns a snapshot with non-nil, empty collections so that
// it serialises as [] rather than null.
func EmptySyncData() SyncData {
	return SyncData{
		Followers:   []Follower{},
		Subscribers: []Subscriber{},
	}
}

// Clone returns a deep copy of the snapshot.
func (d SyncData) Clone() SyncData {
	out := SyncData{
		Followers:   make([]Follower, len(d.Followers)),
		Subscribers: make([]Subscriber, len(d.Subscribers)),
		SyncDataURL: d.SyncDataURL,
	}
	copy(out.Followers, d.Followers)
	copy(out.Subscribers, d.Subscribers)
	return out
}

// FollowerIDs returns the follower identifiers in snapshot order.
func (d SyncData) FollowerIDs() []string {
	ids := make([]string, 0, len(d.Followers))
	for _, f := range d.Followers {
		ids = append(ids, f.FollowerID)
	}
	return ids
}
