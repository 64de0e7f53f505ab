package domain

import "encoding/json"

// Envelope is the wrapper every API response arrives in.
type Envelope[T any] struct {
	Success  bool `json:"success"`
	Response T    `json:"response"`
}

// AccountInfoResponse is the body of an account lookup by id.
type AccountInfoResponse = Envelope[[]AccountInfo]

// MeResponse is the body of the authenticated profile endpoint.
type MeResponse = Envelope[Me]

// Me is the authenticated account together with the request correlation id.
type Me struct {
	Account       AccountInfo `json:"account"`
	CorrelationID string      `json:"correlationId"`
}

// FollowersPage is one page of the followers listing.
type FollowersPage = Envelope[[]Follower]

// SubscribersPage is one page of the subscribers listing.
type SubscribersPage = Envelope[SubscriptionList]

// SubscriptionList holds subscriptions and the aggregate counters.
type SubscriptionList struct {
	Stats         SubscriptionStats `json:"stats"`
	Subscriptions []Subscriber      `json:"subscriptions"`
}

// SubscriptionStats are the counters returned next to a subscriptions page.
type SubscriptionStats struct {
	TotalActive  int64 `json:"totalActive"`
	TotalExpired int64 `json:"totalExpired"`
	Total        int64 `json:"total"`
}

// AccountInfo is the remote account. Only the counters and the
// subscription tiers are interpreted; nested media, wall, streaming and
// permission entities are carried as raw JSON.
type AccountInfo struct {
	ID                 string             `json:"id"`
	Username           string             `json:"username"`
	DisplayName        string             `json:"displayName"`
	Flags              int64              `json:"flags"`
	Version            int64              `json:"version"`
	CreatedAt          int64              `json:"createdAt"`
	FollowCount        int64              `json:"followCount"`
	SubscriberCount    int64              `json:"subscriberCount"`
	ProfileAccessFlags int64              `json:"profileAccessFlags"`
	ProfileFlags       int64              `json:"profileFlags"`
	About              string             `json:"about"`
	Location           string             `json:"location"`
	StatusID           int64              `json:"statusId"`
	LastSeenAt         int64              `json:"lastSeenAt"`
	AccountMediaLikes  int64              `json:"accountMediaLikes"`
	PostLikes          int64              `json:"postLikes"`
	ProfileAccess      bool               `json:"profileAccess"`
	SubscriptionTiers  []SubscriptionTier `json:"subscriptionTiers"`

	Permissions     json.RawMessage `json:"permissions,omitempty"`
	ProfileSocials  json.RawMessage `json:"profileSocials,omitempty"`
	PinnedPosts     json.RawMessage `json:"pinnedPosts,omitempty"`
	Walls           json.RawMessage `json:"walls,omitempty"`
	TimelineStats   json.RawMessage `json:"timelineStats,omitempty"`
	MediaStoryState json.RawMessage `json:"mediaStoryState,omitempty"`
	Avatar          json.RawMessage `json:"avatar,omitempty"`
	Banner          json.RawMessage `json:"banner,omitempty"`
	Streaming       json.RawMessage `json:"streaming,omitempty"`
}

// SubscriptionTier is a paid tier offered by the account.
type SubscriptionTier struct {
	ID                   string   `json:"id"`
	AccountID            string   `json:"accountId"`
	Name                 string   `json:"name"`
	Color                string   `json:"color"`
	Pos                  int64    `json:"pos"`
	Price                int64    `json:"price"`
	MaxSubscribers       int64    `json:"maxSubscribers"`
	SubscriptionBenefits []string `json:"subscriptionBenefits"`
	IncludedTierIDs      []string `json:"includedTierIds"`
	Plans                []Plan   `json:"plans"`
}

// Plan is a billing plan of a tier.
type Plan struct {
	ID           string  `json:"id"`
	Status       int64   `json:"status"`
	BillingCycle int64   `json:"billingCycle"`
	Price        int64   `json:"price"`
	UseAmounts   int64   `json:"useAmounts"`
	Promos       []Promo `json:"promos"`
	Uses         int64   `json:"uses"`
}

// Promo is a time-limited discount on a plan.
type Promo struct {
	ID                 string          `json:"id"`
	Status             int64           `json:"status"`
	Price              int64           `json:"price"`
	Duration           int64           `json:"duration"`
	MaxUses            int64           `json:"maxUses"`
	MaxUsesBefore      json.RawMessage `json:"maxUsesBefore,omitempty"`
	NewSubscribersOnly int64           `json:"newSubscribersOnly"`
	StartsAt           int64           `json:"startsAt"`
	EndsAt             int64           `json:"endsAt"`
	Uses               int64           `json:"uses"`
}

// ActivePromos returns the promos of all plans whose window contains at
// (epoch milliseconds).
func (t SubscriptionTier) ActivePromos(at int64) []Promo {
	var out []Promo
	for _, p := range t.Plans {
		for _, promo := range p.Promos {
			if promo.StartsAt <= at && (promo.EndsAt == 0 || at < promo.EndsAt) {
				out = append(out, promo)
			}
		}
	}
	return out
}
