package storage

import "time"

// UserRecord is one entry of the users document. Field names are the
// persisted wire contract.
type UserRecord struct {
	XP                 int            `json:"xp"`
	Rank               string         `json:"rank"`
	Timestamp          time.Time      `json:"timestamp"`
	Streak             int            `json:"streak"`
	LastReflectionDate string         `json:"last_reflection_date,omitempty"`
	ReflectionDates    []string       `json:"reflection_dates"`
	TraitStreaks       map[string]int `json:"trait_streaks,omitempty"`
	Badges             []string       `json:"badges"`
	Rituals            []string       `json:"rituals"`
	VaultRevealed      bool           `json:"vault_revealed"`
	ChainRituals       int            `json:"chain_rituals"`
	Title              string         `json:"title,omitempty"`
}

func (u *UserRecord) HasRitual(name string) bool {
	return contains(u.Rituals, name)
}

func (u *UserRecord) HasBadge(name string) bool {
	return contains(u.Badges, name)
}

// Reflection is an immutable entry of the reflections log.
type Reflection struct {
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
	Public    bool      `json:"public"`
	Color     string    `json:"color"`
	XPGain    int       `json:"xp_gain"`
	Streak    int       `json:"streak"`
}

// RitualTypeChain marks a group chain-ritual entry in the ritual log.
const RitualTypeChain = "ChainRitual"

// RitualEvent is an entry of the ritual log: either a per-user unlock
// {user, ritual, timestamp} or a chain ritual {type, participants, timestamp}.
type RitualEvent struct {
	Type         string    `json:"type,omitempty"`
	User         string    `json:"user,omitempty"`
	Ritual       string    `json:"ritual,omitempty"`
	Participants []string  `json:"participants,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e RitualEvent) IsChain() bool {
	return e.Type == RitualTypeChain
}

// VaultEvent is an audit entry for one-time vault reveals.
type VaultEvent struct {
	User      string    `json:"user"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// RewardSignal is the last derived reward record for a user. It is never
// authoritative state.
type RewardSignal struct {
	Timestamp        time.Time      `json:"timestamp"`
	TopTraits        []string       `json:"top_traits"`
	RewardMultiplier float64        `json:"reward_multiplier"`
	Growth           string         `json:"growth"`
	Streak           int            `json:"streak"`
	TraitStreaks     map[string]int `json:"trait_streaks"`
	Yield            float64        `json:"yield"`
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
