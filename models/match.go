package models

import "time"

// MatchPlayer is one participant in a finished match.
type MatchPlayer struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Kills int    `json:"kills" bson:"kills"`
}

// RecordedEvent is one server event captured during a match, tagged with
// the tick it was emitted on.
type RecordedEvent struct {
	Tick int         `bson:"tick"`
	Type string      `bson:"type"`
	Data interface{} `bson:"data"`
}

// MatchRecord is everything the server keeps about a finished match.
type MatchRecord struct {
	MatchID    string          `bson:"matchId"`
	StartedAt  time.Time       `bson:"startedAt"`
	FinishedAt time.Time       `bson:"finishedAt"`
	Ticks      int             `bson:"ticks"`
	EndReason  string          `bson:"endReason"`
	Players    []MatchPlayer   `bson:"players"`
	Events     []RecordedEvent `bson:"events"`
}

// MatchSummary is the PostgreSQL row shape returned by the match list API.
type MatchSummary struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	EndReason  string    `json:"end_reason"`
	PlayerIDs  []string  `json:"player_ids"`
}
