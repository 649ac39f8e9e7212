package repository

import (
	"context"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/evoblast/evoblast-backend/models"
)

// MatchRecorder persists finished matches: the full event log goes to
// MongoDB, the summary row to PostgreSQL. Either store may be absent;
// recording failures are logged, never fatal to gameplay.
type MatchRecorder struct{}

func NewMatchRecorder() *MatchRecorder {
	return &MatchRecorder{}
}

func (r *MatchRecorder) SaveMatch(rec models.MatchRecord) error {
	if MongoDBClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		collection := MongoDBClient.Database("evoblast").Collection("match_events")
		if _, err := collection.InsertOne(ctx, rec); err != nil {
			log.Printf("Failed to insert match %s into MongoDB: %v", rec.MatchID, err)
		} else {
			log.Printf("Match %s event log saved to MongoDB", rec.MatchID)
		}
	}

	if PostgreSQLDB == nil {
		return nil
	}

	playerIDs := make([]string, 0, len(rec.Players))
	for _, p := range rec.Players {
		playerIDs = append(playerIDs, p.ID)
	}

	_, err := PostgreSQLDB.Exec(
		"INSERT INTO matches (id, started_at, finished_at, end_reason, player_ids) VALUES ($1, $2, $3, $4, $5)",
		rec.MatchID, rec.StartedAt, rec.FinishedAt, rec.EndReason, pq.Array(playerIDs))
	if err != nil {
		log.Printf("Failed to insert match %s into PostgreSQL: %v", rec.MatchID, err)
		return err
	}

	log.Printf("Match %s saved to PostgreSQL", rec.MatchID)
	return nil
}

// ListRecentMatches returns the latest finished matches, newest first.
// With persistence disabled it returns an empty list.
func ListRecentMatches(limit int) ([]models.MatchSummary, error) {
	summaries := []models.MatchSummary{}
	if PostgreSQLDB == nil {
		return summaries, nil
	}

	rows, err := PostgreSQLDB.Query(
		"SELECT id, started_at, finished_at, end_reason, player_ids FROM matches ORDER BY finished_at DESC LIMIT $1",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.MatchSummary
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.FinishedAt, &s.EndReason, pq.Array(&s.PlayerIDs)); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
