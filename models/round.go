package models

import "time"

// Round is one player's 18-hole score record for one course. All rounds
// started together share a GroupID. A score of 0 is the sentinel for an
// unplayed hole; recorded scores are 1-10. ScoreToPar entries are only
// meaningful where the matching score is nonzero.
type Round struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	CourseID        string    `json:"course_id" gorm:"index;not null"`
	CourseName      string    `json:"course_name"`
	PlayerID        string    `json:"player_id" gorm:"index;not null"`
	PlayerName      string    `json:"player_name"`
	PlayerHandicap  *int      `json:"player_handicap"` // snapshot taken at round start
	GroupID         string    `json:"group_id" gorm:"index;not null"`
	TripRoundID     *int      `json:"trip_round_id"`
	Scores          []int     `json:"scores" gorm:"serializer:json"`
	ScoreToPar      []int     `json:"score_to_par" gorm:"serializer:json"`
	ScoreKeeper     bool      `json:"score_keeper" gorm:"not null;default:false"`
	IsRoundFinished bool      `json:"is_round_finished" gorm:"not null;default:false"`
	IsActive        bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DisplayName resolves the name shown for this round: the denormalized
// player name when present, otherwise the player id.
func (r *Round) DisplayName() string {
	if r.PlayerName != "" {
		return r.PlayerName
	}
	return r.PlayerID
}

// TotalScore sums every recorded hole score. Sentinel zeros contribute
// nothing, so the gross total of a finished round is the sum of all 18.
func (r *Round) TotalScore() int {
	total := 0
	for _, v := range r.Scores {
		total += v
	}
	return total
}

// TotalScoreToPar sums the score-to-par vector, or returns nil when the
// vector is absent (a round written without one ranks below all totals).
func (r *Round) TotalScoreToPar() *int {
	if r.ScoreToPar == nil {
		return nil
	}
	total := 0
	for _, v := range r.ScoreToPar {
		total += v
	}
	return &total
}

// FirstUnplayedHole returns the index of the first hole still holding the
// unplayed sentinel, or -1 when every hole has a score.
func (r *Round) FirstUnplayedHole() int {
	for i, v := range r.Scores {
		if v == 0 {
			return i
		}
	}
	return -1
}

// HolesPlayed counts holes with a recorded nonzero score.
func (r *Round) HolesPlayed() int {
	n := 0
	for _, v := range r.Scores {
		if v > 0 {
			n++
		}
	}
	return n
}
