package services

import (
	"testing"

	"mesquite/models"

	"github.com/stretchr/testify/assert"
)

func roundWithScores(scores []int) models.Round {
	full := make([]int, models.HolesPerRound)
	copy(full, scores)
	return models.Round{Scores: full, IsActive: true}
}

func TestGroupCurrentHole(t *testing.T) {
	tests := []struct {
		name    string
		rounds  []models.Round
		want    int
		wantOK  bool
	}{
		{
			name: "cursor is the minimum first unplayed hole",
			rounds: []models.Round{
				roundWithScores([]int{4, 4}),
				roundWithScores([]int{4}),
			},
			want:   1,
			wantOK: true,
		},
		{
			name: "fully recorded rounds contribute no candidate",
			rounds: []models.Round{
				{Scores: fullScores(4)},
				roundWithScores([]int{4, 4, 4}),
			},
			want:   3,
			wantOK: true,
		},
		{
			name:   "all rounds complete means nothing to resume",
			rounds: []models.Round{{Scores: fullScores(4)}, {Scores: fullScores(5)}},
			wantOK: false,
		},
		{
			name:   "no rounds",
			rounds: nil,
			wantOK: false,
		},
		{
			name:   "untouched round resumes at the first hole",
			rounds: []models.Round{roundWithScores(nil)},
			want:   0,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := groupCurrentHole(tt.rounds)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGroupSessionHelpers(t *testing.T) {
	sess := &GroupSession{
		Pars: []int{4, 3, 5},
		Players: []SessionPlayer{
			{RoundID: "r1", PlayerID: "p1", PlayerName: "Alice"},
			{RoundID: "r2", PlayerID: "p2", PlayerName: "Bob"},
		},
	}

	assert.Equal(t, "Bob", sess.player("p2").PlayerName)
	assert.Nil(t, sess.player("stranger"))

	assert.Equal(t, 3, sess.parAt(1))
	assert.Equal(t, 0, sess.parAt(-1))
	assert.Equal(t, 0, sess.parAt(3))

	assert.Equal(t, 2, sess.lastHole())

	empty := &GroupSession{}
	assert.Equal(t, models.HolesPerRound-1, empty.lastHole())
}
