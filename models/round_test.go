package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundDisplayName(t *testing.T) {
	r := Round{PlayerID: "uid-7", PlayerName: "Alice"}
	assert.Equal(t, "Alice", r.DisplayName())

	r.PlayerName = ""
	assert.Equal(t, "uid-7", r.DisplayName())
}

func TestRoundTotals(t *testing.T) {
	scores := make([]int, HolesPerRound)
	pars := make([]int, HolesPerRound)
	toPar := make([]int, HolesPerRound)
	for i := range scores {
		pars[i] = 4
		scores[i] = 3 + i%3 // 3,4,5 repeating
		toPar[i] = scores[i] - pars[i]
	}
	r := Round{Scores: scores, ScoreToPar: toPar}

	wantGross := 0
	for _, v := range scores {
		wantGross += v
	}
	assert.Equal(t, wantGross, r.TotalScore())

	total := r.TotalScoreToPar()
	assert.NotNil(t, total)
	assert.Equal(t, wantGross-18*4, *total)
}

func TestRoundTotalScoreToPar_NilVector(t *testing.T) {
	r := Round{Scores: make([]int, HolesPerRound)}
	assert.Nil(t, r.TotalScoreToPar())

	r.ScoreToPar = []int{}
	total := r.TotalScoreToPar()
	assert.NotNil(t, total)
	assert.Equal(t, 0, *total)
}

func TestRoundFirstUnplayedHole(t *testing.T) {
	scores := make([]int, HolesPerRound)
	scores[0], scores[1] = 4, 5
	r := Round{Scores: scores}
	assert.Equal(t, 2, r.FirstUnplayedHole())
	assert.Equal(t, 2, r.HolesPlayed())

	for i := range scores {
		scores[i] = 4
	}
	assert.Equal(t, -1, r.FirstUnplayedHole())
	assert.Equal(t, HolesPerRound, r.HolesPlayed())

	// A gap counts as the first unplayed hole even with later scores.
	scores[4] = 0
	assert.Equal(t, 4, r.FirstUnplayedHole())
	assert.Equal(t, HolesPerRound-1, r.HolesPlayed())
}

func TestCourseParAt(t *testing.T) {
	c := Course{Pars: []int{4, 3, 5}}
	assert.Equal(t, 3, c.ParAt(1))
	assert.Equal(t, 0, c.ParAt(-1))
	assert.Equal(t, 0, c.ParAt(3))
}
