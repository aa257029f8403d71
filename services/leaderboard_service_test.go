package services

import (
	"testing"

	"mesquite/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// scoreToParVector spreads a total across the first hole, leaving the rest
// at zero; only the sum matters to the ranking.
func scoreToParVector(total int) []int {
	v := make([]int, models.HolesPerRound)
	v[0] = total
	return v
}

func fullScores(value int) []int {
	v := make([]int, models.HolesPerRound)
	for i := range v {
		v[i] = value
	}
	return v
}

func liveRound(id, name string, scoreToPar []int, scores []int) models.Round {
	return models.Round{
		ID:         id,
		PlayerID:   id,
		PlayerName: name,
		ScoreToPar: scoreToPar,
		Scores:     scores,
		IsActive:   true,
	}
}

func TestRankLiveRounds_TiedPlacesSkipNumbers(t *testing.T) {
	rounds := []models.Round{
		liveRound("r1", "Alice", scoreToParVector(5), nil),
		liveRound("r2", "Bob", scoreToParVector(2), nil),
		liveRound("r3", "Carol", scoreToParVector(2), nil),
	}

	rows := rankLiveRounds(rounds, "score_to_par", "asc")
	require.Len(t, rows, 3)

	// A 2-way tie for 1st sends the next distinct total to 3rd, not 2nd.
	assert.Equal(t, "T1", rows[0].Place)
	assert.Equal(t, "T1", rows[1].Place)
	assert.Equal(t, "3", rows[2].Place)
	assert.Equal(t, "Alice", rows[2].PlayerName)
	assert.Equal(t, "+5", rows[2].Total)
}

func TestRankLiveRounds_ThreeWayTie(t *testing.T) {
	rounds := []models.Round{
		liveRound("r1", "A", scoreToParVector(1), nil),
		liveRound("r2", "B", scoreToParVector(1), nil),
		liveRound("r3", "C", scoreToParVector(1), nil),
		liveRound("r4", "D", scoreToParVector(4), nil),
	}

	rows := rankLiveRounds(rounds, "score_to_par", "asc")
	require.Len(t, rows, 4)
	assert.Equal(t, "T1", rows[0].Place)
	assert.Equal(t, "T1", rows[1].Place)
	assert.Equal(t, "T1", rows[2].Place)
	assert.Equal(t, "4", rows[3].Place)
}

func TestRankLiveRounds_MissingVectorSortsLast(t *testing.T) {
	rounds := []models.Round{
		{ID: "r1", PlayerName: "NoVector", Scores: fullScores(4), IsActive: true},
		liveRound("r2", "Leader", scoreToParVector(-3), nil),
		liveRound("r3", "Chaser", scoreToParVector(6), nil),
	}

	for _, dir := range []string{"asc", "desc"} {
		rows := rankLiveRounds(rounds, "score_to_par", dir)
		require.Len(t, rows, 3)
		assert.Equal(t, "NoVector", rows[2].PlayerName, "dir=%s", dir)
		assert.Equal(t, "N/A", rows[2].Total, "dir=%s", dir)
		assert.Nil(t, rows[2].ScoreToPar, "dir=%s", dir)
	}
}

func TestRankLiveRounds_SortDirectionToggle(t *testing.T) {
	rounds := []models.Round{
		liveRound("r1", "A", scoreToParVector(2), nil),
		liveRound("r2", "B", scoreToParVector(-1), nil),
	}

	asc := rankLiveRounds(rounds, "score_to_par", "asc")
	assert.Equal(t, "B", asc[0].PlayerName)

	desc := rankLiveRounds(rounds, "score_to_par", "desc")
	assert.Equal(t, "A", desc[0].PlayerName)
}

func TestRankLiveRounds_NameSort(t *testing.T) {
	rounds := []models.Round{
		liveRound("r1", "bob", scoreToParVector(0), nil),
		liveRound("r2", "Alice", scoreToParVector(3), nil),
	}

	rows := rankLiveRounds(rounds, "name", "asc")
	require.Len(t, rows, 2)
	// Case-sensitive: uppercase sorts before lowercase.
	assert.Equal(t, "Alice", rows[0].PlayerName)
	assert.Empty(t, rows[0].Place)
	assert.Empty(t, rows[1].Place)

	rows = rankLiveRounds(rounds, "name", "desc")
	assert.Equal(t, "bob", rows[0].PlayerName)
}

func TestRankLiveRounds_ThruAndTotalLabels(t *testing.T) {
	twoPlayed := make([]int, models.HolesPerRound)
	twoPlayed[0], twoPlayed[1] = 4, 4

	rounds := []models.Round{
		liveRound("r1", "Finished", scoreToParVector(0), fullScores(4)),
		liveRound("r2", "Midway", scoreToParVector(-2), twoPlayed),
		liveRound("r3", "NotStarted", scoreToParVector(7), nil),
	}

	rows := rankLiveRounds(rounds, "score_to_par", "asc")
	require.Len(t, rows, 3)

	assert.Equal(t, "Midway", rows[0].PlayerName)
	assert.Equal(t, "-2", rows[0].Total)
	assert.Equal(t, "2", rows[0].Thru)

	assert.Equal(t, "Finished", rows[1].PlayerName)
	assert.Equal(t, "E", rows[1].Total)
	assert.Equal(t, "F", rows[1].Thru)

	assert.Equal(t, "NotStarted", rows[2].PlayerName)
	assert.Equal(t, "+7", rows[2].Total)
	assert.Equal(t, "0", rows[2].Thru)
}

func TestRankLiveRounds_NameFallsBackToPlayerID(t *testing.T) {
	rows := rankLiveRounds([]models.Round{
		{ID: "r1", PlayerID: "uid-42", ScoreToPar: scoreToParVector(1), IsActive: true},
	}, "score_to_par", "asc")
	require.Len(t, rows, 1)
	assert.Equal(t, "uid-42", rows[0].PlayerName)
}

func finishedRound(playerID, playerName, courseID string, holeScore int, handicap *int) models.Round {
	return models.Round{
		ID:              playerID + "-" + courseID,
		CourseID:        courseID,
		PlayerID:        playerID,
		PlayerName:      playerName,
		PlayerHandicap:  handicap,
		Scores:          fullScores(holeScore),
		ScoreToPar:      make([]int, models.HolesPerRound),
		IsRoundFinished: true,
		IsActive:        true,
	}
}

func TestBuildTournamentBoard_GrossAndNet(t *testing.T) {
	// Alice finished A (18x4 = 72) and B (18x~ = 80); no round on C.
	aliceA := finishedRound("p1", "Alice", "course-a", 4, intPtr(5))
	aliceB := finishedRound("p1", "Alice", "course-b", 4, intPtr(5))
	aliceB.Scores[0] = 12 // 17x4 + 12 = 80
	bobC := finishedRound("p2", "Bob", "course-c", 5, nil)

	rounds := []models.Round{aliceA, aliceB, bobC}
	courses := []models.Course{
		{ID: "course-a", Name: "Palms"},
		{ID: "course-b", Name: "Dunes"},
		{ID: "course-c", Name: "Oasis"},
	}

	board := buildTournamentBoard(rounds, courses, "gross", "total", "asc")
	require.Len(t, board.Courses, 3)
	assert.Equal(t, []string{"R1", "R2", "R3"}, []string{board.Courses[0].Label, board.Courses[1].Label, board.Courses[2].Label})

	var alice *TournamentRow
	for i := range board.Rows {
		if board.Rows[i].PlayerName == "Alice" {
			alice = &board.Rows[i]
		}
	}
	require.NotNil(t, alice)
	require.Len(t, alice.CourseScores, 3)
	assert.Equal(t, 72, *alice.CourseScores[0])
	assert.Equal(t, 80, *alice.CourseScores[1])
	assert.Nil(t, alice.CourseScores[2], "no finished round on course C")
	assert.Equal(t, 152, alice.Total)

	net := buildTournamentBoard(rounds, courses, "net", "total", "asc")
	var aliceNet *TournamentRow
	for i := range net.Rows {
		if net.Rows[i].PlayerName == "Alice" {
			aliceNet = &net.Rows[i]
		}
	}
	require.NotNil(t, aliceNet)
	assert.Equal(t, 67, *aliceNet.CourseScores[0])
	assert.Equal(t, 75, *aliceNet.CourseScores[1])
	assert.Equal(t, 142, aliceNet.Total)
}

func TestBuildTournamentBoard_ExcludesUnfinishedRounds(t *testing.T) {
	unfinished := finishedRound("p1", "Alice", "course-a", 4, nil)
	unfinished.IsRoundFinished = false

	board := buildTournamentBoard([]models.Round{unfinished}, nil, "gross", "total", "asc")
	assert.Empty(t, board.Rows)
	assert.Empty(t, board.Courses)
}

func TestBuildTournamentBoard_CourseOrderFollowsFirstFinishedRound(t *testing.T) {
	rounds := []models.Round{
		finishedRound("p1", "Alice", "course-b", 4, nil),
		finishedRound("p1", "Alice", "course-a", 4, nil),
	}

	board := buildTournamentBoard(rounds, nil, "gross", "total", "asc")
	require.Len(t, board.Courses, 2)
	assert.Equal(t, "course-b", board.Courses[0].CourseID)
	assert.Equal(t, "course-a", board.Courses[1].CourseID)
}

func TestBuildTournamentBoard_ColumnSortKeepsMissingCellsLast(t *testing.T) {
	rounds := []models.Round{
		finishedRound("p1", "Alice", "course-a", 4, nil), // 72 on A, nothing on B
		finishedRound("p2", "Bob", "course-b", 4, nil),   // 72 on B, nothing on A
		finishedRound("p3", "Carol", "course-b", 5, nil), // 90 on B
	}

	for _, dir := range []string{"asc", "desc"} {
		board := buildTournamentBoard(rounds, nil, "gross", "course-b", dir)
		require.Len(t, board.Rows, 3)
		assert.Equal(t, "Alice", board.Rows[2].PlayerName, "dir=%s", dir)
		assert.Nil(t, board.Rows[2].CourseScores[1], "dir=%s", dir)
	}
}

func TestBuildTournamentBoard_DedupesByDisplayName(t *testing.T) {
	// Two distinct player ids sharing a display name collapse to one row.
	rounds := []models.Round{
		finishedRound("p1", "Alice", "course-a", 4, nil),
		finishedRound("p9", "Alice", "course-b", 4, nil),
	}

	board := buildTournamentBoard(rounds, nil, "gross", "total", "asc")
	require.Len(t, board.Rows, 1)
	assert.Equal(t, 144, board.Rows[0].Total)
}

func TestBuildTournamentBoard_PlacesAreArrayPositions(t *testing.T) {
	rounds := []models.Round{
		finishedRound("p1", "Alice", "course-a", 4, nil),
		finishedRound("p2", "Bob", "course-a", 4, nil), // same total, no T-marking
		finishedRound("p3", "Carol", "course-a", 5, nil),
	}

	board := buildTournamentBoard(rounds, nil, "gross", "total", "asc")
	require.Len(t, board.Rows, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{board.Rows[0].Place, board.Rows[1].Place, board.Rows[2].Place})
}

func TestBuildScorecard_ClassifiesEachHole(t *testing.T) {
	course := models.Course{ID: "c1", Name: "Palms", Pars: fullScores(4)}
	round := models.Round{
		PlayerID: "p1", PlayerName: "Alice",
		Scores: make([]int, models.HolesPerRound),
	}
	round.Scores[0] = 3 // birdie
	round.Scores[1] = 4 // par
	round.Scores[2] = 6 // double

	card := buildScorecard(course, []models.Round{round}, "g1")
	require.Len(t, card.Rows, 1)
	row := card.Rows[0]
	assert.Equal(t, "Birdie", row.Categories[0])
	assert.Equal(t, "Par", row.Categories[1])
	assert.Equal(t, "Double Bogey", row.Categories[2])
	assert.Equal(t, "", row.Categories[3], "unplayed hole has no category")
	assert.Equal(t, 13, row.Total)
}
