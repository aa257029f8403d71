package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"mesquite/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LeaderboardService computes the two ranking views: the live single-course
// leaderboard over active rounds and the cross-course tournament standings
// over finished rounds, plus the per-group scorecard.
type LeaderboardService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewLeaderboardService(db *gorm.DB, logger *zap.SugaredLogger) *LeaderboardService {
	return &LeaderboardService{db: db, logger: logger}
}

// LiveRow is one ranked line of the live leaderboard.
type LiveRow struct {
	RoundID    string `json:"round_id"`
	Place      string `json:"place,omitempty"` // "1", "T2"; empty when sorted by name
	PlayerName string `json:"player_name"`
	ScoreToPar *int   `json:"score_to_par"` // nil when the round has no score-to-par vector
	Total      string `json:"total"`        // "E", "+2", "-1", "N/A"
	Thru       string `json:"thru"`         // holes played, "F" once all 18 are recorded
}

type CourseColumn struct {
	CourseID string `json:"course_id"`
	Name     string `json:"name"`
	Label    string `json:"label"` // "R1", "R2", ... in column order
}

// TournamentRow is one consolidated player line across all completed courses.
type TournamentRow struct {
	Place        int    `json:"place"`
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	CourseScores []*int `json:"course_scores"` // nil cell means the player has no finished round there
	Total        int    `json:"total"`
}

type TournamentBoard struct {
	ScoreType string          `json:"score_type"`
	Courses   []CourseColumn  `json:"courses"`
	Rows      []TournamentRow `json:"rows"`
}

type ScorecardRow struct {
	PlayerName string   `json:"player_name"`
	Scores     []int    `json:"scores"`
	Categories []string `json:"categories"` // classified per hole, empty where unplayed
	Total      int      `json:"total"`
}

type GroupScorecard struct {
	CourseID   string         `json:"course_id"`
	CourseName string         `json:"course_name"`
	GroupID    string         `json:"group_id"`
	Pars       []int          `json:"pars"`
	Rows       []ScorecardRow `json:"rows"`
}

type GroupInfo struct {
	GroupID     string   `json:"group_id"`
	PlayerNames []string `json:"player_names"`
}

// LiveLeaderboard ranks the active rounds of one course. sortKey is
// "score_to_par" (default) or "name"; dir is "asc" (default) or "desc".
func (s *LeaderboardService) LiveLeaderboard(ctx context.Context, courseID, sortKey, dir string) ([]LiveRow, error) {
	var rounds []models.Round
	if err := s.db.WithContext(ctx).Where("course_id = ? AND is_active = ?", courseID, true).Find(&rounds).Error; err != nil {
		return nil, &PersistenceError{Op: "load course rounds", Err: err}
	}
	return rankLiveRounds(rounds, sortKey, dir), nil
}

// TournamentLeaderboard consolidates one row per player across every course
// with at least one finished round. scoreType is "gross" (default) or "net";
// sortKey is "total" (default), "name", or a courseId for a column sort.
func (s *LeaderboardService) TournamentLeaderboard(ctx context.Context, scoreType, sortKey, dir string) (*TournamentBoard, error) {
	var rounds []models.Round
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at").Find(&rounds).Error; err != nil {
		return nil, &PersistenceError{Op: "load rounds", Err: err}
	}
	var courses []models.Course
	if err := s.db.WithContext(ctx).Find(&courses).Error; err != nil {
		return nil, &PersistenceError{Op: "load courses", Err: err}
	}
	return buildTournamentBoard(rounds, courses, scoreType, sortKey, dir), nil
}

// Scorecard returns the hole-by-hole grid for one group on one course, every
// cell annotated with its score-to-par category.
func (s *LeaderboardService) Scorecard(ctx context.Context, courseID, groupID string) (*GroupScorecard, error) {
	var rounds []models.Round
	if err := s.db.WithContext(ctx).Where("course_id = ? AND group_id = ?", courseID, groupID).Order("created_at").Find(&rounds).Error; err != nil {
		return nil, &PersistenceError{Op: "load group rounds", Err: err}
	}
	if len(rounds) == 0 {
		return nil, ErrNotFound
	}

	var course models.Course
	if err := s.db.WithContext(ctx).Where("id = ?", courseID).First(&course).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &PersistenceError{Op: "load course", Err: err}
		}
		s.logger.Warnw("scorecard course lookup failed, using placeholder", "course_id", courseID)
		course = models.Course{ID: courseID, Name: rounds[0].CourseName}
	}
	return buildScorecard(course, rounds, groupID), nil
}

// ListCourses returns active courses ordered by tripRoundID, missing last.
func (s *LeaderboardService) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&courses).Error; err != nil {
		return nil, &PersistenceError{Op: "load courses", Err: err}
	}
	sort.SliceStable(courses, func(i, j int) bool {
		a, b := courses[i].TripRoundID, courses[j].TripRoundID
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
	return courses, nil
}

// ListGroups returns the groups with active rounds on a course, each with
// its member names, in order of group creation.
func (s *LeaderboardService) ListGroups(ctx context.Context, courseID string) ([]GroupInfo, error) {
	var rounds []models.Round
	if err := s.db.WithContext(ctx).
		Where("course_id = ? AND is_active = ? AND group_id <> ''", courseID, true).
		Order("created_at").Find(&rounds).Error; err != nil {
		return nil, &PersistenceError{Op: "load course rounds", Err: err}
	}
	var groups []GroupInfo
	index := make(map[string]int)
	for _, r := range rounds {
		i, ok := index[r.GroupID]
		if !ok {
			i = len(groups)
			index[r.GroupID] = i
			groups = append(groups, GroupInfo{GroupID: r.GroupID})
		}
		groups[i].PlayerNames = append(groups[i].PlayerNames, r.DisplayName())
	}
	return groups, nil
}

// rankLiveRounds sorts and places one course's rounds. Rounds without a
// score-to-par vector sort after every numeric total regardless of
// direction. Places carry T-prefixes for ties and are only computed for the
// score-to-par ordering; a tie never reuses a place number, so a 2-way tie
// for 1st sends the next distinct total to 3rd.
func rankLiveRounds(rounds []models.Round, sortKey, dir string) []LiveRow {
	if sortKey != "name" {
		sortKey = "score_to_par"
	}
	desc := dir == "desc"

	sorted := make([]models.Round, len(rounds))
	copy(sorted, rounds)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := &sorted[i], &sorted[j]
		if sortKey == "name" {
			if desc {
				return a.DisplayName() > b.DisplayName()
			}
			return a.DisplayName() < b.DisplayName()
		}
		at, bt := a.TotalScoreToPar(), b.TotalScoreToPar()
		if at == nil {
			return false
		}
		if bt == nil {
			return true
		}
		if desc {
			return *at > *bt
		}
		return *at < *bt
	})

	totals := make([]*int, len(sorted))
	for i := range sorted {
		totals[i] = sorted[i].TotalScoreToPar()
	}

	places := make([]int, len(sorted))
	tied := make([]bool, len(sorted))
	if sortKey == "score_to_par" {
		lastPlace := 0
		skip := 1
		for i := range sorted {
			if i == 0 {
				places[i] = 1
				skip = 1
			} else if totalsEqual(totals[i], totals[i-1]) {
				places[i] = lastPlace
				skip++
				tied[i] = true
				tied[i-1] = true
			} else {
				places[i] = lastPlace + skip
				skip = 1
			}
			lastPlace = places[i]
		}
	}

	rows := make([]LiveRow, len(sorted))
	for i := range sorted {
		r := &sorted[i]
		row := LiveRow{
			RoundID:    r.ID,
			PlayerName: r.DisplayName(),
			ScoreToPar: totals[i],
			Total:      scoreToParLabel(totals[i]),
			Thru:       thruLabel(r),
		}
		if sortKey == "score_to_par" {
			if tied[i] {
				row.Place = fmt.Sprintf("T%d", places[i])
			} else {
				row.Place = strconv.Itoa(places[i])
			}
		}
		rows[i] = row
	}
	return rows
}

func totalsEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func scoreToParLabel(total *int) string {
	switch {
	case total == nil:
		return "N/A"
	case *total == 0:
		return "E"
	case *total > 0:
		return fmt.Sprintf("+%d", *total)
	default:
		return strconv.Itoa(*total)
	}
}

func thruLabel(r *models.Round) string {
	if len(r.Scores) == 0 {
		return "0"
	}
	if r.FirstUnplayedHole() == -1 {
		return "F"
	}
	return strconv.Itoa(r.HolesPlayed())
}

// buildTournamentBoard consolidates finished rounds into one row per player.
// Courses appear as columns in order of their first finished round. Players
// de-duplicate by display name falling back to player id, so two players
// sharing a name collapse into one row (a known limitation carried over
// from the source data model). Non-participation cells are nil: they add
// nothing to the total and sort after any numeric cell on column sorts.
func buildTournamentBoard(rounds []models.Round, courses []models.Course, scoreType, sortKey, dir string) *TournamentBoard {
	if scoreType != "net" {
		scoreType = "gross"
	}
	desc := dir == "desc"

	var completed []models.Round
	for _, r := range rounds {
		if r.IsActive && r.IsRoundFinished {
			completed = append(completed, r)
		}
	}

	courseName := make(map[string]string, len(courses))
	for _, c := range courses {
		courseName[c.ID] = c.Name
	}

	var columns []CourseColumn
	colIndex := make(map[string]int)
	for _, r := range completed {
		if _, ok := colIndex[r.CourseID]; ok {
			continue
		}
		name := courseName[r.CourseID]
		if name == "" {
			name = r.CourseName
		}
		if name == "" {
			name = r.CourseID
		}
		colIndex[r.CourseID] = len(columns)
		columns = append(columns, CourseColumn{
			CourseID: r.CourseID,
			Name:     name,
			Label:    fmt.Sprintf("R%d", len(columns)+1),
		})
	}

	type playerKey struct {
		id   string
		name string
	}
	var players []playerKey
	seen := make(map[string]bool)
	for _, r := range completed {
		key := r.PlayerName
		if key == "" {
			key = r.PlayerID
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		players = append(players, playerKey{id: r.PlayerID, name: r.PlayerName})
	}

	rows := make([]TournamentRow, 0, len(players))
	for _, p := range players {
		row := TournamentRow{
			PlayerID:     p.id,
			PlayerName:   p.name,
			CourseScores: make([]*int, len(columns)),
		}
		for ci, col := range columns {
			var match *models.Round
			for i := range completed {
				r := &completed[i]
				if r.CourseID != col.CourseID {
					continue
				}
				if r.PlayerID == p.id || r.PlayerName == p.name {
					match = r
					break
				}
			}
			if match == nil {
				continue
			}
			score := match.TotalScore()
			if scoreType == "net" && match.PlayerHandicap != nil {
				score -= *match.PlayerHandicap
			}
			cell := score
			row.CourseScores[ci] = &cell
			row.Total += cell
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		switch sortKey {
		case "name":
			an, bn := displayName(a.PlayerName, a.PlayerID), displayName(b.PlayerName, b.PlayerID)
			if desc {
				return an > bn
			}
			return an < bn
		case "", "total":
			if desc {
				return a.Total > b.Total
			}
			return a.Total < b.Total
		default:
			ci, ok := colIndex[sortKey]
			if !ok {
				return false
			}
			ac, bc := a.CourseScores[ci], b.CourseScores[ci]
			if ac == nil {
				return false
			}
			if bc == nil {
				return true
			}
			if desc {
				return *ac > *bc
			}
			return *ac < *bc
		}
	})

	// Tournament rows take their array position: no T-marking for ties.
	for i := range rows {
		rows[i].Place = i + 1
	}

	return &TournamentBoard{ScoreType: scoreType, Courses: columns, Rows: rows}
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func buildScorecard(course models.Course, rounds []models.Round, groupID string) *GroupScorecard {
	card := &GroupScorecard{
		CourseID:   course.ID,
		CourseName: course.Name,
		GroupID:    groupID,
		Pars:       course.Pars,
	}
	for i := range rounds {
		r := &rounds[i]
		row := ScorecardRow{
			PlayerName: r.DisplayName(),
			Scores:     r.Scores,
			Categories: make([]string, len(r.Scores)),
			Total:      r.TotalScore(),
		}
		for h, v := range r.Scores {
			row.Categories[h] = Classify(v, course.ParAt(h)).String()
		}
		card.Rows = append(card.Rows, row)
	}
	return card
}
