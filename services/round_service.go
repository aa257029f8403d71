package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"mesquite/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"

	sessionKeyPrefix = "group:"
	sessionTTL       = 24 * time.Hour
)

// RoundService drives one group's round: forming the group, advancing the
// shared hole cursor, and the finish/submit/edit/discard transitions. Round
// records live in the database; the in-flight session (cursor position and
// scores entered but not yet persisted) is cached in Redis by group id.
type RoundService struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *zap.SugaredLogger
}

func NewRoundService(db *gorm.DB, redis *redis.Client, logger *zap.SugaredLogger) *RoundService {
	return &RoundService{
		db:     db,
		redis:  redis,
		logger: logger,
	}
}

type StartGroupRequest struct {
	CourseID  string   `json:"course_id" binding:"required"`
	PlayerIDs []string `json:"player_ids" binding:"required,min=1,max=4"`
}

type RecordScoreRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Hole     int    `json:"hole"`
	Value    int    `json:"value" binding:"required"`
}

// SessionPlayer is one group member's slice of the cached session.
type SessionPlayer struct {
	RoundID    string `json:"round_id"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// GroupSession is the live state of a group's round: who is playing, where
// the hole cursor sits, and the scores entered for the current hole that
// have not been persisted yet.
type GroupSession struct {
	GroupID     string          `json:"group_id"`
	CourseID    string          `json:"course_id"`
	CourseName  string          `json:"course_name"`
	Pars        []int           `json:"pars"`
	Status      string          `json:"status"` // in_progress, finished
	CurrentHole int             `json:"current_hole"`
	Players     []SessionPlayer `json:"players"`
	Pending     map[string]int  `json:"pending"` // playerID -> score entered for the current hole
}

func (gs *GroupSession) player(playerID string) *SessionPlayer {
	for i := range gs.Players {
		if gs.Players[i].PlayerID == playerID {
			return &gs.Players[i]
		}
	}
	return nil
}

func (gs *GroupSession) parAt(hole int) int {
	if hole < 0 || hole >= len(gs.Pars) {
		return 0
	}
	return gs.Pars[hole]
}

func (gs *GroupSession) lastHole() int {
	if len(gs.Pars) > 0 {
		return len(gs.Pars) - 1
	}
	return models.HolesPerRound - 1
}

// groupCurrentHole computes the shared cursor on resume: the minimum, across
// the group's rounds, of the first hole still holding the unplayed sentinel.
// Rounds with every hole recorded contribute no candidate; when no round has
// an unplayed hole there is nothing to resume and ok is false.
func groupCurrentHole(rounds []models.Round) (int, bool) {
	cur := 0
	found := false
	for i := range rounds {
		idx := rounds[i].FirstUnplayedHole()
		if idx == -1 {
			continue
		}
		if !found || idx < cur {
			cur = idx
			found = true
		}
	}
	return cur, found
}

// StartGroup validates the selection and creates one round per player, all
// sharing a fresh group id. The creates are a batch of independent writes,
// not a transaction: players whose write fails are reported through a
// PartialGroupFailure and left out of the session.
func (s *RoundService) StartGroup(ctx context.Context, initiatorID string, req *StartGroupRequest) (*GroupSession, error) {
	var course models.Course
	if err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", req.CourseID, true).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newValidationError("course not found")
		}
		return nil, &PersistenceError{Op: "load course", Err: err}
	}

	if len(req.PlayerIDs) == 0 {
		return nil, newValidationError("at least one player is required")
	}
	if len(req.PlayerIDs) > 4 {
		return nil, newValidationError("a group holds at most 4 players")
	}
	seen := make(map[string]bool, len(req.PlayerIDs))
	for _, id := range req.PlayerIDs {
		if id == "" {
			return nil, newValidationError("every player slot must be filled")
		}
		if seen[id] {
			return nil, newValidationError("player %s selected twice", id)
		}
		seen[id] = true
	}

	var players []models.Player
	if err := s.db.WithContext(ctx).Where("id IN ? AND is_active = ?", req.PlayerIDs, true).Find(&players).Error; err != nil {
		return nil, &PersistenceError{Op: "load players", Err: err}
	}
	byID := make(map[string]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	for _, id := range req.PlayerIDs {
		if _, ok := byID[id]; !ok {
			return nil, newValidationError("player %s not found", id)
		}
	}

	// A profile may hold at most one round per course, finished or not.
	var taken int64
	if err := s.db.WithContext(ctx).Model(&models.Round{}).
		Where("course_id = ? AND player_id IN ?", course.ID, req.PlayerIDs).
		Count(&taken).Error; err != nil {
		return nil, &PersistenceError{Op: "check existing rounds", Err: err}
	}
	if taken > 0 {
		return nil, newValidationError("a selected player already has a round on this course")
	}

	groupID := uuid.NewString()
	rounds := make([]models.Round, 0, len(req.PlayerIDs))
	for _, id := range req.PlayerIDs {
		p := byID[id]
		rounds = append(rounds, models.Round{
			ID:             uuid.NewString(),
			CourseID:       course.ID,
			CourseName:     course.Name,
			PlayerID:       p.ID,
			PlayerName:     p.Name,
			PlayerHandicap: p.Handicap,
			GroupID:        groupID,
			TripRoundID:    course.TripRoundID,
			Scores:         make([]int, models.HolesPerRound),
			ScoreToPar:     make([]int, models.HolesPerRound),
			ScoreKeeper:    p.ID == initiatorID,
			IsActive:       true,
		})
	}

	failed := make(map[string]error)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := range rounds {
		wg.Add(1)
		go func(r models.Round) {
			defer wg.Done()
			if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
				s.logger.Errorw("failed to create round", "group_id", r.GroupID, "player_id", r.PlayerID, "error", err)
				mu.Lock()
				failed[r.PlayerID] = err
				mu.Unlock()
			}
		}(rounds[i])
	}
	wg.Wait()

	if len(failed) == len(rounds) {
		var first error
		for _, err := range failed {
			first = err
			break
		}
		return nil, &PersistenceError{Op: "start group", Err: first}
	}

	sess := &GroupSession{
		GroupID:     groupID,
		CourseID:    course.ID,
		CourseName:  course.Name,
		Pars:        course.Pars,
		Status:      StatusInProgress,
		CurrentHole: 0,
		Pending:     map[string]int{},
	}
	for _, r := range rounds {
		if _, bad := failed[r.PlayerID]; bad {
			continue
		}
		sess.Players = append(sess.Players, SessionPlayer{
			RoundID:    r.ID,
			PlayerID:   r.PlayerID,
			PlayerName: r.PlayerName,
		})
	}
	s.storeSession(ctx, sess)

	s.logger.Infow("group started", "group_id", groupID, "course_id", course.ID, "players", len(sess.Players))

	if len(failed) > 0 {
		return sess, &PartialGroupFailure{Op: "start group", Failed: failed}
	}
	return sess, nil
}

// ResumeGroup reconstructs an in-progress group for the scorekeeper without
// re-selecting anything: find their unfinished scorekeeper round, load the
// whole group, and place the cursor at the first unplayed hole across all
// members. Returns (nil, nil) when there is nothing to resume.
func (s *RoundService) ResumeGroup(ctx context.Context, userID string) (*GroupSession, error) {
	var keeper models.Round
	err := s.db.WithContext(ctx).
		Where("score_keeper = ? AND player_id = ? AND is_round_finished = ?", true, userID, false).
		First(&keeper).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "find in-progress round", Err: err}
	}
	if keeper.GroupID == "" {
		return nil, nil
	}

	var rounds []models.Round
	if err := s.db.WithContext(ctx).Where("group_id = ?", keeper.GroupID).Find(&rounds).Error; err != nil {
		return nil, &PersistenceError{Op: "load group rounds", Err: err}
	}

	cur, ok := groupCurrentHole(rounds)
	if !ok {
		// Every hole in the group is recorded; the round is awaiting
		// submission, not resumption.
		return nil, nil
	}

	course := s.lookupCourse(ctx, &keeper)

	sess := &GroupSession{
		GroupID:     keeper.GroupID,
		CourseID:    course.ID,
		CourseName:  course.Name,
		Pars:        course.Pars,
		Status:      StatusInProgress,
		CurrentHole: cur,
		Pending:     map[string]int{},
	}
	for _, r := range rounds {
		sess.Players = append(sess.Players, SessionPlayer{
			RoundID:    r.ID,
			PlayerID:   r.PlayerID,
			PlayerName: r.DisplayName(),
		})
	}
	s.storeSession(ctx, sess)

	s.logger.Infow("group resumed", "group_id", sess.GroupID, "current_hole", cur)
	return sess, nil
}

// lookupCourse loads the round's course, degrading to a minimal placeholder
// when the lookup fails so a stale course reference never aborts a resume.
func (s *RoundService) lookupCourse(ctx context.Context, r *models.Round) models.Course {
	var course models.Course
	if err := s.db.WithContext(ctx).Where("id = ?", r.CourseID).First(&course).Error; err != nil {
		s.logger.Warnw("course lookup failed, using placeholder", "course_id", r.CourseID, "error", err)
		name := r.CourseName
		if name == "" {
			name = "Unnamed Course"
		}
		return models.Course{ID: r.CourseID, Name: name}
	}
	return course
}

// RecordScore stores one player's score for the current hole in the session
// only; nothing reaches the database until Advance.
func (s *RoundService) RecordScore(ctx context.Context, groupID string, req *RecordScoreRequest) (*GroupSession, error) {
	if req.Value < 1 || req.Value > 10 {
		return nil, newValidationError("score must be between 1 and 10")
	}
	sess, err := s.loadSession(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusInProgress {
		return nil, newValidationError("round is not in progress")
	}
	if req.Hole != sess.CurrentHole {
		return nil, newValidationError("scores are entered for the current hole (%d)", sess.CurrentHole)
	}
	if sess.player(req.PlayerID) == nil {
		return nil, newValidationError("player %s is not in this group", req.PlayerID)
	}
	if sess.Pending == nil {
		sess.Pending = map[string]int{}
	}
	sess.Pending[req.PlayerID] = req.Value
	s.storeSession(ctx, sess)
	return sess, nil
}

// Advance persists every player's score for the current hole and moves the
// cursor forward, or to the finished state on the last hole. Each player's
// write is independent: one failure is logged and collected but never blocks
// the others or the cursor.
func (s *RoundService) Advance(ctx context.Context, groupID string, hub *Hub) (*GroupSession, error) {
	sess, err := s.loadSession(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusInProgress {
		return nil, newValidationError("round is not in progress")
	}

	hole := sess.CurrentHole
	par := sess.parAt(hole)

	failed := make(map[string]error)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range sess.Players {
		wg.Add(1)
		go func(p SessionPlayer) {
			defer wg.Done()
			if err := s.writeHoleScore(ctx, p, sess.Pending[p.PlayerID], hole, par); err != nil {
				s.logger.Errorw("failed to persist hole score",
					"group_id", sess.GroupID, "player_id", p.PlayerID, "hole", hole, "error", err)
				mu.Lock()
				failed[p.PlayerID] = err
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	if hole >= sess.lastHole() {
		sess.Status = StatusFinished
	} else {
		sess.CurrentHole = hole + 1
	}
	sess.Pending = map[string]int{}
	s.storeSession(ctx, sess)

	if hub != nil {
		hub.BroadcastToCourse(sess.CourseID, "score_update", map[string]interface{}{
			"group_id":     sess.GroupID,
			"hole":         hole,
			"status":       sess.Status,
			"current_hole": sess.CurrentHole,
		})
	}

	if len(failed) == len(sess.Players) && len(failed) > 0 {
		var first error
		for _, err := range failed {
			first = err
			break
		}
		return sess, &PersistenceError{Op: "advance", Err: first}
	}
	if len(failed) > 0 {
		return sess, &PartialGroupFailure{Op: "advance", Failed: failed}
	}
	return sess, nil
}

// writeHoleScore updates one player's scores and scoreToPar for a hole. The
// value falls back to the previously persisted score, then to par (or 1 when
// the course carries no par data), matching the score sheet's prefill.
func (s *RoundService) writeHoleScore(ctx context.Context, p SessionPlayer, entered, hole, par int) error {
	var round models.Round
	if err := s.db.WithContext(ctx).Where("id = ?", p.RoundID).First(&round).Error; err != nil {
		return err
	}
	if len(round.Scores) != models.HolesPerRound {
		round.Scores = make([]int, models.HolesPerRound)
	}
	if len(round.ScoreToPar) != models.HolesPerRound {
		round.ScoreToPar = make([]int, models.HolesPerRound)
	}

	val := entered
	if val == 0 {
		if round.Scores[hole] != 0 {
			val = round.Scores[hole]
		} else if par > 0 {
			val = par
		} else {
			val = 1
		}
	}
	round.Scores[hole] = val
	round.ScoreToPar[hole] = val - par
	return s.db.WithContext(ctx).Save(&round).Error
}

// Retreat steps the cursor back one hole. Persisted scores are never
// rewritten going backward; re-advancing writes them again.
func (s *RoundService) Retreat(ctx context.Context, groupID string) (*GroupSession, error) {
	sess, err := s.loadSession(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusInProgress {
		return nil, newValidationError("round is not in progress")
	}
	if sess.CurrentHole > 0 {
		sess.CurrentHole--
		sess.Pending = map[string]int{}
		s.storeSession(ctx, sess)
	}
	return sess, nil
}

// Submit marks every group member's active round finished. A player without
// an active round is silently skipped, which makes a second submit a no-op.
// On failure the session survives so the user can retry.
func (s *RoundService) Submit(ctx context.Context, groupID string, hub *Hub) error {
	sess, err := s.loadSession(ctx, groupID)
	if err != nil {
		return err
	}
	if sess.Status != StatusFinished {
		return newValidationError("round is not finished")
	}

	failed := make(map[string]error)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range sess.Players {
		wg.Add(1)
		go func(p SessionPlayer) {
			defer wg.Done()
			err := s.db.WithContext(ctx).Model(&models.Round{}).
				Where("course_id = ? AND player_id = ? AND is_active = ?", sess.CourseID, p.PlayerID, true).
				Update("is_round_finished", true).Error
			if err != nil {
				s.logger.Errorw("failed to submit round", "group_id", sess.GroupID, "player_id", p.PlayerID, "error", err)
				mu.Lock()
				failed[p.PlayerID] = err
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	if len(failed) == len(sess.Players) && len(failed) > 0 {
		var first error
		for _, err := range failed {
			first = err
			break
		}
		return &PersistenceError{Op: "submit", Err: first}
	}
	if len(failed) > 0 {
		return &PartialGroupFailure{Op: "submit", Failed: failed}
	}

	s.clearSession(ctx, groupID)
	if hub != nil {
		hub.BroadcastToCourse(sess.CourseID, "round_submitted", map[string]interface{}{
			"group_id": sess.GroupID,
		})
	}
	s.logger.Infow("group submitted", "group_id", sess.GroupID, "course_id", sess.CourseID)
	return nil
}

// Edit reopens a finished round at hole 1 without clearing anything.
func (s *RoundService) Edit(ctx context.Context, groupID string) (*GroupSession, error) {
	sess, err := s.loadSession(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusFinished {
		return nil, newValidationError("round is not finished")
	}
	sess.Status = StatusInProgress
	sess.CurrentHole = 0
	sess.Pending = map[string]int{}
	s.storeSession(ctx, sess)
	return sess, nil
}

// Discard deletes every group member's rounds for the course, active or not.
// This is irreversible; a partial failure leaves the already-deleted records
// deleted with no compensating recreation.
func (s *RoundService) Discard(ctx context.Context, groupID string) error {
	sess, err := s.loadSession(ctx, groupID)
	if err != nil {
		return err
	}

	failed := make(map[string]error)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range sess.Players {
		wg.Add(1)
		go func(p SessionPlayer) {
			defer wg.Done()
			err := s.db.WithContext(ctx).
				Where("course_id = ? AND player_id = ?", sess.CourseID, p.PlayerID).
				Delete(&models.Round{}).Error
			if err != nil {
				s.logger.Errorw("failed to delete round", "group_id", sess.GroupID, "player_id", p.PlayerID, "error", err)
				mu.Lock()
				failed[p.PlayerID] = err
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	s.clearSession(ctx, groupID)

	if len(failed) == len(sess.Players) && len(failed) > 0 {
		var first error
		for _, err := range failed {
			first = err
			break
		}
		return &PersistenceError{Op: "discard", Err: first}
	}
	if len(failed) > 0 {
		return &PartialGroupFailure{Op: "discard", Failed: failed}
	}
	s.logger.Infow("group discarded", "group_id", sess.GroupID, "course_id", sess.CourseID)
	return nil
}

// EligiblePlayers lists active players who do not yet have a round on the
// course; a profile participates in at most one round per course.
func (s *RoundService) EligiblePlayers(ctx context.Context, courseID string) ([]models.Player, error) {
	var players []models.Player
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&players).Error; err != nil {
		return nil, &PersistenceError{Op: "load players", Err: err}
	}
	var rounds []models.Round
	if err := s.db.WithContext(ctx).Where("course_id = ?", courseID).Find(&rounds).Error; err != nil {
		return nil, &PersistenceError{Op: "load rounds", Err: err}
	}
	taken := make(map[string]bool, len(rounds))
	for _, r := range rounds {
		taken[r.PlayerID] = true
	}
	eligible := make([]models.Player, 0, len(players))
	for _, p := range players {
		if !taken[p.ID] {
			eligible = append(eligible, p)
		}
	}
	return eligible, nil
}

// loadSession reads the cached session, rebuilding it from the round records
// when the cache entry has expired.
func (s *RoundService) loadSession(ctx context.Context, groupID string) (*GroupSession, error) {
	if sess := s.getSession(ctx, groupID); sess != nil {
		return sess, nil
	}
	return s.rebuildSession(ctx, groupID)
}

func (s *RoundService) rebuildSession(ctx context.Context, groupID string) (*GroupSession, error) {
	var rounds []models.Round
	if err := s.db.WithContext(ctx).Where("group_id = ?", groupID).Find(&rounds).Error; err != nil {
		return nil, &PersistenceError{Op: "load group rounds", Err: err}
	}
	if len(rounds) == 0 {
		return nil, ErrNotFound
	}

	course := s.lookupCourse(ctx, &rounds[0])
	sess := &GroupSession{
		GroupID:    groupID,
		CourseID:   course.ID,
		CourseName: course.Name,
		Pars:       course.Pars,
		Pending:    map[string]int{},
	}
	if cur, ok := groupCurrentHole(rounds); ok {
		sess.Status = StatusInProgress
		sess.CurrentHole = cur
	} else {
		sess.Status = StatusFinished
		sess.CurrentHole = sess.lastHole()
	}
	for _, r := range rounds {
		sess.Players = append(sess.Players, SessionPlayer{
			RoundID:    r.ID,
			PlayerID:   r.PlayerID,
			PlayerName: r.DisplayName(),
		})
	}
	s.storeSession(ctx, sess)
	return sess, nil
}

func (s *RoundService) storeSession(ctx context.Context, sess *GroupSession) {
	data, err := json.Marshal(sess)
	if err != nil {
		s.logger.Errorw("failed to marshal group session", "group_id", sess.GroupID, "error", err)
		return
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+sess.GroupID, data, sessionTTL).Err(); err != nil {
		s.logger.Errorw("failed to cache group session", "group_id", sess.GroupID, "error", err)
	}
}

func (s *RoundService) getSession(ctx context.Context, groupID string) *GroupSession {
	data, err := s.redis.Get(ctx, sessionKeyPrefix+groupID).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Errorw("redis error reading group session", "group_id", groupID, "error", err)
		}
		return nil
	}
	var sess GroupSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		s.logger.Errorw("failed to unmarshal group session", "group_id", groupID, "error", err)
		return nil
	}
	return &sess
}

func (s *RoundService) clearSession(ctx context.Context, groupID string) {
	if err := s.redis.Del(ctx, sessionKeyPrefix+groupID).Err(); err != nil {
		s.logger.Errorw("failed to clear group session", "group_id", groupID, "error", err)
	}
}
