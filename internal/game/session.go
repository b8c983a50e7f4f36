package game

import (
	"fmt"
	"math/rand"
	"sync"

	"minesweeper/pkg/models"

	"github.com/google/uuid"
)

// Phase is the lifecycle state of a session
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseWon        Phase = "won"
	PhaseLost       Phase = "lost"
)

// Terminal reports whether the game is over
func (p Phase) Terminal() bool {
	return p == PhaseWon || p == PhaseLost
}

// BoardGenerator produces a board with mines placed away from the safe cell
type BoardGenerator interface {
	Generate(rows, cols, mineCount, safeRow, safeCol int) (*Board, error)
}

var _ BoardGenerator = (*Generator)(nil)
var _ BoardGenerator = (*ReplayGenerator)(nil)

// Observer is notified of every change to a session. It is called with the
// session lock held and must not call back into the session.
type Observer interface {
	StateChanged(snapshot Snapshot)
	Tick(elapsed int)
}

// ScoreEvent is emitted once per won game
type ScoreEvent struct {
	SessionID  uuid.UUID
	Player     models.Player
	Difficulty models.Difficulty
	Time       int
}

// Option configures a session
type Option func(*Session)

// WithClock replaces the wall clock driving the game timer
func WithClock(clock Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithSeed makes mine placement deterministic
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.seed = seed
		s.seeded = true
	}
}

// WithGenerator replaces the mine generator
func WithGenerator(g BoardGenerator) Option {
	return func(s *Session) {
		s.generator = g
	}
}

// WithObserver registers the change observer
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observer = o
	}
}

// WithScoreListener registers the callback receiving won games
func WithScoreListener(fn func(ScoreEvent)) Option {
	return func(s *Session) {
		s.onScore = fn
	}
}

// Session is a single player's game
type Session struct {
	mu sync.Mutex

	id        uuid.UUID
	player    models.Player
	seed      int64
	seeded    bool
	generator BoardGenerator
	clock     Clock
	observer  Observer
	onScore   func(ScoreEvent)

	difficulty models.Difficulty
	board      *Board
	flags      *FlagTracker
	phase      Phase
	timer      *Timer
	timerGen   int
	elapsed    int
	hit        *Position
}

// NewSession creates a session waiting for its first reveal
func NewSession(player models.Player, difficulty models.Difficulty, opts ...Option) (*Session, error) {
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidDifficulty, difficulty)
	}

	s := &Session{
		id:     uuid.New(),
		player: player,
		clock:  SystemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.seeded {
		s.seed = rand.Int63()
	}
	if s.generator == nil {
		s.generator = NewSeededGenerator(s.seed)
	}

	s.reset(difficulty)
	return s, nil
}

// NewSessionFromSnapshot creates a session that replays the layout of snapshot
func NewSessionFromSnapshot(player models.Player, snapshot *BoardSnapshot, opts ...Option) (*Session, error) {
	difficulty, err := models.ParseDifficulty(snapshot.Difficulty)
	if err != nil {
		return nil, err
	}
	layout, err := snapshot.Layout()
	if err != nil {
		return nil, err
	}
	cfg := difficulty.Config()
	if layout.Rows != cfg.Rows || layout.Cols != cfg.Cols || layout.MineCount != cfg.Mines {
		return nil, fmt.Errorf("%w: snapshot layout does not match %s board", ErrInvalidConfiguration, difficulty)
	}

	opts = append(opts, WithSeed(snapshot.Seed), WithGenerator(NewReplayGenerator(layout)))
	return NewSession(player, difficulty, opts...)
}

// ID returns the session id
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Player returns the identity playing this session
func (s *Session) Player() models.Player {
	return s.player
}

// Difficulty returns the current board preset
func (s *Session) Difficulty() models.Difficulty {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.difficulty
}

// Phase returns the lifecycle state
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Elapsed returns the whole seconds since the first reveal
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// FlagCount returns the number of flags on the board
func (s *Session) FlagCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags.Count()
}

// RemainingMines returns mines minus flags
func (s *Session) RemainingMines() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags.Remaining()
}

// Reset discards the current board and starts over on difficulty
func (s *Session) Reset(difficulty models.Difficulty) error {
	if !difficulty.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidDifficulty, difficulty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset(difficulty)
	s.notifyState()
	return nil
}

// Reveal opens the cell at (row, col). The first reveal places the mines and
// starts the timer. Guarded cells and finished games are silently ignored;
// only a failed mine placement returns an error.
func (s *Session) Reveal(row, col int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.Terminal() {
		return nil
	}
	cell := s.board.Cell(row, col)
	if cell == nil || cell.Revealed || cell.Flagged {
		return nil
	}

	if s.phase == PhaseNotStarted {
		if err := s.start(row, col); err != nil {
			return err
		}
	}

	result := s.board.Reveal(row, col)
	switch {
	case result.HitMine:
		s.finish(PhaseLost)
		s.hit = &result.Hit
		s.board.RevealMines(s.flags)
	case s.board.Cleared():
		s.finish(PhaseWon)
		s.board.FlagMines(s.flags)
	}

	s.notifyState()
	if s.phase == PhaseWon && s.onScore != nil {
		s.onScore(ScoreEvent{
			SessionID:  s.id,
			Player:     s.player,
			Difficulty: s.difficulty,
			Time:       max(s.elapsed, 1),
		})
	}
	return nil
}

// ToggleFlag flips the flag on a hidden cell. Flags may be placed before the
// first reveal.
func (s *Session) ToggleFlag(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.Terminal() {
		return
	}
	if s.flags.Toggle(s.board, row, col) {
		s.notifyState()
	}
}

// Close stops the timer of an abandoned session
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer()
}

// Snapshot returns a render-ready view of the session
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// BoardSnapshot records the current board for replay
func (s *Session) BoardSnapshot() *BoardSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &BoardSnapshot{
		Seed:            s.seed,
		Difficulty:      string(s.difficulty),
		SerializedBoard: serializeBoard(s.board),
	}
}

func (s *Session) reset(difficulty models.Difficulty) {
	s.stopTimer()

	cfg := difficulty.Config()
	// A replayed layout only serves its own difficulty
	if replay, ok := s.generator.(*ReplayGenerator); ok && !replay.Fits(cfg.Rows, cfg.Cols, cfg.Mines) {
		s.generator = NewSeededGenerator(s.seed)
	}
	s.difficulty = difficulty
	s.board = NewBoard(cfg.Rows, cfg.Cols, cfg.Mines)
	s.flags = NewFlagTracker(cfg.Mines)
	s.phase = PhaseNotStarted
	s.elapsed = 0
	s.hit = nil
}

func (s *Session) start(row, col int) error {
	cfg := s.difficulty.Config()
	board, err := s.generator.Generate(cfg.Rows, cfg.Cols, cfg.Mines, row, col)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	// Flags placed before the first reveal survive mine placement
	for r := range s.board.Cells {
		for c := range s.board.Cells[r] {
			if s.board.Cells[r][c].Flagged {
				board.Cells[r][c].Flagged = true
			}
		}
	}

	s.board = board
	s.phase = PhaseInProgress
	s.startTimer()
	return nil
}

func (s *Session) finish(phase Phase) {
	s.phase = phase
	if s.timer != nil {
		s.elapsed = s.timer.Stop()
	}
	s.stopTimer()
}

func (s *Session) startTimer() {
	s.timerGen++
	gen := s.timerGen
	s.timer = StartTimer(s.clock, func(elapsed int) {
		s.tick(gen, elapsed)
	})
}

func (s *Session) stopTimer() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	s.timer = nil
	s.timerGen++
}

func (s *Session) tick(gen, elapsed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.timerGen || s.phase != PhaseInProgress {
		return
	}
	s.elapsed = elapsed
	if s.observer != nil {
		s.observer.Tick(elapsed)
	}
}

func (s *Session) notifyState() {
	if s.observer != nil {
		s.observer.StateChanged(s.snapshot())
	}
}
