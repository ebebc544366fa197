package entity

const (
	BoardSize = 9

	MinSquareID = 1
	MaxSquareID = 9
)

// WinPatterns are the square ids forming a line on the board.
var WinPatterns = [8][3]int{
	{1, 2, 3},
	{4, 5, 6},
	{7, 8, 9},
	{1, 4, 7},
	{2, 5, 8},
	{3, 6, 9},
	{1, 5, 9},
	{3, 5, 7},
}

type Move struct {
	SquareID int    `json:"squareId"`
	Player   Player `json:"player"`
}

// Status - outcome of a game. A complete game without a winner is a tie.
type Status struct {
	IsComplete bool    `json:"isComplete"`
	Winner     *Player `json:"winner"`
}

func (that Status) IsTie() bool {
	return that.IsComplete && that.Winner == nil
}

type CompletedGame struct {
	Moves  []Move `json:"moves"`
	Status Status `json:"status"`
}

type History struct {
	CurrentRoundGames []CompletedGame `json:"currentRoundGames"`
	AllGames          []CompletedGame `json:"allGames"`
}

// GameState is the persisted root record.
type GameState struct {
	CurrentGameMoves []Move  `json:"currentGameMoves"`
	History          History `json:"history"`
}

// Game is the derived view of the game in progress. It is never persisted.
type Game struct {
	Moves         []Move `json:"moves"`
	CurrentPlayer Player `json:"currentPlayer"`
	Status        Status `json:"status"`
}

// InitialState - state used when nothing has been stored yet.
func InitialState() *GameState {
	return &GameState{
		CurrentGameMoves: []Move{},
		History: History{
			CurrentRoundGames: []CompletedGame{},
			AllGames:          []CompletedGame{},
		},
	}
}

// Clone - returns a deep copy, so changes to the copy never reach readers of the original.
func (that *GameState) Clone() *GameState {
	if that == nil {
		return InitialState()
	}

	return &GameState{
		CurrentGameMoves: cloneMoves(that.CurrentGameMoves),
		History: History{
			CurrentRoundGames: cloneGames(that.History.CurrentRoundGames),
			AllGames:          cloneGames(that.History.AllGames),
		},
	}
}

// Normalize replaces nil slices left by a sparse stored record with empty ones.
func (that *GameState) Normalize() {
	if that.CurrentGameMoves == nil {
		that.CurrentGameMoves = []Move{}
	}
	if that.History.CurrentRoundGames == nil {
		that.History.CurrentRoundGames = []CompletedGame{}
	}
	if that.History.AllGames == nil {
		that.History.AllGames = []CompletedGame{}
	}
}

// IsOccupied reports whether a move already takes the square.
func (that *Game) IsOccupied(squareID int) bool {
	for _, move := range that.Moves {
		if move.SquareID == squareID {
			return true
		}
	}

	return false
}

func IsValidSquare(squareID int) bool {
	return squareID >= MinSquareID && squareID <= MaxSquareID
}

func (that Status) clone() Status {
	status := Status{IsComplete: that.IsComplete}
	if that.Winner != nil {
		winner := *that.Winner
		status.Winner = &winner
	}

	return status
}

func cloneMoves(moves []Move) []Move {
	cloned := make([]Move, len(moves))
	copy(cloned, moves)

	return cloned
}

func cloneGames(games []CompletedGame) []CompletedGame {
	cloned := make([]CompletedGame, 0, len(games))
	for _, game := range games {
		cloned = append(cloned, CompletedGame{
			Moves:  cloneMoves(game.Moves),
			Status: game.Status.clone(),
		})
	}

	return cloned
}
