package tictactoe

import (
	"github.com/rocketscienceinc/t3-store/internal/entity"
)

// determineWinner - checks every player against every win pattern.
//
// The loops never stop early: when more than one player or pattern matches, which well formed
// alternating play cannot produce, the last match in players-then-patterns order is returned.
func determineWinner(players []entity.Player, moves []entity.Move) *entity.Player {
	var winner *entity.Player

	for i := range players {
		occupied := squaresOf(players[i], moves)

		for _, pattern := range entity.WinPatterns {
			if occupied[pattern[0]] && occupied[pattern[1]] && occupied[pattern[2]] {
				player := players[i]
				winner = &player
			}
		}
	}

	return winner
}

func squaresOf(player entity.Player, moves []entity.Move) map[int]bool {
	occupied := make(map[int]bool, len(moves))
	for _, move := range moves {
		if move.Player.ID == player.ID {
			occupied[move.SquareID] = true
		}
	}

	return occupied
}

// currentPlayer - turns alternate starting with the first configured player.
func currentPlayer(players []entity.Player, moves []entity.Move) entity.Player {
	return players[len(moves)%len(players)]
}

func deriveGame(players []entity.Player, state *entity.GameState) *entity.Game {
	moves := state.Clone().CurrentGameMoves
	winner := determineWinner(players, moves)

	return &entity.Game{
		Moves:         moves,
		CurrentPlayer: currentPlayer(players, moves),
		Status: entity.Status{
			IsComplete: winner != nil || len(moves) == entity.BoardSize,
			Winner:     winner,
		},
	}
}

func deriveStats(players []entity.Player, state *entity.GameState) *entity.Stats {
	stats := &entity.Stats{
		PlayerWithStats: make([]entity.PlayerWithStats, 0, len(players)),
	}

	for _, player := range players {
		wins := 0
		for _, game := range state.History.CurrentRoundGames {
			if game.Status.Winner != nil && game.Status.Winner.ID == player.ID {
				wins++
			}
		}

		stats.PlayerWithStats = append(stats.PlayerWithStats, entity.PlayerWithStats{
			Player: player,
			Wins:   wins,
		})
	}

	for _, game := range state.History.CurrentRoundGames {
		if game.Status.IsTie() {
			stats.Ties++
		}
	}

	return stats
}
