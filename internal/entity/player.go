package entity

// Player is one of the two configured participants. Players are embedded by value into moves
// and statuses once serialized, so the id is the only field used for comparisons.
type Player struct {
	ID         int    `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	IconClass  string `json:"iconClass" yaml:"icon-class"`
	ColorClass string `json:"colorClass" yaml:"color-class"`
}

// PlayerWithStats is a player together with the number of games won in the current round.
type PlayerWithStats struct {
	Player
	Wins int `json:"wins"`
}

// Stats - aggregated results of the current round.
type Stats struct {
	PlayerWithStats []PlayerWithStats `json:"playerWithStats"`
	Ties            int               `json:"ties"`
}
