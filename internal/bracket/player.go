package bracket

import "strings"

// TBDName marks a placeholder slot written by older clients. A slot holding it
// counts as open.
const TBDName = "TBD"

type Player struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	IsRegistered bool    `json:"isRegistered"`
	UserID       *string `json:"userId"`
	Seed         *int    `json:"seed"`

	// Group stage only
	GroupID     *string `json:"groupId"`
	GroupPoints int     `json:"groupPoints"`
	GroupWins   int     `json:"groupWins"`
	GroupLosses int     `json:"groupLosses"`
}

func (p *Player) Is(other *Player) bool {
	return p != nil && other != nil && p.ID == other.ID
}

func (p *Player) resetGroupStats() {
	p.GroupPoints = 0
	p.GroupWins = 0
	p.GroupLosses = 0
}

// IsReservedName reports whether name would be read as an open slot.
func IsReservedName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), TBDName)
}

func isOpen(slot *Player) bool {
	return slot == nil || slot.Name == TBDName
}

type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Players []Player `json:"players"`
}
