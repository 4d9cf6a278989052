package terrain

var builtin = map[string]func() (*Grid, error){
	"duel": duel,
}

// duel is a 400x300 field split by a wall with a single gap; each team defends the
// left or right edge.
func duel() (*Grid, error) {
	l := Layout{
		Width:        400,
		Height:       300,
		InitialLives: 20,
		InitialGold:  100,
		Teams: []TeamLayout{
			{
				ID:          1,
				Name:        "Red",
				Color:       "#c83232",
				SpawnZones:  []Rect{{X: 0, Y: 100, W: 20, H: 40}},
				ArrivalZone: Rect{X: 0, Y: 180, W: 20, H: 40},
				Slots: []SlotLayout{
					{ID: 1, Zone: Rect{X: 20, Y: 0, W: 170, H: 150}},
					{ID: 2, Zone: Rect{X: 20, Y: 150, W: 170, H: 150}},
				},
			},
			{
				ID:          2,
				Name:        "Blue",
				Color:       "#3250c8",
				SpawnZones:  []Rect{{X: 380, Y: 100, W: 20, H: 40}},
				ArrivalZone: Rect{X: 380, Y: 180, W: 20, H: 40},
				Slots: []SlotLayout{
					{ID: 3, Zone: Rect{X: 210, Y: 0, W: 170, H: 150}},
					{ID: 4, Zone: Rect{X: 210, Y: 150, W: 170, H: 150}},
				},
			},
		},
	}
	walls := []Rect{
		{X: 190, Y: 0, W: 20, H: 110},
		{X: 190, Y: 190, W: 20, H: 110},
	}
	return NewGrid("duel", l, 10, walls)
}
