package engine

type TowerType int

const (
	TowerArcher TowerType = iota + 1
	TowerFire
	TowerIce
	TowerEarth
)

type towerSpec struct {
	Name     string
	Price    int
	Damage   float64
	Range    float64
	Rate     float64
	MaxLevel int
	Size     int
	// upgrade moves t to its next level. Price is already debited.
	upgrade func(t *Tower)
}

var towerSpecs = map[TowerType]towerSpec{
	TowerArcher: {
		Name: "archer", Price: 50, Damage: 4, Range: 50, Rate: 2, MaxLevel: 5, Size: 20,
		upgrade: func(t *Tower) {
			t.Invested += t.Price
			t.Price *= 2
			t.Damage *= 1.4
			t.Range += 5
			t.Rate *= 1.1
		},
	},
	TowerFire: {
		Name: "fire", Price: 120, Damage: 10, Range: 40, Rate: 10, MaxLevel: 5, Size: 20,
		upgrade: func(t *Tower) {
			t.Invested += t.Price
			t.Price *= 2
			t.Damage *= 1.5
			t.Range += 10
			t.Rate *= 1.2
		},
	},
	TowerIce: {
		Name: "ice", Price: 80, Damage: 3, Range: 60, Rate: 1, MaxLevel: 3, Size: 20,
		upgrade: func(t *Tower) {
			t.Invested += t.Price
			t.Price = t.Price * 3 / 2
			t.Damage += 2
			t.Range += 15
		},
	},
	TowerEarth: {
		Name: "earth", Price: 100, Damage: 25, Range: 30, Rate: 0.5, MaxLevel: 4, Size: 20,
		upgrade: func(t *Tower) {
			t.Invested += t.Price
			t.Price *= 2
			t.Damage *= 2
			t.Rate *= 1.25
		},
	},
}

// TowerName returns the catalogue name of typ, or "" when it is not a known type.
func TowerName(typ TowerType) string { return towerSpecs[typ].Name }

func TowerPrice(typ TowerType) int { return towerSpecs[typ].Price }

type CreatureType int

const (
	CreatureGrunt CreatureType = iota + 1
	CreatureRunner
	CreatureBrute
)

type creatureSpec struct {
	Name   string
	Health int
	Speed  int
	Bounty int
	Cost   int
}

var creatureSpecs = map[CreatureType]creatureSpec{
	CreatureGrunt:  {Name: "grunt", Health: 40, Speed: 10, Bounty: 5, Cost: 5},
	CreatureRunner: {Name: "runner", Health: 20, Speed: 25, Bounty: 4, Cost: 6},
	CreatureBrute:  {Name: "brute", Health: 160, Speed: 6, Bounty: 15, Cost: 15},
}

func CreatureCost(typ CreatureType) int { return creatureSpecs[typ].Cost }

// MaxWave caps the number of creatures a single request may launch.
const MaxWave = 50

func refund(t *Tower) int { return t.Invested / 2 }
