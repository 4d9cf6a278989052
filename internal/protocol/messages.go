package protocol

import "github.com/DoyleJ11/td-sync/internal/engine"

// Requests, client to server.

type Hello struct {
	Name string `json:"NAME"`
}

type Subscribe struct {
	PlayerID engine.PlayerID `json:"ID_PLAYER"`
	Token    string          `json:"TOKEN"`
}

type TeamChange struct {
	TeamID engine.TeamID `json:"ID_TEAM"`
}

type TowerAdd struct {
	TowerType engine.TowerType `json:"TOWER_TYPE"`
	X         int              `json:"X"`
	Y         int              `json:"Y"`
}

type TowerUpgrade struct {
	TowerID engine.TowerID `json:"ID_TOWER"`
}

type TowerSell struct {
	TowerID engine.TowerID `json:"ID_TOWER"`
}

type WaveRequest struct {
	CreatureType engine.CreatureType `json:"CREATURE_TYPE"`
	Count        int                 `json:"COUNT"`
}

type MatchStart struct{}

// Chat travels both ways: the request names an optional target, the broadcast adds
// the sender.
type Chat struct {
	Message  string          `json:"MESSAGE"`
	TargetID engine.PlayerID `json:"ID_TARGET,omitempty"`
	PlayerID engine.PlayerID `json:"ID_PLAYER,omitempty"`
	Name     string          `json:"NAME,omitempty"`
}

// Replies, server to client on the request channel.

type PlayerInit struct {
	Status   Status          `json:"STATUS"`
	PlayerID engine.PlayerID `json:"ID_PLAYER,omitempty"`
	TeamID   engine.TeamID   `json:"ID_TEAM,omitempty"`
	SlotID   engine.SlotID   `json:"ID_SLOT,omitempty"`
	MatchID  string          `json:"ID_MATCH,omitempty"`
	Terrain  string          `json:"TERRAIN,omitempty"`
	Version  string          `json:"VERSION"`
	Port     int             `json:"PORT,omitempty"`
	Token    string          `json:"TOKEN,omitempty"`
}

type Reply struct {
	Status  Status         `json:"STATUS"`
	Request Type           `json:"REQUEST"`
	TowerID engine.TowerID `json:"ID_TOWER,omitempty"`
	Refund  int            `json:"REFUND,omitempty"`
}

// Broadcasts.

type PlayerState struct {
	PlayerID engine.PlayerID `json:"ID_PLAYER"`
	Name     string          `json:"NAME"`
	TeamID   engine.TeamID   `json:"ID_TEAM"`
	SlotID   engine.SlotID   `json:"ID_SLOT"`
	Gold     int             `json:"GOLD"`
	Score    int             `json:"SCORE"`
	Online   bool            `json:"ONLINE"`
	Creator  bool            `json:"CREATOR,omitempty"`
}

type PlayersState struct {
	Players []PlayerState `json:"PLAYERS"`
}

type PlayerLeft struct {
	PlayerID engine.PlayerID `json:"ID_PLAYER"`
	Name     string          `json:"NAME"`
}

type TeamState struct {
	TeamID     engine.TeamID `json:"ID_TEAM"`
	Name       string        `json:"NAME"`
	Color      string        `json:"COLOR"`
	Lives      int           `json:"LIVES"`
	Score      int           `json:"SCORE"`
	Defeated   bool          `json:"DEFEATED"`
	PathLength int           `json:"PATH_LENGTH"`
}

type TowerInfo struct {
	TowerID   engine.TowerID   `json:"ID_TOWER"`
	TowerType engine.TowerType `json:"TOWER_TYPE"`
	X         int              `json:"X"`
	Y         int              `json:"Y"`
	Size      int              `json:"SIZE"`
	OwnerID   engine.PlayerID  `json:"ID_OWNER"`
	TeamID    engine.TeamID    `json:"ID_TEAM"`
	Level     int              `json:"LEVEL"`
	Price     int              `json:"PRICE"`
	Invested  int              `json:"INVESTED"`
	Damage    float64          `json:"DAMAGE"`
	Range     float64          `json:"RANGE"`
	Rate      float64          `json:"RATE"`
}

type TowerAdded struct{ TowerInfo }

type TowerUpgraded struct{ TowerInfo }

type TowerRemoved struct {
	TowerID engine.TowerID  `json:"ID_TOWER"`
	OwnerID engine.PlayerID `json:"ID_OWNER"`
}

type CreatureAdded struct {
	CreatureID   engine.CreatureID   `json:"ID_CREATURE"`
	CreatureType engine.CreatureType `json:"CREATURE_TYPE"`
	X            int                 `json:"X"`
	Y            int                 `json:"Y"`
	Health       int                 `json:"HEALTH"`
	MaxHealth    int                 `json:"MAX_HEALTH"`
	Speed        int                 `json:"SPEED"`
	Bounty       int                 `json:"BOUNTY"`
	SenderID     engine.PlayerID     `json:"ID_SENDER"`
	TeamID       engine.TeamID       `json:"ID_TEAM"`
}

type CreatureState struct {
	CreatureID engine.CreatureID `json:"ID_CREATURE"`
	X          int               `json:"X"`
	Y          int               `json:"Y"`
	Health     int               `json:"HEALTH"`
	Angle      float64           `json:"ANGLE"`
}

type CreatureRemoved struct {
	CreatureID engine.CreatureID `json:"ID_CREATURE"`
	KillerID   engine.PlayerID   `json:"ID_KILLER,omitempty"`
}

type CreatureArrived struct {
	CreatureID engine.CreatureID `json:"ID_CREATURE"`
	TeamID     engine.TeamID     `json:"ID_TEAM"`
	Lives      int               `json:"LIVES"`
}

type MatchState struct {
	State    engine.MatchState `json:"ETAT"`
	WinnerID engine.TeamID     `json:"ID_WINNER,omitempty"`
}

func (Hello) MessageType() Type           { return TypeHello }
func (Subscribe) MessageType() Type       { return TypeSubscribe }
func (TeamChange) MessageType() Type      { return TypeTeamChange }
func (TowerAdd) MessageType() Type        { return TypeTowerAdd }
func (TowerUpgrade) MessageType() Type    { return TypeTowerUpgrade }
func (TowerSell) MessageType() Type       { return TypeTowerSell }
func (WaveRequest) MessageType() Type     { return TypeWaveRequest }
func (MatchStart) MessageType() Type      { return TypeMatchStart }
func (Chat) MessageType() Type            { return TypeChat }
func (PlayerInit) MessageType() Type      { return TypePlayerInit }
func (Reply) MessageType() Type           { return TypeReply }
func (PlayerState) MessageType() Type     { return TypePlayerState }
func (PlayersState) MessageType() Type    { return TypePlayersState }
func (PlayerLeft) MessageType() Type      { return TypePlayerLeft }
func (TeamState) MessageType() Type       { return TypeTeamState }
func (TowerAdded) MessageType() Type      { return TypeTowerAdded }
func (TowerUpgraded) MessageType() Type   { return TypeTowerUpgraded }
func (TowerRemoved) MessageType() Type    { return TypeTowerRemoved }
func (CreatureAdded) MessageType() Type   { return TypeCreatureAdded }
func (CreatureState) MessageType() Type   { return TypeCreatureState }
func (CreatureRemoved) MessageType() Type { return TypeCreatureRemoved }
func (CreatureArrived) MessageType() Type { return TypeCreatureArrived }
func (MatchState) MessageType() Type      { return TypeMatchState }
