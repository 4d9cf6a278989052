package protocol

// Version is sent to clients in the join reply.
const Version = "0.3"

type Type int

const (
	TypeHello Type = iota + 1
	TypePlayerInit
	TypeSubscribe
	TypeReply
	TypePlayerState
	TypePlayersState
	TypePlayerLeft
	TypeTeamChange
	TypeTeamState
	TypeTowerAdd
	TypeTowerAdded
	TypeTowerUpgrade
	TypeTowerUpgraded
	TypeTowerSell
	TypeTowerRemoved
	TypeCreatureAdded
	TypeCreatureState
	TypeCreatureRemoved
	TypeCreatureArrived
	TypeWaveRequest
	TypeChat
	TypeMatchStart
	TypeMatchState
)

// Field names.
const (
	KeyType         = "TYPE"
	KeyStatus       = "STATUS"
	KeyState        = "ETAT"
	KeyRequest      = "REQUEST"
	KeyName         = "NAME"
	KeyPlayerID     = "ID_PLAYER"
	KeyTeamID       = "ID_TEAM"
	KeySlotID       = "ID_SLOT"
	KeyMatchID      = "ID_MATCH"
	KeyTerrain      = "TERRAIN"
	KeyVersion      = "VERSION"
	KeyPort         = "PORT"
	KeyToken        = "TOKEN"
	KeyGold         = "GOLD"
	KeyScore        = "SCORE"
	KeyOnline       = "ONLINE"
	KeyCreator      = "CREATOR"
	KeyPlayers      = "PLAYERS"
	KeyColor        = "COLOR"
	KeyLives        = "LIVES"
	KeyDefeated     = "DEFEATED"
	KeyPathLength   = "PATH_LENGTH"
	KeyTowerID      = "ID_TOWER"
	KeyTowerType    = "TOWER_TYPE"
	KeyX            = "X"
	KeyY            = "Y"
	KeySize         = "SIZE"
	KeyOwnerID      = "ID_OWNER"
	KeyLevel        = "LEVEL"
	KeyPrice        = "PRICE"
	KeyInvested     = "INVESTED"
	KeyDamage       = "DAMAGE"
	KeyRange        = "RANGE"
	KeyRate         = "RATE"
	KeyRefund       = "REFUND"
	KeyCreatureID   = "ID_CREATURE"
	KeyCreatureType = "CREATURE_TYPE"
	KeyHealth       = "HEALTH"
	KeyMaxHealth    = "MAX_HEALTH"
	KeySpeed        = "SPEED"
	KeyBounty       = "BOUNTY"
	KeyAngle        = "ANGLE"
	KeySenderID     = "ID_SENDER"
	KeyKillerID     = "ID_KILLER"
	KeyCount        = "COUNT"
	KeyMessage      = "MESSAGE"
	KeyTargetID     = "ID_TARGET"
	KeyWinnerID     = "ID_WINNER"
)

type schema struct {
	name     string
	required []string
}

var catalog = map[Type]schema{
	TypeHello:           {"hello", []string{KeyName}},
	TypePlayerInit:      {"player-init", []string{KeyStatus}},
	TypeSubscribe:       {"subscribe", []string{KeyPlayerID, KeyToken}},
	TypeReply:           {"reply", []string{KeyStatus, KeyRequest}},
	TypePlayerState:     {"player-state", []string{KeyPlayerID}},
	TypePlayersState:    {"players-state", []string{KeyPlayers}},
	TypePlayerLeft:      {"player-left", []string{KeyPlayerID}},
	TypeTeamChange:      {"team-change", []string{KeyTeamID}},
	TypeTeamState:       {"team-state", []string{KeyTeamID, KeyLives}},
	TypeTowerAdd:        {"tower-add", []string{KeyTowerType, KeyX, KeyY}},
	TypeTowerAdded:      {"tower-added", []string{KeyTowerID, KeyTowerType, KeyX, KeyY, KeyOwnerID}},
	TypeTowerUpgrade:    {"tower-upgrade", []string{KeyTowerID}},
	TypeTowerUpgraded:   {"tower-upgraded", []string{KeyTowerID, KeyLevel}},
	TypeTowerSell:       {"tower-sell", []string{KeyTowerID}},
	TypeTowerRemoved:    {"tower-removed", []string{KeyTowerID}},
	TypeCreatureAdded:   {"creature-added", []string{KeyCreatureID, KeyCreatureType, KeyX, KeyY}},
	TypeCreatureState:   {"creature-state", []string{KeyCreatureID, KeyX, KeyY, KeyHealth}},
	TypeCreatureRemoved: {"creature-removed", []string{KeyCreatureID}},
	TypeCreatureArrived: {"creature-arrived", []string{KeyCreatureID, KeyTeamID}},
	TypeWaveRequest:     {"wave-request", []string{KeyCreatureType, KeyCount}},
	TypeChat:            {"chat", []string{KeyMessage}},
	TypeMatchStart:      {"match-start", nil},
	TypeMatchState:      {"match-state", []string{KeyState}},
}

func (t Type) String() string {
	if s, ok := catalog[t]; ok {
		return s.name
	}
	return "unknown"
}

// Message is any value in the catalog.
type Message interface {
	MessageType() Type
}
