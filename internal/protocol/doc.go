// Package protocol is the wire format shared by the server and its clients: one
// flat JSON object per line, TYPE first.
//
// Client -> Server, request channel (each gets exactly one reply):
//
//	Hello (1):          NAME                       -> PlayerInit
//	TeamChange (8):     ID_TEAM                    -> Reply
//	TowerAdd (10):      TOWER_TYPE, X, Y           -> Reply{ID_TOWER}
//	TowerUpgrade (12):  ID_TOWER                   -> Reply{ID_TOWER}
//	TowerSell (14):     ID_TOWER                   -> Reply{ID_TOWER, REFUND}
//	WaveRequest (20):   CREATURE_TYPE, COUNT       -> Reply
//	Chat (21):          MESSAGE, ID_TARGET?        -> Reply
//	MatchStart (22):    {}                         -> Reply
//
// Client -> Server, broadcast channel (first and only message):
//
//	Subscribe (3):      ID_PLAYER, TOKEN
//
// Server -> Client, request channel:
//
//	PlayerInit (2):     STATUS, ID_PLAYER, ID_TEAM, ID_SLOT, ID_MATCH, TERRAIN, VERSION, PORT, TOKEN
//	Reply (4):          STATUS, REQUEST, ID_TOWER?, REFUND?
//
// Server -> Client, broadcast channel:
//
//	PlayerState (5):     ID_PLAYER, NAME, ID_TEAM, ID_SLOT, GOLD, SCORE, ONLINE, CREATOR?
//	PlayersState (6):    PLAYERS: PlayerState[] // full roster, replaces the previous one
//	PlayerLeft (7):      ID_PLAYER, NAME
//	TeamState (9):       ID_TEAM, NAME, COLOR, LIVES, SCORE, DEFEATED, PATH_LENGTH
//	TowerAdded (11):     ID_TOWER, TOWER_TYPE, X, Y, SIZE, ID_OWNER, ID_TEAM, LEVEL, PRICE, INVESTED, DAMAGE, RANGE, RATE
//	TowerUpgraded (13):  same fields as TowerAdded
//	TowerRemoved (15):   ID_TOWER, ID_OWNER
//	CreatureAdded (16):  ID_CREATURE, CREATURE_TYPE, X, Y, HEALTH, MAX_HEALTH, SPEED, BOUNTY, ID_SENDER, ID_TEAM
//	CreatureState (17):  ID_CREATURE, X, Y, HEALTH, ANGLE // periodic while the match runs
//	CreatureRemoved (18): ID_CREATURE, ID_KILLER?
//	CreatureArrived (19): ID_CREATURE, ID_TEAM, LIVES
//	Chat (21):           MESSAGE, ID_PLAYER, NAME, ID_TARGET?
//	MatchState (23):     ETAT, ID_WINNER?
//
// STATUS values are listed in status.go; ETAT follows engine.MatchState.
package protocol
