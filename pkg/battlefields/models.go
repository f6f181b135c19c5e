package battlefields

import "encoding/json"

// Weapon is an entry of the weapons listing.
type Weapon struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Type        string  `json:"type"`
	Damage      float64 `json:"damage"`
}

// Accessory is a cosmetic accessory.
type Accessory struct {
	ID     string `json:"id"`
	TypeID string `json:"type_id"`
	Name   string `json:"name"`
}

// AccessoryType groups accessories.
type AccessoryType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LinkedDiscord maps a player to a Discord account.
type LinkedDiscord struct {
	PlayerUUID string `json:"uuid"`
	DiscordID  string `json:"discord_id"`
}

// Emote is an emote definition.
type Emote struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OwnedEmote records that a player owns an emote.
type OwnedEmote struct {
	PlayerUUID string `json:"uuid"`
	EmoteID    string `json:"emote_id"`
}

// WeaponStat is a per-weapon statistic row.
type WeaponStat struct {
	Weapon  string `json:"weapon"`
	MatchID int64  `json:"match_id"`
	Kills   int    `json:"kills"`
	Shots   int    `json:"shots"`
	Hits    int    `json:"hits"`
}

// Kill is one recorded kill.
type Kill struct {
	Killer    string `json:"killer"`
	Victim    string `json:"victim"`
	Weapon    string `json:"weapon"`
	MatchID   int64  `json:"match_id"`
	Timestamp int64  `json:"timestamp"`
}

// ServerStatus reports whether the game server is reachable.
type ServerStatus struct {
	Online     bool `json:"online"`
	Players    int  `json:"players"`
	MaxPlayers int  `json:"max_players"`
}

// ServerInfo describes the game server.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	MOTD    string `json:"motd"`
}

// CosmeticModel is the raw JSON model of a cosmetic.
type CosmeticModel = json.RawMessage
