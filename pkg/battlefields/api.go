// Package battlefields exposes the Battlefields statistics endpoints as
// typed, cached, asynchronous requests on top of package client.
package battlefields

import (
	"net/url"

	"github.com/tastac/bfj-client/pkg/client"
)

// Endpoint paths relative to the API base URL.
const (
	EndpointWeapons             = "weapons"
	EndpointAccessories         = "accessories"
	EndpointAccessoryTypes      = "accessorytypes"
	EndpointLinkedDiscord       = "linkeddiscord"
	EndpointOwnedEmotes         = "ownedemotes"
	EndpointEmotes              = "emotes"
	EndpointWeaponStats         = "weaponstats"
	EndpointServerStatus        = "serverstatus"
	EndpointServerInfo          = "serverinfo"
	EndpointKills               = "kills"
	EndpointCosmeticModel       = "cosmetics/model"
	EndpointCosmeticModelHash   = "cosmetics/model/hash"
	EndpointCosmeticTexture     = "cosmetics/texture"
	EndpointCosmeticTextureHash = "cosmetics/texture/hash"
)

// API issues typed requests for Battlefields resources.
type API struct {
	client *client.Client
}

// New creates an API backed by a new client.
func New(cfg client.Config) (*API, error) {
	c, err := client.New(cfg)
	if err != nil {
		return nil, err
	}
	return &API{client: c}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(c *client.Client) *API {
	return &API{client: c}
}

// Client returns the underlying client.
func (a *API) Client() *client.Client {
	return a.client
}

// Shutdown shuts the underlying client down. See client.Client.Shutdown.
func (a *API) Shutdown() bool {
	return a.client.Shutdown()
}

// ParseQuery parses a "k=v&k2=v2" filter string, as accepted by
// WeaponStats and Kills.
func ParseQuery(raw string) (url.Values, error) {
	return url.ParseQuery(raw)
}

func (a *API) Weapons() *client.Future[[]Weapon] {
	return client.GetJSON[[]Weapon](a.client, EndpointWeapons, nil)
}

func (a *API) Accessories() *client.Future[[]Accessory] {
	return client.GetJSON[[]Accessory](a.client, EndpointAccessories, nil)
}

func (a *API) AccessoryTypes() *client.Future[[]AccessoryType] {
	return client.GetJSON[[]AccessoryType](a.client, EndpointAccessoryTypes, nil)
}

func (a *API) LinkedDiscord() *client.Future[[]LinkedDiscord] {
	return client.GetJSON[[]LinkedDiscord](a.client, EndpointLinkedDiscord, nil)
}

func (a *API) OwnedEmotes() *client.Future[[]OwnedEmote] {
	return client.GetJSON[[]OwnedEmote](a.client, EndpointOwnedEmotes, nil)
}

func (a *API) Emotes() *client.Future[[]Emote] {
	return client.GetJSON[[]Emote](a.client, EndpointEmotes, nil)
}

// WeaponStats returns weapon statistics filtered by query (e.g. match_id=19).
func (a *API) WeaponStats(query url.Values) *client.Future[[]WeaponStat] {
	return client.GetJSON[[]WeaponStat](a.client, EndpointWeaponStats, query)
}

func (a *API) ServerStatus() *client.Future[ServerStatus] {
	return client.GetJSON[ServerStatus](a.client, EndpointServerStatus, nil)
}

func (a *API) ServerInfo() *client.Future[ServerInfo] {
	return client.GetJSON[ServerInfo](a.client, EndpointServerInfo, nil)
}

// Kills returns kills filtered by query (e.g. uuid=<player uuid>).
func (a *API) Kills(query url.Values) *client.Future[[]Kill] {
	return client.GetJSON[[]Kill](a.client, EndpointKills, query)
}

// CosmeticModelHash returns the content hash of a cosmetic's model.
func (a *API) CosmeticModelHash(name string) *client.Future[string] {
	return client.GetText(a.client, EndpointCosmeticModelHash, nameQuery(name))
}

// CosmeticModel returns a cosmetic's JSON model.
func (a *API) CosmeticModel(name string) *client.Future[CosmeticModel] {
	return client.GetJSON[CosmeticModel](a.client, EndpointCosmeticModel, nameQuery(name))
}

// CosmeticTextureHash returns the content hash of a cosmetic texture.
func (a *API) CosmeticTextureHash(name string) *client.Future[string] {
	return client.GetText(a.client, EndpointCosmeticTextureHash, nameQuery(name))
}

// CosmeticTexture returns the raw texture image of a cosmetic.
func (a *API) CosmeticTexture(name string) *client.Future[[]byte] {
	return client.GetBytes(a.client, EndpointCosmeticTexture, nameQuery(name))
}

func nameQuery(name string) url.Values {
	return url.Values{"name": []string{name}}
}
