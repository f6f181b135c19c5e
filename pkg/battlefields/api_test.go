package battlefields

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tastac/bfj-client/internal/testutil"
	"github.com/tastac/bfj-client/pkg/client"
)

func newTestAPI(t *testing.T) (*API, *testutil.MockAPI) {
	t.Helper()

	mock := testutil.NewMockAPI()
	t.Cleanup(mock.Close)

	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	cfg := client.DefaultConfig()
	cfg.BaseURL = mock.URL() + "/api"
	cfg.Workers = 2
	cfg.ShutdownTimeout = 5 * time.Second
	cfg.Logger = &logger
	cfg.ExceptionHandler = func(error) {}

	api, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { api.Shutdown() })
	return api, mock
}

func await[T any](t *testing.T, f *client.Future[T]) T {
	t.Helper()
	value, err := f.GetWithTimeout(5 * time.Second)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	return value
}

func TestAPI_Listings(t *testing.T) {
	api, mock := newTestAPI(t)
	mock.SetResponse("/api/weapons", testutil.NewJSONResponse(`[{"id":"ak47","display_name":"AK-47","type":"rifle","damage":7.5}]`))
	mock.SetResponse("/api/accessories", testutil.NewJSONResponse(`[{"id":"cat_ears","type_id":"hat","name":"Cat Ears"}]`))
	mock.SetResponse("/api/accessorytypes", testutil.NewJSONResponse(`[{"id":"hat","name":"Hat"}]`))
	mock.SetResponse("/api/linkeddiscord", testutil.NewJSONResponse(`[{"uuid":"u1","discord_id":"d1"}]`))
	mock.SetResponse("/api/ownedemotes", testutil.NewJSONResponse(`[{"uuid":"u1","emote_id":"wave"}]`))
	mock.SetResponse("/api/emotes", testutil.NewJSONResponse(`[{"id":"wave","name":"Wave"},{"id":"dab","name":"Dab"}]`))

	if weapons := await(t, api.Weapons()); len(weapons) != 1 || weapons[0].DisplayName != "AK-47" || weapons[0].Damage != 7.5 {
		t.Errorf("Weapons() = %+v", weapons)
	}
	if acc := await(t, api.Accessories()); len(acc) != 1 || acc[0].TypeID != "hat" {
		t.Errorf("Accessories() = %+v", acc)
	}
	if types := await(t, api.AccessoryTypes()); len(types) != 1 || types[0].Name != "Hat" {
		t.Errorf("AccessoryTypes() = %+v", types)
	}
	if linked := await(t, api.LinkedDiscord()); len(linked) != 1 || linked[0].DiscordID != "d1" {
		t.Errorf("LinkedDiscord() = %+v", linked)
	}
	if owned := await(t, api.OwnedEmotes()); len(owned) != 1 || owned[0].EmoteID != "wave" {
		t.Errorf("OwnedEmotes() = %+v", owned)
	}
	if emotes := await(t, api.Emotes()); len(emotes) != 2 {
		t.Errorf("Emotes() = %+v", emotes)
	}
}

func TestAPI_Server(t *testing.T) {
	api, mock := newTestAPI(t)
	mock.SetResponse("/api/serverstatus", testutil.NewJSONResponse(`{"online":true,"players":12,"max_players":100}`))
	mock.SetResponse("/api/serverinfo", testutil.NewJSONResponse(`{"name":"Battlefields","version":"1.8.9","motd":"hi"}`))

	status := await(t, api.ServerStatus())
	if !status.Online || status.Players != 12 {
		t.Errorf("ServerStatus() = %+v", status)
	}
	info := await(t, api.ServerInfo())
	if info.Version != "1.8.9" {
		t.Errorf("ServerInfo() = %+v", info)
	}
}

func TestAPI_QueryEndpoints(t *testing.T) {
	api, mock := newTestAPI(t)
	mock.SetHandler("/api/kills", func(w http.ResponseWriter, r *http.Request) {
		uuid := r.URL.Query().Get("uuid")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"killer":"` + uuid + `","victim":"v","weapon":"ak47","match_id":3,"timestamp":1}]`))
	})
	mock.SetHandler("/api/weaponstats", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"weapon":"ak47","match_id":` + r.URL.Query().Get("match_id") + `,"kills":4,"shots":10,"hits":6}]`))
	})

	query, err := ParseQuery("uuid=0f6d8e2a")
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	kills := await(t, api.Kills(query))
	if len(kills) != 1 || kills[0].Killer != "0f6d8e2a" {
		t.Errorf("Kills() = %+v", kills)
	}

	other, _ := ParseQuery("uuid=other")
	if kills := await(t, api.Kills(other)); kills[0].Killer != "other" {
		t.Errorf("Kills(other) = %+v, distinct queries must not share a cache entry", kills)
	}

	stats, _ := ParseQuery("match_id=19")
	if rows := await(t, api.WeaponStats(stats)); len(rows) != 1 || rows[0].MatchID != 19 || rows[0].Hits != 6 {
		t.Errorf("WeaponStats() = %+v", rows)
	}

	if got := mock.PathCount("/api/kills"); got != 2 {
		t.Errorf("kills requests = %d, want 2", got)
	}
}

func TestAPI_Cosmetics(t *testing.T) {
	api, mock := newTestAPI(t)
	texture := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	mock.SetHandler("/api/cosmetics/texture", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "cat_ears/white1" {
			http.NotFound(w, r)
			return
		}
		w.Write(texture)
	})
	mock.SetResponse("/api/cosmetics/texture/hash", testutil.NewTextResponse("ffee01\n"))
	mock.SetResponse("/api/cosmetics/model/hash", testutil.NewTextResponse("aa11"))
	mock.SetResponse("/api/cosmetics/model", testutil.NewJSONResponse(`{"elements":[{"from":[0,0,0]}]}`))

	if got := await(t, api.CosmeticTexture("cat_ears/white1")); !bytes.Equal(got, texture) {
		t.Errorf("CosmeticTexture() = %v", got)
	}
	if got := await(t, api.CosmeticTextureHash("cat_ears/white1")); got != "ffee01" {
		t.Errorf("CosmeticTextureHash() = %q", got)
	}
	if got := await(t, api.CosmeticModelHash("cat_ears2")); got != "aa11" {
		t.Errorf("CosmeticModelHash() = %q", got)
	}

	model := await(t, api.CosmeticModel("cat_ears2"))
	var decoded map[string]any
	if err := json.Unmarshal(model, &decoded); err != nil {
		t.Fatalf("model is not JSON: %v", err)
	}
	if _, ok := decoded["elements"]; !ok {
		t.Errorf("model = %s, want elements key", model)
	}

	_, err := api.CosmeticTexture("unknown").GetWithTimeout(5 * time.Second)
	var statusErr *client.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("unknown texture error = %v, want 404 StatusError", err)
	}
}

func TestAPI_ShutdownRejects(t *testing.T) {
	api, _ := newTestAPI(t)
	if !api.Shutdown() {
		t.Fatal("Shutdown() = false, want true")
	}

	_, err := api.Weapons().Get()
	if !errors.Is(err, client.ErrClientClosed) {
		t.Errorf("error = %v, want ErrClientClosed", err)
	}
}
