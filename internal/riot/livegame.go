package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FlashSpellID is summoner spell 4 in Riot's data. Enemies without Flash are
// filtered out of lookups — there is nothing to track for them.
const FlashSpellID = 4

// LiveGame looks up a summoner's running game through the Riot API.
// All expected failures (unknown summoner, not in game, missing key) come
// back as a success:false envelope, never as an error.
type LiveGame struct {
	http   *http.Client
	apiKey string
	log    *zap.Logger
}

func NewLiveGame(apiKey string, log *zap.Logger) *LiveGame {
	if apiKey == "" {
		log.Warn("RIOT_API_KEY not set, live game lookups will fail")
	}
	return &LiveGame{
		http:   &http.Client{Timeout: 10 * time.Second},
		apiKey: apiKey,
		log:    log,
	}
}

type LiveParticipant struct {
	SummonerName string `json:"summonerName"`
	ChampionID   int    `json:"championId"`
	TeamID       int    `json:"teamId"`
}

type LiveGameData struct {
	Allies        []LiveParticipant `json:"allies"`
	Enemies       []LiveParticipant `json:"enemies"`
	GameID        int64             `json:"gameId"`
	GameStartTime int64             `json:"gameStartTime"`
	GameLength    int64             `json:"gameLength"`
}

type LiveGameResult struct {
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	Data    *LiveGameData `json:"data,omitempty"`
}

func failure(format string, args ...any) LiveGameResult {
	return LiveGameResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// regionalRouting maps a platform (euw1, na1, ...) to its account-v1 cluster.
// https://developer.riotgames.com/docs/lol#routing-values
func regionalRouting(region string) string {
	switch strings.ToLower(region) {
	case "br1", "la1", "la2", "na1":
		return "americas"
	case "jp1", "kr":
		return "asia"
	case "oc1", "ph2", "sg2", "th2", "tw2", "vn2":
		return "sea"
	default:
		return "europe"
	}
}

// Lookup resolves "gameName#tagLine" on a region to the live game snapshot.
func (lg *LiveGame) Lookup(ctx context.Context, riotID, region string) LiveGameResult {
	if lg.apiKey == "" {
		return failure("live game lookups are not configured")
	}

	gameName, tagLine, ok := strings.Cut(riotID, "#")
	if !ok || gameName == "" || tagLine == "" {
		return failure("summoner must be in gameName#tagLine form")
	}

	puuid, result := lg.resolveAccount(ctx, gameName, tagLine, region)
	if puuid == "" {
		return result
	}

	return lg.fetchActiveGame(ctx, puuid, region)
}

func (lg *LiveGame) resolveAccount(ctx context.Context, gameName, tagLine, region string) (string, LiveGameResult) {
	cluster := regionalRouting(region)
	u := fmt.Sprintf("https://%s.api.riotgames.com/riot/account/v1/accounts/by-riot-id/%s/%s",
		cluster, url.PathEscape(gameName), url.PathEscape(tagLine))

	var account struct {
		PUUID string `json:"puuid"`
	}
	status, err := lg.getJSON(ctx, u, &account)
	if err != nil {
		lg.log.Error("account lookup failed", zap.Error(err))
		return "", failure("riot api unreachable")
	}
	if status == http.StatusNotFound {
		return "", failure("summoner %s#%s not found", gameName, tagLine)
	}
	if status != http.StatusOK {
		return "", failure("riot api error (%d)", status)
	}
	return account.PUUID, LiveGameResult{}
}

func (lg *LiveGame) fetchActiveGame(ctx context.Context, puuid, region string) LiveGameResult {
	u := fmt.Sprintf("https://%s.api.riotgames.com/lol/spectator/v5/active-games/by-summoner/%s",
		strings.ToLower(region), url.PathEscape(puuid))

	var raw struct {
		GameID        int64 `json:"gameId"`
		GameStartTime int64 `json:"gameStartTime"`
		GameLength    int64 `json:"gameLength"`
		Participants  []struct {
			PUUID        string `json:"puuid"`
			SummonerName string `json:"riotId"`
			ChampionID   int    `json:"championId"`
			TeamID       int    `json:"teamId"`
			Spell1ID     int    `json:"spell1Id"`
			Spell2ID     int    `json:"spell2Id"`
		} `json:"participants"`
	}
	status, err := lg.getJSON(ctx, u, &raw)
	if err != nil {
		lg.log.Error("active game lookup failed", zap.Error(err))
		return failure("riot api unreachable")
	}
	if status == http.StatusNotFound {
		return failure("summoner is not in a live game")
	}
	if status != http.StatusOK {
		return failure("riot api error (%d)", status)
	}

	var ownTeam int
	for _, p := range raw.Participants {
		if p.PUUID == puuid {
			ownTeam = p.TeamID
			break
		}
	}

	data := &LiveGameData{
		GameID:        raw.GameID,
		GameStartTime: raw.GameStartTime,
		GameLength:    raw.GameLength,
	}
	for _, p := range raw.Participants {
		lp := LiveParticipant{SummonerName: p.SummonerName, ChampionID: p.ChampionID, TeamID: p.TeamID}
		if p.TeamID == ownTeam {
			data.Allies = append(data.Allies, lp)
			continue
		}
		// Only enemies carrying Flash are worth a role card.
		if p.Spell1ID == FlashSpellID || p.Spell2ID == FlashSpellID {
			data.Enemies = append(data.Enemies, lp)
		}
	}

	return LiveGameResult{Success: true, Data: data}
}

func (lg *LiveGame) getJSON(ctx context.Context, u string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("X-Riot-Token", lg.apiKey)

	resp, err := lg.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}
