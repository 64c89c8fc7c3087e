// services/scoreboard.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"squares-contest-system/utils"
)

// Default feed: ESPN's public NFL scoreboard (no auth token required).
const defaultScoreboardURL = "https://site.api.espn.com/apis/site/v2/sports/football/nfl/scoreboard"

// ESPN status type names the quarter resolver keys on
const (
	StatusFinal     = "STATUS_FINAL"
	StatusEndPeriod = "STATUS_END_PERIOD"
	StatusHalftime  = "STATUS_HALFTIME"
)

// seasonTypePostseason is ESPN's season.type for playoff games.
const seasonTypePostseason = 3

// gameNameKeyword is the display-name fallback used when season metadata is
// missing from the feed.
const gameNameKeyword = "super bowl"

// GameStatus is the canonical normalized game-state record produced by the
// adapter and consumed by the rest of the pipeline.
type GameStatus struct {
	EventName    string `json:"event_name"`
	Period       int    `json:"period"`
	StatusName   string `json:"status_name"`   // e.g. STATUS_HALFTIME, STATUS_FINAL
	StatusDetail string `json:"status_detail"` // human-readable, e.g. "End of 3rd Quarter"
	Completed    bool   `json:"completed"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
	HomeScore    int    `json:"home_score"`
	AwayScore    int    `json:"away_score"`
}

// Final reports whether the game has ended (terminal status or completed flag).
func (g *GameStatus) Final() bool {
	return g.StatusName == StatusFinal || g.Completed
}

// Wire shapes for the scoreboard feed. The raw response is loosely typed;
// only the fields the adapter reads are declared.
type scoreboardResponse struct {
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Season    struct {
		Type int    `json:"type"`
		Slug string `json:"slug"`
	} `json:"season"`
	Competitions []scoreboardCompetition `json:"competitions"`
}

type scoreboardCompetition struct {
	Status struct {
		Period int `json:"period"`
		Type   struct {
			Name      string `json:"name"`
			Detail    string `json:"detail"`
			Completed bool   `json:"completed"`
		} `json:"type"`
	} `json:"status"`
	Competitors []scoreboardCompetitor `json:"competitors"`
}

type scoreboardCompetitor struct {
	HomeAway string `json:"homeAway"` // "home" | "away" — side is explicit, not array order
	Score    string `json:"score"`
	Team     struct {
		DisplayName string `json:"displayName"`
	} `json:"team"`
}

// ScoreboardClient fetches and normalizes game state from the external feed.
type ScoreboardClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewScoreboardClient() *ScoreboardClient {
	baseURL := os.Getenv("SCOREBOARD_URL")
	if baseURL == "" {
		baseURL = defaultScoreboardURL
	}
	return &ScoreboardClient{
		BaseURL:    baseURL,
		HTTPClient: utils.HTTPClient,
	}
}

// FetchGameStatus queries the scoreboard and returns the normalized status of
// the game of interest. A (nil, nil) return means no matching game is in the
// current feed window — the expected steady state outside game day, not an
// error. Transport and non-2xx failures are returned as errors and abort the
// surrounding run.
func (c *ScoreboardClient) FetchGameStatus(ctx context.Context) (*GameStatus, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoreboard request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call scoreboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("scoreboard returned status %d: %s", resp.StatusCode, string(body))
	}

	var feed scoreboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode scoreboard response: %w", err)
	}

	event := matchEvent(feed.Events)
	if event == nil {
		return nil, nil
	}
	if len(event.Competitions) == 0 {
		return nil, nil
	}

	comp := event.Competitions[0]
	status := &GameStatus{
		EventName:    event.Name,
		Period:       comp.Status.Period,
		StatusName:   comp.Status.Type.Name,
		StatusDetail: comp.Status.Type.Detail,
		Completed:    comp.Status.Type.Completed,
	}

	for _, side := range comp.Competitors {
		switch side.HomeAway {
		case "home":
			status.HomeTeam = side.Team.DisplayName
			status.HomeScore = parseScore(side.Score)
		case "away":
			status.AwayTeam = side.Team.DisplayName
			status.AwayScore = parseScore(side.Score)
		}
	}

	return status, nil
}

// matchEvent picks the game of interest: season-phase match first, then the
// display-name keyword fallback.
func matchEvent(events []scoreboardEvent) *scoreboardEvent {
	for i := range events {
		if events[i].Season.Type == seasonTypePostseason {
			return &events[i]
		}
	}
	for i := range events {
		name := strings.ToLower(events[i].Name + " " + events[i].ShortName)
		if strings.Contains(name, gameNameKeyword) {
			return &events[i]
		}
	}
	return nil
}

// parseScore coerces the feed's string score field; missing or malformed
// scores are treated as 0.
func parseScore(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
