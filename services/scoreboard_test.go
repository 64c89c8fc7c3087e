// services/scoreboard_test.go
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const mixedFeed = `{
  "events": [
    {
      "name": "Buffalo Bills at Miami Dolphins",
      "shortName": "BUF @ MIA",
      "season": {"type": 2, "slug": "regular-season"},
      "competitions": [{
        "status": {"period": 1, "type": {"name": "STATUS_IN_PROGRESS", "detail": "1st Quarter", "completed": false}},
        "competitors": [
          {"homeAway": "home", "score": "3", "team": {"displayName": "Miami Dolphins"}},
          {"homeAway": "away", "score": "0", "team": {"displayName": "Buffalo Bills"}}
        ]
      }]
    },
    {
      "name": "Super Bowl LIX",
      "shortName": "KC @ PHI",
      "season": {"type": 3, "slug": "post-season"},
      "competitions": [{
        "status": {"period": 2, "type": {"name": "STATUS_HALFTIME", "detail": "Halftime", "completed": false}},
        "competitors": [
          {"homeAway": "away", "score": "14", "team": {"displayName": "Kansas City Chiefs"}},
          {"homeAway": "home", "score": "24", "team": {"displayName": "Philadelphia Eagles"}}
        ]
      }]
    }
  ]
}`

func stubClient(t *testing.T, body string, status int) *ScoreboardClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return &ScoreboardClient{BaseURL: srv.URL, HTTPClient: srv.Client()}
}

func TestFetchGameStatusSeasonPhaseMatch(t *testing.T) {
	client := stubClient(t, mixedFeed, http.StatusOK)

	status, err := client.FetchGameStatus(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if status == nil {
		t.Fatal("expected a matched game")
	}
	if status.EventName != "Super Bowl LIX" {
		t.Fatalf("matched wrong event: %q", status.EventName)
	}
	if status.StatusName != StatusHalftime || status.Period != 2 {
		t.Fatalf("status: %+v", status)
	}
	// Sides come from the homeAway indicator, not competitor array order —
	// the away side is listed first in the fixture.
	if status.HomeTeam != "Philadelphia Eagles" || status.HomeScore != 24 {
		t.Fatalf("home side: %s %d", status.HomeTeam, status.HomeScore)
	}
	if status.AwayTeam != "Kansas City Chiefs" || status.AwayScore != 14 {
		t.Fatalf("away side: %s %d", status.AwayTeam, status.AwayScore)
	}
}

func TestFetchGameStatusNameFallback(t *testing.T) {
	feed := `{"events":[{
	  "name": "Super Bowl LIX - Chiefs vs Eagles",
	  "season": {"type": 0},
	  "competitions": [{
	    "status": {"period": 1, "type": {"name": "STATUS_SCHEDULED", "detail": "Scheduled", "completed": false}},
	    "competitors": [
	      {"homeAway": "home", "score": "", "team": {"displayName": "Philadelphia Eagles"}},
	      {"homeAway": "away", "score": "", "team": {"displayName": "Kansas City Chiefs"}}
	    ]
	  }]
	}]}`
	client := stubClient(t, feed, http.StatusOK)

	status, err := client.FetchGameStatus(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if status == nil {
		t.Fatal("keyword fallback should match the event")
	}
	// Missing score strings coerce to 0.
	if status.HomeScore != 0 || status.AwayScore != 0 {
		t.Fatalf("scores: %d %d, want 0 0", status.HomeScore, status.AwayScore)
	}
}

func TestFetchGameStatusNoMatch(t *testing.T) {
	client := stubClient(t, `{"events":[]}`, http.StatusOK)

	status, err := client.FetchGameStatus(context.Background())
	if err != nil {
		t.Fatalf("no-game window is not an error: %v", err)
	}
	if status != nil {
		t.Fatalf("expected nil status, got %+v", status)
	}
}

func TestFetchGameStatusHTTPError(t *testing.T) {
	client := stubClient(t, `oops`, http.StatusServiceUnavailable)

	if _, err := client.FetchGameStatus(context.Background()); err == nil {
		t.Fatal("non-2xx must be a hard error")
	}
}
