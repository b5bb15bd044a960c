package sse

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mcoot/lanterngame/internal/events"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
)

func TestEventName(t *testing.T) {
	event := events.New(model.ChangeUpdate, model.EntityStation, nil, time.Time{})
	if got := EventName(event); got != "station-update" {
		t.Errorf("EventName() = %q, want station-update", got)
	}
}

func TestBroadcaster_Publish(t *testing.T) {
	hub := newRunningHub(t)
	client := NewClient(hub, "player1")
	hub.Register(client)
	waitForClients(t, hub, 1)

	b := NewBroadcaster(hub, logger.Nop())
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b.Publish(context.Background(), events.New(model.ChangeCreate, model.EntityTeam, &model.Team{TeamID: 1, TeamName: "Red"}, at))

	var msg []byte
	select {
	case msg = <-client.send:
	case <-time.After(time.Second):
		t.Fatal("client did not receive event")
	}

	lines := strings.Split(strings.TrimSpace(string(msg)), "\n")
	if lines[0] != "event: team-create" {
		t.Fatalf("unexpected event line %q", lines[0])
	}

	var decoded struct {
		Kind   string     `json:"kind"`
		Entity string     `json:"entity"`
		Data   model.Team `json:"data"`
	}
	if err := json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "data: ")), &decoded); err != nil {
		t.Fatalf("invalid event payload: %v", err)
	}
	if decoded.Kind != "create" || decoded.Entity != "team" || decoded.Data.TeamName != "Red" {
		t.Errorf("unexpected payload %+v", decoded)
	}
}

func TestBroadcaster_NoClientsDoesNotBlock(t *testing.T) {
	hub := newRunningHub(t)
	b := NewBroadcaster(hub, logger.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.Publish(context.Background(), events.New(model.ChangeUpdate, model.EntityRound, nil, time.Time{}))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}
