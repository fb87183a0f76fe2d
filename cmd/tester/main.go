package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"roomhub/domain"

	"github.com/gorilla/websocket"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
)

// Tester dials N sockets into one room, publishes over HTTP with the issued
// tokens, and reports how many events each participant received. Useful for
// eyeballing fan-out behavior and backpressure under load.
type Config struct {
	ServerURL string        `envconfig:"TESTER_SERVER_URL" default:"http://localhost:8000"`
	Room      string        `envconfig:"TESTER_ROOM" default:"load"`
	Clients   int           `envconfig:"TESTER_CLIENTS" default:"5"`
	Messages  int           `envconfig:"TESTER_MESSAGES" default:"10"`
	LogLevel  string        `envconfig:"TESTER_LOG_LEVEL" default:"INFO"`
	Settle    time.Duration `envconfig:"TESTER_SETTLE" default:"2s"`
}

type control struct {
	Handle uint64 `json:"handle"`
	Token  string `json:"token"`
}

type participant struct {
	name     string
	ws       *websocket.Conn
	control  control
	received int
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	base, err := url.Parse(config.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}

	participants := make([]*participant, 0, config.Clients)
	for i := 0; i < config.Clients; i++ {
		p, err := connect(base, config.Room, fmt.Sprintf("tester-%d", i))
		if err != nil {
			return fmt.Errorf("connecting tester-%d: %w", i, err)
		}
		defer p.ws.Close()
		participants = append(participants, p)
	}
	log.Info("All testers connected", "clients", config.Clients, "room", config.Room)

	// Count deliveries in the background while publishing.
	var wg sync.WaitGroup
	for _, p := range participants {
		wg.Add(1)
		go func(p *participant) {
			defer wg.Done()
			deadline := time.Now().Add(config.Settle)
			for {
				_ = p.ws.SetReadDeadline(deadline)
				if _, _, err := p.ws.ReadMessage(); err != nil {
					return
				}
				p.received++
			}
		}(p)
	}

	publisher := participants[0]
	for i := 0; i < config.Messages; i++ {
		if err := post(base, publisher.control.Token, domain.Broadcast{
			Message: fmt.Sprintf("load message %d", i),
		}); err != nil {
			return fmt.Errorf("publishing message %d: %w", i, err)
		}
	}
	log.Info("All messages published", "messages", config.Messages)

	wg.Wait()

	counts := lo.Map(participants, func(p *participant, _ int) int { return p.received })
	log.Info("Delivery report",
		"min", lo.Min(counts),
		"max", lo.Max(counts),
		"total", lo.Sum(counts))
	return nil
}

func connect(base *url.URL, room, name string) (*participant, error) {
	wsURL := *base
	wsURL.Scheme = "ws"
	wsURL.Path = "/socket"
	wsURL.RawQuery = url.Values{"room": {room}, "name": {name}}.Encode()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return nil, err
	}

	p := &participant{name: name, ws: ws}
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := ws.ReadJSON(&p.control); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("reading control frame: %w", err)
	}
	return p, nil
}

func post(base *url.URL, token string, payload domain.Broadcast) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, base.JoinPath("/broadcast").String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
