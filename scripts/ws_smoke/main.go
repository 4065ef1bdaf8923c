// Command ws_smoke connects to the live moderation feed and prints events
// until the timeout expires. Handy for checking a running server end to end:
//
//	go run ./scripts/ws_smoke -token $(curl -s ... /api/login | jq -r .token)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/api/moderation/ws", "feed WebSocket address")
	token := flag.String("token", "", "JWT of a teacher account")
	timeout := flag.Duration("timeout", 30*time.Second, "how long to listen")
	flag.Parse()

	if *token == "" {
		return errors.New("-token is required (login as a teacher first)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + *token}},
	})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	log.Printf("listening for moderation events on %s", *addr)

	for {
		var event map[string]any
		if err := wsjson.Read(ctx, conn, &event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		pretty, _ := json.Marshal(event)
		log.Printf("event: %s", pretty)
	}
}
