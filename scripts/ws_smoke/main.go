package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/terminal-chat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

// outbound is the subset of server frames the smoke run checks.
type outbound struct {
	Type      string `json:"type"`
	Token     string `json:"token"`
	Username  string `json:"username"`
	Community string `json:"community"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	user := flag.String("user", "tester", "username to log in with")
	password := flag.String("password", "smoke-pass", "password")
	community := flag.String("community", "smoke", "community to join")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	steps := []proto.Inbound{
		{Type: proto.InboundTypeLogin, Username: *user, Password: *password},
		{Type: proto.InboundTypeJoinCommunity, Community: *community},
		{Type: proto.InboundTypeChatMessage, Content: *text},
	}
	for _, in := range steps {
		if err := wsjson.Write(ctx, conn, in); err != nil {
			return fmt.Errorf("send %s: %w", in.Type, err)
		}
	}

	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s\n", out.Type)

		switch out.Type {
		case proto.OutboundTypeError:
			return fmt.Errorf("server error: %s", out.Message)
		case proto.OutboundTypeLoginSuccess:
			fmt.Printf("Logged in: user=%s token=%s\n", out.Username, out.Token)
		case proto.OutboundTypeCommunityJoined:
			fmt.Printf("Joined: community=%s\n", out.Community)
		case proto.OutboundTypeChatMessage:
			if out.Username == *user && out.Content == *text {
				fmt.Printf("ChatMessage: community=%s user=%s text=%q ts=%s\n", out.Community, out.Username, out.Content, out.Timestamp)
				return nil
			}
		default:
			// keep looping for the echoed message
		}
	}
}
