package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/terminal-chat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	password := flag.String("password", "", "password (registers the user on first login)")
	token := flag.String("token", "", "session token to restore instead of logging in")
	community := flag.String("community", "", "community to join after login")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(v proto.Inbound) {
		if writeErr := wsjson.Write(ctx, conn, v); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	if *token != "" {
		send(proto.Inbound{Type: proto.InboundTypeRestoreSession, Token: *token})
	} else {
		send(proto.Inbound{Type: proto.InboundTypeLogin, Username: *user, Password: *password})
	}
	if *community != "" {
		send(proto.Inbound{Type: proto.InboundTypeJoinCommunity, Community: *community})
	}

	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")
	fmt.Println("Local commands: /join <name>, /rename <name>, /ghost, /history, /list")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, send)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

// frame holds every outbound field the client renders.
type frame struct {
	Type        string              `json:"type"`
	Token       string              `json:"token"`
	Username    string              `json:"username"`
	DisplayName string              `json:"displayName"`
	Community   string              `json:"community"`
	Content     string              `json:"content"`
	Timestamp   string              `json:"timestamp"`
	Message     string              `json:"message"`
	IsGhost     bool                `json:"isGhost"`
	Users       json.RawMessage     `json:"users"`
	Count       int                 `json:"count"`
	History     []proto.ChatMessage `json:"history"`
	Messages    []proto.ChatMessage `json:"messages"`
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		render(f)
	}
}

func render(f frame) {
	switch f.Type {
	case proto.OutboundTypeSystem, proto.OutboundTypeCommandResponse:
		fmt.Println(f.Content)
	case proto.OutboundTypeLoginSuccess:
		fmt.Printf("[SYS] > Logged in as %s (token %s)\n", f.DisplayName, f.Token)
	case proto.OutboundTypeSessionRestored:
		fmt.Printf("[SYS] > Session restored for %s\n", f.DisplayName)
	case proto.OutboundTypeCommunityJoined:
		fmt.Printf("[SYS] > Joined #%s\n", f.Community)
		for _, m := range f.History {
			printMessage(m)
		}
	case proto.OutboundTypeChatMessage:
		var m proto.ChatMessage
		m.Username, m.DisplayName, m.Content, m.Timestamp = f.Username, f.DisplayName, f.Content, f.Timestamp
		printMessage(m)
	case proto.OutboundTypeChatHistory:
		fmt.Printf("[SYS] > History of #%s\n", f.Community)
		for _, m := range f.Messages {
			printMessage(m)
		}
	case proto.OutboundTypeUsersList:
		var names []string
		_ = json.Unmarshal(f.Users, &names)
		fmt.Printf("[SYS] > %d online: %s\n", f.Count, strings.Join(names, ", "))
	case proto.OutboundTypeUserJoined:
		fmt.Printf("[%s] %s joined #%s\n", f.Timestamp, f.Username, f.Community)
	case proto.OutboundTypeUserLeft:
		fmt.Printf("[%s] %s left #%s\n", f.Timestamp, f.Username, f.Community)
	case proto.OutboundTypeDisplayNameChanged:
		fmt.Printf("[SYS] > Display name is now %s\n", f.DisplayName)
	case proto.OutboundTypeGhostToggled:
		fmt.Printf("[SYS] > Ghost mode: %t\n", f.IsGhost)
	case proto.OutboundTypeError:
		fmt.Printf("[ERR] > %s\n", f.Message)
	case proto.OutboundTypePong:
	default:
		fmt.Printf("type=%s\n", f.Type)
	}
}

func printMessage(m proto.ChatMessage) {
	name := m.DisplayName
	if name == "" {
		name = m.Username
	}
	fmt.Printf("[%s] %s: %s\n", m.Timestamp, name, m.Content)
}

// parseLine turns a typed line into a frame. Slash commands the server
// interprets itself (/users, /whoami, /nick) go out as chat messages.
func parseLine(line string) (proto.Inbound, bool) {
	text := strings.TrimSpace(line)
	if text == "" {
		return proto.Inbound{}, false
	}

	cmd, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/join":
		return proto.Inbound{Type: proto.InboundTypeJoinCommunity, Community: arg}, true
	case "/rename":
		return proto.Inbound{Type: proto.InboundTypeChangeDisplayName, DisplayName: arg}, true
	case "/ghost":
		return proto.Inbound{Type: proto.InboundTypeToggleGhost}, true
	case "/history":
		return proto.Inbound{Type: proto.InboundTypeGetHistory, Community: arg}, true
	case "/list":
		return proto.Inbound{Type: proto.InboundTypeGetUsers}, true
	}
	return proto.Inbound{Type: proto.InboundTypeChatMessage, Content: text}, true
}

func writeLoop(ctx context.Context, send func(proto.Inbound)) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if in, ok := parseLine(line); ok {
				send(in)
			}
		}
	}
}
