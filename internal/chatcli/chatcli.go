// Package chatcli turns terminal input into protocol envelopes and server
// envelopes back into printable lines.
package chatcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mattn/go-shellwords"

	"github.com/vovakirdan/wirechat-lobby/internal/proto"
)

// ErrQuit is returned by ParseLine for /quit.
var ErrQuit = errors.New("quit")

// Help lists the slash commands understood by ParseLine.
const Help = `/nick <name>          change your display name
/create <room name>   create a room and enter it
/join <room id>       join an existing room
/leave                return to the lobby
/rooms                list rooms
/users                list users in the current channel
/all                  list every connected user
/dm <user id> <text>  send a private message
/ping                 measure round trip
/quit                 exit
anything else is sent to the current room`

// Commands is the slash command set, for completion.
var Commands = []string{"/nick", "/create", "/join", "/leave", "/rooms", "/users", "/all", "/dm", "/ping", "/help", "/quit"}

// ParseLine converts one input line into an envelope. Lines without a
// leading slash become room messages. A nil envelope means nothing to send.
func ParseLine(line string, nowMillis int64) (*proto.Inbound, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	if !strings.HasPrefix(line, "/") {
		return envelope(proto.CommandMessage, proto.MsgData{Message: line})
	}

	name, raw := cutWord(line)
	rest := freeText(raw)

	switch name {
	case "/quit", "/exit":
		return nil, ErrQuit
	case "/help":
		return nil, nil
	case "/nick":
		if rest == "" {
			return nil, errors.New("usage: /nick <name>")
		}
		return envelope(proto.CommandNick, proto.NickData{Nickname: rest})
	case "/create":
		if rest == "" {
			return nil, errors.New("usage: /create <room name>")
		}
		return envelope(proto.CommandCreate, proto.CreateData{RoomName: rest})
	case "/join":
		args, err := shellwords.Parse(raw)
		if err != nil || len(args) != 1 {
			return nil, errors.New("usage: /join <room id>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("room id must be a number: %q", args[0])
		}
		return envelope(proto.CommandJoin, proto.JoinData{RoomID: proto.RoomRef(id)})
	case "/leave":
		return envelope(proto.CommandLeave, nil)
	case "/rooms":
		return envelope(proto.CommandList, proto.ListData{Entity: "rooms"})
	case "/users":
		return envelope(proto.CommandList, proto.ListData{Entity: "users"})
	case "/all":
		return envelope(proto.CommandListAllUsers, nil)
	case "/dm":
		target, text := cutWord(raw)
		text = freeText(text)
		if target == "" || text == "" {
			return nil, errors.New("usage: /dm <user id> <text>")
		}
		return envelope(proto.CommandDM, proto.DMData{TargetID: target, Message: text})
	case "/ping":
		return envelope(proto.CommandPing, proto.PingData{Timestamp: json.RawMessage(strconv.FormatInt(nowMillis, 10))})
	default:
		return nil, fmt.Errorf("unknown command %s, try /help", name)
	}
}

// cutWord splits off the first whitespace-delimited word of s.
func cutWord(s string) (word, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}

// freeText keeps the argument text as typed, spacing included. Text that is
// one quoted word is unquoted.
func freeText(s string) string {
	if s == "" || !strings.ContainsAny(s[:1], `"'`) {
		return s
	}
	words, err := shellwords.Parse(s)
	if err != nil || len(words) != 1 {
		return s
	}
	return words[0]
}

func envelope(command string, payload any) (*proto.Inbound, error) {
	in := &proto.Inbound{Command: command}
	if payload == nil {
		return in, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", command, err)
	}
	in.Payload = raw
	return in, nil
}
