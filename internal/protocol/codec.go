package protocol

import (
	"encoding/json"
	"fmt"
)

// Delimiter terminates every frame on the stream. JSON escapes raw
// newlines, so the delimiter can never appear inside a message body.
const Delimiter = '\n'

// required lists the fields that must be present, beyond "type", for a
// message to be dispatchable at all. Optional fields are not listed.
var required = map[string][]string{
	TypePlaylistInfo:    {"playlist"},
	TypePlayFile:        {"index"},
	TypeSeek:            {"time"},
	TypeSync:            {"time", "sync_time"},
	TypeShuffleState:    {"enabled"},
	TypeRequestFile:     {"index"},
	TypeFileUnsupported: {"index"},
}

// Encode serializes one message into a delimited frame.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", m, err)
	}
	return append(data, Delimiter), nil
}

// Decode parses one frame (without its delimiter) into a typed message.
// Unknown discriminators and missing required fields are errors: the
// caller logs and drops the frame, the connection stays open.
func Decode(data []byte) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	var kind string
	if raw, ok := fields["type"]; ok {
		if err := json.Unmarshal(raw, &kind); err != nil {
			return nil, fmt.Errorf("malformed type field: %w", err)
		}
	}
	if kind == "" {
		return nil, fmt.Errorf("message has no type")
	}

	for _, name := range required[kind] {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("%s message missing required field %q", kind, name)
		}
	}

	unmarshal := func(m Message) (Message, error) {
		if err := json.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("decoding %s message: %w", kind, err)
		}
		return m, nil
	}

	switch kind {
	case TypePlaylistInfo:
		return unmarshal(&PlaylistInfo{})
	case TypePlayFile:
		return unmarshal(&PlayFile{})
	case TypePlay:
		return unmarshal(&Play{})
	case TypePause:
		return unmarshal(&Pause{})
	case TypeSeek:
		return unmarshal(&Seek{})
	case TypeSync:
		return unmarshal(&Sync{})
	case TypeRequestSync:
		return unmarshal(&RequestSync{})
	case TypeToggleShuffle:
		return unmarshal(&ToggleShuffle{})
	case TypeShuffleState:
		return unmarshal(&ShuffleState{})
	case TypePing:
		return unmarshal(&Ping{})
	case TypePong:
		return unmarshal(&Pong{})
	case TypeRequestFile:
		return unmarshal(&RequestFile{})
	case TypeFileUnsupported:
		return unmarshal(&FileUnsupported{})
	default:
		return nil, fmt.Errorf("unknown message type %q", kind)
	}
}
