package protocol

import (
	"errors"

	json "github.com/goccy/go-json"
)

// Inbound is the only frame clients send on the room stream. Sender and
// room come from the connection, never from the frame.
type Inbound struct {
	Content string `json:"content"`
}

// Delivery is the frame every room member receives for a broadcast message.
type Delivery struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// Notice is a server-initiated control frame.
type Notice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

const (
	NoticeRemoved = "removed"
	NoticeError   = "error"
)

var ErrEmptyContent = errors.New("empty content")

func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, err
	}
	if in.Content == "" {
		return Inbound{}, ErrEmptyContent
	}
	return in, nil
}

func EncodeDelivery(sender, content string) []byte {
	out, _ := json.Marshal(Delivery{Sender: sender, Content: content})
	return out
}

func EncodeRemoval(message string) []byte {
	out, _ := json.Marshal(Notice{Type: NoticeRemoved, Message: message})
	return out
}

func EncodeError(message string) []byte {
	out, _ := json.Marshal(Notice{Type: NoticeError, Message: message})
	return out
}
