package realtime

import "encoding/json"

// Inbound frame types.
const (
	TypeJoin  = "join"
	TypeLeave = "leave"
)

// Outbound frame types besides broadcasts.
const (
	TypeJoined = "joined"
	TypeLeft   = "left"
	TypeError  = "error"
)

type Inbound struct {
	Type      string `json:"type"`
	ChannelID int64  `json:"channelId"`
}

type Envelope struct {
	Type      string          `json:"type"`
	ChannelID int64           `json:"channelId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func encode(env Envelope) []byte {
	data, err := json.Marshal(env)
	if err != nil {
		return nil
	}
	return data
}
