// Package texture defines texture references and the texture resolution
// service consumed by material graph evaluation and the compositing pipeline.
package texture

import (
	"context"
	"errors"
	"strconv"
)

// ErrNotFound is returned by a [Source] when an identifier has no content.
var ErrNotFound = errors.New("texture not found")

// Channel selects a single channel of a texture. The zero value selects all channels.
type Channel uint8

const (
	ChannelAll Channel = iota
	ChannelR
	ChannelG
	ChannelB
	ChannelA
)

func (c Channel) String() string {
	switch c {
	case ChannelAll:
		return "rgba"
	case ChannelR:
		return "r"
	case ChannelG:
		return "g"
	case ChannelB:
		return "b"
	case ChannelA:
		return "a"
	}
	return "Channel(" + strconv.Itoa(int(c)) + ")"
}

// ParseChannel maps an output pin identifier such as "R" or "alpha" to a channel.
// Unrecognized names map to [ChannelAll].
func ParseChannel(s string) Channel {
	switch s {
	case "r", "R", "red", "Red":
		return ChannelR
	case "g", "G", "green", "Green":
		return ChannelG
	case "b", "B", "blue", "Blue":
		return ChannelB
	case "a", "A", "alpha", "Alpha":
		return ChannelA
	}
	return ChannelAll
}

// Ref is an opaque handle to texture content plus sampling metadata.
// Tiling factors of zero are treated as 1 by [Ref.Tiling].
type Ref struct {
	// ID is the content identifier understood by a [Source].
	ID      string  `json:"id" yaml:"id"`
	TileU   float32 `json:"tile_u,omitempty" yaml:"tile_u,omitempty"`
	TileV   float32 `json:"tile_v,omitempty" yaml:"tile_v,omitempty"`
	Channel Channel `json:"channel,omitempty" yaml:"channel,omitempty"`
}

// Tiling returns the horizontal and vertical repeat factors, defaulting to 1.
func (r Ref) Tiling() (u, v float32) {
	u, v = r.TileU, r.TileV
	if u == 0 {
		u = 1
	}
	if v == 0 {
		v = 1
	}
	return u, v
}

// IsZero reports whether the reference points to no content.
func (r Ref) IsZero() bool { return r.ID == "" }

// Texture is resolved texture content. Data holds the encoded image.
type Texture struct {
	ID     string
	Data   []byte
	Width  int
	Height int
}

// Source resolves texture identifiers to content. Implementations must return
// an error wrapping [ErrNotFound] for unknown identifiers and must be safe for concurrent use.
type Source interface {
	Get(ctx context.Context, id string) (Texture, error)
}

// Sink stores newly produced texture content and returns the identifier
// under which a [Source] can resolve it.
type Sink interface {
	Put(ctx context.Context, id string, data []byte, width, height int) (string, error)
}

// Store is both a [Source] and a [Sink].
type Store interface {
	Source
	Sink
}
