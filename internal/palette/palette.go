// Package palette hands out visually distinct preview colours.
//
// A [Pool] shuffles its colours once and then allocates them round-robin, so
// neighbouring previews rarely share a colour and colours are reused once the
// pool is exhausted. [Default] returns the process-wide pool.
package palette

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/MrWong99/colliderkit/pkg/render"
)

// Alpha is the alpha channel of every allocated colour. Preview opacity is
// applied separately through [render.Preview.SetOpacity].
const Alpha float32 = 0.005

// Hex is the built-in colour list.
var Hex = []string{
	"#800000", "#8B0000", "#A52A2A", "#B22222", "#DC143C", "#FF0000", "#FF6347", "#FF7F50",
	"#CD5C5C", "#F08080", "#E9967A", "#FA8072", "#FFA07A", "#FF4500", "#FF8C00", "#FFA500",
	"#FFD700", "#B8860B", "#DAA520", "#EEE8AA", "#BDB76B", "#F0E68C", "#808000", "#FFFF00",
	"#9ACD32", "#556B2F", "#6B8E23", "#7CFC00", "#7FFF00", "#ADFF2F", "#006400", "#008000",
	"#228B22", "#00FF00", "#32CD32", "#90EE90", "#98FB98", "#8FBC8F", "#00FA9A", "#00FF7F",
	"#2E8B57", "#66CDAA", "#3CB371", "#20B2AA", "#2F4F4F", "#008080", "#008B8B", "#00FFFF",
	"#00FFFF", "#E0FFFF", "#00CED1", "#40E0D0", "#48D1CC", "#AFEEEE", "#7FFFD4", "#B0E0E6",
	"#5F9EA0", "#4682B4", "#6495ED", "#00BFFF", "#1E90FF", "#ADD8E6", "#87CEEB", "#87CEFA",
	"#191970", "#000080", "#00008B", "#0000CD", "#0000FF", "#4169E1", "#8A2BE2", "#4B0082",
	"#483D8B", "#6A5ACD", "#7B68EE", "#9370DB", "#8B008B", "#9400D3", "#9932CC", "#BA55D3",
	"#800080", "#D8BFD8", "#DDA0DD", "#EE82EE", "#FF00FF", "#DA70D6", "#C71585", "#DB7093",
	"#FF1493", "#FF69B4", "#FFB6C1", "#FFC0CB", "#FAEBD7", "#F5F5DC", "#FFE4C4", "#FFEBCD",
	"#F5DEB3", "#FFF8DC", "#FFFACD", "#FAFAD2", "#FFFFE0", "#8B4513", "#A0522D", "#D2691E",
	"#CD853F", "#F4A460", "#DEB887", "#D2B48C", "#BC8F8F", "#FFE4B5", "#FFDEAD", "#FFDAB9",
	"#FFE4E1", "#FFF0F5",
}

// Allocator hands out preview colours.
type Allocator interface {
	Next() render.Color
}

// Pool is a shuffled round-robin colour pool. It is safe for concurrent use.
type Pool struct {
	mu     sync.Mutex
	colors []render.Color
	next   int
}

// New returns a pool over colors shuffled with rng. A nil rng uses the
// runtime's random source. New panics if colors is empty.
func New(colors []render.Color, rng *rand.Rand) *Pool {
	if len(colors) == 0 {
		panic("palette: empty colour list")
	}
	shuffled := append([]render.Color(nil), colors...)
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return &Pool{colors: shuffled}
}

// Next returns the next colour, wrapping around once all were used.
func (p *Pool) Next() render.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.colors[p.next]
	p.next = (p.next + 1) % len(p.colors)
	return c
}

// Len returns the number of colours in the pool.
func (p *Pool) Len() int { return len(p.colors) }

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// Default returns the process-wide pool built from [Hex].
func Default() *Pool {
	defaultPoolOnce.Do(func() {
		colors := make([]render.Color, len(Hex))
		for i, h := range Hex {
			c, err := ParseHex(h)
			if err != nil {
				panic(err)
			}
			colors[i] = c
		}
		defaultPool = New(colors, nil)
	})
	return defaultPool
}

// ParseHex parses "#RRGGBB" into a colour with alpha [Alpha].
func ParseHex(s string) (render.Color, error) {
	h, ok := strings.CutPrefix(s, "#")
	if !ok || len(h) != 6 {
		return render.Color{}, fmt.Errorf("palette: invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return render.Color{}, fmt.Errorf("palette: invalid colour %q: %w", s, err)
	}
	return render.Color{
		R: float32(v>>16&0xff) / 255,
		G: float32(v>>8&0xff) / 255,
		B: float32(v&0xff) / 255,
		A: Alpha,
	}, nil
}
