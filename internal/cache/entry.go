package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/penaltycache/internal/constraint"
)

// Entry is one cached penalty model.
type Entry struct {
	Key        constraint.Key
	Problem    string
	Ancillas   int
	Objectives map[int]float64
}

// marshalObjectives serializes the objective map to JSON TEXT with keys
// in ascending numeric order, so the stored form is deterministic for a
// given map regardless of iteration order.
func marshalObjectives(objectives map[int]float64) (string, error) {
	if len(objectives) == 0 {
		return "", fmt.Errorf("marshal objectives: empty map")
	}

	counts := make([]int, 0, len(objectives))
	for c := range objectives {
		if c < 0 {
			return "", fmt.Errorf("marshal objectives: negative count %d", c)
		}
		counts = append(counts, c)
	}
	sort.Ints(counts)

	var b strings.Builder
	b.WriteByte('{')
	for i, c := range counts {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q:%s", strconv.Itoa(c), strconv.FormatFloat(objectives[c], 'g', -1, 64))
	}
	b.WriteByte('}')
	return b.String(), nil
}

// unmarshalObjectives parses the stored JSON TEXT back into the
// objective map.
func unmarshalObjectives(data string) (map[int]float64, error) {
	raw := make(map[string]float64)
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal objectives: %w", err)
	}

	objectives := make(map[int]float64, len(raw))
	for k, v := range raw {
		c, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("unmarshal objectives: bad count %q: %w", k, err)
		}
		objectives[c] = v
	}
	return objectives, nil
}
