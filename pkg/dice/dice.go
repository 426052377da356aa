// Package dice implements dice generation and display for the GM engine.
//
// Generation is symmetric: every die is an independent uniform draw. The
// Hope/Fear meaning of a 2d12 roll is applied only by Format and
// EvaluateDuality, by the convention that the first result is Hope and the
// second is Fear.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
)

// Die is a die kind, identified by its side count.
type Die int

const (
	D4   Die = 4
	D6   Die = 6
	D8   Die = 8
	D10  Die = 10
	D12  Die = 12
	D20  Die = 20
	D100 Die = 100
)

// Supported lists every die kind the engine can roll, smallest first.
var Supported = []Die{D4, D6, D8, D10, D12, D20, D100}

var (
	// ErrUnsupportedDie indicates a die kind outside the fixed enumeration.
	ErrUnsupportedDie = errors.New("unsupported die kind")
	// ErrInvalidCount indicates a roll request for fewer than one die.
	ErrInvalidCount = errors.New("dice count must be at least 1")
)

// Sides returns the number of faces on the die.
func (d Die) Sides() int { return int(d) }

// Valid reports whether d is one of the supported kinds.
func (d Die) Valid() bool {
	for _, s := range Supported {
		if d == s {
			return true
		}
	}
	return false
}

func (d Die) String() string { return "d" + strconv.Itoa(int(d)) }

// ParseDie accepts "d12", "D12" or "12".
func ParseDie(s string) (Die, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "d")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDie, s)
	}
	d := Die(n)
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDie, s)
	}
	return d, nil
}

// IsDuality reports whether count and die describe the paired 2d12 roll.
func IsDuality(count int, die Die) bool {
	return count == 2 && die == D12
}

// Roller draws dice from its own PRNG. A Roller is safe for concurrent use.
type Roller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller returns a Roller seeded from crypto/rand.
func NewRoller() *Roller {
	seed, err := newSeed()
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return NewSeededRoller(seed)
}

// NewSeededRoller returns a deterministic Roller. The same seed always
// produces the same sequence of rolls.
func NewSeededRoller(seed uint64) *Roller {
	return &Roller{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Roll draws count dice of the given kind, in order.
func (r *Roller) Roll(count int, die Die) ([]int, error) {
	if !die.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDie, die)
	}
	if count < 1 {
		return nil, ErrInvalidCount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]int, count)
	for i := range results {
		results[i] = r.rng.IntN(die.Sides()) + 1
	}
	return results, nil
}

// Sum adds up a set of results.
func Sum(results []int) int {
	total := 0
	for _, v := range results {
		total += v
	}
	return total
}

// Format renders a roll for display. The duality pair is labelled as
// Hope and Fear; every other roll lists the faces and their sum.
func Format(count int, die Die, results []int) string {
	label := strconv.Itoa(count) + die.String()
	if IsDuality(count, die) && len(results) == 2 {
		return fmt.Sprintf("%s [Hope %d, Fear %d]", label, results[0], results[1])
	}
	faces := make([]string, len(results))
	for i, v := range results {
		faces[i] = strconv.Itoa(v)
	}
	return fmt.Sprintf("%s [%s] = %d", label, strings.Join(faces, ", "), Sum(results))
}

func newSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
