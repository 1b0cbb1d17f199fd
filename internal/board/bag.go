package board

import "math/rand"

// Bag deals piece types in shuffled batches of the full catalog so every type
// appears once per batch.
type Bag struct {
	seed  int64
	dealt int
	rng   *rand.Rand
	queue []ShapeType
}

// NewBag creates a bag seeded for reproducible runs.
func NewBag(seed int64) *Bag {
	return &Bag{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// NewBagAt recreates the bag state after dealt pieces were drawn from a bag
// with the same seed.
func NewBagAt(seed int64, dealt int) *Bag {
	b := NewBag(seed)
	for i := 0; i < dealt; i++ {
		b.Next()
	}
	return b
}

// Seed returns the seed the bag was created with.
func (b *Bag) Seed() int64 { return b.seed }

// Dealt returns how many pieces have been drawn.
func (b *Bag) Dealt() int { return b.dealt }

// Next returns the next piece type.
func (b *Bag) Next() ShapeType {
	if len(b.queue) == 0 {
		b.refill()
	}
	t := b.queue[0]
	b.queue = b.queue[1:]
	b.dealt++
	return t
}

// Peek returns the upcoming piece type without consuming it.
func (b *Bag) Peek() ShapeType {
	if len(b.queue) == 0 {
		b.refill()
	}
	return b.queue[0]
}

func (b *Bag) refill() {
	b.queue = ShapeTypes()
	b.rng.Shuffle(len(b.queue), func(i, j int) {
		b.queue[i], b.queue[j] = b.queue[j], b.queue[i]
	})
}
