package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockRandom_ReplaysQueue(t *testing.T) {
	r := NewMockRandom()
	r.QueueIntn(4, 1)
	r.QueueString("123456")

	assert.Equal(t, 1, r.Intn(3)) // 4 mod 3
	assert.Equal(t, 1, r.Intn(10))
	assert.Equal(t, 0, r.Intn(10))
	assert.Equal(t, "123456", r.String(6, "0123456789"))
	assert.Equal(t, "000", r.String(3, "0123456789"))
}

func TestMockRandom_Reset(t *testing.T) {
	r := NewMockRandom()
	r.QueueIntn(2)
	r.Reset()
	assert.Equal(t, 0, r.Intn(5))
}

func TestMockClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(start)
	c.Advance(time.Minute)
	assert.Equal(t, start.Add(time.Minute), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}
