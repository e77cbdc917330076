// Package clock owns the single timing calculation every other
// component reads time through:
//
//	song_time = player_time + av_offset
//
// Player time comes from the external playback collaborator. Nothing
// in the core reads a wall clock.
package clock

import "sync"

type Snapshot struct {
	PlayerTime float64
	AVOffset   float64
	SongTime   float64
}

type Clock struct {
	mu         sync.Mutex
	playerTime float64
	avOffset   float64
}

func New(avOffset float64) *Clock {
	return &Clock{avOffset: avOffset}
}

func (c *Clock) SetPlayerTime(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	c.mu.Lock()
	c.playerTime = seconds
	c.mu.Unlock()
}

func (c *Clock) SongTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.songTimeLocked()
}

func (c *Clock) songTimeLocked() float64 {
	t := c.playerTime + c.avOffset
	if t < 0 {
		return 0
	}
	return t
}

func (c *Clock) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		PlayerTime: c.playerTime,
		AVOffset:   c.avOffset,
		SongTime:   c.songTimeLocked(),
	}
}
