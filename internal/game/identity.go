package game

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
)

// ChartIdentity names one generated chart. Identical identities must
// always regenerate byte-identical note sequences.
type ChartIdentity struct {
	VideoID    string
	Difficulty string
	Version    int
	Seed       uint64
}

func NormalizeDifficulty(difficulty string) string {
	return strings.ToLower(strings.TrimSpace(difficulty))
}

// NewIdentity derives the seed from the identity fields. A calibrated
// BPM participates only once it has been locked for the video, so an
// unlocked session and a default-BPM session share charts.
func NewIdentity(videoID, difficulty string, version int, bpm float64, locked bool) ChartIdentity {
	difficulty = NormalizeDifficulty(difficulty)
	payload := fmt.Sprintf("%s|%s|%d", videoID, difficulty, version)
	if locked {
		payload += fmt.Sprintf("|%.3f", bpm)
	}
	sum := sha256.Sum256([]byte(payload))
	return ChartIdentity{
		VideoID:    videoID,
		Difficulty: difficulty,
		Version:    version,
		Seed:       binary.BigEndian.Uint64(sum[:8]),
	}
}

// Hash is a stable key for persistence, one value per identity.
func (id ChartIdentity) Hash() string {
	payload := fmt.Sprintf("%s|%s|%d|%d", id.VideoID, id.Difficulty, id.Version, id.Seed)
	sum := sha256.Sum256([]byte(payload))
	return base64.StdEncoding.EncodeToString(sum[:])
}
