package library

import (
	"os"
	"testing"
	"time"
)

func waitForFile(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); nil == err {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("file never appeared: %v", path)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
