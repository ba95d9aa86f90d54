package domain

import "testing"

func TestPredecessorChain(t *testing.T) {
	// Walking back from the newest revision must visit every older one
	// exactly once and then stop.
	visited := []GameVersion{CurrentVersion}
	v := CurrentVersion
	for {
		prev, ok := Predecessor(v)
		if !ok {
			break
		}
		visited = append(visited, prev)
		v = prev
	}

	if len(visited) != 10 {
		t.Fatalf("chain length = %d, want 10", len(visited))
	}
	if visited[len(visited)-1] != Version1 {
		t.Errorf("chain ends at %d, want %d", visited[len(visited)-1], Version1)
	}
}

func TestPredecessorOfOldest(t *testing.T) {
	if _, ok := Predecessor(Version1); ok {
		t.Error("oldest revision must have no predecessor")
	}
	if _, ok := Predecessor(GameVersion(99)); ok {
		t.Error("unknown revision must have no predecessor")
	}
}

func TestKnownVersion(t *testing.T) {
	if !KnownVersion(Version1) || !KnownVersion(CurrentVersion) {
		t.Error("known revisions reported unknown")
	}
	if KnownVersion(0) || KnownVersion(GameVersion(11)) {
		t.Error("unknown revisions reported known")
	}
}
