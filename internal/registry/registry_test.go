package registry

import "testing"

// fakeSink records every write for assertions.
type fakeSink struct {
	lines [][]byte
}

func (f *fakeSink) Write(p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	f.lines = append(f.lines, cp)
	return len(p), nil
}

func newTestRegistry() *Registry {
	return New("irc.example.org", "ExampleNet", "wharfd-test")
}

func connectClient(r *Registry, nick, user, host string) (*Client, *fakeSink) {
	c := r.NewClient()
	sink := &fakeSink{}
	c.Attach(sink, host)
	c.ChangeNick(nick)
	c.setNickBit()
	c.user = user
	c.setUserBit()
	return c, sink
}

// checkInvariants asserts the name-index/alive/free-list consistency
// invariants the registry must hold after every mutating call.
func checkInvariants(t *testing.T, r *Registry) {
	t.Helper()

	seen := map[int]struct{}{}

	for nick, id := range r.users {
		c := r.clients[id]
		if !c.IsAlive() {
			t.Errorf("h_users[%q] = %d, but client is not alive", nick, id)
		}
		if got := foldedNick(c); got != nick {
			t.Errorf("client %d nick folds to %q, but indexed under %q", id, got, nick)
		}
	}

	for _, c := range r.clients {
		if c.IsAlive() && c.nick != "" {
			id, exists := r.users[foldedNick(c)]
			if !exists || id != c.id {
				t.Errorf("client %d has nick %q not reflected in h_users", c.id, c.nick)
			}
		}
	}

	aliveCount := 0
	for _, c := range r.clients {
		if c.IsAlive() {
			aliveCount++
		}
	}
	if int32(aliveCount) != r.counters.Get(StatTotalUsers) {
		t.Errorf("alive client count %d != STAT_TOTAL_USERS %d", aliveCount,
			r.counters.Get(StatTotalUsers))
	}
	if int32(aliveCount) != r.counters.Get(StatLocalUsers) {
		t.Errorf("alive client count %d != STAT_LOCAL_USERS %d", aliveCount,
			r.counters.Get(StatLocalUsers))
	}

	for _, idx := range r.freeClients {
		if r.clients[idx].IsAlive() {
			t.Errorf("free_clients contains live index %d", idx)
		}
		if _, dup := seen[idx]; dup {
			t.Errorf("free_clients contains duplicate index %d", idx)
		}
		seen[idx] = struct{}{}
	}
}

func foldedNick(c *Client) string {
	// Mirrors names.FoldCase without importing it twice in the test; keep
	// in sync with registry.go's use of names.FoldCase.
	b := []byte(c.nick)
	for i, ch := range b {
		if ch >= 'A' && ch <= 'Z' {
			b[i] = ch - 'A' + 'a'
		}
	}
	return string(b)
}

func TestNewClientAllocatesStableID(t *testing.T) {
	r := newTestRegistry()

	c1 := r.NewClient()
	c2 := r.NewClient()

	if c1.ID() == c2.ID() {
		t.Fatalf("expected distinct ids, got %d and %d", c1.ID(), c2.ID())
	}
	if r.GetClient(c1.ID()) != c1 {
		t.Errorf("GetClient did not return the same client instance")
	}

	checkInvariants(t, r)
}

func TestDisableRecyclesSlot(t *testing.T) {
	r := newTestRegistry()

	c1, _ := connectClient(r, "alice", "alice", "host1")
	id1 := c1.ID()
	c1.Disable()

	checkInvariants(t, r)

	c2 := r.NewClient()
	if c2.ID() != id1 {
		t.Errorf("expected slot %d to be recycled, got %d", id1, c2.ID())
	}

	checkInvariants(t, r)
}

func TestDisableTwicePanics(t *testing.T) {
	r := newTestRegistry()
	c, _ := connectClient(r, "alice", "alice", "host1")
	c.Disable()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic on double Disable")
		}
	}()
	c.Disable()
}

func TestChangeNickCollision(t *testing.T) {
	r := newTestRegistry()

	_, _ = connectClient(r, "alice", "alice", "host1")

	c2 := r.NewClient()
	sink2 := &fakeSink{}
	c2.Attach(sink2, "host2")

	if c2.ChangeNick("alice") {
		t.Fatalf("expected nick collision to be rejected")
	}
	if len(sink2.lines) != 1 {
		t.Fatalf("expected exactly one reply, got %d", len(sink2.lines))
	}
	if got := string(sink2.lines[0]); !contains(got, ErrNicknameInUse) {
		t.Errorf("expected %s in reply, got %q", ErrNicknameInUse, got)
	}

	checkInvariants(t, r)
}

func TestChangeNickBoundaryLengths(t *testing.T) {
	r := newTestRegistry()
	c := r.NewClient()
	c.Attach(&fakeSink{}, "host")

	if !c.ChangeNick("a") {
		t.Errorf("expected a 1-character nick to be accepted")
	}
	if !c.ChangeNick("abcdefghi") {
		t.Errorf("expected a 9-character nick to be accepted")
	}
	if c.ChangeNick("abcdefghij") {
		t.Errorf("expected a 10-character nick to be rejected")
	}
	if c.ChangeNick("1abc") {
		t.Errorf("expected a nick starting with a digit to be rejected")
	}
}

func TestCreateChannelAndJoin(t *testing.T) {
	r := newTestRegistry()

	alice, _ := connectClient(r, "alice", "alice", "host1")
	bob, _ := connectClient(r, "bob", "bob", "host2")

	ch := r.CreateChannel("#test")
	ch.Add(alice.ID())
	ch.Add(bob.ID())

	if !ch.HasMember(alice.ID()) || !ch.HasMember(bob.ID()) {
		t.Fatalf("expected both clients to be members")
	}

	foundAlice, foundBob := false, false
	for _, id := range alice.Channels() {
		if id == ch.ID() {
			foundAlice = true
		}
	}
	for _, id := range bob.Channels() {
		if id == ch.ID() {
			foundBob = true
		}
	}
	if !foundAlice || !foundBob {
		t.Fatalf("expected channel membership reflected on both clients")
	}

	if r.ChannelByName("#TEST") != ch.ID() {
		t.Errorf("expected case-insensitive channel lookup to succeed")
	}

	if r.Counters().Get(StatChannels) != 1 {
		t.Errorf("STAT_CHANNELS = %d, wanted 1", r.Counters().Get(StatChannels))
	}
}

func TestChannelFreedWhenEmpty(t *testing.T) {
	r := newTestRegistry()
	alice, _ := connectClient(r, "alice", "alice", "host1")

	ch := r.CreateChannel("#test")
	ch.Add(alice.ID())
	ch.Remove(alice.ID())

	if r.ChannelByName("#test") != NoSuchEntity {
		t.Errorf("expected channel to be removed from the name index")
	}
	if r.Counters().Get(StatChannels) != 0 {
		t.Errorf("STAT_CHANNELS = %d, wanted 0", r.Counters().Get(StatChannels))
	}

	// The slot should be recyclable.
	ch2 := r.CreateChannel("#other")
	if ch2.ID() != ch.ID() {
		t.Errorf("expected channel slot %d to be recycled, got %d", ch.ID(), ch2.ID())
	}
}

// S5: QUIT broadcast reaches exactly the other members of a shared channel,
// exactly once each.
func TestHandleQuitBroadcastsToChannelOnce(t *testing.T) {
	r := newTestRegistry()

	alice, _ := connectClient(r, "alice", "alice", "host1")
	bob, bobSink := connectClient(r, "bob", "bob", "host2")

	chA := r.CreateChannel("#a")
	chA.Add(alice.ID())
	chA.Add(bob.ID())

	chB := r.CreateChannel("#b")
	chB.Add(alice.ID())
	chB.Add(bob.ID())

	alice.HandleQuit("bye")

	if len(bobSink.lines) != 1 {
		t.Fatalf("expected bob to receive exactly one QUIT line, got %d", len(bobSink.lines))
	}

	want := ":alice!alice@host1 QUIT :bye\r\n"
	if got := string(bobSink.lines[0]); got != want {
		t.Errorf("got %q, wanted %q", got, want)
	}

	if len(alice.Channels()) != 0 {
		t.Errorf("expected alice to have left all channels")
	}
}

// Idempotence: a second HandleQuit call is a no-op.
func TestHandleQuitIdempotent(t *testing.T) {
	r := newTestRegistry()

	alice, _ := connectClient(r, "alice", "alice", "host1")
	bob, bobSink := connectClient(r, "bob", "bob", "host2")

	ch := r.CreateChannel("#a")
	ch.Add(alice.ID())
	ch.Add(bob.ID())

	alice.HandleQuit("bye")
	alice.HandleQuit("bye again")

	if len(bobSink.lines) != 1 {
		t.Fatalf("expected only the first QUIT to be broadcast, got %d lines",
			len(bobSink.lines))
	}
}

func TestBroadcastDedupesSharedChannels(t *testing.T) {
	r := newTestRegistry()

	alice, _ := connectClient(r, "alice", "alice", "host1")
	bob, bobSink := connectClient(r, "bob", "bob", "host2")

	chA := r.CreateChannel("#a")
	chA.Add(alice.ID())
	chA.Add(bob.ID())

	chB := r.CreateChannel("#b")
	chB.Add(alice.ID())
	chB.Add(bob.ID())

	r.BroadcastButOne(alice.ID(), []byte("payload\r\n"))

	if len(bobSink.lines) != 1 {
		t.Fatalf("expected bob to receive the payload exactly once, got %d",
			len(bobSink.lines))
	}
}

func TestBroadcastIncludesSelfVariant(t *testing.T) {
	r := newTestRegistry()
	alice, aliceSink := connectClient(r, "alice", "alice", "host1")

	r.Broadcast(alice.ID(), []byte("x\r\n"))
	if len(aliceSink.lines) != 1 {
		t.Fatalf("expected Broadcast to include the source client")
	}

	r.BroadcastButOne(alice.ID(), []byte("y\r\n"))
	if len(aliceSink.lines) != 1 {
		t.Fatalf("expected BroadcastButOne to exclude the source client")
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && indexOf(s, substr) != -1
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
