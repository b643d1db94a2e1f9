package presence

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandle struct{ id string }

func (s *stubHandle) ID() string          { return s.id }
func (s *stubHandle) Send([]byte) error   { return nil }
func (s *stubHandle) Close(reason string) {}

func TestRegisterLookupUnregister(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup("u1")
	assert.False(t, ok)

	h1 := &stubHandle{id: "c1"}
	assert.Nil(t, r.Register("u1", h1))

	got, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "c1", got.ID())

	r.Unregister("u1")
	_, ok = r.Lookup("u1")
	assert.False(t, ok)

	r.Unregister("u1")
	assert.Equal(t, 0, r.Len())
}

func TestRegisterLastConnectedWins(t *testing.T) {
	r := NewRegistry()
	h1 := &stubHandle{id: "c1"}
	h2 := &stubHandle{id: "c2"}

	r.Register("u1", h1)
	prev := r.Register("u1", h2)
	require.NotNil(t, prev)
	assert.Equal(t, "c1", prev.ID())

	got, _ := r.Lookup("u1")
	assert.Equal(t, "c2", got.ID())
	assert.Equal(t, []string{"u1"}, r.Snapshot())

	assert.Nil(t, r.Register("u1", h2), "re-registering the same handle replaces nothing")
}

func TestReleaseOnlyRemovesCurrentHandle(t *testing.T) {
	r := NewRegistry()
	stale := &stubHandle{id: "c1"}
	fresh := &stubHandle{id: "c2"}
	r.Register("u1", stale)
	r.Register("u1", fresh)

	assert.False(t, r.Release("u1", stale))
	got, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "c2", got.ID())

	assert.True(t, r.Release("u1", fresh))
	assert.False(t, r.Release("u1", fresh))
	assert.Empty(t, r.Snapshot())
}

func TestSnapshotSortedAndUnique(t *testing.T) {
	r := NewRegistry()
	for i, u := range []string{"c", "a", "b", "a"} {
		r.Register(u, &stubHandle{id: fmt.Sprint(i)})
	}
	assert.Equal(t, []string{"a", "b", "c"}, r.Snapshot())
	assert.Len(t, r.Entries(), 3)
}

func TestRandomSequencesMatchModel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := NewRegistry()
	model := map[string]string{}
	users := []string{"a", "b", "c", "d"}

	for i := 0; i < 2000; i++ {
		u := users[rng.Intn(len(users))]
		switch rng.Intn(3) {
		case 0, 1:
			id := fmt.Sprintf("h%d", i)
			r.Register(u, &stubHandle{id: id})
			model[u] = id
		case 2:
			r.Unregister(u)
			delete(model, u)
		}
		for _, u := range users {
			h, ok := r.Lookup(u)
			want, wantOK := model[u]
			require.Equal(t, wantOK, ok)
			if ok {
				require.Equal(t, want, h.ID())
			}
		}
	}
	assert.Len(t, r.Snapshot(), len(model))
}

func TestConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := fmt.Sprintf("u%d", i%10)
			h := &stubHandle{id: fmt.Sprintf("c%d", i)}
			r.Register(u, h)
			r.Lookup(u)
			r.Snapshot()
			r.Entries()
			r.Release(u, h)
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, r.Len(), 10)
}
