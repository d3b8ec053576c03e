package feed

import (
	"testing"

	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickKeepsBoundedFeeds(t *testing.T) {
	f := New(state.NewStore(), 1)
	var changes int
	f.OnChange(func(Snapshot) { changes++ })

	for i := 0; i < 10; i++ {
		f.Tick()
	}

	snap := f.Snapshot()
	assert.Len(t, snap.Signals, MaxSignals)
	assert.Len(t, snap.Posts, MaxPosts)
	assert.Equal(t, 10, changes)

	for _, s := range snap.Signals {
		switch s.Side {
		case "buy":
			assert.GreaterOrEqual(t, s.Followers, 50)
			assert.Less(t, s.Followers, 250)
			assert.GreaterOrEqual(t, s.SuccessRate, 75)
			assert.Less(t, s.SuccessRate, 95)
		case "sell":
			assert.GreaterOrEqual(t, s.SuccessRate, 80)
			assert.Less(t, s.SuccessRate, 95)
		default:
			t.Fatalf("unexpected side %q", s.Side)
		}
	}
}

func TestCreatePostRules(t *testing.T) {
	store := state.NewStore()
	f := New(store, 2)

	_, err := f.CreatePost("  ")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = f.CreatePost("gm")
	assert.True(t, apperr.Is(err, apperr.CodeNotConnected))

	require.NoError(t, store.Update(func(st *state.State) error {
		st.WalletConnected = true
		st.WalletAddress = "0xabc"
		st.SessionID = "s"
		return nil
	}))
	post, err := f.CreatePost("gm")
	require.NoError(t, err)
	assert.Equal(t, "You", post.Author)
	assert.True(t, post.Own)
	assert.Equal(t, post.ID, f.Snapshot().Posts[0].ID)
}

func TestLikePost(t *testing.T) {
	f := New(state.NewStore(), 3)
	f.Tick()
	p := f.Snapshot().Posts[0]

	liked, err := f.LikePost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Likes+1, liked.Likes)

	_, err = f.LikePost("missing")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
