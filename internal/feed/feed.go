// Package feed produces the mock live-trading signals and community posts
// shown on the social trading panel.
package feed

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/google/uuid"
)

const (
	MaxSignals = 5
	MaxPosts   = 3
)

// Signal is a mock trade signal.
type Signal struct {
	ID          string    `json:"id"`
	Side        string    `json:"side"`
	Pair        string    `json:"pair"`
	Price       string    `json:"price"`
	Reason      string    `json:"reason"`
	Followers   int       `json:"followers"`
	SuccessRate int       `json:"success_rate"`
	At          time.Time `json:"at"`
}

// Post is a community post.
type Post struct {
	ID       string    `json:"id"`
	Avatar   string    `json:"avatar"`
	Author   string    `json:"author"`
	Content  string    `json:"content"`
	Likes    int       `json:"likes"`
	Comments int       `json:"comments"`
	Shares   int       `json:"shares"`
	Own      bool      `json:"own,omitempty"`
	At       time.Time `json:"at"`
}

// Snapshot is the visible feed content, newest first.
type Snapshot struct {
	Signals []Signal `json:"signals"`
	Posts   []Post   `json:"posts"`
}

type signalTemplate struct {
	side, pair, price, reason string
	followersMin, followersN  int
	rateMin, rateN            int
}

var signalTemplates = []signalTemplate{
	{"buy", "VOLVOT/WETH", "$0.000018", "Bullish divergence detected", 50, 200, 75, 20},
	{"sell", "ETH/USDC", "$3,456", "Overbought RSI levels", 30, 150, 80, 15},
}

var postTemplates = []Post{
	{Avatar: "🚀", Author: "RocketTrader", Content: "Base network is absolutely crushing it! The ecosystem growth is insane. 📈 #BaseChain #DeFi"},
	{Avatar: "💎", Author: "CrystalBall", Content: "Technical analysis showing strong support at current levels. Accumulation zone! 💪 #TechnicalAnalysis"},
	{Avatar: "🌟", Author: "StarGazer", Content: "Just completed another course in VOLVOT Academy! Learning never stops in crypto 🎓"},
}

// Feed holds the generated content.
type Feed struct {
	store *state.Store
	now   func() time.Time

	mu       sync.Mutex
	rand     *rand.Rand
	signals  []Signal
	posts    []Post
	onChange []func(Snapshot)
}

// New creates an empty feed. store is consulted for the wallet gate on
// user posts.
func New(store *state.Store, seed uint64) *Feed {
	return &Feed{
		store: store,
		now:   time.Now,
		rand:  rand.New(rand.NewPCG(seed, seed+1)),
	}
}

// OnChange registers fn to be called with the feed after every change.
func (f *Feed) OnChange(fn func(Snapshot)) {
	f.mu.Lock()
	f.onChange = append(f.onChange, fn)
	f.mu.Unlock()
}

// Tick adds one random signal and one random post.
func (f *Feed) Tick() {
	f.mu.Lock()
	now := f.now().UTC()

	t := signalTemplates[f.rand.IntN(len(signalTemplates))]
	sig := Signal{
		ID:          uuid.NewString(),
		Side:        t.side,
		Pair:        t.pair,
		Price:       t.price,
		Reason:      t.reason,
		Followers:   t.followersMin + f.rand.IntN(t.followersN),
		SuccessRate: t.rateMin + f.rand.IntN(t.rateN),
		At:          now,
	}
	f.signals = append([]Signal{sig}, f.signals...)
	if len(f.signals) > MaxSignals {
		f.signals = f.signals[:MaxSignals]
	}

	post := postTemplates[f.rand.IntN(len(postTemplates))]
	post.ID = uuid.NewString()
	post.Likes = f.rand.IntN(20)
	post.Comments = f.rand.IntN(10)
	post.Shares = f.rand.IntN(5)
	post.At = now
	if len(f.posts) >= MaxPosts {
		f.posts = f.posts[:len(f.posts)-1]
	}
	f.posts = append([]Post{post}, f.posts...)

	snap, observers := f.snapshotLocked()
	f.mu.Unlock()
	notifyAll(observers, snap)
}

// CreatePost publishes a post by the connected user.
func (f *Feed) CreatePost(content string) (Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Post{}, apperr.Validation("Please enter a message to post")
	}
	if !f.store.Get().WalletConnected {
		return Post{}, apperr.New(apperr.CodeNotConnected, "Please connect your wallet to post", nil)
	}

	f.mu.Lock()
	post := Post{ID: uuid.NewString(), Avatar: "🎯", Author: "You", Content: content, Own: true, At: f.now().UTC()}
	f.posts = append([]Post{post}, f.posts...)
	snap, observers := f.snapshotLocked()
	f.mu.Unlock()

	notifyAll(observers, snap)
	return post, nil
}

// LikePost increments the like count of a visible post.
func (f *Feed) LikePost(id string) (Post, error) {
	f.mu.Lock()
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts[i].Likes++
			post := f.posts[i]
			snap, observers := f.snapshotLocked()
			f.mu.Unlock()
			notifyAll(observers, snap)
			return post, nil
		}
	}
	f.mu.Unlock()
	return Post{}, apperr.New(apperr.CodeNotFound, "post not found", nil)
}

// Snapshot returns the visible content.
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, _ := f.snapshotLocked()
	return snap
}

func (f *Feed) snapshotLocked() (Snapshot, []func(Snapshot)) {
	snap := Snapshot{
		Signals: append([]Signal{}, f.signals...),
		Posts:   append([]Post{}, f.posts...),
	}
	return snap, append([]func(Snapshot){}, f.onChange...)
}

func notifyAll(observers []func(Snapshot), snap Snapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}
