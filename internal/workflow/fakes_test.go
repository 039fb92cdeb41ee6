package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/hpungsan/warden/internal/decision"
)

type fakeDirectory struct {
	mu        sync.Mutex
	members   []Member
	searchErr error
	grantErr  map[string]error
	banErr    error
	kickErr   error

	queries   []string
	grants    map[int64][]string
	banned    []int64
	kicked    []int64
	mutations int
}

func newFakeDirectory(members ...Member) *fakeDirectory {
	return &fakeDirectory{
		members:  members,
		grantErr: map[string]error{},
		grants:   map[int64][]string{},
	}
}

func (d *fakeDirectory) SearchMembers(_ context.Context, query string, limit int) ([]Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries = append(d.queries, query)
	if d.searchErr != nil {
		return nil, d.searchErr
	}
	out := d.members
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *fakeDirectory) GrantRole(_ context.Context, userID int64, roleID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mutations++
	if err := d.grantErr[roleID]; err != nil {
		return err
	}
	d.grants[userID] = append(d.grants[userID], roleID)
	return nil
}

func (d *fakeDirectory) Ban(_ context.Context, userID int64, _ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mutations++
	if d.banErr != nil {
		return d.banErr
	}
	d.banned = append(d.banned, userID)
	return nil
}

func (d *fakeDirectory) Kick(_ context.Context, userID int64, _ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mutations++
	if d.kickErr != nil {
		return d.kickErr
	}
	d.kicked = append(d.kicked, userID)
	return nil
}

func (d *fakeDirectory) mutationCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mutations
}

type fakeCards struct {
	mu         sync.Mutex
	nextID     int64
	publishErr error
	stateErr   error

	reviews map[int64]ReviewCard
	notices []Notice
	states  map[int64]decision.Status
	redrawn map[int64]int64
	deleted []int64
}

func newFakeCards() *fakeCards {
	return &fakeCards{
		nextID:  9000,
		reviews: map[int64]ReviewCard{},
		states:  map[int64]decision.Status{},
		redrawn: map[int64]int64{},
	}
}

func (c *fakeCards) PublishReview(_ context.Context, _ int64, card ReviewCard) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return 0, c.publishErr
	}
	c.nextID++
	c.reviews[c.nextID] = card
	return c.nextID, nil
}

func (c *fakeCards) PublishNotice(_ context.Context, _ int64, n Notice) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return c.publishErr
	}
	c.notices = append(c.notices, n)
	return nil
}

func (c *fakeCards) SetCardState(_ context.Context, channelID, cardID int64, state decision.Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stateErr != nil {
		return c.stateErr
	}
	if channelID == 0 {
		return fmt.Errorf("no channel for card %d", cardID)
	}
	c.states[cardID] = state
	c.redrawn[cardID] = channelID
	return nil
}

func (c *fakeCards) DeleteMessage(_ context.Context, _ int64, messageID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, messageID)
	return nil
}
