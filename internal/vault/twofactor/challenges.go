package twofactor

import (
	"container/heap"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/genpass/internal/cryptox"
)

// DefaultChallengeTTL is how long an issued challenge stays valid.
const DefaultChallengeTTL = 5 * time.Minute

var codeSpace = big.NewInt(1_000_000)

type challenge struct {
	recipient string
	digest    []byte
	issuedAt  time.Time
	index     int
}

// expiryHeap orders challenges by issue time, oldest first.
type expiryHeap []*challenge

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].issuedAt.Before(h[j].issuedAt) }
func (h expiryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *expiryHeap) Push(x any) {
	c := x.(*challenge)
	c.index = len(*h)
	*h = append(*h, c)
}

func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	c.index = -1
	*h = old[:n-1]
	return c
}

// ChallengeTable holds one-shot numeric codes keyed by recipient email,
// compared case-insensitively. Only a digest of each code is kept.
//
// A challenge is consumed by a successful Verify and is evicted once it is
// older than the TTL, either by Verify or by CleanupExpired.
type ChallengeTable struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*challenge
	expiry  expiryHeap
	nowF    func() time.Time
}

func NewChallengeTable(ttl time.Duration) *ChallengeTable {
	if ttl <= 0 {
		ttl = DefaultChallengeTTL
	}
	return &ChallengeTable{
		ttl:     ttl,
		entries: make(map[string]*challenge),
		nowF:    time.Now,
	}
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate challenge code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeDigits, n.Int64()), nil
}

// Issue stores a fresh code for recipient, replacing any pending one, and
// returns it for delivery.
func (t *ChallengeTable) Issue(recipient string) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", err
	}

	key := strings.ToLower(strings.TrimSpace(recipient))
	digest := cryptox.Digest([]byte(code))

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.nowF()
	if c, ok := t.entries[key]; ok {
		c.digest = digest
		c.issuedAt = now
		heap.Fix(&t.expiry, c.index)
		return code, nil
	}

	c := &challenge{recipient: key, digest: digest, issuedAt: now}
	t.entries[key] = c
	heap.Push(&t.expiry, c)
	return code, nil
}

// Verify reports whether code matches the pending challenge for recipient.
// A mismatch leaves the challenge in place for another try.
func (t *ChallengeTable) Verify(recipient, code string) bool {
	key := strings.ToLower(strings.TrimSpace(recipient))
	code = normalizeCode(code)
	if code == "" {
		return false
	}
	digest := cryptox.Digest([]byte(code))

	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.entries[key]
	if !ok {
		return false
	}
	if t.expired(c, t.nowF()) {
		t.remove(c)
		return false
	}
	if subtle.ConstantTimeCompare(digest, c.digest) != 1 {
		return false
	}
	t.remove(c)
	return true
}

// CleanupExpired evicts every challenge older than the TTL and returns how
// many were removed.
func (t *ChallengeTable) CleanupExpired() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.nowF()
	n := 0
	for t.expiry.Len() > 0 && t.expired(t.expiry[0], now) {
		c := heap.Pop(&t.expiry).(*challenge)
		delete(t.entries, c.recipient)
		n++
	}
	return n
}

// Len returns the number of pending challenges, expired ones included.
func (t *ChallengeTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *ChallengeTable) expired(c *challenge, now time.Time) bool {
	return now.Sub(c.issuedAt) > t.ttl
}

func (t *ChallengeTable) remove(c *challenge) {
	heap.Remove(&t.expiry, c.index)
	delete(t.entries, c.recipient)
}
