package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/community/session"
	"golang-stock-circle/internal/testutil"
	"golang-stock-circle/pkg/logger"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type publishedEvent struct {
	Type        string
	RecipientID uint
	Payload     json.RawMessage
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, eventType string, recipientID uint, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, RecipientID: recipientID, Payload: raw})
	return nil
}

func (p *fakePublisher) ofType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) SendMessage(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

func (n *fakeNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// fakePriceFeed serves prices from a map; symbols in errs fail, others missing from prices have no price.
type fakePriceFeed struct {
	prices map[string]string
	errs   map[string]error
	calls  []string
}

func (f *fakePriceFeed) FetchPrice(_ context.Context, symbol string) (*decimal.Decimal, error) {
	f.calls = append(f.calls, symbol)
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	p, ok := f.prices[symbol]
	if !ok {
		return nil, nil
	}
	d := decimal.RequireFromString(p)
	return &d, nil
}

type fakePriceCache struct {
	prices map[string]decimal.Decimal
}

func (c *fakePriceCache) SetLastPrice(_ context.Context, symbol string, price decimal.Decimal, _ time.Time) error {
	if c.prices == nil {
		c.prices = map[string]decimal.Decimal{}
	}
	c.prices[symbol] = price
	return nil
}

func (c *fakePriceCache) GetLastPrice(_ context.Context, symbol string) (*decimal.Decimal, *time.Time, error) {
	p, ok := c.prices[symbol]
	if !ok {
		return nil, nil, nil
	}
	now := time.Now()
	return &p, &now, nil
}

type fakePlaid struct {
	holdings map[string][]dto.PlaidHolding
	failFor  map[string]bool
}

func (f *fakePlaid) CreateLinkToken(_ context.Context, userID uint) (*dto.LinkTokenResponse, error) {
	return &dto.LinkTokenResponse{LinkToken: fmt.Sprintf("link-%d", userID), Expiration: time.Now().Add(time.Hour)}, nil
}

func (f *fakePlaid) ExchangePublicToken(_ context.Context, publicToken string) (*dto.ExchangeResult, error) {
	if publicToken == "bad" {
		return nil, fmt.Errorf("INVALID_PUBLIC_TOKEN")
	}
	return &dto.ExchangeResult{AccessToken: "access-" + publicToken, ItemID: "item-" + publicToken}, nil
}

func (f *fakePlaid) GetHoldings(_ context.Context, accessToken string) ([]dto.PlaidHolding, error) {
	if f.failFor[accessToken] {
		return nil, fmt.Errorf("ITEM_LOGIN_REQUIRED")
	}
	return f.holdings[accessToken], nil
}

type fakeNewsFeed struct {
	feeds map[string][]dto.Article
	calls int
}

func (f *fakeNewsFeed) FetchFeed(_ context.Context, url string) ([]dto.Article, error) {
	f.calls++
	articles, ok := f.feeds[url]
	if !ok {
		return nil, fmt.Errorf("feed %s unavailable", url)
	}
	return articles, nil
}

// fixture wires every service against one in-memory database.
type fixture struct {
	db        *gorm.DB
	publisher *fakePublisher
	notifier  *fakeNotifier
	cache     *cache.Cache

	users       repository.UserRepository
	follows     repository.FollowRepository
	entries     repository.WatchlistRepository
	submissions repository.SubmissionRepository
	runs        repository.RefreshRunRepository

	auth      AuthService
	profiles  ProfileService
	watchlist WatchlistService
	approval  ApprovalService
	community CommunityService
	messaging MessagingService
	calendar  CalendarService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.NewNop()

	f := &fixture{
		db:          db,
		publisher:   &fakePublisher{},
		notifier:    &fakeNotifier{},
		cache:       cache.New(5*time.Minute, 10*time.Minute),
		users:       repository.NewUserRepository(db),
		follows:     repository.NewFollowRepository(db),
		entries:     repository.NewWatchlistRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		runs:        repository.NewRefreshRunRepository(db),
	}

	f.auth = NewAuthService(f.users, testSessions(), bcrypt.MinCost, log)
	f.profiles = NewProfileService(f.users, f.follows, bcrypt.MinCost, log)
	f.watchlist = NewWatchlistService(f.entries, f.users, f.publisher, f.cache, log)
	f.approval = NewApprovalService(f.submissions, f.users, f.watchlist, f.publisher, f.notifier, log)
	f.community = NewCommunityService(CommunityRepositories{
		Users:    f.users,
		Posts:    repository.NewPostRepository(db),
		Comments: repository.NewCommentRepository(db),
		Likes:    repository.NewLikeRepository(db),
		Votes:    repository.NewVoteRepository(db),
	}, log)
	f.messaging = NewMessagingService(repository.NewMessageRepository(db), f.follows, f.users, f.publisher, log)
	f.calendar = NewCalendarService(repository.NewCalendarRepository(db), f.users, log)
	return f
}

func testSessions() session.Manager {
	return session.NewManager("test-secret", time.Hour)
}
