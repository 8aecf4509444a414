package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sess:"

type Config struct {
	Addr       string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password   string        `envconfig:"REDIS_PASSWORD" json:"-"`
	DB         int           `envconfig:"REDIS_DB" default:"0"`
	CookieName string        `envconfig:"SESSION_COOKIE_NAME" default:"naratama.sid"`
	TTL        time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	Secure     bool          `envconfig:"SESSION_SECURE"`
}

var ErrNotFound = errors.New("session not found")

// Data is what a session remembers between requests.
type Data struct {
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return client, nil
}

type Store struct {
	client redis.Cmdable
	ttl    time.Duration
	now    func() time.Time
}

func NewStore(client redis.Cmdable, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl, now: time.Now}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create stores a new session for the user and returns its id.
func (s *Store) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	id := uuid.NewString()
	data, err := json.Marshal(Data{UserID: userID, CreatedAt: s.now()})
	if err != nil {
		return "", errors.Wrap(err, "marshal session")
	}
	if err = s.client.Set(ctx, keyPrefix+id, data, s.ttl).Err(); err != nil {
		return "", errors.Wrap(err, "redis set")
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (Data, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Data{}, ErrNotFound
	}
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Data{}, ErrNotFound
		}
		return Data{}, errors.Wrap(err, "redis get")
	}
	var d Data
	if err = json.Unmarshal(raw, &d); err != nil {
		return Data{}, errors.Wrap(err, "unmarshal session")
	}
	return d, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}
