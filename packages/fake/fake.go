// Package fake generates plausible client data for registration and renames.
package fake

import (
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// Client is a person registering against the API.
type Client struct {
	DisplayName string
	Email       string
}

// Generator produces names and emails. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
	seed  int64
}

// New returns a generator seeded with seed, or with the current time when
// seed is zero. Names are reproducible for a fixed seed; emails carry a
// random suffix so repeated registrations do not collide.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{faker: gofakeit.New(seed), seed: seed}
}

func (g *Generator) Seed() int64 {
	return g.seed
}

// Name returns a "First Last" display name.
func (g *Generator) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	first := strings.TrimSpace(g.faker.FirstName())
	last := strings.TrimSpace(g.faker.LastName())
	if first == "" || last == "" {
		return "Anonymous Reader"
	}
	return first + " " + last
}

// Email returns an address derived from name.
func (g *Generator) Email(name string) string {
	local := emailLocal(name)
	if local == "" {
		local = "reader"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return local + "." + suffix + "@example.com"
}

// Client returns a fresh display name with a matching email.
func (g *Generator) Client() Client {
	name := g.Name()
	return Client{DisplayName: name, Email: g.Email(name)}
}

func emailLocal(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), ".") {
				b.WriteByte('.')
			}
		}
	}
	return strings.Trim(b.String(), ".")
}
