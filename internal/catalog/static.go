package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedData []byte

const (
	msgRequiredFields = "Please fill all required fields"
	msgContactThanks  = "Thank you for your message! We will get back to you soon."
	defaultSubject    = "No Subject"
)

// Submission is a contact message recorded by the in-process catalog.
type Submission struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

// StaticService serves the directory from memory. It backs local development
// and tests when no backend URL is configured.
type StaticService struct {
	businesses []Business
	now        func() time.Time

	mu          sync.Mutex
	submissions []Submission
}

// NewStaticService returns a service over the provided businesses, or the bundled seed when nil.
func NewStaticService(businesses []Business) *StaticService {
	if businesses == nil {
		seed, err := ParseBusinesses(seedData)
		if err != nil {
			panic(fmt.Sprintf("catalog: bundled seed is invalid: %v", err))
		}
		businesses = seed
	}
	out := make([]Business, len(businesses))
	copy(out, businesses)
	return &StaticService{
		businesses: out,
		now:        time.Now,
	}
}

// LoadStaticService reads businesses from a YAML or JSON file.
func LoadStaticService(path string) (*StaticService, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	list, err := ParseBusinesses(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return NewStaticService(list), nil
}

// ParseBusinesses decodes a YAML (or JSON) list of businesses.
func ParseBusinesses(raw []byte) ([]Business, error) {
	var list []Business
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []Business{}
	}
	return list, nil
}

// Categories returns the sorted distinct categories.
func (s *StaticService) Categories(context.Context) ([]string, error) {
	return s.distinct(func(b Business) string { return b.Category }), nil
}

// Locations returns the sorted distinct locations.
func (s *StaticService) Locations(context.Context) ([]string, error) {
	return s.distinct(func(b Business) string { return b.Location }), nil
}

func (s *StaticService) distinct(field func(Business) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, b := range s.businesses {
		v := field(b)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Businesses filters and sorts the listing the way the directory API does.
func (s *StaticService) Businesses(ctx context.Context, q Query) ([]Business, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var minRating float64
	hasRating := strings.TrimSpace(q.Rating) != ""
	if hasRating {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(q.Rating), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: rating %q", ErrInvalidQuery, q.Rating)
		}
		minRating = parsed
	}

	// Casers carry state and must not be shared across goroutines.
	fold := cases.Fold()
	category := strings.TrimSpace(q.Category)
	location := fold.String(strings.TrimSpace(q.Location))
	search := fold.String(strings.TrimSpace(q.Search))

	out := make([]Business, 0, len(s.businesses))
	for _, b := range s.businesses {
		if category != "" && !strings.EqualFold(category, "all") && b.Category != category {
			continue
		}
		if hasRating && b.Rating < minRating {
			continue
		}
		if location != "" && !strings.Contains(fold.String(b.Location), location) {
			continue
		}
		if search != "" &&
			!strings.Contains(fold.String(b.Name), search) &&
			!strings.Contains(fold.String(b.Description), search) &&
			!strings.Contains(fold.String(b.Category), search) {
			continue
		}
		out = append(out, b)
	}

	switch strings.TrimSpace(q.Sort) {
	case "", "rating":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	case "reviews":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Reviews > out[j].Reviews })
	case "name":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out, nil
}

// SubmitContact records the message when name, email and message are present.
func (s *StaticService) SubmitContact(ctx context.Context, form url.Values) (ContactReply, error) {
	if err := ctx.Err(); err != nil {
		return ContactReply{}, err
	}
	name := strings.TrimSpace(form.Get("name"))
	email := strings.TrimSpace(form.Get("email"))
	message := strings.TrimSpace(form.Get("message"))
	if name == "" || email == "" || message == "" {
		return ContactReply{Success: false, Message: msgRequiredFields}, nil
	}
	subject := strings.TrimSpace(form.Get("subject"))
	if subject == "" {
		subject = defaultSubject
	}

	now := s.now()
	s.mu.Lock()
	s.submissions = append(s.submissions, Submission{
		ID:        ulid.Make().String(),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
		CreatedAt: now,
	})
	s.mu.Unlock()

	return ContactReply{Success: true, Message: msgContactThanks}, nil
}

// Submissions returns a copy of the recorded contact messages.
func (s *StaticService) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Submission, len(s.submissions))
	copy(out, s.submissions)
	return out
}
