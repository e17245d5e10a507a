// Package approval keeps pending human confirmations on disk, one JSON file
// per decision. A request that needs a PIN can only be approved with the
// configured approval PIN.
package approval

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/ladder/internal/model"
)

var (
	// ErrPINRequired is returned when a PIN-gated request is approved without one.
	ErrPINRequired = errors.New("approval: PIN required")
	// ErrPINMismatch is returned when the supplied PIN is wrong.
	ErrPINMismatch = errors.New("approval: PIN does not match")
	// ErrNoPINConfigured is returned when a PIN-gated request is approved
	// but no PIN has been set up. The caller should prompt for one.
	ErrNoPINConfigured = errors.New("approval: no approval PIN configured")
	// ErrNotPending is returned when resolving a request that is already resolved.
	ErrNotPending = errors.New("approval: request is not pending")
)

// validKey matches alphanumeric, dash, underscore, and dot characters only.
var validKey = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// validateKey rejects keys that could cause path traversal.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key must not be empty")
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("key must not contain '..'")
	}
	if !validKey.MatchString(key) {
		return fmt.Errorf("key contains invalid characters: only alphanumeric, dash, underscore, and dot are allowed")
	}
	return nil
}

// Status represents the state of an approval request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusConsumed Status = "consumed"
	StatusExpired  Status = "expired"
)

// Approval is one confirmation request and its state.
type Approval struct {
	Key         string            `json:"key"`
	Status      Status            `json:"status"`
	Tool        string            `json:"tool"`
	Summary     string            `json:"summary"`
	Risk        model.RiskScore   `json:"risk"`
	Level       model.ReviewLevel `json:"review_level"`
	RequiresPin bool              `json:"requires_pin"`
	Reasons     []string          `json:"reasons,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   *time.Time        `json:"expires_at,omitempty"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
}

// Store manages approval files on disk.
type Store struct {
	dir string
	pin func() string
	mu  sync.Mutex
}

// NewStore creates a Store backed by dir. pin returns the configured
// approval PIN at the moment of approval; nil means none is configured.
func NewStore(dir string, pin func() string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("approval: cannot create directory: %w", err)
	}
	return &Store{dir: dir, pin: pin}, nil
}

// DefaultDir returns ~/.ladder/pending.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ladder-pending")
	}
	return filepath.Join(home, ".ladder", "pending")
}

// Request records a pending confirmation for d, keyed by its id.
// No-op if the request already exists.
func (s *Store) Request(d *model.Decision) error {
	if err := validateKey(d.ID); err != nil {
		return fmt.Errorf("approval: invalid key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(d.ID)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	reasons := append(append([]string(nil), d.Risk.Reasons...), d.Review.Reasons...)
	a := Approval{
		Key:         d.ID,
		Status:      StatusPending,
		Tool:        d.Action.ToolName,
		Summary:     d.Action.RawSummary,
		Risk:        d.Risk.Score,
		Level:       d.Review.Level,
		RequiresPin: d.NeedsPIN(),
		Reasons:     reasons,
		CreatedAt:   time.Now().UTC(),
	}
	return s.writeAtomic(path, a)
}

// Approve approves a pending request for one use.
func (s *Store) Approve(key, pin string) error {
	return s.ApproveFor(key, pin, 0)
}

// ApproveFor approves a pending request. If duration > 0 the approval
// expires after it; otherwise it is consumed on first use.
func (s *Store) ApproveFor(key, pin string, duration time.Duration) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("approval: invalid key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.read(key)
	if err != nil {
		return fmt.Errorf("approval %q not found: %w", key, err)
	}
	if a.Status != StatusPending {
		return fmt.Errorf("%w: %q is %s", ErrNotPending, key, a.Status)
	}
	if a.RequiresPin {
		if err := s.checkPIN(pin); err != nil {
			return err
		}
	}

	a.Status = StatusApproved
	now := time.Now().UTC()
	a.ResolvedAt = &now
	if duration > 0 {
		exp := now.Add(duration)
		a.ExpiresAt = &exp
	}
	return s.writeAtomic(s.path(key), *a)
}

func (s *Store) checkPIN(pin string) error {
	configured := ""
	if s.pin != nil {
		configured = s.pin()
	}
	if configured == "" {
		return ErrNoPINConfigured
	}
	if pin == "" {
		return ErrPINRequired
	}
	if subtle.ConstantTimeCompare([]byte(pin), []byte(configured)) != 1 {
		return ErrPINMismatch
	}
	return nil
}

// Deny marks a pending request as denied.
func (s *Store) Deny(key string) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("approval: invalid key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.read(key)
	if err != nil {
		return fmt.Errorf("approval %q not found: %w", key, err)
	}
	if a.Status != StatusPending {
		return fmt.Errorf("%w: %q is %s", ErrNotPending, key, a.Status)
	}

	a.Status = StatusDenied
	now := time.Now().UTC()
	a.ResolvedAt = &now
	return s.writeAtomic(s.path(key), *a)
}

// Check returns the current status of a request.
// Returns StatusExpired if the approval has passed its deadline.
func (s *Store) Check(key string) (Status, error) {
	if err := validateKey(key); err != nil {
		return "", fmt.Errorf("approval: invalid key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.read(key)
	if err != nil {
		return "", fmt.Errorf("approval %q not found", key)
	}

	if a.Status == StatusApproved && a.ExpiresAt != nil && time.Now().UTC().After(*a.ExpiresAt) {
		a.Status = StatusExpired
		if err := s.writeAtomic(s.path(key), *a); err != nil {
			return "", err
		}
		return StatusExpired, nil
	}
	return a.Status, nil
}

// Get returns the stored request.
func (s *Store) Get(key string) (*Approval, error) {
	if err := validateKey(key); err != nil {
		return nil, fmt.Errorf("approval: invalid key: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.read(key)
	if err != nil {
		return nil, fmt.Errorf("approval %q not found: %w", key, err)
	}
	return a, nil
}

// Consume marks an approved one-time request as used. Only approved
// requests can be consumed.
func (s *Store) Consume(key string) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("approval: invalid key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.read(key)
	if err != nil {
		return fmt.Errorf("approval %q not found: %w", key, err)
	}

	switch a.Status {
	case StatusConsumed:
		return fmt.Errorf("approval %q already consumed", key)
	case StatusApproved:
	default:
		return fmt.Errorf("approval %q is %s, not approved", key, a.Status)
	}

	a.Status = StatusConsumed
	now := time.Now().UTC()
	a.ResolvedAt = &now
	return s.writeAtomic(s.path(key), *a)
}

// List returns all requests in the store, oldest first.
func (s *Store) List() ([]Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var approvals []Approval
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		a, err := s.read(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		approvals = append(approvals, *a)
	}

	sort.SliceStable(approvals, func(i, j int) bool {
		return approvals[i].CreatedAt.Before(approvals[j].CreatedAt)
	})
	return approvals, nil
}

// Pending returns only requests still waiting for a human.
func (s *Store) Pending() ([]Approval, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []Approval
	for _, a := range all {
		if a.Status == StatusPending {
			out = append(out, a)
		}
	}
	return out, nil
}

// Cleanup removes all approval files in the store.
func (s *Store) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) read(key string) (*Approval, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, err
	}

	var a Approval
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) writeAtomic(path string, a Approval) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
