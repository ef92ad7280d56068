package auth

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// Operator is a dealership employee allowed to use the bot.
type Operator struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (o Operator) Display() string {
	if o.Username != "" {
		return "@" + o.Username
	}
	if o.FirstName != "" || o.LastName != "" {
		return fmt.Sprintf("%s %s", o.FirstName, o.LastName)
	}
	return fmt.Sprintf("id %d", o.ID)
}

type Repository interface {
	LoadAll() ([]Operator, error)
	Upsert(op Operator) error
	Remove(id int64) error
}

// Service holds the allowlist and the access requests waiting for the admin.
type Service struct {
	mu          sync.RWMutex
	repo        Repository
	pendingRepo Repository
	allowed     map[int64]Operator
	pending     map[int64]Operator
}

func NewWithRepo(repo, pendingRepo Repository, initial []int64) (*Service, error) {
	s := &Service{
		repo:        repo,
		pendingRepo: pendingRepo,
		allowed:     make(map[int64]Operator),
		pending:     make(map[int64]Operator),
	}
	if repo != nil {
		ops, err := repo.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("load allowlist: %w", err)
		}
		for _, o := range ops {
			s.allowed[o.ID] = o
		}
	}
	if pendingRepo != nil {
		ops, err := pendingRepo.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("load pending: %w", err)
		}
		for _, o := range ops {
			s.pending[o.ID] = o
		}
	}
	// merge initial IDs (from env) without usernames
	for _, id := range initial {
		if _, ok := s.allowed[id]; !ok {
			s.allowed[id] = Operator{ID: id}
		}
	}
	return s, nil
}

func (s *Service) IsAllowed(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.allowed[id]
	return ok
}

// Request records an access request. It reports false when one was already
// pending for the same operator.
func (s *Service) Request(op Operator) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[op.ID]; ok {
		return false, nil
	}
	s.pending[op.ID] = op
	if s.pendingRepo != nil {
		if err := s.pendingRepo.Upsert(op); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Approve moves a pending request into the allowlist.
func (s *Service) Approve(id int64) (Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.pending[id]
	if !ok {
		op = Operator{ID: id}
	}
	if s.repo != nil {
		if err := s.repo.Upsert(op); err != nil {
			return op, fmt.Errorf("save operator: %w", err)
		}
	}
	delete(s.pending, id)
	s.allowed[id] = op
	if s.pendingRepo != nil {
		if err := s.pendingRepo.Remove(id); err != nil {
			log.Printf("⚠️ failed to drop pending request %d: %v", id, err)
		}
	}
	return op, nil
}

func (s *Service) Deny(id int64) (Operator, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.pending[id]
	delete(s.pending, id)
	if ok && s.pendingRepo != nil {
		return op, ok, s.pendingRepo.Remove(id)
	}
	return op, ok, nil
}

func (s *Service) Remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.allowed, id)
	if s.repo != nil {
		return s.repo.Remove(id)
	}
	return nil
}

func (s *Service) List() []Operator { return s.list(false) }

func (s *Service) Pending() []Operator { return s.list(true) }

func (s *Service) list(pending bool) []Operator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.allowed
	if pending {
		src = s.pending
	}
	out := make([]Operator, 0, len(src))
	for _, o := range src {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
