package dashboard

import (
	"sync"

	"unsritalk/internal/models"
)

// Selector keeps the dashboard chosen for the current session so the role dispatch
// happens once per login rather than on every request.
type Selector struct {
	mu      sync.Mutex
	source  Source
	catalog Catalog
	current Dashboard
}

func NewSelector(source Source, catalog Catalog) *Selector {
	return &Selector{source: source, catalog: catalog}
}

func (s *Selector) Select(user models.User) (Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		cur := s.current.User()
		if cur.ID == user.ID && cur.Role == user.Role && samePermissions(cur, user) {
			return s.current, nil
		}
	}

	d, err := For(user, s.source, s.catalog)
	if err != nil {
		return nil, err
	}
	s.current = d
	return d, nil
}

// Reset forgets the selection; called on login and logout.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

func samePermissions(a, b models.User) bool {
	if len(a.Permissions) != len(b.Permissions) {
		return false
	}
	for _, p := range b.Permissions {
		if !a.HasPermission(p) {
			return false
		}
	}
	return true
}
