package mocks

import (
	"regexp"
	"strings"
	"sync"

	"github.com/you/hrplusauth/domain"
)

// MockCasbinEnforcer implements the CasbinEnforcer interface for testing.
// Its default Enforce matches subject exactly, path with a trailing "/*"
// wildcard and method as an anchored regexp. Like casbin, AddPolicy reports
// true for a rule that is already present.
type MockCasbinEnforcer struct {
	AddPolicyFunc    func(params ...interface{}) (bool, error)
	RemovePolicyFunc func(params ...interface{}) (bool, error)
	EnforceFunc      func(rvals ...interface{}) (bool, error)
	HasPolicyFunc    func(params ...interface{}) (bool, error)
	GetPolicyFunc    func() ([][]string, error)

	mu       sync.Mutex
	policies [][]string
	adds     int
}

// Compile-time interface compliance verification
var _ domain.CasbinEnforcer = (*MockCasbinEnforcer)(nil)

// NewMockCasbinEnforcer creates a new MockCasbinEnforcer with the default role policies
func NewMockCasbinEnforcer() *MockCasbinEnforcer {
	return &MockCasbinEnforcer{
		policies: [][]string{
			{"role_SUPER_ADMIN", "/admin/*", "(GET|POST|DELETE)"},
			{"role_SUPER_ADMIN", "/api/*", "(GET|POST|PUT|DELETE)"},
			{"role_ADMIN", "/api/*", "GET"},
			{"role_DEVELOPER", "/api/*", "GET"},
		},
	}
}

func toPolicy(params []interface{}) []string {
	policy := make([]string, 0, len(params))
	for _, p := range params {
		s, _ := p.(string)
		policy = append(policy, s)
	}
	return policy
}

func (m *MockCasbinEnforcer) indexOf(policy []string) int {
	for i, p := range m.policies {
		if strings.Join(p, "\x00") == strings.Join(policy, "\x00") {
			return i
		}
	}
	return -1
}

// AddPolicy adds a new policy rule
func (m *MockCasbinEnforcer) AddPolicy(params ...interface{}) (bool, error) {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(params...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	policy := toPolicy(params)
	if m.indexOf(policy) >= 0 {
		return true, nil
	}
	m.adds++
	m.policies = append(m.policies, policy)
	return true, nil
}

// RemovePolicy removes a policy rule
func (m *MockCasbinEnforcer) RemovePolicy(params ...interface{}) (bool, error) {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(params...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(toPolicy(params))
	if i < 0 {
		return false, nil
	}
	m.policies = append(m.policies[:i], m.policies[i+1:]...)
	return true, nil
}

// Enforce checks if a request should be allowed
func (m *MockCasbinEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	req := toPolicy(rvals)
	if len(req) < 3 {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.policies {
		if len(p) < 3 || p[0] != req[0] {
			continue
		}
		if !pathMatch(req[1], p[1]) {
			continue
		}
		if ok, _ := regexp.MatchString("^"+p[2]+"$", req[2]); ok {
			return true, nil
		}
	}
	return false, nil
}

func pathMatch(path, pattern string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(path, prefix+"/")
	}
	return path == pattern
}

// GetPolicy returns all policies
func (m *MockCasbinEnforcer) GetPolicy() ([][]string, error) {
	if m.GetPolicyFunc != nil {
		return m.GetPolicyFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([][]string, len(m.policies))
	for i, policy := range m.policies {
		result[i] = append([]string(nil), policy...)
	}
	return result, nil
}

// HasPolicy reports whether the exact rule is present
func (m *MockCasbinEnforcer) HasPolicy(params ...interface{}) (bool, error) {
	if m.HasPolicyFunc != nil {
		return m.HasPolicyFunc(params...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(toPolicy(params)) >= 0, nil
}

// Adds returns how many rules AddPolicy actually appended
func (m *MockCasbinEnforcer) Adds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adds
}

// SetPolicies replaces the internal policies (test helper)
func (m *MockCasbinEnforcer) SetPolicies(policies [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies = make([][]string, len(policies))
	for i, policy := range policies {
		m.policies[i] = append([]string(nil), policy...)
	}
}
