package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/you/hrplusauth/domain"
)

// CasbinEnforcerWrapper wraps the real Casbin enforcer to implement our interface
type CasbinEnforcerWrapper struct {
	enforcer *casbin.Enforcer
}

// NewCasbinEnforcerWrapper creates a wrapper for the real Casbin enforcer
func NewCasbinEnforcerWrapper(enforcer *casbin.Enforcer) domain.CasbinEnforcer {
	return &CasbinEnforcerWrapper{enforcer: enforcer}
}

func (w *CasbinEnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *CasbinEnforcerWrapper) RemovePolicy(params ...interface{}) (bool, error) {
	return w.enforcer.RemovePolicy(params...)
}

func (w *CasbinEnforcerWrapper) Enforce(rvals ...interface{}) (bool, error) {
	return w.enforcer.Enforce(rvals...)
}

func (w *CasbinEnforcerWrapper) GetPolicy() ([][]string, error) {
	return w.enforcer.GetPolicy()
}

func (w *CasbinEnforcerWrapper) HasPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.HasPolicy(params...)
}

// PolicyServiceImpl implements domain.PolicyService using Casbin.
// Roles are principal roles (ADMIN, SUPER_ADMIN, DEVELOPER); casbin subjects carry a "role_" prefix.
// The enforcer runs with auto-save, so each add or remove writes its own row through the adapter.
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
	mu       sync.Mutex
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer *casbin.Enforcer) domain.PolicyService {
	return NewPolicyServiceWithEnforcer(NewCasbinEnforcerWrapper(enforcer))
}

// NewPolicyServiceWithEnforcer creates a new policy service with a CasbinEnforcer interface (for testing)
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: enforcer,
	}
}

func subject(role string) (string, error) {
	if !domain.Role(role).Valid() {
		return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidPolicy, role)
	}
	return "role_" + role, nil
}

func validRule(resource, action string) error {
	if !strings.HasPrefix(resource, "/") || action == "" {
		return fmt.Errorf("%w: resource must be a path and action non-empty", domain.ErrInvalidPolicy)
	}
	return nil
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	sub, err := subject(role)
	if err != nil {
		return err
	}
	if err := validRule(resource, action); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// AddPolicy reports true for a rule that is already loaded
	exists, err := p.enforcer.HasPolicy(sub, resource, action)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrPolicyExists
	}
	_, err = p.enforcer.AddPolicy(sub, resource, action)
	return err
}

// RemovePolicy implements domain.PolicyService
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action string) error {
	sub, err := subject(role)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	removed, err := p.enforcer.RemovePolicy(sub, resource, action)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrPolicyNotFound
	}
	return nil
}

// CheckPermission implements domain.PolicyService. Unknown roles are denied.
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	sub, err := subject(role)
	if err != nil {
		return false, nil
	}
	return p.enforcer.Enforce(sub, resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}
