package auth

import (
	"fmt"
	"log/slog"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/gorm-adapter/v3"
	"github.com/you/hrplusauth/internal/config"
	"gorm.io/gorm"
)

// DefaultModel is the RBAC model used when no model file is configured
const DefaultModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService builds an enforcer whose policies live in the database.
// An empty modelPath selects DefaultModel.
func NewCasbinService(db *gorm.DB, modelPath string) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}

	var E *casbin.Enforcer
	if modelPath == "" {
		m, err := model.NewModelFromString(DefaultModel)
		if err != nil {
			return nil, err
		}
		E, err = casbin.NewEnforcer(m, adp)
		if err != nil {
			return nil, err
		}
	} else {
		E, err = casbin.NewEnforcer(modelPath, adp)
		if err != nil {
			return nil, err
		}
	}

	if err := E.LoadPolicy(); err != nil {
		return nil, err
	}
	return &CasbinService{E}, nil
}

// SeedPolicies adds rules when the policy table is empty
func (s *CasbinService) SeedPolicies(rules []config.PolicyRule, log *slog.Logger) error {
	existing, err := s.E.GetPolicy()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	seen := make(map[[3]string]bool, len(rules))
	batch := make([][]string, 0, len(rules))
	for _, r := range rules {
		key := [3]string{r.Subject(), r.Path, r.Method}
		if seen[key] {
			continue
		}
		seen[key] = true
		batch = append(batch, key[:])
	}
	if len(batch) == 0 {
		return nil
	}

	// auto-save writes the batch through the adapter in one insert
	if _, err := s.E.AddPolicies(batch); err != nil {
		return fmt.Errorf("seed policies: %w", err)
	}
	log.Info("casbin: seeded default policies", "count", len(batch))
	return nil
}
