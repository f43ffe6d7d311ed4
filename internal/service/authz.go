package service

import (
	"context"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/store_repo"
)

// 角色檢查 caller必須是列出的角色之一
type authz struct {
	userRepo *store_repo.UserRepo
}

func (a *authz) requireRole(ctx context.Context, callerID string, roles ...model.Role) error {
	if callerID == "" {
		return ErrForbidden
	}
	role, err := a.userRepo.GetRole(ctx, callerID)
	if err != nil {
		return err
	}
	for _, allowed := range roles {
		if role == allowed {
			return nil
		}
	}
	return ErrForbidden
}

func (a *authz) requireAdmin(ctx context.Context, callerID string) error {
	return a.requireRole(ctx, callerID, model.RoleAdmin)
}
