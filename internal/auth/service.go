package auth

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"cosmos-server/internal/auth/providers"
	"cosmos-server/internal/shared/config"
	"cosmos-server/internal/shared/errors"
)

type Service struct {
	repo   *Repository
	logger *slog.Logger
}

func NewService(repo *Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With("component", "auth_service"),
	}
}

// SignInWithGitHub records a sign-in, creating the operator on first
// contact. The role is recomputed every time so changing
// ADMIN_GITHUB_LOGIN promotes or demotes on the next sign-in.
func (s *Service) SignInWithGitHub(ctx context.Context, user *providers.OAuthUser) (*Operator, error) {
	githubID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return nil, errors.WrapExternal("GitHub returned a non-numeric user id", err)
	}

	role := RoleOperator
	adminLogin := config.GlobalConfig.Admin.GitHubLogin
	if adminLogin != "" && strings.EqualFold(user.Login, adminLogin) {
		role = RoleAdmin
	}

	displayName := user.Name
	if displayName == "" {
		displayName = user.Login
	}

	op := &Operator{
		GitHubID:    githubID,
		Login:       user.Login,
		DisplayName: displayName,
		Email:       optionalString(user.Email),
		AvatarURL:   optionalString(user.AvatarURL),
		Role:        role,
	}

	saved, err := s.repo.UpsertOperator(ctx, op)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Operator signed in",
		"operator_id", saved.ID,
		"login", saved.Login,
		"role", saved.Role)

	return saved, nil
}

func (s *Service) GetOperatorByID(ctx context.Context, id int) (*Operator, error) {
	op, err := s.repo.GetOperatorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, errors.NotFoundf("operator %d not found", id)
	}
	return op, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
