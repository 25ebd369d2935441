package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	pkgauth "github.com/dhruvbhatia/bizdesk-backend/pkg/auth"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/auth/session"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/config"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
	pkgerrors "github.com/dhruvbhatia/bizdesk-backend/pkg/errors"
)

// SessionManager is the session surface the auth service depends on.
type SessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Service exchanges shared access tokens for JWT sessions.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*SessionResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*SessionResponse, error)
	Logout(ctx context.Context, req LogoutRequest) error
}

type service struct {
	jwtCfg   config.JWTConfig
	sessions SessionManager
	admin    []byte
	shops    [][]byte
	now      func() time.Time
}

// NewService builds the auth service from the configured static tokens.
func NewService(authCfg config.AuthConfig, jwtCfg config.JWTConfig, sessions SessionManager) (Service, error) {
	admin := strings.TrimSpace(authCfg.AdminToken)
	if admin == "" {
		return nil, errors.New("admin token is required")
	}
	shopTokens := authCfg.ShopTokenList()
	if len(shopTokens) == 0 {
		return nil, errors.New("at least one shop token is required")
	}
	if sessions == nil {
		return nil, errors.New("session manager is required")
	}

	shops := make([][]byte, 0, len(shopTokens))
	for _, token := range shopTokens {
		shops = append(shops, []byte(token))
	}

	return &service{
		jwtCfg:   jwtCfg,
		sessions: sessions,
		admin:    []byte(admin),
		shops:    shops,
		now:      time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	role, ok := s.resolveRole(req.Token)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	return s.issueSession(ctx, role, session.NewAccessID())
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*SessionResponse, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, refreshToken, err := s.sessions.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		Role: claims.Role,
		JTI:  newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &SessionResponse{
		Role:         claims.Role,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwtCfg.ExpirationMinutes * 60,
	}, nil
}

func (s *service) Logout(ctx context.Context, req LogoutRequest) error {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issueSession(ctx context.Context, role enums.Role, accessID string) (*SessionResponse, error) {
	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		Role: role,
		JTI:  accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &SessionResponse{
		Role:         role,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwtCfg.ExpirationMinutes * 60,
	}, nil
}

// resolveRole compares the provided secret against every configured token
// in constant time. All candidates are checked even after a match so
// timing does not leak which token family matched.
func (s *service) resolveRole(provided string) (enums.Role, bool) {
	secret := []byte(strings.TrimSpace(provided))

	matched := enums.Role("")
	if subtle.ConstantTimeCompare(secret, s.admin) == 1 {
		matched = enums.RoleAdmin
	}
	for _, shop := range s.shops {
		if subtle.ConstantTimeCompare(secret, shop) == 1 && matched == "" {
			matched = enums.RoleShopOwner
		}
	}
	if matched == "" {
		return "", false
	}
	return matched, true
}
