package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-report-api/internal/models"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
)

// AuthConfig defines how bearer tokens are verified.
type AuthConfig struct {
	AccessTokenSecret string
}

// AuthService validates tokens minted by the identity service. Login and refresh live there.
type AuthService struct {
	logger *zap.Logger
	config AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{logger: logger, config: config}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.UserID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token is missing subject")
	}
	if err := checkScopeClaims(claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// checkScopeClaims rejects tokens whose role is unknown or whose location cannot scope the role.
func checkScopeClaims(claims *models.JWTClaims) error {
	switch claims.Role {
	case models.RoleSuperAdmin, models.RoleMobile:
		return nil
	case models.RoleLGU, models.RoleBarangay:
		if field := missingScope(claims.Role, claims.Location()); field != "" {
			return appErrors.Clone(appErrors.ErrUnauthorized, fmt.Sprintf("%s token is missing %s", claims.Role, field))
		}
		return nil
	default:
		return appErrors.Clone(appErrors.ErrUnauthorized, "token carries an unknown role")
	}
}
