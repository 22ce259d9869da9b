package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/internal/models"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
)

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims *models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func barangayStaff() *models.JWTClaims {
	return &models.JWTClaims{
		UserID:    7,
		Role:      models.RoleBarangay,
		FirstName: "Maria",
		LastName:  "Santos",
		Region:    "NCR",
		Province:  "Metro Manila",
		City:      "Quezon City",
		Barangay:  "San Isidro",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret"})

	claims, err := svc.ValidateToken(signToken(t, "secret", jwt.SigningMethodHS256, barangayStaff()))
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, models.RoleBarangay, claims.Role)
	assert.Equal(t, "San Isidro", claims.Barangay)

	citizen := &models.JWTClaims{UserID: 42, Role: models.RoleMobile}
	claims, err = svc.ValidateToken(signToken(t, "secret", jwt.SigningMethodHS256, citizen))
	require.NoError(t, err)
	assert.Equal(t, models.RoleMobile, claims.Role)
}

func TestAuthServiceValidateTokenRejects(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret"})

	expired := barangayStaff()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noRole := barangayStaff()
	noRole.Role = ""
	stranger := barangayStaff()
	stranger.Role = "auditor"
	noBarangay := barangayStaff()
	noBarangay.Barangay = "  "
	lguNoCity := barangayStaff()
	lguNoCity.Role = models.RoleLGU
	lguNoCity.City = ""
	noSubject := barangayStaff()
	noSubject.UserID = 0
	cityOnly := barangayStaff()
	cityOnly.Region, cityOnly.Province = "", ""
	lguNoProvince := barangayStaff()
	lguNoProvince.Role = models.RoleLGU
	lguNoProvince.Province = " "

	cases := map[string]string{
		"wrong secret": signToken(t, "other", jwt.SigningMethodHS256, barangayStaff()),
		"wrong alg":    signToken(t, "secret", jwt.SigningMethodHS384, barangayStaff()),
		"expired":      signToken(t, "secret", jwt.SigningMethodHS256, expired),
		"no role":      signToken(t, "secret", jwt.SigningMethodHS256, noRole),
		"unknown role": signToken(t, "secret", jwt.SigningMethodHS256, stranger),
		"no barangay":  signToken(t, "secret", jwt.SigningMethodHS256, noBarangay),
		"lgu no city":  signToken(t, "secret", jwt.SigningMethodHS256, lguNoCity),
		"no subject":   signToken(t, "secret", jwt.SigningMethodHS256, noSubject),
		"city only":    signToken(t, "secret", jwt.SigningMethodHS256, cityOnly),
		"lgu no prov":  signToken(t, "secret", jwt.SigningMethodHS256, lguNoProvince),
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			var appErr *appErrors.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
		})
	}
}
