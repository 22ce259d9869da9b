package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/workflow"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
)

func errCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %v", err)
	return appErr.Code
}

func lguStaff() *models.JWTClaims {
	return &models.JWTClaims{UserID: 3, Role: models.RoleLGU, FirstName: "Jose", LastName: "Cruz", Region: "NCR", Province: "Metro Manila", City: "Quezon City"}
}

func TestResolveScopeBarangayUsesToken(t *testing.T) {
	scope, err := ResolveScope(barangayStaff(), models.Location{})
	require.NoError(t, err)
	assert.Equal(t, "San Isidro", scope.Barangay)
	assert.Equal(t, "Quezon City", scope.City)

	scope, err = ResolveScope(barangayStaff(), models.Location{City: "quezon city", Barangay: "SAN ISIDRO"})
	require.NoError(t, err)
	assert.Equal(t, "San Isidro", scope.Barangay)

	_, err = ResolveScope(barangayStaff(), models.Location{Barangay: "Bagong Silang"})
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))
}

func TestResolveScopeNeedsCompleteTokenScope(t *testing.T) {
	full := models.Location{Region: "NCR", Province: "Metro Manila", City: "Quezon City", Barangay: "San Isidro"}
	partial := &models.JWTClaims{UserID: 9, Role: models.RoleBarangay, City: "Quezon City", Barangay: "San Isidro"}

	_, err := ResolveScope(partial, models.Location{})
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))
	_, err = ResolveScope(partial, full)
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err), "query must not complete a token scope")

	lgu := lguStaff()
	lgu.Province = " "
	_, err = ResolveScope(lgu, full)
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))
}

func TestListedEntitiesAreWithinScope(t *testing.T) {
	for name, claims := range map[string]*models.JWTClaims{"barangay": barangayStaff(), "lgu": lguStaff()} {
		scope, err := ResolveScope(claims, models.Location{})
		require.NoError(t, err, name)
		located := scope
		if located.Barangay == "" {
			located.Barangay = "Bagong Silang"
		}
		assert.True(t, WithinScope(claims, located), name)
	}
}

func TestMissingScope(t *testing.T) {
	full := models.Location{Region: "NCR", Province: "Metro Manila", City: "Quezon City", Barangay: "San Isidro"}
	assert.Empty(t, missingScope(models.RoleBarangay, full))
	assert.Empty(t, missingScope(models.RoleLGU, models.Location{Region: "NCR", Province: "Metro Manila", City: "Quezon City"}))
	assert.Equal(t, "barangay", missingScope(models.RoleBarangay, models.Location{Region: "NCR", Province: "Metro Manila", City: "Quezon City"}))
	assert.Equal(t, "region", missingScope(models.RoleBarangay, models.Location{City: "Quezon City", Barangay: "San Isidro"}))
	assert.Equal(t, "province", missingScope(models.RoleLGU, models.Location{Region: "NCR", Province: "  ", City: "Quezon City"}))
}

func TestResolveScopeLGUMayNarrow(t *testing.T) {
	scope, err := ResolveScope(lguStaff(), models.Location{Barangay: "San Isidro"})
	require.NoError(t, err)
	assert.Equal(t, "Quezon City", scope.City)
	assert.Equal(t, "San Isidro", scope.Barangay)

	_, err = ResolveScope(lguStaff(), models.Location{City: "Makati"})
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))
}

func TestResolveScopeAdminAndMobile(t *testing.T) {
	admin := &models.JWTClaims{UserID: 1, Role: models.RoleSuperAdmin}
	scope, err := ResolveScope(admin, models.Location{City: " Makati "})
	require.NoError(t, err)
	assert.Equal(t, models.Location{City: "Makati"}, scope)

	_, err = ResolveScope(&models.JWTClaims{UserID: 2, Role: models.RoleMobile}, models.Location{})
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))

	_, err = ResolveScope(nil, models.Location{})
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errCode(t, err))
}

func TestWithinScope(t *testing.T) {
	here := barangayStaff().Location()
	elsewhere := here
	elsewhere.Barangay = "Bagong Silang"

	assert.True(t, WithinScope(barangayStaff(), here))
	assert.False(t, WithinScope(barangayStaff(), elsewhere))
	assert.True(t, WithinScope(lguStaff(), elsewhere))
	assert.True(t, WithinScope(&models.JWTClaims{Role: models.RoleSuperAdmin}, models.Location{City: "Makati"}))
	assert.False(t, WithinScope(&models.JWTClaims{Role: models.RoleMobile}, here))
}

func TestWorkflowErrorMapping(t *testing.T) {
	cases := map[error]string{
		workflow.ErrRoleDenied:         appErrors.ErrForbidden.Code,
		workflow.ErrTransitionDenied:   appErrors.ErrInvalidTransition.Code,
		workflow.ErrDedicatedOperation: appErrors.ErrInvalidTransition.Code,
		workflow.ErrUnknownStatus:      appErrors.ErrInvalidTransition.Code,
		errors.New("boom"):             appErrors.ErrInternal.Code,
	}
	for in, code := range cases {
		assert.Equal(t, code, errCode(t, workflowError(fmt.Errorf("wrapped: %w", in))), in.Error())
	}
}

func TestActorName(t *testing.T) {
	assert.Equal(t, "Ana Reyes", actorName(dto.Actor{FirstName: " Ana ", LastName: "Reyes"}, barangayStaff()))
	assert.Equal(t, "Maria Santos", actorName(dto.Actor{}, barangayStaff()))
	assert.Equal(t, "ops@lgu.test", actorName(dto.Actor{}, &models.JWTClaims{Email: "ops@lgu.test"}))
	assert.Equal(t, models.SystemActor, actorName(dto.Actor{}, nil))
}
