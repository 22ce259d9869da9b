package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/workflow"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
)

const defaultPageSize = 20

// ResolveScope returns the location a staff caller may read. The token must carry the full
// scope of its role; query parameters may only repeat it or narrow an LGU view to one barangay.
// A request that contradicts the token is forbidden.
func ResolveScope(claims *models.JWTClaims, requested models.Location) (models.Location, error) {
	if claims == nil {
		return models.Location{}, appErrors.ErrUnauthorized
	}
	own := claims.Location()
	switch claims.Role {
	case models.RoleSuperAdmin:
		return trimLocation(requested), nil
	case models.RoleLGU, models.RoleBarangay:
		if field := missingScope(claims.Role, own); field != "" {
			return models.Location{}, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("account has no %s scope", field))
		}
		if claims.Role == models.RoleLGU {
			own.Barangay = ""
		}
		return overlay(own, requested)
	default:
		return models.Location{}, appErrors.ErrForbidden
	}
}

// WithinScope reports whether claims may mutate an entity located at loc.
func WithinScope(claims *models.JWTClaims, loc models.Location) bool {
	if claims == nil {
		return false
	}
	switch claims.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleLGU:
		return claims.City != "" && claims.Location().SameCity(loc)
	case models.RoleBarangay:
		return claims.Barangay != "" && claims.Location().SameBarangay(loc)
	default:
		return false
	}
}

func overlay(own, requested models.Location) (models.Location, error) {
	own = trimLocation(own)
	requested = trimLocation(requested)
	pairs := []struct{ own, req *string }{
		{&own.Region, &requested.Region},
		{&own.Province, &requested.Province},
		{&own.City, &requested.City},
		{&own.Barangay, &requested.Barangay},
	}
	for _, p := range pairs {
		switch {
		case *p.req == "":
		case *p.own == "":
			*p.own = *p.req
		case !strings.EqualFold(*p.own, *p.req):
			return models.Location{}, appErrors.Clone(appErrors.ErrForbidden, "requested location is outside your scope")
		}
	}
	return own, nil
}

// missingScope names the first location field role needs that loc leaves blank. LGU staff
// need region, province and city; barangay staff also need the barangay.
func missingScope(role models.UserRole, loc models.Location) string {
	loc = trimLocation(loc)
	fields := []struct{ name, value string }{
		{"region", loc.Region},
		{"province", loc.Province},
		{"city", loc.City},
	}
	if role == models.RoleBarangay {
		fields = append(fields, struct{ name, value string }{"barangay", loc.Barangay})
	}
	for _, f := range fields {
		if f.value == "" {
			return f.name
		}
	}
	return ""
}

func trimLocation(l models.Location) models.Location {
	return models.Location{
		Region:   strings.TrimSpace(l.Region),
		Province: strings.TrimSpace(l.Province),
		City:     strings.TrimSpace(l.City),
		Barangay: strings.TrimSpace(l.Barangay),
	}
}

// actorName prefers the names sent with the write and falls back to the token.
func actorName(actor dto.Actor, claims *models.JWTClaims) string {
	name := strings.TrimSpace(strings.TrimSpace(actor.FirstName) + " " + strings.TrimSpace(actor.LastName))
	if name != "" {
		return name
	}
	if claims != nil {
		if full := claims.FullName(); full != "" {
			return full
		}
		if claims.Email != "" {
			return claims.Email
		}
	}
	return models.SystemActor
}

// workflowError maps table violations onto API errors.
func workflowError(err error) error {
	switch {
	case errors.Is(err, workflow.ErrRoleDenied):
		return appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, err.Error())
	case errors.Is(err, workflow.ErrDedicatedOperation),
		errors.Is(err, workflow.ErrTransitionDenied),
		errors.Is(err, workflow.ErrUnknownStatus):
		return appErrors.Wrap(err, appErrors.ErrInvalidTransition.Code, appErrors.ErrInvalidTransition.Status, err.Error())
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "workflow check failed")
	}
}

func pagination(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > 100 {
		size = 100
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
