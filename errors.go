package navigator

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeRouteConflict = "ROUTE_CONFLICT"
	TextCodeRouteNotFound = "ROUTE_NOT_FOUND"
	TextCodeInvalidRoute  = "INVALID_ROUTE"
	TextCodeViewLoad      = "VIEW_LOAD_FAILED"
)

// IsNotFound reports whether err is a lookup miss for a location, path or
// route name.
func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

// IsConflict reports whether err was caused by duplicate route declarations.
func IsConflict(err error) bool {
	return hasCode(err, http.StatusConflict)
}

// IsInvalidRoute reports whether err was caused by a malformed declaration.
func IsInvalidRoute(err error) bool {
	return hasCode(err, http.StatusBadRequest)
}

func hasCode(err error, code int) bool {
	var routeErr *goerrors.Error
	if errors.As(err, &routeErr) {
		return routeErr.Code == code
	}
	return false
}

func newNotFoundError(kind, value string) error {
	message := fmt.Sprintf("route not found: %s %q", kind, value)
	return goerrors.New(message, goerrors.HTTPStatusToCategory(http.StatusNotFound)).
		WithCode(http.StatusNotFound).
		WithTextCode(TextCodeRouteNotFound).
		WithMetadata(map[string]any{
			kind: value,
		})
}

func newDuplicateRouteError(field, value string, existing, route Route) error {
	message := fmt.Sprintf("route conflict: %s %q of route %s is already declared by route %s",
		field, value, route.Name, existing.Name)

	return goerrors.New(message, goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(TextCodeRouteConflict).
		WithMetadata(map[string]any{
			"field":         field,
			"value":         value,
			"name":          route.Name,
			"path":          route.Path,
			"existing_name": existing.Name,
			"existing_path": existing.Path,
		})
}

func newInvalidRouteError(route Route, reason string) error {
	message := fmt.Sprintf("invalid route %q (%s): %s", route.Name, route.Path, reason)
	return goerrors.New(message, goerrors.HTTPStatusToCategory(http.StatusBadRequest)).
		WithCode(http.StatusBadRequest).
		WithTextCode(TextCodeInvalidRoute).
		WithMetadata(map[string]any{
			"name":   route.Name,
			"path":   route.Path,
			"reason": reason,
		})
}

func newViewLoadError(route *Route, cause error) error {
	message := fmt.Sprintf("failed to load view for route %s", route.Name)
	routeErr := goerrors.New(message, goerrors.HTTPStatusToCategory(http.StatusInternalServerError)).
		WithCode(http.StatusInternalServerError).
		WithTextCode(TextCodeViewLoad).
		WithMetadata(map[string]any{
			"name": route.Name,
			"path": route.Path,
		})
	return fmt.Errorf("%w: %w", routeErr, cause)
}
