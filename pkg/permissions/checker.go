// Package permissions checks a user's permission strings against required
// permissions, with wildcard support.
//
// Permission format:
//   - "*" - full access
//   - "resource.*" - all actions on a resource (e.g. "dealers.*")
//   - "resource.action" - specific action (e.g. "dealers.write")
package permissions

import (
	"strings"
)

// HasPermission checks if the user's permissions include the required permission.
// Supports wildcard matching:
//   - "*" matches everything
//   - "dealers.*" matches "dealers.read", "dealers.write", etc.
//   - Exact match for specific permissions
func HasPermission(userPerms []string, required string) bool {
	if required == "" {
		return true // No permission required
	}

	for _, p := range userPerms {
		if p == "*" {
			return true // Full admin access
		}
		if p == required {
			return true // Exact match
		}
		// Check wildcard patterns like "dealers.*"
		if strings.HasSuffix(p, ".*") {
			prefix := strings.TrimSuffix(p, ".*")
			if strings.HasPrefix(required, prefix+".") {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission checks if the user has any of the required permissions.
func HasAnyPermission(userPerms []string, required []string) bool {
	for _, req := range required {
		if HasPermission(userPerms, req) {
			return true
		}
	}
	return false
}

// HasAllPermissions checks if the user has all of the required permissions.
func HasAllPermissions(userPerms []string, required []string) bool {
	for _, req := range required {
		if !HasPermission(userPerms, req) {
			return false
		}
	}
	return true
}

// MergePermissions merges multiple permission sets, removing duplicates.
func MergePermissions(sets ...[]string) []string {
	seen := make(map[string]bool)
	var result []string

	for _, set := range sets {
		for _, p := range set {
			if !seen[p] {
				seen[p] = true
				result = append(result, p)
			}
		}
	}

	return result
}

// CommonPermissions is a list of standard permissions used in BoothBase.
// This can be used for validation and autocomplete.
var CommonPermissions = []string{
	// Dealer roster permissions
	"dealers.read",
	"dealers.write",
	"dealers.delete",
	"dealers.notes.write",
	"dealers.images.write",
	"dealers.*",

	// Badge scan permissions
	"scans.create",
	"scans.read",
	"scans.*",

	// Admin permissions
	"admin.settings",
	"admin.account.manage",
	"admin.*",

	// Full access
	"*",
}

// IsValidPermission checks if a permission string is in the known list.
// Allows wildcards and custom permissions not in the standard list.
func IsValidPermission(perm string) bool {
	if perm == "*" {
		return true
	}

	for _, p := range CommonPermissions {
		if p == perm {
			return true
		}
	}

	// Allow any permission that follows the pattern resource.action
	parts := strings.Split(perm, ".")
	return len(parts) >= 2
}
