// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

// Package authz provides the authorization collaborator consumed by the
// service layer.
//
// # Architecture
//
// Permissions are plain strings granted to usernames through configuration.
// The service layer calls [Authorizer.Check] before every mutating operation;
// transport-level authentication (who the user is) happens earlier in the
// middleware chain.
package authz

import (
	"github.com/karteiapp/kartei/internal/platform/apperr"
)

// Permission names checked by the address and field-catalogue services.
const (
	AddressCreate = "address.create"

	OwnAddressRead   = "own_address.read"
	OwnAddressEdit   = "own_address.edit"
	OwnAddressDelete = "own_address.delete"

	PublicAddressRead   = "public_address.read"
	PublicAddressEdit   = "public_address.edit"
	PublicAddressDelete = "public_address.delete"

	FreeDefinedFieldCreate = "free_defined_field.create"
	FreeDefinedFieldEdit   = "free_defined_field.edit"
	FreeDefinedFieldDelete = "free_defined_field.delete"
)

// AllUsersMarker grants a permission to every authenticated user.
const AllUsersMarker = "*"

// Authorizer answers permission checks against a static grant table.
//
// # Concurrency
//
// The grant table is built once at startup and never mutated, so the
// Authorizer is safe for concurrent use.
type Authorizer struct {
	grants map[string]map[string]bool
}

// New builds an Authorizer from a permission to usernames mapping.
func New(grants map[string][]string) *Authorizer {
	table := make(map[string]map[string]bool, len(grants))

	for permission, users := range grants {
		userSet := make(map[string]bool, len(users))
		for _, user := range users {
			userSet[user] = true
		}
		table[permission] = userSet
	}

	return &Authorizer{grants: table}
}

// Check returns nil when the user holds the permission, otherwise a
// PERMISSION_DENIED application error.
func (authorizer *Authorizer) Check(user, permission string) error {
	userSet, found := authorizer.grants[permission]
	if !found {
		return apperr.PermissionDenied(user, permission)
	}

	if userSet[AllUsersMarker] || userSet[user] {
		return nil
	}

	return apperr.PermissionDenied(user, permission)
}

// Holds reports whether the user has the permission without building an error.
func (authorizer *Authorizer) Holds(user, permission string) bool {
	return authorizer.Check(user, permission) == nil
}
