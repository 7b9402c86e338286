// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karteiapp/kartei/internal/platform/apperr"
	"github.com/karteiapp/kartei/internal/platform/authz"
)

/*
TestAuthorizer_Check verifies grant lookups for named users, the all-users
marker, and denial for unknown users and unknown permissions.
*/
func TestAuthorizer_Check(t *testing.T) {
	authorizer := authz.New(map[string][]string{
		authz.AddressCreate:     {"alice", "bob"},
		authz.PublicAddressRead: {authz.AllUsersMarker},
	})

	tests := []struct {
		name       string
		user       string
		permission string
		allowed    bool
	}{
		{"granted_user", "alice", authz.AddressCreate, true},
		{"second_granted_user", "bob", authz.AddressCreate, true},
		{"ungranted_user", "mallory", authz.AddressCreate, false},
		{"all_users_marker", "anyone", authz.PublicAddressRead, true},
		{"unknown_permission", "alice", authz.OwnAddressDelete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authorizer.Check(tt.user, tt.permission)

			if tt.allowed {
				assert.NoError(t, err)
				assert.True(t, authorizer.Holds(tt.user, tt.permission))
			} else {
				require.Error(t, err)
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "PERMISSION_DENIED", ae.Code)
				assert.False(t, authorizer.Holds(tt.user, tt.permission))
			}
		})
	}
}

/*
TestAuthorizer_EmptyGrants ensures a fresh Authorizer denies everything.
*/
func TestAuthorizer_EmptyGrants(t *testing.T) {
	authorizer := authz.New(nil)

	err := authorizer.Check("alice", authz.AddressCreate)
	require.Error(t, err)
	assert.Equal(t, "PERMISSION_DENIED", apperr.As(err).Code)
}
