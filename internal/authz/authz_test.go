package authz_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrail/internal/authz"
)

func policyFiles(t *testing.T) (string, string) {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	dir := filepath.Join(filepath.Dir(file), "..", "..", "config", "access")
	return filepath.Join(dir, "model.conf"), filepath.Join(dir, "policy.csv")
}

func TestAuthorize_ShippedPolicy(t *testing.T) {
	model, policy := policyFiles(t)
	a, err := authz.NewAuthorizer(model, policy)
	require.NoError(t, err)

	tests := []struct {
		role    string
		object  string
		action  string
		allowed bool
	}{
		{"admin", authz.ObjectCustody, authz.ActionRollback, true},
		{"admin", authz.ObjectCustody, authz.ActionExport, true},
		{"member", authz.ObjectCustody, authz.ActionCheckout, true},
		{"member", authz.ObjectCustody, authz.ActionTransfer, true},
		{"member", authz.ObjectCustody, authz.ActionExport, true},
		{"member", authz.ObjectCustody, authz.ActionRollback, false},
		{"member", "documents", authz.ActionRead, false},
		{"", authz.ObjectCustody, authz.ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.object+"/"+tt.action, func(t *testing.T) {
			allowed, err := a.Authorize(authz.SubjectFromRole(tt.role), tt.object, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestSubjectFromRole(t *testing.T) {
	assert.Equal(t, "role:admin", authz.SubjectFromRole(" Admin "))
	assert.Equal(t, "role:anonymous", authz.SubjectFromRole(""))
}

func TestNewAuthorizer_MissingModel(t *testing.T) {
	_, err := authz.NewAuthorizer(filepath.Join(t.TempDir(), "missing.conf"), "policy.csv")
	assert.Error(t, err)
}
