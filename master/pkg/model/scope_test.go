package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/computeplane/computeplane/master/pkg/check"
)

func TestScopeIDs(t *testing.T) {
	require.Equal(t, "site", SiteScopeAssignment(true).ID())
	require.Equal(t, "group:imaging", GroupScopeAssignment("imaging", true).ID())
	require.Equal(t, "project:p1", ProjectScopeAssignment("p1", false).ID())

	scopes := NewScopes(
		SiteScopeAssignment(false),
		ProjectScopeAssignment("p1", true).AsDefault(),
	)
	a, ok := scopes.Lookup(ProjectScope, "p1")
	require.True(t, ok)
	require.True(t, a.Enabled)
	require.True(t, a.Default)
	_, ok = scopes.Lookup(GroupScope, "p1")
	require.False(t, ok)
}

func TestScopesValidate(t *testing.T) {
	require.NoError(t, check.Validate(NewScopes(
		SiteScopeAssignment(true), GroupScopeAssignment("g", true), ProjectScopeAssignment("p", true),
	)))

	misfiled := Scopes{"project:other": ProjectScopeAssignment("p", true)}
	require.ErrorContains(t, check.Validate(misfiled), `has identity "project:p"`)

	require.ErrorContains(t, check.Validate(NewScopes(Scope{Kind: GroupScope})),
		"GROUP scope key: expected a non-empty value")
	require.ErrorContains(t, check.Validate(NewScopes(Scope{Kind: "USER", Key: "u"})),
		"scope kind: USER not in")
	require.ErrorContains(t, check.Validate(Scopes{"site": {Kind: SiteScope, Key: "x"}}),
		"site scope must not have a key")
}

func TestScopesUnmarshalJSON(t *testing.T) {
	var fromList Scopes
	require.NoError(t, json.Unmarshal([]byte(`[
		{"kind": "SITE", "enabled": true},
		{"kind": "PROJECT", "key": "p1", "enabled": false, "default": true}
	]`), &fromList))
	require.Equal(t, NewScopes(
		SiteScopeAssignment(true),
		ProjectScopeAssignment("p1", false).AsDefault(),
	), fromList)

	bs, err := json.Marshal(fromList)
	require.NoError(t, err)
	var fromMap Scopes
	require.NoError(t, json.Unmarshal(bs, &fromMap))
	require.Equal(t, fromList, fromMap)

	var bad Scopes
	require.Error(t, json.Unmarshal([]byte(`"site"`), &bad))
}
