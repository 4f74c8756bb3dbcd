package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUser_FullName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		first *string
		last  *string
		want  *string
	}{
		{"both", strPtr("Ada"), strPtr("Lovelace"), strPtr("Ada Lovelace")},
		{"first only", strPtr("Ada"), nil, strPtr("Ada")},
		{"last only", nil, strPtr("Lovelace"), strPtr("Lovelace")},
		{"neither", nil, nil, nil},
		{"empty strings are present", strPtr(""), strPtr(""), strPtr(" ")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u := &User{FirstName: tt.first, LastName: tt.last}
			assert.Equal(t, tt.want, u.FullName())
		})
	}
}

func TestUser_FullNameDoesNotAlias(t *testing.T) {
	t.Parallel()

	u := &User{FirstName: strPtr("Ada")}
	name := u.FullName()
	*name = "changed"
	assert.Equal(t, "Ada", *u.FirstName)
}

func TestUser_JSONAbsentFieldsAreNull(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(&User{ID: "1", Username: "ada", Email: strPtr("")})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Contains(t, decoded, "bio")
	assert.Nil(t, decoded["bio"])
	assert.Equal(t, "", decoded["email"])
}

func TestOptional_Decode(t *testing.T) {
	t.Parallel()

	var req struct {
		Bio      Optional[string] `json:"bio"`
		Email    Optional[string] `json:"email"`
		Name     Optional[string] `json:"name"`
		IsActive Optional[bool]   `json:"is_active"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"bio":"mathematician","email":null,"is_active":false}`), &req))

	require.NotNil(t, req.Bio.Ptr())
	assert.Equal(t, "mathematician", *req.Bio.Ptr())

	assert.Nil(t, req.Email.Ptr(), "null decodes as absent")
	assert.Nil(t, req.Name.Ptr(), "missing key decodes as absent")

	require.NotNil(t, req.IsActive.Ptr())
	assert.False(t, *req.IsActive.Ptr())
}

func TestOptional_DecodeWrongType(t *testing.T) {
	t.Parallel()

	var req struct {
		Bio Optional[string] `json:"bio"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"bio":42}`), &req))
}
