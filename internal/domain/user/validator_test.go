package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordValidator_ValidateLogin(t *testing.T) {
	v := NewPasswordValidator()

	tests := []struct {
		name    string
		login   string
		wantErr bool
	}{
		{"valid simple", "driver", false},
		{"valid with separators", "jo.hn_do-e1", false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", MaxLoginLen+1), true},
		{"space", "jo hn", true},
		{"slash", "jo/hn", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateLogin(tt.login)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPasswordValidator_ValidatePassword(t *testing.T) {
	v := NewPasswordValidator()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Sup3rSecret", false},
		{"too short", "Ab1", true},
		{"no digit", "SuperSecret", true},
		{"no upper", "sup3rsecret", true},
		{"no lower", "SUP3RSECRET", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPasswordValidator_ValidateRegister(t *testing.T) {
	v := NewPasswordValidator()

	assert.NoError(t, v.ValidateRegister("driver", "Sup3rSecret"))
	assert.Error(t, v.ValidateRegister("ab", "Sup3rSecret"))
	assert.Error(t, v.ValidateRegister("driver", "weak"))
}
