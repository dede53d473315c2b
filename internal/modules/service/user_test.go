package service

import (
	"context"
	"testing"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	name := "Grace"
	badURL := "not a url"
	goodURL := "https://example.com/a.png"

	tests := []struct {
		name    string
		input   UpdateProfileInput
		setup   func(*MockUserRepo)
		wantErr error
	}{
		{
			name:  "name and avatar",
			input: UpdateProfileInput{UserID: id, Name: &name, AvatarURL: &goodURL},
			setup: func(r *MockUserRepo) {
				r.On("UpdateProfile", ctx, id, map[string]interface{}{"name": name, "avatar_url": goodURL}).
					Return(&model.User{ID: id, Name: &name}, nil)
			},
		},
		{
			name:    "invalid avatar url",
			input:   UpdateProfileInput{UserID: id, AvatarURL: &badURL},
			setup:   func(r *MockUserRepo) {},
			wantErr: ErrValidation,
		},
		{
			name:  "user gone",
			input: UpdateProfileInput{UserID: id, Name: &name},
			setup: func(r *MockUserRepo) {
				r.On("UpdateProfile", ctx, id, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &MockUserRepo{}
			tt.setup(r)

			u, err := NewUserService(r).UpdateProfile(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, u.ID)
			r.AssertExpectations(t)
		})
	}
}

func TestUserService_Get_NotFound(t *testing.T) {
	r := &MockUserRepo{}
	id := uuid.New()
	r.On("GetByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	_, err := NewUserService(r).Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
