package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/frotadev/fleet-manager/internal/models"
)

func testService() *Service {
	return &Service{secret: []byte("warehouse-test-secret"), tokenTTL: time.Hour}
}

func testUser() *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		Username: "dock-supervisor",
		Email:    "supervisor@frota.example",
		FullName: "Ana Ribeiro",
		Sector:   "Receiving",
		Role:     models.RoleManager,
		IsActive: true,
	}
}

func TestNewService(t *testing.T) {
	t.Run("requires secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := NewService()
		assert.Error(t, err)
	})

	t.Run("reads ttl", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("JWT_TTL", "2h")
		svc, err := NewService()
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, svc.tokenTTL)
	})

	t.Run("rejects bad ttl", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("JWT_TTL", "fortnight")
		_, err := NewService()
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	svc := testService()

	hash, err := svc.HashPassword("empilhadeira123")
	require.NoError(t, err)
	assert.NotEqual(t, "empilhadeira123", hash)

	assert.True(t, svc.CheckPassword("empilhadeira123", hash))
	assert.False(t, svc.CheckPassword("wrong-password", hash))
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := testService()
	user := testUser()

	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "dock-supervisor", claims.Username)
	assert.Equal(t, models.RoleManager, claims.Role)
	assert.Greater(t, claims.Exp, time.Now().Unix())

	t.Run("accepts bearer prefix", func(t *testing.T) {
		claims, err := svc.ValidateToken("Bearer " + token)
		require.NoError(t, err)
		assert.Equal(t, "dock-supervisor", claims.Username)
	})
}

func TestValidateToken_Rejections(t *testing.T) {
	svc := testService()

	t.Run("empty", func(t *testing.T) {
		_, err := svc.ValidateToken("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := &Service{secret: []byte("some-other-secret"), tokenTTL: time.Hour}
		token, err := other.IssueToken(testUser())
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		stale := &Service{secret: svc.secret, tokenTTL: -time.Minute}
		token, err := stale.IssueToken(testUser())
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestIssueRefreshToken(t *testing.T) {
	svc := testService()
	a, err := svc.IssueRefreshToken()
	require.NoError(t, err)
	b, err := svc.IssueRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCheckRegistration(t *testing.T) {
	svc := testService()

	valid := models.RegisterRequest{
		Username: "forklift-op-07",
		Email:    "op07@frota.example",
		Password: "longenough",
		FullName: "Carlos Silva",
		Sector:   "Shipping",
		Role:     models.RoleOperator,
	}
	assert.NoError(t, svc.CheckRegistration(valid))

	cases := []struct {
		name   string
		mutate func(*models.RegisterRequest)
	}{
		{"short username", func(r *models.RegisterRequest) { r.Username = "op" }},
		{"bad email", func(r *models.RegisterRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *models.RegisterRequest) { r.Password = "short" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			assert.Error(t, svc.CheckRegistration(req))
		})
	}
}
