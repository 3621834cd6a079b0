package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

func newAuthFixture(t *testing.T) (*memStore, *AuthService) {
	t.Helper()
	store := newMemStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	store.teachers["teacher1"] = models.Teacher{ID: "teacher1", Name: "Maria Santos", Email: "maria@example.com", PasswordHash: string(hash), Role: models.RoleTeacher}
	store.addSubject("Math")
	store.addSubject("Science")
	store.links["teacher1"] = map[string]bool{"Math": true}

	svc := NewAuthService(&fakeTx{store: store}, memTeachers{store}, memSubjects{store}, nil, nil, AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "class-record-api",
		BcryptCost:        bcrypt.MinCost,
	})
	return store, svc
}

func TestAuthServiceLoginIssuesVerifiableToken(t *testing.T) {
	_, svc := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{TeacherID: "teacher1", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "Maria Santos", resp.Teacher.Name)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "teacher1", claims.TeacherID)
	assert.Equal(t, models.RoleTeacher, claims.Session().Role)
	assert.Equal(t, "class-record-api", claims.Issuer)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{TeacherID: "teacher1", Password: "wrong-pass"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials.Code))

	_, err = svc.Login(context.Background(), models.LoginRequest{TeacherID: "ghost", Password: "password123"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials.Code))

	_, err = svc.Login(context.Background(), models.LoginRequest{TeacherID: "teacher1"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestAuthServiceValidateTokenRejectsForeignSignature(t *testing.T) {
	_, svc := newAuthFixture(t)

	claims := &models.JWTClaims{
		TeacherID: "teacher1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(forged)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))

	_, err = svc.ValidateToken("not-a-token")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))
}

func TestAuthServiceSubjectAccess(t *testing.T) {
	_, svc := newAuthFixture(t)
	teacher := models.Session{TeacherID: "teacher1", Role: models.RoleTeacher}
	admin := models.Session{TeacherID: "admin", Role: models.RoleAdmin}

	ok, err := svc.CanAccessSubject(context.Background(), teacher, "Math")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanAccessSubject(context.Background(), teacher, "Science")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanAccessSubject(context.Background(), admin, "Science")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthServiceMe(t *testing.T) {
	_, svc := newAuthFixture(t)

	profile, err := svc.Me(context.Background(), models.Session{TeacherID: "teacher1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Math"}, profile.Subjects)

	_, err = svc.Me(context.Background(), models.Session{TeacherID: "ghost"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestAuthServiceCreateTeacher(t *testing.T) {
	store, svc := newAuthFixture(t)

	profile, err := svc.CreateTeacher(context.Background(), dto.CreateTeacherRequest{
		ID: "teacher2", Name: "Jose Rizal", Email: "Jose@Example.com", Password: "longpassword", Subjects: []string{"Science"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, profile.Role)
	assert.Equal(t, "jose@example.com", profile.Email)
	assert.Equal(t, []string{"Science"}, profile.Subjects)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.teachers["teacher2"].PasswordHash), []byte("longpassword")))

	_, err = svc.CreateTeacher(context.Background(), dto.CreateTeacherRequest{
		ID: "teacher2", Name: "Again", Email: "again@example.com", Password: "longpassword",
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))

	_, err = svc.CreateTeacher(context.Background(), dto.CreateTeacherRequest{
		ID: "teacher3", Name: "Unknown Subject", Email: "t3@example.com", Password: "longpassword", Subjects: []string{"Art"},
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
	assert.NotContains(t, store.teachers, "teacher3")
}
