package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

type authTeacherStore interface {
	FindByID(ctx context.Context, q sqlx.ExtContext, id string) (*models.Teacher, error)
	ListSubjects(ctx context.Context, teacherID string) ([]string, error)
	HasSubject(ctx context.Context, teacherID, subject string) (bool, error)
	Create(ctx context.Context, q sqlx.ExtContext, teacher *models.Teacher) error
	AddSubject(ctx context.Context, q sqlx.ExtContext, teacherID, subject string) (bool, error)
}

type authSubjectReader interface {
	FindByName(ctx context.Context, q sqlx.ExtContext, name string) (*models.Subject, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	BcryptCost        int
}

// AuthService authenticates teachers and resolves their subject access.
type AuthService struct {
	tx        txRunner
	teachers  authTeacherStore
	subjects  authSubjectReader
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(tx txRunner, teachers authTeacherStore, subjects authSubjectReader, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		tx:        tx,
		teachers:  teachers,
		subjects:  subjects,
		validator: validatorOrDefault(validate),
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Login authenticates a teacher and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	teacher, err := s.teachers.FindByID(ctx, nil, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid teacher id or password")
		}
		return nil, appErrors.Internal(err, "failed to fetch teacher")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("teacher_id", req.TeacherID))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid teacher id or password")
	}

	issuedAt := s.now()
	token, err := s.generateAccessToken(teacher, issuedAt)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create access token")
	}

	s.logger.Info("teacher logged in", zap.String("teacher_id", teacher.ID))
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		Teacher:     models.Session{TeacherID: teacher.ID, Name: teacher.Name, Role: teacher.Role},
		IssuedAt:    issuedAt,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.TeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Me returns the profile of the authenticated teacher.
func (s *AuthService) Me(ctx context.Context, session models.Session) (*models.TeacherProfile, error) {
	teacher, err := s.teachers.FindByID(ctx, nil, session.TeacherID)
	if err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	subjects, err := s.teachers.ListSubjects(ctx, teacher.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load teacher subjects")
	}
	if subjects == nil {
		subjects = []string{}
	}
	return &models.TeacherProfile{Teacher: *teacher, Subjects: subjects}, nil
}

// CanAccessSubject reports whether the session may work with the subject.
// Admins may work with every subject.
func (s *AuthService) CanAccessSubject(ctx context.Context, session models.Session, subject string) (bool, error) {
	if session.IsAdmin() {
		return true, nil
	}
	ok, err := s.teachers.HasSubject(ctx, session.TeacherID, subject)
	if err != nil {
		return false, appErrors.Internal(err, "failed to check subject access")
	}
	return ok, nil
}

// CreateTeacher registers a teacher account and links the given subjects.
func (s *AuthService) CreateTeacher(ctx context.Context, req dto.CreateTeacherRequest) (*models.TeacherProfile, error) {
	req.ID = strings.TrimSpace(req.ID)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	role := models.RoleTeacher
	if req.Role != "" {
		role = models.UserRole(req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	now := s.now()
	teacher := models.Teacher{
		ID:           req.ID,
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	subjects := []string{}
	err = s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		if _, err := s.teachers.FindByID(ctx, q, teacher.ID); err == nil {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("teacher %s already exists", teacher.ID))
		} else if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Internal(err, "failed to check teacher")
		}
		if err := s.teachers.Create(ctx, q, &teacher); err != nil {
			return appErrors.Internal(err, "failed to create teacher")
		}
		for _, subject := range req.Subjects {
			if _, err := s.subjects.FindByName(ctx, q, subject); err != nil {
				return lookupError(err, fmt.Sprintf("subject %q not found", subject), "failed to load subject")
			}
			changed, err := s.teachers.AddSubject(ctx, q, teacher.ID, subject)
			if err != nil {
				return appErrors.Internal(err, "failed to assign subject")
			}
			if changed {
				subjects = append(subjects, subject)
			}
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to create teacher")
	}
	s.logger.Info("teacher created", zap.String("teacher_id", teacher.ID), zap.String("role", string(role)))
	return &models.TeacherProfile{Teacher: teacher, Subjects: subjects}, nil
}

func (s *AuthService) generateAccessToken(teacher *models.Teacher, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		TeacherID: teacher.ID,
		Name:      teacher.Name,
		Role:      teacher.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   teacher.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}
