package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

const (
	systemStatsKey     = "dashboard:system"
	subjectStatsPrefix = "dashboard:subject:"
)

type systemStatsReader interface {
	SystemCounts(ctx context.Context) (*dto.SystemStats, error)
}

type subjectStatsGradeReader interface {
	CountByStatus(ctx context.Context, subject string) (map[models.GradeStatus]int, error)
	AverageFinal(ctx context.Context, subject string) (*float64, error)
}

type subjectStatsAttendanceReader interface {
	PresentRate(ctx context.Context, subject string) (*float64, error)
}

type dashboardSubjectReader interface {
	FindByName(ctx context.Context, q sqlx.ExtContext, name string) (*models.Subject, error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Stats      systemStatsReader
	Subjects   dashboardSubjectReader
	Grades     subjectStatsGradeReader
	Attendance subjectStatsAttendanceReader
	Cache      *CacheService
	CacheTTL   time.Duration
	Logger     *zap.Logger
}

// DashboardService composes system and per-subject summaries.
type DashboardService struct {
	stats      systemStatsReader
	subjects   dashboardSubjectReader
	grades     subjectStatsGradeReader
	attendance subjectStatsAttendanceReader
	cache      *CacheService
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		stats:      params.Stats,
		subjects:   params.Subjects,
		grades:     params.Grades,
		attendance: params.Attendance,
		cache:      params.Cache,
		cacheTTL:   ttl,
		logger:     logger,
	}
}

// SystemStats returns record counts and whether they came from cache.
func (s *DashboardService) SystemStats(ctx context.Context) (*dto.SystemStats, bool, error) {
	var cached dto.SystemStats
	if s.cache.Get(ctx, systemStatsKey, &cached) {
		return &cached, true, nil
	}
	stats, err := s.stats.SystemCounts(ctx)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to load system stats")
	}
	s.cache.Set(ctx, systemStatsKey, stats, s.cacheTTL)
	return stats, false, nil
}

// SubjectStats summarises enrollment, grades and attendance for a subject.
// The class average covers graded students only.
func (s *DashboardService) SubjectStats(ctx context.Context, subject string) (*dto.SubjectStats, bool, error) {
	key := subjectStatsPrefix + subject
	var cached dto.SubjectStats
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}
	if _, err := s.subjects.FindByName(ctx, nil, subject); err != nil {
		return nil, false, lookupError(err, fmt.Sprintf("subject %q not found", subject), "failed to load subject")
	}

	counts, err := s.grades.CountByStatus(ctx, subject)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to count grades")
	}
	average, err := s.grades.AverageFinal(ctx, subject)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to average grades")
	}
	rate, err := s.attendance.PresentRate(ctx, subject)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to compute attendance rate")
	}
	if average != nil {
		rounded := RoundGrade(*average)
		average = &rounded
	}

	stats := &dto.SubjectStats{
		Subject:        subject,
		Passing:        counts[models.GradeStatusPassing],
		Failing:        counts[models.GradeStatusFailing],
		Dropped:        counts[models.GradeStatusDropped],
		Ungraded:       counts[models.GradeStatusUngraded],
		ClassAverage:   average,
		AttendanceRate: rate,
	}
	stats.Enrolled = stats.Passing + stats.Failing + stats.Dropped + stats.Ungraded
	s.cache.Set(ctx, key, stats, s.cacheTTL)
	return stats, false, nil
}
