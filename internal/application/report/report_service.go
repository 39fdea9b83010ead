package report

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/report"
	"go.uber.org/zap"
)

// TopProductsLimit is the number of best sellers listed in the monthly report
const TopProductsLimit = 5

// AdminMailer delivers a message to the store administrators
type AdminMailer interface {
	MailAdmins(ctx context.Context, subject, body string) error
}

// MonthlyReportRequest selects the month of an on-demand report
type MonthlyReportRequest struct {
	Year  int  `json:"year" binding:"required,min=2000,max=9999" example:"2024"`
	Month int  `json:"month" binding:"required,min=1,max=12" example:"3"`
	Email bool `json:"email"`
}

// ReportService builds the monthly store report
type ReportService struct {
	repo     report.ReportRepository
	mailer   AdminMailer
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewReportService creates a new ReportService. loc is the timezone months are
// cut in and defaults to UTC.
func NewReportService(repo report.ReportRepository, mailer AdminMailer, loc *time.Location, logger *zap.Logger) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		repo:     repo,
		mailer:   mailer,
		location: loc,
		now:      time.Now,
		logger:   logger,
	}
}

// Generate computes the report for a period
func (s *ReportService) Generate(ctx context.Context, p report.Period) (*report.MonthlyReport, error) {
	summary, err := s.repo.OrderSummary(ctx, p)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.PaymentStatusCounts(ctx, p)
	if err != nil {
		return nil, err
	}
	newCustomers, err := s.repo.NewCustomers(ctx, p)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopProducts(ctx, p, TopProductsLimit)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int64, len(counts))
	for code, n := range counts {
		byStatus[order.PaymentStatus(code).Label()] = n
	}

	r := &report.MonthlyReport{
		Period:          p,
		OrdersCount:     summary.OrdersCount,
		ItemsSold:       summary.ItemsSold,
		Revenue:         summary.Revenue,
		ByPaymentStatus: byStatus,
		NewCustomers:    newCustomers,
		TopProducts:     top,
		GeneratedAt:     s.now(),
	}
	r.ComputeAverage()
	return r, nil
}

// SendPreviousMonth generates last month's report and mails it to the admins.
// It is the scheduled monthly job.
func (s *ReportService) SendPreviousMonth(ctx context.Context) error {
	p := report.PreviousMonth(s.now().In(s.location))
	r, err := s.Generate(ctx, p)
	if err != nil {
		return err
	}
	return s.send(ctx, r)
}

// RunForMonth generates the report of an arbitrary month, mailing it when asked
func (s *ReportService) RunForMonth(ctx context.Context, req MonthlyReportRequest) (*report.MonthlyReport, error) {
	p := report.MonthPeriod(req.Year, time.Month(req.Month), s.location)
	r, err := s.Generate(ctx, p)
	if err != nil {
		return nil, err
	}
	if req.Email {
		if err := s.send(ctx, r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (s *ReportService) send(ctx context.Context, r *report.MonthlyReport) error {
	if err := s.mailer.MailAdmins(ctx, r.Subject(), r.Text()); err != nil {
		s.logger.Error("failed to mail monthly report",
			zap.String("period", r.Period.Label()), zap.Error(err))
		return err
	}
	s.logger.Info("monthly report sent",
		zap.String("period", r.Period.Label()),
		zap.Int64("orders", r.OrdersCount),
		zap.String("revenue", r.Revenue.StringFixed(2)))
	return nil
}
