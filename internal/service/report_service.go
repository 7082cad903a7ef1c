package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nurpe/gigpay/internal/config"
	"github.com/nurpe/gigpay/internal/model"
)

type ReportRepository interface {
	BestProfession(ctx context.Context, from, to time.Time) (*model.ProfessionEarnings, error)
	BestClients(ctx context.Context, from, to time.Time, limit int) ([]model.ClientEarnings, error)
}

type ExcelGenerator interface {
	Generate(report model.BestClientsReport) ([]byte, error)
}

type ReportService struct {
	reports      ReportRepository
	excel        ExcelGenerator
	defaultFrom  time.Time
	defaultLimit int
}

type ReportWindow struct {
	From  time.Time
	To    time.Time
	Limit int
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func NewReportService(reports ReportRepository, excel ExcelGenerator, cfg *config.Config) *ReportService {
	return &ReportService{
		reports:      reports,
		excel:        excel,
		defaultFrom:  cfg.Reports.DefaultFrom,
		defaultLimit: cfg.Reports.DefaultLimit,
	}
}

// resolveWindow fills in the defaults: a fixed historical date when from is
// missing, the current time when to is missing.
func (s *ReportService) resolveWindow(window ReportWindow) (ReportWindow, error) {
	if window.From.IsZero() {
		window.From = s.defaultFrom
	}
	if window.To.IsZero() {
		window.To = time.Now().UTC()
	}
	if window.From.After(window.To) {
		return ReportWindow{}, fmt.Errorf("%w: from must not be after to", ErrInvalidInput)
	}
	if window.Limit <= 0 {
		window.Limit = s.defaultLimit
	}
	return window, nil
}

func (s *ReportService) BestProfession(ctx context.Context, window ReportWindow) (*model.ProfessionEarnings, error) {
	window, err := s.resolveWindow(window)
	if err != nil {
		return nil, err
	}
	return s.reports.BestProfession(ctx, window.From, window.To)
}

func (s *ReportService) BestClients(ctx context.Context, window ReportWindow) ([]model.ClientEarnings, error) {
	window, err := s.resolveWindow(window)
	if err != nil {
		return nil, err
	}
	return s.reports.BestClients(ctx, window.From, window.To, window.Limit)
}

// ExportBestClients renders the best-clients report as a spreadsheet.
func (s *ReportService) ExportBestClients(ctx context.Context, window ReportWindow) (*ExportResult, error) {
	window, err := s.resolveWindow(window)
	if err != nil {
		return nil, err
	}

	clients, err := s.reports.BestClients(ctx, window.From, window.To, window.Limit)
	if err != nil {
		return nil, err
	}

	report := model.BestClientsReport{
		PeriodStart: window.From,
		PeriodEnd:   window.To,
		Clients:     clients,
	}
	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("best-clients-%s-%s.xlsx",
		window.From.Format("20060102"), window.To.Format("20060102"))
	return &ExportResult{FileName: fileName, Content: content}, nil
}
