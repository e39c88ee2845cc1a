package services

import (
	"context"
	"fmt"
	"time"

	"classbooking_go/database"
	"classbooking_go/models"
	"classbooking_go/storage"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SheetArchiveService exports closed period partitions as xlsx workbooks and
// uploads them to S3, keeping an archive trail row per upload.
type SheetArchiveService struct {
	store   *GormSlotStore
	storage *storage.StorageService
	cron    *cron.Cron
}

// NewSheetArchiveService creates the archive service. S3 failures at
// construction time disable uploads but keep the scheduler alive so the
// problem surfaces in logs rather than at 02:00.
func NewSheetArchiveService(store *GormSlotStore) *SheetArchiveService {
	storageService, err := storage.NewStorageService()
	if err != nil {
		logrus.WithError(err).Warn("Sheet archive: S3 storage unavailable")
		storageService = nil
	}
	return &SheetArchiveService{
		store:   store,
		storage: storageService,
		cron:    cron.New(),
	}
}

// StartScheduler archives the previous month's sheets nightly at 02:30.
func (s *SheetArchiveService) StartScheduler() {
	_, err := s.cron.AddFunc("30 2 * * *", func() {
		if err := s.ArchivePreviousPeriod(context.Background()); err != nil {
			logrus.WithError(err).Error("Sheet archive run failed")
		}
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to schedule sheet archive job")
		return
	}
	s.cron.Start()
	logrus.Info("Sheet archive scheduler started")
}

// Stop halts the scheduler.
func (s *SheetArchiveService) Stop() {
	s.cron.Stop()
}

// ArchivePreviousPeriod exports last month's partition for every location.
func (s *SheetArchiveService) ArchivePreviousPeriod(ctx context.Context) error {
	lastMonth := time.Now().AddDate(0, -1, 0)
	period, err := PeriodKey(lastMonth.Format("2006-01-02"))
	if err != nil {
		return err
	}

	var firstErr error
	for _, location := range Locations() {
		if err := s.ArchivePeriod(ctx, period, location); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"period":   period,
				"location": location,
			}).Error("Failed to archive period sheet")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ArchivePeriod exports one period/location workbook and uploads it.
func (s *SheetArchiveService) ArchivePeriod(ctx context.Context, period, location string) error {
	if s.storage == nil {
		// No trail row: a nightly no-op would otherwise insert a failed row
		// per location per run.
		return fmt.Errorf("S3 storage unavailable")
	}

	rows, err := s.store.ListPeriod(ctx, period, location)
	if err != nil {
		return err
	}

	workbook, err := BuildPeriodWorkbook(period, location, rows)
	if err != nil {
		return err
	}
	buf, err := workbook.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to render workbook: %v", err)
	}

	archive := models.SheetArchive{
		Period:   period,
		Location: location,
		FileName: PeriodFileName(period, location),
		RowCount: len(rows),
		FileSize: int64(buf.Len()),
		Status:   "pending",
	}
	if err := database.DB.WithContext(ctx).Create(&archive).Error; err != nil {
		return fmt.Errorf("failed to record sheet archive: %v", err)
	}

	key, err := s.storage.UploadWorkbook(archive.FileName, buf.Bytes())
	if err != nil {
		archive.Status = "failed"
		archive.Error = err.Error()
		database.DB.Save(&archive)
		return err
	}

	archive.S3Key = key
	archive.Status = "completed"
	if err := database.DB.Save(&archive).Error; err != nil {
		return fmt.Errorf("failed to finalise sheet archive: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"period":   period,
		"location": location,
		"s3_key":   key,
		"rows":     len(rows),
	}).Info("Period sheet archived")
	return nil
}

// PeriodFileName renders the workbook file name for one period/location.
func PeriodFileName(period, location string) string {
	return sanitizeFileName(fmt.Sprintf("%s-%s", period, location)) + ".xlsx"
}

func sanitizeFileName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '/' || r == '\\' {
			r = '-'
		}
		out = append(out, r)
	}
	return string(out)
}
