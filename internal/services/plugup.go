package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/exports"
	"github.com/localnerve/gigcrew/internal/models"
	"github.com/localnerve/gigcrew/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/hints"
)

// PlugUpRowResult represents the API output format of a sheet row
type PlugUpRowResult struct {
	RowID      string `json:"rowId"`
	OrderIndex int    `json:"orderIndex"`
	Label      string `json:"label"`
	Value      string `json:"value"`
}

// PlugUpSheetResult represents the API output format of a sheet.
// Row ids are reissued on every write.
type PlugUpSheetResult struct {
	JobID              string            `json:"jobId"`
	Rows               []PlugUpRowResult `json:"rows"`
	LastEditedByUserID *string           `json:"lastEditedByUserId,omitempty"`
	LastEditedAt       *time.Time        `json:"lastEditedAt,omitempty"`
	Version            uint64            `json:"version"`
}

// PlugUpRowInput is one proposed row. RowID is accepted for client
// round-tripping but never preserved.
type PlugUpRowInput struct {
	RowID      *string `json:"rowId,omitempty" validate:"omitempty,uuid"`
	OrderIndex *int    `json:"orderIndex" validate:"required,gte=0"`
	Label      *string `json:"label,omitempty"`
	Value      *string `json:"value,omitempty"`
}

// ReplacePlugUpInput is the full row set of a write. Rows must be present and
// an empty array clears the sheet. BaseVersion, when set, rejects the write
// if the sheet changed since it was read.
type ReplacePlugUpInput struct {
	Rows        types.Rows[PlugUpRowInput] `json:"rows" validate:"required,dive"`
	BaseVersion *types.Version             `json:"baseVersion,omitempty"`
}

// PlugUpExportResult represents the API output format of a PDF export
type PlugUpExportResult struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	PDFBase64   string `json:"pdfBase64"`
}

// GetPlugUpSheet returns a job's sheet, creating it on first access.
func GetPlugUpSheet(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string) (*PlugUpSheetResult, error) {
	if err := AssertCanViewJob(ctx, db, id, jobID); err != nil {
		return nil, err
	}
	if _, err := findJob(ctx, db, jobID); err != nil {
		return nil, err
	}
	if err := ensurePlugUpSheet(ctx, db, jobID); err != nil {
		return nil, err
	}
	return readPlugUpSheet(ctx, db, jobID)
}

// ReplacePlugUpSheet swaps the sheet's whole row set in one transaction and
// returns the sheet as persisted. Without a base version the last committed
// write wins.
func ReplacePlugUpSheet(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string, input ReplacePlugUpInput) (*PlugUpSheetResult, error) {
	if err := AssertCanEditPlugUp(ctx, db, id, jobID); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if _, err := findJob(ctx, db, jobID); err != nil {
		return nil, err
	}
	if err := ensurePlugUpSheet(ctx, db, jobID); err != nil {
		return nil, err
	}

	rows := make([]models.PlugUpRow, len(input.Rows))
	for i, in := range input.Rows {
		rows[i] = models.PlugUpRow{
			SheetID:    jobID,
			OrderIndex: *in.OrderIndex,
			Position:   i,
			Label:      deref(in.Label),
			Value:      deref(in.Value),
		}
	}

	now := time.Now().UTC()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stamp := tx.Model(&models.PlugUpSheet{}).Where("job_id = ?", jobID)
		if input.BaseVersion != nil {
			stamp = stamp.Where("version = ?", uint64(*input.BaseVersion))
		}
		result := stamp.Updates(map[string]any{
			"last_edited_by_user_id": id.UserID,
			"last_edited_at":         now,
			"version":                gorm.Expr("version + ?", 1),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if input.BaseVersion != nil {
				return types.VersionConflict()
			}
			return types.NotFound("Plug-up sheet not found")
		}

		if err := tx.Where("sheet_id = ?", jobID).Delete(&models.PlugUpRow{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var ce *types.CustomError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, fmt.Errorf("replace plug-up rows: %w", err)
	}

	RecordAudit(ctx, db, AuditEntry{
		JobID:       jobID,
		ActorUserID: id.UserID,
		EventType:   models.AuditPlugUpEdited,
		Summary:     fmt.Sprintf("Plug-up updated (%d rows)", len(rows)),
		Details:     map[string]int{"rows": len(rows)},
	})

	return readPlugUpSheet(ctx, db, jobID)
}

// ExportPlugUpPDF renders the sheet to a single page PDF for a caller with
// read access and records the export.
func ExportPlugUpPDF(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string) (*PlugUpExportResult, error) {
	if err := AssertCanViewJob(ctx, db, id, jobID); err != nil {
		return nil, err
	}

	job, pdf, rowCount, err := RenderPlugUpPDF(ctx, db, jobID)
	if err != nil {
		return nil, err
	}

	RecordAudit(ctx, db, AuditEntry{
		JobID:       jobID,
		ActorUserID: id.UserID,
		EventType:   models.AuditPlugUpExported,
		Summary:     fmt.Sprintf("Plug-up exported (%d rows)", rowCount),
		Details:     map[string]int{"rows": rowCount},
	})

	return &PlugUpExportResult{
		FileName:    PlugUpFileName(job.Reference),
		ContentType: "application/pdf",
		PDFBase64:   base64.StdEncoding.EncodeToString(pdf),
	}, nil
}

// RenderPlugUpPDF loads a job's sheet and renders it without any permission
// check. It returns the job, the document and the number of rows printed.
func RenderPlugUpPDF(ctx context.Context, db *gorm.DB, jobID string) (*models.Job, []byte, int, error) {
	job, err := findJob(ctx, db, jobID)
	if err != nil {
		return nil, nil, 0, err
	}
	if err := ensurePlugUpSheet(ctx, db, jobID); err != nil {
		return nil, nil, 0, err
	}
	sheet, err := readPlugUpSheet(ctx, db, jobID)
	if err != nil {
		return nil, nil, 0, err
	}

	rows := make([]exports.PlugUpRow, len(sheet.Rows))
	for i, r := range sheet.Rows {
		rows[i] = exports.PlugUpRow{OrderIndex: r.OrderIndex, Label: r.Label, Value: r.Value}
	}
	lines := exports.PlugUpLines(exports.PlugUpJob{
		Reference: job.Reference,
		Name:      job.Name,
		StartDate: job.StartDate,
		EndDate:   job.EndDate,
	}, rows)

	return job, exports.SinglePagePDF(lines), len(rows), nil
}

// PlugUpFileName names an exported sheet after the job reference.
func PlugUpFileName(reference string) string {
	return "plugup-" + reference + ".pdf"
}

// ensurePlugUpSheet creates the job's sheet if it does not exist yet.
func ensurePlugUpSheet(ctx context.Context, db *gorm.DB, jobID string) error {
	sheet := models.PlugUpSheet{JobID: jobID}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "job_id"}}, DoNothing: true}).
		Create(&sheet).Error
	if err != nil {
		return fmt.Errorf("ensure plug-up sheet: %w", err)
	}
	return nil
}

func readPlugUpSheet(ctx context.Context, db *gorm.DB, jobID string) (*PlugUpSheetResult, error) {
	var sheet models.PlugUpSheet
	if err := db.WithContext(ctx).Where("job_id = ?", jobID).Take(&sheet).Error; err != nil {
		return nil, fmt.Errorf("read plug-up sheet: %w", err)
	}

	var rows []models.PlugUpRow
	err := db.WithContext(ctx).
		Clauses(hints.CommentBefore("select", "plugup_rows")).
		Where("sheet_id = ?", jobID).
		Order("order_index asc, position asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("read plug-up rows: %w", err)
	}

	result := &PlugUpSheetResult{
		JobID:              sheet.JobID,
		Rows:               make([]PlugUpRowResult, 0, len(rows)),
		LastEditedByUserID: sheet.LastEditedByUserID,
		LastEditedAt:       sheet.LastEditedAt,
		Version:            sheet.Version,
	}
	for _, r := range rows {
		result.Rows = append(result.Rows, PlugUpRowResult{
			RowID:      r.RowID,
			OrderIndex: r.OrderIndex,
			Label:      r.Label,
			Value:      r.Value,
		})
	}
	return result, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
