package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SimbaKVis/backend-main/internal/model"
	"github.com/SimbaKVis/backend-main/internal/repository"
)

// maxReportDays 单次导出的最大天数
const maxReportDays = 366

// ── 导出模块业务错误 ──

var (
	ErrExportInvalidRange = errors.New("导出日期范围无效")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
//   - 排班报表导出为 Excel (.xlsx)，含班次与加班两个 Sheet
//   - 个人班次导出为 iCalendar (.ics)，供日历客户端订阅
type ExportService interface {
	// ExportSchedule 导出 [from, to] 日期范围内的排班报表
	ExportSchedule(ctx context.Context, from, to time.Time) (*bytes.Buffer, string, error)
	// UserCalendar 导出用户的班次日历
	UserCalendar(ctx context.Context, userID, callerID, callerRole string) ([]byte, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportSchedule — 导出排班报表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Shifts"：按开始时间排序的班次明细
//   - Sheet "Overtime"：班次落在范围内的加班申请，附小时数
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportSchedule(ctx context.Context, from, to time.Time) (*bytes.Buffer, string, error) {
	start := truncateDay(from)
	end := truncateDay(to).AddDate(0, 0, 1)
	if !end.After(start) || end.Sub(start) > maxReportDays*24*time.Hour {
		return nil, "", ErrExportInvalidRange
	}

	shifts, err := s.repo.Shift.ListInRange(ctx, start, end)
	if err != nil {
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, "", err
	}
	overtime, err := s.repo.Overtime.ListByShiftRange(ctx, start, end)
	if err != nil {
		s.logger.Error("查询加班申请失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── Sheet 1: 班次 ──
	const shiftSheet = "Shifts"
	if err := f.SetSheetName("Sheet1", shiftSheet); err != nil {
		s.logger.Error("初始化工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	writeHeader(f, shiftSheet, headerStyle,
		"Date", "Start", "End", "Minutes", "Shift Type", "Category", "Staff", "Email", "Location")
	for i, sh := range shifts {
		row := i + 2
		typeName, category := "", ""
		if sh.ShiftType != nil {
			typeName = sh.ShiftType.ShiftName
			if sh.ShiftType.ShiftCategory != nil {
				category = *sh.ShiftType.ShiftCategory
			}
		}
		staff, email := "", ""
		if sh.User != nil {
			staff = sh.User.FirstName + " " + sh.User.LastName
			email = sh.User.EmailAddress
		}
		f.SetSheetRow(shiftSheet, cell("A", row), &[]interface{}{
			sh.ShiftStartTime.UTC().Format("2006-01-02"),
			sh.ShiftStartTime.UTC().Format("15:04"),
			sh.ShiftEndTime.UTC().Format("15:04"),
			sh.ShiftDuration,
			typeName,
			category,
			staff,
			email,
			sh.ShiftLocation,
		})
	}
	f.SetColWidth(shiftSheet, "A", "A", 12)
	f.SetColWidth(shiftSheet, "E", "I", 20)

	// ── Sheet 2: 加班 ──
	const overtimeSheet = "Overtime"
	if _, err := f.NewSheet(overtimeSheet); err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	writeHeader(f, overtimeSheet, headerStyle,
		"Date", "Staff", "Email", "Minutes", "Hours", "Status")
	var approvedMinutes int
	for i, ot := range overtime {
		row := i + 2
		date := ""
		if ot.Shift != nil {
			date = ot.Shift.ShiftStartTime.UTC().Format("2006-01-02")
		}
		staff, email := "", ""
		if ot.User != nil {
			staff = ot.User.FirstName + " " + ot.User.LastName
			email = ot.User.EmailAddress
		}
		hours, _ := minutesToHours(ot.OvertimeDuration).Float64()
		f.SetSheetRow(overtimeSheet, cell("A", row), &[]interface{}{
			date, staff, email, ot.OvertimeDuration, hours, ot.Status,
		})
		if ot.Status == model.OvertimeStatusApproved {
			approvedMinutes += ot.OvertimeDuration
		}
	}
	// 汇总行：已批准的加班小时数
	summaryRow := len(overtime) + 3
	approvedHours, _ := minutesToHours(approvedMinutes).Float64()
	f.SetCellValue(overtimeSheet, cell("A", summaryRow), "Approved total")
	f.SetCellValue(overtimeSheet, cell("D", summaryRow), approvedMinutes)
	f.SetCellValue(overtimeSheet, cell("E", summaryRow), approvedHours)
	f.SetColWidth(overtimeSheet, "A", "C", 20)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("schedule_%s_%s.xlsx", start.Format("20060102"), truncateDay(to).Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// UserCalendar — 导出个人班次为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) UserCalendar(ctx context.Context, userID, callerID, callerRole string) ([]byte, string, error) {
	if callerRole != model.RoleAdmin && callerID != userID {
		return nil, "", ErrNoPermission
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, "", err
	}

	shifts, err := s.repo.Shift.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户班次失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shift-scheduler//shifts//EN")
	cal.SetXWRCalName(fmt.Sprintf("Shifts - %s %s", user.FirstName, user.LastName))

	for _, sh := range shifts {
		event := cal.AddEvent(sh.ShiftID + "@shift-scheduler")
		event.SetDtStampTime(sh.UpdatedDate.UTC())
		event.SetCreatedTime(sh.CreatedDate.UTC())
		event.SetModifiedAt(sh.UpdatedDate.UTC())
		event.SetStartAt(sh.ShiftStartTime.UTC())
		event.SetEndAt(sh.ShiftEndTime.UTC())
		summary := "Shift"
		if sh.ShiftType != nil {
			summary = sh.ShiftType.ShiftName
		}
		event.SetSummary(summary)
		if sh.ShiftLocation != "" {
			event.SetLocation(sh.ShiftLocation)
		}
		event.SetDescription(fmt.Sprintf("Duration: %d minutes", sh.ShiftDuration))
	}

	return []byte(cal.Serialize()), fmt.Sprintf("shifts_%s.ics", userID), nil
}

// ── 辅助函数 ──

func writeHeader(f *excelize.File, sheet string, style int, titles ...string) {
	values := make([]interface{}, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	f.SetSheetRow(sheet, "A1", &values)
	f.SetCellStyle(sheet, "A1", cell(colName(len(titles)-1), 1), style)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
