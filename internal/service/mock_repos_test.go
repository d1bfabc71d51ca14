package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/SimbaKVis/backend-main/internal/model"
	"github.com/SimbaKVis/backend-main/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	// inUse 模拟被外键引用的用户
	inUse map[string]bool
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User), inUse: make(map[string]bool)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.EmailAddress == user.EmailAddress {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.EmailAddress == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// Update 按列名写入，模拟 GORM Updates(map)
func (m *mockUserRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	u, ok := m.users[id]
	if !ok {
		return nil
	}
	cp := *u
	for col, v := range fields {
		switch col {
		case "firstname":
			cp.FirstName = v.(string)
		case "lastname":
			cp.LastName = v.(string)
		case "emailaddress":
			cp.EmailAddress = v.(string)
		case "role":
			cp.Role = v.(string)
		case "passwordhash":
			cp.PasswordHash = v.(string)
		case "eligibleshifts":
			cp.EligibleShifts = v.(model.StringList)
		case "updateddate":
			cp.UpdatedDate = v.(time.Time)
		default:
			return fmt.Errorf("unknown column %q", col)
		}
	}
	m.users[id] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	if m.inUse[id] {
		return gorm.ErrForeignKeyViolated
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	result := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedDate.Before(result[j].CreatedDate) })
	return result, nil
}

// ── Mock ShiftTypeRepository ──

type mockShiftTypeRepo struct {
	types map[string]*model.ShiftType
	seq   int
}

func newMockShiftTypeRepo() *mockShiftTypeRepo {
	return &mockShiftTypeRepo{types: make(map[string]*model.ShiftType)}
}

func (m *mockShiftTypeRepo) Create(_ context.Context, st *model.ShiftType) error {
	if st.ShiftTypeID == "" {
		m.seq++
		st.ShiftTypeID = fmt.Sprintf("type-%03d", m.seq)
	}
	m.types[st.ShiftTypeID] = st
	return nil
}

func (m *mockShiftTypeRepo) GetByID(_ context.Context, id string) (*model.ShiftType, error) {
	if st, ok := m.types[id]; ok {
		return st, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftTypeRepo) List(_ context.Context) ([]model.ShiftType, error) {
	result := make([]model.ShiftType, 0, len(m.types))
	for _, st := range m.types {
		result = append(result, *st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ShiftName < result[j].ShiftName })
	return result, nil
}

func (m *mockShiftTypeRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	st, ok := m.types[id]
	if !ok {
		return nil
	}
	cp := *st
	for col, v := range fields {
		switch col {
		case "shiftname":
			cp.ShiftName = v.(string)
		case "defaultduration":
			cp.DefaultDuration = v.(int)
		case "shiftcategory":
			category := v.(string)
			cp.ShiftCategory = &category
		case "updateddate":
			cp.UpdatedDate = v.(time.Time)
		default:
			return fmt.Errorf("unknown column %q", col)
		}
	}
	m.types[id] = &cp
	return nil
}

func (m *mockShiftTypeRepo) Delete(_ context.Context, id string) error {
	delete(m.types, id)
	return nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts map[string]*model.Shift
	types  *mockShiftTypeRepo
	users  *mockUserRepo
	// referenced 模拟被加班申请引用的班次
	referenced map[string]bool
	// locked 记录加锁读取的顺序
	locked []string
	seq    int
}

func newMockShiftRepo(types *mockShiftTypeRepo, users *mockUserRepo) *mockShiftRepo {
	return &mockShiftRepo{
		shifts:     make(map[string]*model.Shift),
		types:      types,
		users:      users,
		referenced: make(map[string]bool),
	}
}

func (m *mockShiftRepo) withType(sh *model.Shift) *model.Shift {
	cp := *sh
	if st, ok := m.types.types[sh.ShiftTypeID]; ok {
		cp.ShiftType = st
	}
	return &cp
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		m.seq++
		shift.ShiftID = fmt.Sprintf("shift-%03d", m.seq)
	}
	cp := *shift
	m.shifts[shift.ShiftID] = &cp
	return nil
}

func (m *mockShiftRepo) CreateBatch(ctx context.Context, shifts []model.Shift) error {
	for i := range shifts {
		if err := m.Create(ctx, &shifts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if sh, ok := m.shifts[id]; ok {
		return m.withType(sh), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) GetByIDForUpdate(_ context.Context, id string) (*model.Shift, error) {
	if sh, ok := m.shifts[id]; ok {
		m.locked = append(m.locked, id)
		cp := *sh
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	sh, ok := m.shifts[id]
	if !ok {
		return nil
	}
	for col, v := range fields {
		switch col {
		case "userid":
			sh.UserID = v.(string)
		case "assignedby":
			sh.AssignedBy = v.(string)
		case "shifttypeid":
			sh.ShiftTypeID = v.(string)
		case "shiftlocation":
			sh.ShiftLocation = v.(string)
		case "shiftstarttime":
			sh.ShiftStartTime = v.(time.Time)
		case "shiftendtime":
			sh.ShiftEndTime = v.(time.Time)
		case "shiftduration":
			sh.ShiftDuration = v.(int)
		case "updateddate":
			sh.UpdatedDate = v.(time.Time)
		default:
			return fmt.Errorf("unknown column %q", col)
		}
	}
	return nil
}

func (m *mockShiftRepo) UpdateOwner(_ context.Context, id, userID string, at time.Time) error {
	sh, ok := m.shifts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sh.UserID = userID
	sh.UpdatedDate = at
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string) error {
	if m.referenced[id] {
		return gorm.ErrForeignKeyViolated
	}
	delete(m.shifts, id)
	return nil
}

func (m *mockShiftRepo) ListByUser(_ context.Context, userID string) ([]model.Shift, error) {
	var result []model.Shift
	for _, sh := range m.shifts {
		if sh.UserID == userID {
			result = append(result, *m.withType(sh))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ShiftStartTime.After(result[j].ShiftStartTime) })
	return result, nil
}

func (m *mockShiftRepo) ListInRange(_ context.Context, from, to time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, sh := range m.shifts {
		if !sh.ShiftStartTime.Before(from) && sh.ShiftStartTime.Before(to) {
			cp := m.withType(sh)
			cp.User = m.users.users[sh.UserID]
			result = append(result, *cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ShiftStartTime.Before(result[j].ShiftStartTime) })
	return result, nil
}

func (m *mockShiftRepo) CountByShiftType(_ context.Context, shiftTypeID string) (int64, error) {
	var n int64
	for _, sh := range m.shifts {
		if sh.ShiftTypeID == shiftTypeID {
			n++
		}
	}
	return n, nil
}

// ── Mock OvertimeRepository ──

type mockOvertimeRepo struct {
	requests map[string]*model.OvertimeRequest
	shifts   *mockShiftRepo
	users    *mockUserRepo
	seq      int
}

func newMockOvertimeRepo(shifts *mockShiftRepo, users *mockUserRepo) *mockOvertimeRepo {
	return &mockOvertimeRepo{
		requests: make(map[string]*model.OvertimeRequest),
		shifts:   shifts,
		users:    users,
	}
}

func (m *mockOvertimeRepo) withDetails(r *model.OvertimeRequest) *model.OvertimeRequest {
	cp := *r
	cp.User = m.users.users[r.UserID]
	if sh, ok := m.shifts.shifts[r.ShiftID]; ok {
		cp.Shift = m.shifts.withType(sh)
	}
	return &cp
}

func (m *mockOvertimeRepo) Create(_ context.Context, req *model.OvertimeRequest) error {
	if req.RequestID == "" {
		m.seq++
		req.RequestID = fmt.Sprintf("ot-%03d", m.seq)
	}
	cp := *req
	m.requests[req.RequestID] = &cp
	return nil
}

func (m *mockOvertimeRepo) GetByID(_ context.Context, id string) (*model.OvertimeRequest, error) {
	if r, ok := m.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOvertimeRepo) GetDetail(_ context.Context, id string) (*model.OvertimeRequest, error) {
	if r, ok := m.requests[id]; ok {
		return m.withDetails(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOvertimeRepo) UpdateStatusIfPending(_ context.Context, id, status string, at time.Time) (bool, error) {
	r, ok := m.requests[id]
	if !ok || r.Status != model.OvertimeStatusPending {
		return false, nil
	}
	r.Status = status
	r.UpdatedAt = at
	return true, nil
}

func (m *mockOvertimeRepo) Delete(_ context.Context, id string) error {
	delete(m.requests, id)
	return nil
}

func (m *mockOvertimeRepo) List(_ context.Context) ([]model.OvertimeRequest, error) {
	var result []model.OvertimeRequest
	for _, r := range m.requests {
		result = append(result, *m.withDetails(r))
	}
	return result, nil
}

func (m *mockOvertimeRepo) ListByUser(_ context.Context, userID string) ([]model.OvertimeRequest, error) {
	var result []model.OvertimeRequest
	for _, r := range m.requests {
		if r.UserID == userID {
			result = append(result, *m.withDetails(r))
		}
	}
	return result, nil
}

func (m *mockOvertimeRepo) ListByShiftRange(_ context.Context, from, to time.Time) ([]model.OvertimeRequest, error) {
	var result []model.OvertimeRequest
	for _, r := range m.requests {
		d := m.withDetails(r)
		if d.Shift == nil {
			continue
		}
		if !d.Shift.ShiftStartTime.Before(from) && d.Shift.ShiftStartTime.Before(to) {
			result = append(result, *d)
		}
	}
	return result, nil
}

// ── Mock SwapRequestRepository ──

type mockSwapRepo struct {
	requests map[string]*model.ShiftSwapRequest
	shifts   *mockShiftRepo
	users    *mockUserRepo
	// failUpdate 模拟写入失败
	failUpdate error
	seq        int
}

func newMockSwapRepo(shifts *mockShiftRepo, users *mockUserRepo) *mockSwapRepo {
	return &mockSwapRepo{
		requests: make(map[string]*model.ShiftSwapRequest),
		shifts:   shifts,
		users:    users,
	}
}

func (m *mockSwapRepo) withDetails(r *model.ShiftSwapRequest) *model.ShiftSwapRequest {
	cp := *r
	cp.RequestingUser = m.users.users[r.RequestingUserID]
	cp.Colleague = m.users.users[r.ColleagueID]
	cp.RequestedShift = m.shifts.shifts[r.RequestedShiftID]
	cp.ColleagueShift = m.shifts.shifts[r.ColleagueShiftID]
	return &cp
}

func (m *mockSwapRepo) Create(_ context.Context, req *model.ShiftSwapRequest) error {
	if req.ID == "" {
		m.seq++
		req.ID = fmt.Sprintf("swap-%03d", m.seq)
	}
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *mockSwapRepo) GetByID(_ context.Context, id string) (*model.ShiftSwapRequest, error) {
	if r, ok := m.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSwapRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.ShiftSwapRequest, error) {
	return m.GetByID(ctx, id)
}

func (m *mockSwapRepo) GetDetail(_ context.Context, id string) (*model.ShiftSwapRequest, error) {
	if r, ok := m.requests[id]; ok {
		return m.withDetails(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSwapRepo) Update(_ context.Context, req *model.ShiftSwapRequest) error {
	if m.failUpdate != nil {
		return m.failUpdate
	}
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *mockSwapRepo) Delete(_ context.Context, id string) error {
	delete(m.requests, id)
	return nil
}

func (m *mockSwapRepo) DeleteByShift(_ context.Context, shiftID string) (int64, error) {
	var n int64
	for id, r := range m.requests {
		if r.RequestedShiftID == shiftID || r.ColleagueShiftID == shiftID {
			delete(m.requests, id)
			n++
		}
	}
	return n, nil
}

func (m *mockSwapRepo) List(_ context.Context) ([]model.ShiftSwapRequest, error) {
	var result []model.ShiftSwapRequest
	for _, r := range m.requests {
		result = append(result, *m.withDetails(r))
	}
	return result, nil
}

func (m *mockSwapRepo) ListByUser(_ context.Context, userID string) ([]model.ShiftSwapRequest, error) {
	var result []model.ShiftSwapRequest
	for _, r := range m.requests {
		if r.RequestingUserID == userID || r.ColleagueID == userID {
			result = append(result, *m.withDetails(r))
		}
	}
	return result, nil
}

// ── 测试辅助 ──

// mockRepos 一组相互关联的 mock，模拟关联预加载
type mockRepos struct {
	users     *mockUserRepo
	types     *mockShiftTypeRepo
	shifts    *mockShiftRepo
	overtime  *mockOvertimeRepo
	swaps     *mockSwapRepo
	aggregate *repository.Repository
}

func newMockRepos() *mockRepos {
	users := newMockUserRepo()
	types := newMockShiftTypeRepo()
	shifts := newMockShiftRepo(types, users)
	overtime := newMockOvertimeRepo(shifts, users)
	swaps := newMockSwapRepo(shifts, users)
	return &mockRepos{
		users:    users,
		types:    types,
		shifts:   shifts,
		overtime: overtime,
		swaps:    swaps,
		aggregate: &repository.Repository{
			User:        users,
			ShiftType:   types,
			Shift:       shifts,
			Overtime:    overtime,
			SwapRequest: swaps,
		},
	}
}

var testBase = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func (m *mockRepos) addUser(id, role string) *model.User {
	u := &model.User{
		UserID:       id,
		FirstName:    "First-" + id,
		LastName:     "Last-" + id,
		EmailAddress: id + "@example.com",
		Role:         role,
		CreatedDate:  testBase,
		UpdatedDate:  testBase,
	}
	m.users.users[id] = u
	return u
}

func (m *mockRepos) addShiftType(id, name string, category *string) *model.ShiftType {
	st := &model.ShiftType{
		ShiftTypeID:     id,
		ShiftName:       name,
		DefaultDuration: 480,
		ShiftCategory:   category,
	}
	m.types.types[id] = st
	return st
}

func (m *mockRepos) addShift(id, typeID, userID string, start time.Time, length time.Duration) *model.Shift {
	sh := &model.Shift{
		ShiftID:        id,
		ShiftTypeID:    typeID,
		UserID:         userID,
		ShiftStartTime: start,
		ShiftEndTime:   start.Add(length),
		ShiftDuration:  int(length.Minutes()),
		ShiftLocation:  "Front desk",
		AssignedBy:     "admin",
	}
	m.shifts.shifts[id] = sh
	return sh
}

func strPtr(s string) *string { return &s }
