package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Armia-Niakan/Course-Management-System/internal/dto"
	"github.com/Armia-Niakan/Course-Management-System/internal/model"
	"github.com/Armia-Niakan/Course-Management-System/internal/service"
	"github.com/Armia-Niakan/Course-Management-System/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *model.User
	registerErr    error
	loginResult    *dto.TokenResponse
	loginErr       error
	refreshResult  *dto.TokenResponse
	refreshErr     error
	profileResult  *dto.UserResponse
	profileErr     error
	changePassErr  error
	updateNameErr  error
	deleteErr      error
	forgotErr      error
	resetErr       error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*model.User, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) GetProfile(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.profileResult, m.profileErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}
func (m *mockAuthService) UpdateUsername(_ context.Context, _ string, _ *dto.UpdateUsernameRequest) (*dto.UserResponse, error) {
	return m.profileResult, m.updateNameErr
}
func (m *mockAuthService) DeleteAccount(_ context.Context, _, _ string) error {
	return m.deleteErr
}
func (m *mockAuthService) ForgotPassword(_ context.Context, _ string) error {
	return m.forgotErr
}
func (m *mockAuthService) ResetPassword(_ context.Context, _ *dto.ResetPasswordRequest) error {
	return m.resetErr
}
func (m *mockAuthService) EnsureDefaultAdmin(_ context.Context) error {
	return nil
}

// ── Mock CourseService ──

type mockCourseService struct {
	createResult   *model.Course
	createErr      error
	listResult     []dto.CourseResponse
	listErr        error
	detailResult   *dto.CourseDetailResponse
	detailErr      error
	deleteErr      error
	materialResult *model.Material
	materialErr    error
	pathResult     string
	pathErr        error
	deleteMatErr   error
}

func (m *mockCourseService) Create(_ context.Context, _ string, _ *dto.CreateCourseRequest) (*model.Course, error) {
	return m.createResult, m.createErr
}
func (m *mockCourseService) List(_ context.Context, _, _ string, _ *dto.CourseListRequest) ([]dto.CourseResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockCourseService) GetDetail(_ context.Context, _, _, _ string) (*dto.CourseDetailResponse, error) {
	return m.detailResult, m.detailErr
}
func (m *mockCourseService) Delete(_ context.Context, _, _ string) error {
	return m.deleteErr
}
func (m *mockCourseService) AddMaterial(_ context.Context, _, _, _ string, _ *multipart.FileHeader) (*model.Material, error) {
	return m.materialResult, m.materialErr
}
func (m *mockCourseService) MaterialPath(_ context.Context, _, _ string) (string, error) {
	return m.pathResult, m.pathErr
}
func (m *mockCourseService) DeleteMaterial(_ context.Context, _, _, _ string) error {
	return m.deleteMatErr
}

// ── Mock EnrollmentService ──

type mockEnrollmentService struct {
	enrollResult    *model.Enrollment
	enrollErr       error
	unenrollErr     error
	removeErr       error
	adminRemoveErr  error
	deleteCourseErr error
	deleteUserErr   error
	count           int
	countErr        error
}

func (m *mockEnrollmentService) Enroll(_ context.Context, _, _ string) (*model.Enrollment, error) {
	return m.enrollResult, m.enrollErr
}
func (m *mockEnrollmentService) Unenroll(_ context.Context, _, _ string) error {
	return m.unenrollErr
}
func (m *mockEnrollmentService) RemoveStudent(_ context.Context, _, _, _ string) error {
	return m.removeErr
}
func (m *mockEnrollmentService) AdminRemoveEnrollment(_ context.Context, _, _ string) error {
	return m.adminRemoveErr
}
func (m *mockEnrollmentService) DeleteCourse(_ context.Context, _ string) error {
	return m.deleteCourseErr
}
func (m *mockEnrollmentService) DeleteUser(_ context.Context, _ string) error {
	return m.deleteUserErr
}
func (m *mockEnrollmentService) CountForCourse(_ context.Context, _ string) (int, error) {
	return m.count, m.countErr
}

// ── Mock ExamService ──

type mockExamService struct {
	createResult *model.Exam
	createErr    error
	listResult   []dto.ExamResponse
	listErr      error
	getResult    *dto.ExamResponse
	getErr       error
	takeResult   *dto.TakeExamResponse
	takeErr      error
	resultsRows  []dto.ExamResultRow
	resultsErr   error
	subResult    *dto.SubmissionResponse
	subErr       error
	deleteErr    error
}

func (m *mockExamService) Create(_ context.Context, _ string, _ *dto.CreateExamRequest) (*model.Exam, error) {
	return m.createResult, m.createErr
}
func (m *mockExamService) ListForUser(_ context.Context, _, _ string) ([]dto.ExamResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockExamService) GetForTaking(_ context.Context, _, _ string) (*dto.ExamResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockExamService) Take(_ context.Context, _, _ string, _ *dto.TakeExamRequest) (*dto.TakeExamResponse, error) {
	return m.takeResult, m.takeErr
}
func (m *mockExamService) Results(_ context.Context, _, _, _ string) ([]dto.ExamResultRow, error) {
	return m.resultsRows, m.resultsErr
}
func (m *mockExamService) GetSubmission(_ context.Context, _, _ string) (*dto.SubmissionResponse, error) {
	return m.subResult, m.subErr
}
func (m *mockExamService) Delete(_ context.Context, _, _, _ string) error {
	return m.deleteErr
}

// ── Mock AdminService ──

type mockAdminService struct {
	statsResult       *dto.StatsResponse
	statsErr          error
	usersResult       []dto.UserResponse
	usersErr          error
	deleteUserErr     error
	createAdminResult *dto.UserResponse
	createAdminErr    error
	coursesResult     []dto.AdminCourseRow
	coursesErr        error
	deleteCourseErr   error
	enrollResult      []dto.EnrollmentRow
	enrollErr         error
	deleteEnrollErr   error
}

func (m *mockAdminService) Stats(_ context.Context) (*dto.StatsResponse, error) {
	return m.statsResult, m.statsErr
}
func (m *mockAdminService) ListUsers(_ context.Context) ([]dto.UserResponse, error) {
	return m.usersResult, m.usersErr
}
func (m *mockAdminService) DeleteUser(_ context.Context, _, _ string) error {
	return m.deleteUserErr
}
func (m *mockAdminService) CreateAdmin(_ context.Context, _ *dto.CreateAdminRequest) (*dto.UserResponse, error) {
	return m.createAdminResult, m.createAdminErr
}
func (m *mockAdminService) ListCourses(_ context.Context) ([]dto.AdminCourseRow, error) {
	return m.coursesResult, m.coursesErr
}
func (m *mockAdminService) DeleteCourse(_ context.Context, _ string) error {
	return m.deleteCourseErr
}
func (m *mockAdminService) ListEnrollments(_ context.Context) ([]dto.EnrollmentRow, error) {
	return m.enrollResult, m.enrollErr
}
func (m *mockAdminService) DeleteEnrollment(_ context.Context, _, _ string) error {
	return m.deleteEnrollErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportEnrollments(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportUsers(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func setAuth(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_email", "test@example.com")
		c.Set("username", "tester")
		c.Set("role", role)
	}
}

func serve(method, target string, body io.Reader, register func(r *gin.Engine)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r := gin.New()
	register(r)
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Register_Success(t *testing.T) {
	mock := &mockAuthService{
		registerResult: &model.User{
			Email:    "s@example.com",
			Username: "student",
			Role:     model.RoleStudent,
		},
	}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Username:        "student",
		Email:           "s@example.com",
		Password:        "Pass12345",
		ConfirmPassword: "Pass12345",
		Role:            "student",
	}), func(r *gin.Engine) {
		r.POST("/auth/register", h.Register)
	})

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Register_EmailExists(t *testing.T) {
	mock := &mockAuthService{registerErr: service.ErrEmailExists}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Username:        "student",
		Email:           "s@example.com",
		Password:        "Pass12345",
		ConfirmPassword: "Pass12345",
		Role:            "student",
	}), func(r *gin.Engine) {
		r.POST("/auth/register", h.Register)
	})

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11002 {
		t.Errorf("expected error code 11002, got %d", resp.Code)
	}
}

func TestAuthHandler_Register_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("POST", "/auth/register", bytes.NewReader([]byte("not json")), func(r *gin.Engine) {
		r.POST("/auth/register", h.Register)
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "s@example.com",
		Password: "Pass12345",
		Role:     "student",
	}), func(r *gin.Engine) {
		r.POST("/auth/login", h.Login)
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "s@example.com",
		Password: "wrong-pass",
		Role:     "student",
	}), func(r *gin.Engine) {
		r.POST("/auth/login", h.Login)
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_RoleMismatch(t *testing.T) {
	mock := &mockAuthService{loginErr: service.ErrRoleMismatch}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "s@example.com",
		Password: "Pass12345",
		Role:     "teacher",
	}), func(r *gin.Engine) {
		r.POST("/auth/login", h.Login)
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11003 {
		t.Errorf("expected error code 11003, got %d", resp.Code)
	}
}

func TestAuthHandler_Profile_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("GET", "/auth/profile", nil, func(r *gin.Engine) {
		r.GET("/auth/profile", h.Profile)
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10002 {
		t.Errorf("expected error code 10002, got %d", resp.Code)
	}
}

func TestAuthHandler_Profile_Success(t *testing.T) {
	mock := &mockAuthService{
		profileResult: &dto.UserResponse{Email: "test@example.com", Username: "tester"},
	}
	h := NewAuthHandler(mock)

	w := serve("GET", "/auth/profile", nil, func(r *gin.Engine) {
		r.GET("/auth/profile", setAuth("student"), h.Profile)
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_ChangePassword_WrongPassword(t *testing.T) {
	mock := &mockAuthService{changePassErr: service.ErrWrongPassword}
	h := NewAuthHandler(mock)

	w := serve("PUT", "/auth/password", jsonBody(dto.ChangePasswordRequest{
		CurrentPassword: "OldPass123",
		NewPassword:     "NewPass123",
		ConfirmPassword: "NewPass123",
	}), func(r *gin.Engine) {
		r.PUT("/auth/password", setAuth("student"), h.ChangePassword)
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11005 {
		t.Errorf("expected error code 11005, got %d", resp.Code)
	}
}

func TestAuthHandler_ForgotPassword_AlwaysOK(t *testing.T) {
	// 未注册邮箱也返回成功，不泄露账号信息
	h := NewAuthHandler(&mockAuthService{})

	w := serve("POST", "/auth/forgot-password", jsonBody(dto.ForgotPasswordRequest{
		Email: "nobody@example.com",
	}), func(r *gin.Engine) {
		r.POST("/auth/forgot-password", h.ForgotPassword)
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_ResetPassword_InvalidToken(t *testing.T) {
	mock := &mockAuthService{resetErr: service.ErrInvalidResetToken}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/reset-password", jsonBody(dto.ResetPasswordRequest{
		Token:           "stale-token",
		NewPassword:     "NewPass123",
		ConfirmPassword: "NewPass123",
	}), func(r *gin.Engine) {
		r.POST("/auth/reset-password", h.ResetPassword)
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11006 {
		t.Errorf("expected error code 11006, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CourseHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCourseHandler_Create_Success(t *testing.T) {
	mock := &mockCourseService{
		createResult: &model.Course{ID: "c1", Name: "代数", Teacher: "test@example.com"},
	}
	h := NewCourseHandler(mock, &mockEnrollmentService{})

	w := serve("POST", "/courses", jsonBody(dto.CreateCourseRequest{
		Name:        "代数",
		MaxStudents: 30,
		Schedule: []dto.SlotRequest{
			{Day: "Monday", Time: "09:00", DurationHours: 1.5},
		},
	}), func(r *gin.Engine) {
		r.POST("/courses", setAuth("teacher"), h.Create)
	})

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestCourseHandler_Create_TeacherConflict(t *testing.T) {
	mock := &mockCourseService{createErr: service.ErrTeacherConflict}
	h := NewCourseHandler(mock, &mockEnrollmentService{})

	w := serve("POST", "/courses", jsonBody(dto.CreateCourseRequest{
		Name:        "代数",
		MaxStudents: 30,
		Schedule: []dto.SlotRequest{
			{Day: "Monday", Time: "09:00", DurationHours: 1.5},
		},
	}), func(r *gin.Engine) {
		r.POST("/courses", setAuth("teacher"), h.Create)
	})

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12002 {
		t.Errorf("expected error code 12002, got %d", resp.Code)
	}
}

func TestCourseHandler_Detail_NotFound(t *testing.T) {
	mock := &mockCourseService{detailErr: service.ErrCourseNotFound}
	h := NewCourseHandler(mock, &mockEnrollmentService{})

	w := serve("GET", "/courses/missing", nil, func(r *gin.Engine) {
		r.GET("/courses/:id", setAuth("student"), h.Detail)
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12003 {
		t.Errorf("expected error code 12003, got %d", resp.Code)
	}
}

func TestCourseHandler_Enroll_Success(t *testing.T) {
	ledger := &mockEnrollmentService{
		enrollResult: &model.Enrollment{StudentEmail: "test@example.com", CourseID: "c1"},
	}
	h := NewCourseHandler(&mockCourseService{}, ledger)

	w := serve("POST", "/courses/c1/enroll", nil, func(r *gin.Engine) {
		r.POST("/courses/:id/enroll", setAuth("student"), h.Enroll)
	})

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestCourseHandler_Enroll_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrCourseNotFound, 404, 12003},
		{"Full", service.ErrCourseFull, 409, 13001},
		{"Duplicate", service.ErrAlreadyEnrolled, 409, 13002},
		{"Conflict", service.ErrScheduleConflict, 409, 13003},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &mockEnrollmentService{enrollErr: tt.err}
			h := NewCourseHandler(&mockCourseService{}, ledger)

			w := serve("POST", "/courses/c1/enroll", nil, func(r *gin.Engine) {
				r.POST("/courses/:id/enroll", setAuth("student"), h.Enroll)
			})

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestCourseHandler_Delete_NotOwner(t *testing.T) {
	mock := &mockCourseService{deleteErr: service.ErrNotCourseOwner}
	h := NewCourseHandler(mock, &mockEnrollmentService{})

	w := serve("DELETE", "/courses/c1", nil, func(r *gin.Engine) {
		r.DELETE("/courses/:id", setAuth("teacher"), h.Delete)
	})

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10003 {
		t.Errorf("expected error code 10003, got %d", resp.Code)
	}
}

func TestCourseHandler_UploadMaterial_MissingFile(t *testing.T) {
	h := NewCourseHandler(&mockCourseService{}, &mockEnrollmentService{})

	w := serve("POST", "/courses/c1/materials", nil, func(r *gin.Engine) {
		r.POST("/courses/:id/materials", setAuth("teacher"), h.UploadMaterial)
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCourseHandler_DownloadMaterial_NotFound(t *testing.T) {
	mock := &mockCourseService{pathErr: service.ErrMaterialNotFound}
	h := NewCourseHandler(mock, &mockEnrollmentService{})

	w := serve("GET", "/courses/c1/materials/notes.pdf", nil, func(r *gin.Engine) {
		r.GET("/courses/:id/materials/:filename", setAuth("student"), h.DownloadMaterial)
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12005 {
		t.Errorf("expected error code 12005, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExamHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExamHandler_Take_Success(t *testing.T) {
	mock := &mockExamService{
		takeResult: &dto.TakeExamResponse{Score: 66.67, CorrectCount: 2, TotalQuestions: 3},
	}
	h := NewExamHandler(mock)

	w := serve("POST", "/exams/e1/submissions", jsonBody(dto.TakeExamRequest{
		Answers: map[string]int{"1": 0, "2": 1},
	}), func(r *gin.Engine) {
		r.POST("/exams/:id/submissions", setAuth("student"), h.Take)
	})

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestExamHandler_Take_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrExamNotFound, 404, 14002},
		{"NotEnrolled", service.ErrNotEnrolled, 403, 14003},
		{"AlreadySubmitted", service.ErrAlreadySubmitted, 409, 14004},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockExamService{takeErr: tt.err}
			h := NewExamHandler(mock)

			w := serve("POST", "/exams/e1/submissions", jsonBody(dto.TakeExamRequest{
				Answers: map[string]int{"1": 0},
			}), func(r *gin.Engine) {
				r.POST("/exams/:id/submissions", setAuth("student"), h.Take)
			})

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestExamHandler_GetForTaking_AlreadySubmitted(t *testing.T) {
	mock := &mockExamService{getErr: service.ErrAlreadySubmitted}
	h := NewExamHandler(mock)

	w := serve("GET", "/exams/e1", nil, func(r *gin.Engine) {
		r.GET("/exams/:id", setAuth("student"), h.GetForTaking)
	})

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestExamHandler_Results_Forbidden(t *testing.T) {
	mock := &mockExamService{resultsErr: service.ErrNotCourseOwner}
	h := NewExamHandler(mock)

	w := serve("GET", "/exams/e1/results", nil, func(r *gin.Engine) {
		r.GET("/exams/:id/results", setAuth("teacher"), h.Results)
	})

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestExamHandler_Create_InvalidQuestion(t *testing.T) {
	mock := &mockExamService{createErr: service.ErrInvalidQuestion}
	h := NewExamHandler(mock)

	w := serve("POST", "/exams", jsonBody(dto.CreateExamRequest{
		CourseID:        "c1",
		Title:           "期中测验",
		DurationMinutes: 30,
		Questions: []dto.QuestionRequest{
			{Text: "1+1=?", Options: []string{"1", "2"}, CorrectOption: 5},
		},
	}), func(r *gin.Engine) {
		r.POST("/exams", setAuth("teacher"), h.Create)
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14001 {
		t.Errorf("expected error code 14001, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AdminHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAdminHandler_Stats_Success(t *testing.T) {
	mock := &mockAdminService{
		statsResult: &dto.StatsResponse{TotalUsers: 3, TotalCourses: 2, TotalEnrollments: 5},
	}
	h := NewAdminHandler(mock, &mockExportService{})

	w := serve("GET", "/admin/stats", nil, func(r *gin.Engine) {
		r.GET("/admin/stats", setAuth("admin"), h.Stats)
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAdminHandler_DeleteUser_Self(t *testing.T) {
	mock := &mockAdminService{deleteUserErr: service.ErrSelfDelete}
	h := NewAdminHandler(mock, &mockExportService{})

	w := serve("DELETE", "/admin/users/test@example.com", nil, func(r *gin.Engine) {
		r.DELETE("/admin/users/:email", setAuth("admin"), h.DeleteUser)
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15001 {
		t.Errorf("expected error code 15001, got %d", resp.Code)
	}
}

func TestAdminHandler_DeleteEnrollment_BadJSON(t *testing.T) {
	h := NewAdminHandler(&mockAdminService{}, &mockExportService{})

	w := serve("DELETE", "/admin/enrollments", bytes.NewReader([]byte("bad")), func(r *gin.Engine) {
		r.DELETE("/admin/enrollments", setAuth("admin"), h.DeleteEnrollment)
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAdminHandler_ExportEnrollments_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "enrollments_20260310.xlsx",
	}
	h := NewAdminHandler(&mockAdminService{}, mock)

	w := serve("GET", "/admin/enrollments/export", nil, func(r *gin.Engine) {
		r.GET("/admin/enrollments/export", setAuth("admin"), h.ExportEnrollments)
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type: %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestAdminHandler_ExportUsers_NoData(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportNoData}
	h := NewAdminHandler(&mockAdminService{}, mock)

	w := serve("GET", "/admin/users/export", nil, func(r *gin.Engine) {
		r.GET("/admin/users/export", setAuth("admin"), h.ExportUsers)
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15002 {
		t.Errorf("expected error code 15002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DashboardHandler Tests
// ═══════════════════════════════════════════════════════════

type mockDashboardService struct {
	dashResult     *dto.DashboardResponse
	dashErr        error
	calendarResult *dto.CalendarResponse
	calendarErr    error
	icsResult      string
	icsErr         error
}

func (m *mockDashboardService) Dashboard(_ context.Context, _, _ string) (*dto.DashboardResponse, error) {
	return m.dashResult, m.dashErr
}
func (m *mockDashboardService) Calendar(_ context.Context, _, _ string) (*dto.CalendarResponse, error) {
	return m.calendarResult, m.calendarErr
}
func (m *mockDashboardService) ExportICS(_ context.Context, _, _ string) (string, error) {
	return m.icsResult, m.icsErr
}

func TestDashboardHandler_Dashboard_Success(t *testing.T) {
	mock := &mockDashboardService{dashResult: &dto.DashboardResponse{}}
	h := NewDashboardHandler(mock)

	w := serve("GET", "/dashboard", nil, func(r *gin.Engine) {
		r.GET("/dashboard", setAuth("student"), h.Dashboard)
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestDashboardHandler_ExportICS_Headers(t *testing.T) {
	mock := &mockDashboardService{icsResult: "BEGIN:VCALENDAR\nEND:VCALENDAR\n"}
	h := NewDashboardHandler(mock)

	w := serve("GET", "/calendar/export", nil, func(r *gin.Engine) {
		r.GET("/calendar/export", setAuth("student"), h.ExportICS)
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
		t.Errorf("unexpected content type: %s", ct)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("BEGIN:VCALENDAR")) {
		t.Error("expected iCalendar payload in body")
	}
}
