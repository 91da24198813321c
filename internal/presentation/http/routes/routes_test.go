package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/schoolfee-receipts/internal/application/service"
	"github.com/sangkips/schoolfee-receipts/internal/config"
	"github.com/sangkips/schoolfee-receipts/internal/infrastructure/cache"
	"github.com/sangkips/schoolfee-receipts/internal/presentation/http/handler"
	"github.com/sangkips/schoolfee-receipts/internal/presentation/http/middleware"
	"github.com/sangkips/schoolfee-receipts/internal/testutil"
	"github.com/sangkips/schoolfee-receipts/pkg/logger"
	"github.com/sangkips/schoolfee-receipts/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const adaBody = `{
	"studentName": "Ada Obi",
	"classLevel": "JSS2",
	"term": "First Term",
	"session": "2024/2025",
	"paymentMethod": "Bank Transfer",
	"feeItems": [
		{"title": "Tuition", "amount": 50000},
		{"title": "Books", "amount": 15000}
	],
	"totalAmount": 1,
	"receiptNumber": 42
}`

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
	Reason string `json:"reason"`
}

type receiptJSON struct {
	ID            string  `json:"id"`
	ReceiptNumber int64   `json:"receiptNumber"`
	StudentName   string  `json:"studentName"`
	ClassLevel    string  `json:"classLevel"`
	Term          string  `json:"term"`
	TotalAmount   float64 `json:"totalAmount"`
	CreatedAt     string  `json:"createdAt"`
	ReceiptStyle  struct {
		PrimaryColor string `json:"primaryColor"`
	} `json:"receiptStyle"`
}

type ReceiptAPISuite struct {
	suite.Suite
	router      *gin.Engine
	receipts    *testutil.InMemoryReceiptStore
	idempotency *testutil.InMemoryIdempotencyStore
	limiter     *middleware.ClientRateLimiter
}

func TestReceiptAPI(t *testing.T) {
	suite.Run(t, new(ReceiptAPISuite))
}

func (s *ReceiptAPISuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	s.receipts = testutil.NewInMemoryReceiptStore()
	s.idempotency = testutil.NewInMemoryIdempotencyStore()
	sequencer := service.NewSequencer(s.receipts, testutil.NewInMemorySequenceStore(s.receipts), log)

	renderService := service.NewRenderService(
		s.receipts,
		render.NewHTMLEngine(),
		cache.NewNullCache(),
		service.RenderSettings{Institution: "DELTOS MODEL SCHOOL"},
		log,
	)
	h := &Handlers{
		Receipt: handler.NewReceiptHandler(
			service.NewReceiptService(s.receipts, sequencer, log),
			renderService,
			service.NewExportService(s.receipts, nil),
		),
	}

	s.limiter = middleware.NewClientRateLimiter(middleware.RateLimiterConfigFrom(1000, 1))
	cfg := &config.Config{App: config.AppConfig{Name: "schoolfee-receipts"}}
	s.router = Setup(h, &Deps{
		Cfg:             cfg,
		Log:             log,
		IdempotencyRepo: s.idempotency,
		RateLimiter:     s.limiter,
		Renderer:        renderService,
	})
}

func (s *ReceiptAPISuite) TearDownTest() {
	s.limiter.Stop()
}

func (s *ReceiptAPISuite) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ReceiptAPISuite) decode(w *httptest.ResponseRecorder) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func (s *ReceiptAPISuite) create() receiptJSON {
	w := s.do(http.MethodPost, "/api/v1/receipts", adaBody)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var r receiptJSON
	s.Require().NoError(json.Unmarshal(s.decode(w).Data, &r))
	return r
}

func (s *ReceiptAPISuite) TestCreate_AdaExample() {
	r := s.create()

	s.Equal(int64(1001), r.ReceiptNumber)
	s.Equal(65000.0, r.TotalAmount)
	s.Equal("Ada Obi", r.StudentName)
	s.Equal("JSS2", r.ClassLevel)
	s.Equal("First Term", r.Term)
	s.Equal("#000000", r.ReceiptStyle.PrimaryColor)
	s.NotEmpty(r.ID)
	s.NotEmpty(r.CreatedAt)
}

func (s *ReceiptAPISuite) TestCreate_EmptyFeeItems() {
	body := strings.Replace(adaBody, `"feeItems": [
		{"title": "Tuition", "amount": 50000},
		{"title": "Books", "amount": 15000}
	]`, `"feeItems": []`, 1)

	w := s.do(http.MethodPost, "/api/v1/receipts", body)
	s.Equal(http.StatusBadRequest, w.Code)

	env := s.decode(w)
	s.False(env.Success)
	s.Equal("At least one fee item is required", env.Message)
	s.Require().Len(env.Errors, 1)
	s.Equal("feeItems", env.Errors[0].Field)
}

func (s *ReceiptAPISuite) TestCreate_FieldErrors() {
	body := `{"studentName": " ", "classLevel": "Form 7", "term": "First Term", "session": "2024/2025",
		"paymentMethod": "Cash", "feeItems": [{"title": "Tuition", "amount": 0}]}`

	w := s.do(http.MethodPost, "/api/v1/receipts", body)
	s.Equal(http.StatusBadRequest, w.Code)

	env := s.decode(w)
	s.Contains(env.Message, "Student name is required")
	s.Contains(env.Message, "Class level must be one of: Primary 1")
	s.Contains(env.Message, "Fee item amount must be greater than 0")
	s.Equal("validation_failed", env.Reason)
}

func (s *ReceiptAPISuite) TestCreate_MalformedBody() {
	w := s.do(http.MethodPost, "/api/v1/receipts", `{"feeItems": "lots"`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Invalid request body", s.decode(w).Message)
}

func (s *ReceiptAPISuite) TestList_NewestFirst() {
	w := s.do(http.MethodGet, "/api/v1/receipts", "")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, string(s.decode(w).Data))

	s.create()
	s.create()

	w = s.do(http.MethodGet, "/api/v1/receipts", "")
	var list []receiptJSON
	s.Require().NoError(json.Unmarshal(s.decode(w).Data, &list))
	s.Require().Len(list, 2)
	s.Equal(int64(1002), list[0].ReceiptNumber)
	s.Equal(int64(1001), list[1].ReceiptNumber)
}

func (s *ReceiptAPISuite) TestGet() {
	created := s.create()

	w := s.do(http.MethodGet, "/api/v1/receipts/"+created.ID, "")
	s.Equal(http.StatusOK, w.Code)

	var r receiptJSON
	s.Require().NoError(json.Unmarshal(s.decode(w).Data, &r))
	s.Equal(created.ID, r.ID)
}

func (s *ReceiptAPISuite) TestGet_MalformedID() {
	w := s.do(http.MethodGet, "/api/v1/receipts/not-a-uuid", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Receipt not found", s.decode(w).Message)
}

func (s *ReceiptAPISuite) TestUpdate_KeepsNumberAndCreatedAt() {
	created := s.create()
	body := strings.Replace(adaBody, `"Ada Obi"`, `"Ada N. Obi"`, 1)
	body = strings.Replace(body, `"amount": 15000`, `"amount": 20000`, 1)

	w := s.do(http.MethodPut, "/api/v1/receipts/"+created.ID, body)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var r receiptJSON
	s.Require().NoError(json.Unmarshal(s.decode(w).Data, &r))
	s.Equal("Ada N. Obi", r.StudentName)
	s.Equal(70000.0, r.TotalAmount)
	s.Equal(created.ReceiptNumber, r.ReceiptNumber)
	s.Equal(created.CreatedAt, r.CreatedAt)
}

func (s *ReceiptAPISuite) TestDelete_ThenGetIs404() {
	created := s.create()

	w := s.do(http.MethodDelete, "/api/v1/receipts/"+created.ID, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Receipt deleted successfully", s.decode(w).Message)

	w = s.do(http.MethodGet, "/api/v1/receipts/"+created.ID, "")
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/receipts/"+created.ID, "")
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/receipts/next-number", "")
	s.JSONEq(`{"nextReceiptNumber": 1002}`, string(s.decode(w).Data))
}

func (s *ReceiptAPISuite) TestNextNumber() {
	w := s.do(http.MethodGet, "/api/v1/receipts/next-number", "")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"nextReceiptNumber": 1001}`, string(s.decode(w).Data))
}

func (s *ReceiptAPISuite) TestDownload_HTML() {
	created := s.create()

	w := s.do(http.MethodGet, "/api/v1/receipts/"+created.ID+"/pdf", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("text/html; charset=utf-8", w.Header().Get("Content-Type"))
	s.Equal(`attachment; filename=receipt-1001.html`, w.Header().Get("Content-Disposition"))
	s.Contains(w.Body.String(), "SCHOOL FEE RECEIPT")
	s.Contains(w.Body.String(), "₦65,000")
}

func (s *ReceiptAPISuite) TestDownload_BadFormat() {
	created := s.create()
	w := s.do(http.MethodGet, "/api/v1/receipts/"+created.ID+"/pdf?format=docx", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ReceiptAPISuite) TestDownload_Unknown() {
	w := s.do(http.MethodGet, "/api/v1/receipts/6f1c1f9e-4d7a-4a55-9a8e-3b1d2c3e4f50/pdf", "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ReceiptAPISuite) TestExport() {
	s.create()

	w := s.do(http.MethodGet, "/api/v1/receipts/export", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(`attachment; filename=receipts.xlsx`, w.Header().Get("Content-Disposition"))
	// xlsx files are zip archives
	s.True(bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func (s *ReceiptAPISuite) TestCreate_IdempotencyKeyReplays() {
	first := s.do(http.MethodPost, "/api/v1/receipts", adaBody, "Idempotency-Key", "abc-123")
	s.Require().Equal(http.StatusCreated, first.Code)

	second := s.do(http.MethodPost, "/api/v1/receipts", adaBody, "Idempotency-Key", "abc-123")
	s.Equal(http.StatusCreated, second.Code)
	s.Equal("true", second.Header().Get("X-Idempotency-Replayed"))
	s.Equal(first.Body.String(), second.Body.String())

	w := s.do(http.MethodGet, "/api/v1/receipts", "")
	var list []receiptJSON
	s.Require().NoError(json.Unmarshal(s.decode(w).Data, &list))
	s.Len(list, 1)
}

func (s *ReceiptAPISuite) TestCreate_IdempotencyKeyWithDifferentBody() {
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/v1/receipts", adaBody, "Idempotency-Key", "k").Code)

	other := strings.Replace(adaBody, "Ada Obi", "Bola Ade", 1)
	w := s.do(http.MethodPost, "/api/v1/receipts", other, "Idempotency-Key", "k")
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *ReceiptAPISuite) TestCreate_FailuresAreNotReplayed() {
	w := s.do(http.MethodPost, "/api/v1/receipts", `{}`, "Idempotency-Key", "bad")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(0, s.idempotency.Len())
}

func (s *ReceiptAPISuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok","service":"schoolfee-receipts","renderer":{"engine":"html","format":"html"}}`, w.Body.String())
}

func (s *ReceiptAPISuite) TestRequestIDIsEchoed() {
	w := s.do(http.MethodGet, "/api/v1/receipts", "", "X-Request-ID", "req-42")
	s.Equal("req-42", w.Header().Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfigFrom(2, 3600))
	defer limiter.Stop()

	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Recovery(logger.NewNop()))
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.NotContains(t, w.Body.String(), "kaboom")
}
