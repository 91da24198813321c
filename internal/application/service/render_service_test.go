package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sangkips/schoolfee-receipts/internal/domain/entity"
	"github.com/sangkips/schoolfee-receipts/internal/domain/enum"
	"github.com/sangkips/schoolfee-receipts/internal/infrastructure/cache"
	"github.com/sangkips/schoolfee-receipts/internal/testutil"
	"github.com/sangkips/schoolfee-receipts/pkg/apperror"
	"github.com/sangkips/schoolfee-receipts/pkg/format"
	"github.com/sangkips/schoolfee-receipts/pkg/logger"
	"github.com/sangkips/schoolfee-receipts/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type renderFixture struct {
	receipts *testutil.InMemoryReceiptStore
	engine   *testutil.MockEngine
	service  *RenderService
	receipt  *entity.Receipt
}

func newRenderFixture(t *testing.T) *renderFixture {
	t.Helper()
	receipts := testutil.NewInMemoryReceiptStore()
	log := logger.NewNop()
	receiptService := NewReceiptService(receipts, NewSequencer(receipts, testutil.NewInMemorySequenceStore(receipts), log), log)

	receipt, err := receiptService.CreateReceipt(context.Background(), adaInput())
	require.NoError(t, err)

	engine := testutil.NewMockEngine("mock-pdf", render.FormatPDF)
	settings := RenderSettings{Institution: "DELTOS MODEL SCHOOL", Location: format.Location("Africa/Lagos")}
	return &renderFixture{
		receipts: receipts,
		engine:   engine,
		service:  NewRenderService(receipts, engine, cache.NewMemoryCache(time.Minute), settings, log),
		receipt:  receipt,
	}
}

func TestRenderReceipt_UsesConfiguredEngine(t *testing.T) {
	f := newRenderFixture(t)
	f.engine.On("Render", mock.Anything, mock.AnythingOfType("*render.Receipt")).
		Return(&render.Document{Format: render.FormatPDF, Body: []byte("%PDF-1.4 fake")}, nil).Once()

	out, err := f.service.RenderReceipt(context.Background(), f.receipt.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "receipt-1001.pdf", out.Filename)
	assert.Equal(t, "application/pdf", out.Document.ContentType())
	assert.Equal(t, []byte("%PDF-1.4 fake"), out.Document.Body)
	f.engine.AssertExpectations(t)
}

func TestRenderReceipt_ServesRepeatDownloadsFromCache(t *testing.T) {
	f := newRenderFixture(t)
	f.engine.On("Render", mock.Anything, mock.Anything).
		Return(&render.Document{Format: render.FormatPDF, Body: []byte("%PDF-1.4 cached")}, nil).Once()

	first, err := f.service.RenderReceipt(context.Background(), f.receipt.ID, "pdf")
	require.NoError(t, err)
	second, err := f.service.RenderReceipt(context.Background(), f.receipt.ID, "pdf")
	require.NoError(t, err)

	assert.Equal(t, first.Document.Body, second.Document.Body)
	assert.Equal(t, first.Filename, second.Filename)
	f.engine.AssertNumberOfCalls(t, "Render", 1)
}

func TestRenderReceipt_EditInvalidatesCache(t *testing.T) {
	f := newRenderFixture(t)
	f.engine.On("Render", mock.Anything, mock.Anything).
		Return(&render.Document{Format: render.FormatPDF, Body: []byte("%PDF")}, nil)

	_, err := f.service.RenderReceipt(context.Background(), f.receipt.ID, "")
	require.NoError(t, err)

	edited := *f.receipt
	edited.StudentName = "Ada N. Obi"
	require.NoError(t, f.receipts.Update(context.Background(), &edited))

	_, err = f.service.RenderReceipt(context.Background(), f.receipt.ID, "")
	require.NoError(t, err)

	f.engine.AssertNumberOfCalls(t, "Render", 2)
	view := f.engine.Calls[1].Arguments.Get(1).(*render.Receipt)
	assert.Equal(t, "Ada N. Obi", view.StudentName)
}

func TestRenderReceipt_HTMLBypassesEngine(t *testing.T) {
	f := newRenderFixture(t)

	out, err := f.service.RenderReceipt(context.Background(), f.receipt.ID, "html")
	require.NoError(t, err)

	assert.Equal(t, "receipt-1001.html", out.Filename)
	assert.Equal(t, render.FormatHTML, out.Document.Format)
	assert.Contains(t, string(out.Document.Body), "Ada Obi")
	assert.Contains(t, string(out.Document.Body), "₦65,000")
	f.engine.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestRenderReceipt_EngineFailure(t *testing.T) {
	f := newRenderFixture(t)
	f.engine.On("Render", mock.Anything, mock.Anything).
		Return(nil, errors.New("chrome crashed"))

	_, err := f.service.RenderReceipt(context.Background(), f.receipt.ID, "")
	ae := appErr(t, err)
	assert.Equal(t, http.StatusInternalServerError, ae.Code)
	assert.Equal(t, apperror.ReasonRenderFailed, ae.Reason)
	assert.NotContains(t, ae.Message, "chrome crashed")
}

func TestRenderReceipt_NotFound(t *testing.T) {
	f := newRenderFixture(t)

	_, err := f.service.RenderReceipt(context.Background(), uuid.New(), "")
	assert.Equal(t, http.StatusNotFound, appErr(t, err).Code)
	f.engine.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestRenderService_Status(t *testing.T) {
	f := newRenderFixture(t)
	status := f.service.Status()
	assert.Equal(t, "mock-pdf", status.Engine)
	assert.Equal(t, "pdf", status.Format)
}

func TestBuildReceiptView(t *testing.T) {
	r := &entity.Receipt{
		ReceiptNumber: 7,
		StudentName:   "Chinedu Okafor",
		ClassLevel:    enum.ClassLevelSS3,
		Term:          enum.TermThird,
		Session:       "2025/2026",
		PaymentMethod: "Cash",
		FeeItems: []entity.FeeItem{
			{Title: "Tuition", Amount: 120000},
			{Title: "Exam fee", Amount: 7500},
		},
		TotalAmount:  127500,
		ReceiptStyle: entity.ReceiptStyle{PrimaryColor: "#1a73e8", FooterNote: "Thank you"},
		// still the 17th in UTC, already the 18th in Lagos
		CreatedAt: time.Date(2026, time.October, 17, 23, 30, 0, 0, time.UTC),
	}

	view := BuildReceiptView(r, RenderSettings{Institution: "DELTOS MODEL SCHOOL", Location: format.Location("Africa/Lagos")})

	assert.Equal(t, "DELTOS MODEL SCHOOL", view.Institution)
	assert.Equal(t, render.DefaultTitle, view.Title)
	assert.Equal(t, "0007", view.Number)
	assert.Equal(t, "SS3", view.ClassLevel)
	assert.Equal(t, "Third Term", view.Term)
	assert.Equal(t, []render.Line{
		{Title: "Tuition", Amount: "₦120,000"},
		{Title: "Exam fee", Amount: "₦7,500"},
	}, view.Items)
	assert.Equal(t, "₦127,500", view.Total)
	assert.Equal(t, "18 October 2026", view.GeneratedOn)
	assert.Equal(t, "#1a73e8", view.PrimaryColor)
	assert.Equal(t, "Thank you", view.FooterNote)
}

func TestReceiptFilename(t *testing.T) {
	assert.Equal(t, "receipt-1001.pdf", ReceiptFilename(1001, render.FormatPDF))
	assert.Equal(t, "receipt-0042.html", ReceiptFilename(42, render.FormatHTML))
}
