package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sangkips/schoolfee-receipts/internal/domain/entity"
	"github.com/sangkips/schoolfee-receipts/internal/domain/repository"
	"github.com/sangkips/schoolfee-receipts/pkg/apperror"
	"github.com/sangkips/schoolfee-receipts/pkg/format"
	"github.com/sangkips/schoolfee-receipts/pkg/logger"
	"github.com/sangkips/schoolfee-receipts/pkg/render"
)

// RenderSettings describes the institution printed on receipts
type RenderSettings struct {
	Institution string
	Location    *time.Location
}

// RenderService turns stored receipts into downloadable documents
type RenderService struct {
	receiptRepo repository.ReceiptRepository
	engine      render.Engine
	html        render.Engine
	cache       repository.DocumentCache
	settings    RenderSettings
	log         *logger.Logger
}

// NewRenderService creates a new render service
func NewRenderService(
	receiptRepo repository.ReceiptRepository,
	engine render.Engine,
	cache repository.DocumentCache,
	settings RenderSettings,
	log *logger.Logger,
) *RenderService {
	if settings.Location == nil {
		settings.Location = format.Location(format.DefaultTimezone)
	}
	return &RenderService{
		receiptRepo: receiptRepo,
		engine:      engine,
		html:        render.NewHTMLEngine(),
		cache:       cache,
		settings:    settings,
		log:         log,
	}
}

// RenderedReceipt is a document plus the filename to download it as
type RenderedReceipt struct {
	Filename string
	Document *render.Document
}

// RendererStatus describes the configured engine
type RendererStatus struct {
	Engine string `json:"engine"`
	Format string `json:"format"`
}

// Status reports which engine produces downloads
func (s *RenderService) Status() *RendererStatus {
	return &RendererStatus{
		Engine: s.engine.Name(),
		Format: string(s.engine.Format()),
	}
}

// RenderReceipt produces the document for a receipt. Requesting "html"
// always returns the printable page; anything else uses the configured engine.
func (s *RenderService) RenderReceipt(ctx context.Context, id uuid.UUID, requested string) (*RenderedReceipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternalError(errors.Wrap(err, "load receipt for rendering"))
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}

	engine := s.engine
	if render.Format(requested) == render.FormatHTML {
		engine = s.html
	}

	key := documentCacheKey(receipt, engine.Name())
	if body, err := s.cache.Get(ctx, key); err == nil {
		return &RenderedReceipt{
			Filename: ReceiptFilename(receipt.ReceiptNumber, engine.Format()),
			Document: &render.Document{Format: engine.Format(), Body: body},
		}, nil
	} else if !errors.Is(err, repository.ErrCacheMiss) {
		s.log.Warnw("document cache read failed", "key", key, "error", err)
	}

	doc, err := engine.Render(ctx, BuildReceiptView(receipt, s.settings))
	if err != nil {
		s.log.Errorw("failed to render receipt",
			"receipt_id", receipt.ID,
			"engine", engine.Name(),
			"error", err,
		)
		return nil, apperror.NewRenderError(err)
	}

	if err := s.cache.Set(ctx, key, doc.Body); err != nil {
		s.log.Warnw("document cache write failed", "key", key, "error", err)
	}

	return &RenderedReceipt{
		Filename: ReceiptFilename(receipt.ReceiptNumber, doc.Format),
		Document: doc,
	}, nil
}

// BuildReceiptView formats a stored receipt for rendering
func BuildReceiptView(r *entity.Receipt, settings RenderSettings) *render.Receipt {
	return &render.Receipt{
		Institution:   settings.Institution,
		Title:         render.DefaultTitle,
		Number:        format.ReceiptNumber(r.ReceiptNumber),
		StudentName:   r.StudentName,
		ClassLevel:    r.ClassLevel.String(),
		Term:          r.Term.String(),
		Session:       r.Session,
		PaymentMethod: r.PaymentMethod,
		Items: lo.Map(r.FeeItems, func(item entity.FeeItem, _ int) render.Line {
			return render.Line{Title: item.Title, Amount: format.Naira(item.Amount)}
		}),
		Total:        format.Naira(r.TotalAmount),
		LogoURL:      r.ReceiptStyle.LogoURL,
		PrimaryColor: r.ReceiptStyle.PrimaryColor,
		FooterNote:   r.ReceiptStyle.FooterNote,
		GeneratedOn:  format.Date(r.CreatedAt, settings.Location),
		IssuedAt:     r.CreatedAt,
	}
}

// ReceiptFilename names a download after the padded receipt number
func ReceiptFilename(number int64, f render.Format) string {
	return fmt.Sprintf("receipt-%s.%s", format.ReceiptNumber(number), f.Extension())
}

func documentCacheKey(r *entity.Receipt, engine string) string {
	return fmt.Sprintf("receipt:%s:%d:%s", r.ID, r.UpdatedAt.UnixNano(), engine)
}
