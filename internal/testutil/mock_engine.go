package testutil

import (
	"context"

	"github.com/sangkips/schoolfee-receipts/pkg/render"
	"github.com/stretchr/testify/mock"
)

var _ render.Engine = (*MockEngine)(nil)

// MockEngine is a render.Engine that records calls
type MockEngine struct {
	mock.Mock
	format render.Format
	name   string
}

// NewMockEngine creates a mock producing documents of the given format
func NewMockEngine(name string, format render.Format) *MockEngine {
	return &MockEngine{name: name, format: format}
}

func (m *MockEngine) Render(ctx context.Context, r *render.Receipt) (*render.Document, error) {
	args := m.Called(ctx, r)
	doc, _ := args.Get(0).(*render.Document)
	return doc, args.Error(1)
}

func (m *MockEngine) Format() render.Format { return m.format }

func (m *MockEngine) Name() string { return m.name }
