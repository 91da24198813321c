package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastClient(url string) *Client {
	return New(url,
		WithRetry(2, time.Millisecond, 5*time.Millisecond),
		WithCreateBackoff(func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 3)
		}),
	)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(data interface{}) map[string]interface{} {
	return map[string]interface{}{"success": true, "message": "ok", "data": data}
}

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/receipts", r.URL.Path)
		writeJSON(w, http.StatusOK, ok([]map[string]interface{}{
			{"id": "b", "receiptNumber": 1002, "studentName": "Bola Ade", "totalAmount": 80000},
			{"id": "a", "receiptNumber": 1001, "studentName": "Ada Obi", "totalAmount": 65000},
		}))
	}))
	defer srv.Close()

	list, err := fastClient(srv.URL).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1002), list[0].ReceiptNumber)
	assert.Equal(t, 65000.0, list[1].TotalAmount)
}

func TestCreate_SendsIdempotencyKey(t *testing.T) {
	var got ReceiptInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		writeJSON(w, http.StatusCreated, ok(map[string]interface{}{"id": "a", "receiptNumber": 1001, "totalAmount": 65000}))
	}))
	defer srv.Close()

	r, err := fastClient(srv.URL).Create(context.Background(), &ReceiptInput{
		StudentName: "Ada Obi",
		FeeItems:    []FeeItem{{Title: "Tuition", Amount: 50000}, {Title: "Books", Amount: 15000}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1001), r.ReceiptNumber)
	assert.Equal(t, "Ada Obi", got.StudentName)
	assert.Len(t, got.FeeItems, 2)
}

func TestCreate_RetriesDuplicateNumber(t *testing.T) {
	var calls int32
	keys := make(chan string, 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys <- r.Header.Get("Idempotency-Key")
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"message": "Receipt number already in use, please try again",
				"reason":  "duplicate_receipt_number",
			})
			return
		}
		writeJSON(w, http.StatusCreated, ok(map[string]interface{}{"receiptNumber": 1003}))
	}))
	defer srv.Close()

	r, err := fastClient(srv.URL).Create(context.Background(), &ReceiptInput{StudentName: "Ada Obi"})
	require.NoError(t, err)
	assert.Equal(t, int64(1003), r.ReceiptNumber)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	first := <-keys
	assert.Equal(t, first, <-keys)
	assert.Equal(t, first, <-keys)
}

func TestCreate_ValidationIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "At least one fee item is required",
			"reason":  "validation_failed",
			"errors":  []map[string]string{{"field": "feeItems", "message": "At least one fee item is required"}},
		})
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).Create(context.Background(), &ReceiptInput{})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "feeItems", apiErr.Fields[0].Field)
	assert.Equal(t, "At least one fee item is required", UserMessage(err, "Failed to save receipt"))
}

func TestTransportRetriesUnavailable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, ok(map[string]int64{"nextReceiptNumber": 1001}))
	}))
	defer srv.Close()

	n, err := fastClient(srv.URL).NextReceiptNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1001), n)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestInternalErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "Internal server error"})
	}))
	defer srv.Close()

	err := fastClient(srv.URL).Delete(context.Background(), "a")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "Internal server error", UserMessage(err, "Failed to delete receipt"))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := fastClient(url).Get(context.Background(), "a")
	require.Error(t, err)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
	assert.Equal(t, NetworkErrorMessage, UserMessage(err, "Failed to load receipt"))
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/receipts/abc/pdf", r.URL.Path)
		assert.Equal(t, "html", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=receipt-1001.html")
		_, _ = w.Write([]byte("<html>receipt</html>"))
	}))
	defer srv.Close()

	d, err := fastClient(srv.URL).Download(context.Background(), "abc", "html")
	require.NoError(t, err)
	assert.Equal(t, "receipt-1001.html", d.Filename)
	assert.Equal(t, "text/html; charset=utf-8", d.ContentType)
	assert.Equal(t, "<html>receipt</html>", string(d.Body))
}

func TestDownload_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "Receipt not found"})
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).Download(context.Background(), "abc", "")
	assert.Equal(t, "Receipt not found", UserMessage(err, "Failed to download receipt"))
}

func TestUserMessage_Fallback(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "x"))
	assert.Equal(t, "Failed to load receipts", UserMessage(errors.New("decode response"), "Failed to load receipts"))
}
