package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/oauth2"

	"github.com/wealthwise/wealthwise/pkg/auth"
	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/query"
)

func TestListTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		q := r.URL.Query()
		if q.Get("page") != "1" || q.Get("size") != "5" {
			t.Errorf("query = %v, want page=1 size=5", q)
		}
		if q.Has("sortBy") {
			t.Errorf("list endpoint should not receive sortBy: %v", q)
		}
		io.WriteString(w, `{"content":[{"transactionId":7,"name":"Rent","amount":1200}],"totalPages":4}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("test-token"))
	page, err := c.ListTransactions(context.Background(), query.PageRequest{Page: 1})
	if err != nil {
		t.Fatalf("ListTransactions() error: %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].Name != "Rent" {
		t.Errorf("content = %+v", page.Content)
	}
	if page.TotalPages != 4 {
		t.Errorf("TotalPages = %d, want 4", page.TotalPages)
	}
	if page.Content[0].TransactionID != "7" {
		t.Errorf("TransactionID = %q, want 7", page.Content[0].TransactionID)
	}
}

func TestSearchTransactions(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/search" {
			http.NotFound(w, r)
			return
		}
		got = r.URL.RawQuery
		io.WriteString(w, `{"content":[],"totalPages":0}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	f := query.FilterSet{"minAmount": 100, "maxAmount": 50, "category": ""}
	if _, err := c.SearchTransactions(context.Background(), f, query.DefaultPage()); err != nil {
		t.Fatal(err)
	}
	want := "direction=desc&maxAmount=50&minAmount=100&page=0&size=5&sortBy=amount"
	if got != want {
		t.Errorf("query = %q, want %q", got, want)
	}
}

func TestSearchUnknownFilterNeverSent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	_, err := c.SearchTransactions(context.Background(), query.FilterSet{"frequency": "DAILY"}, query.DefaultPage())
	if !IsCode(err, CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
	if hits.Load() != 0 {
		t.Error("invalid search should not reach the server")
	}
}

func TestUnauthenticatedNeverSent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	tests := []struct {
		name   string
		tokens TokenSource
	}{
		{"nil source", nil},
		{"empty static", StaticToken("")},
		{"empty store", auth.NewStore(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(srv.URL, tt.tokens)
			_, err := c.ListTransactions(context.Background(), query.DefaultPage())
			if !IsCode(err, CodeUnauthenticated) {
				t.Fatalf("err = %v, want UNAUTHENTICATED", err)
			}
			if !goerrors.IsCategory(err, goerrors.CategoryAuth) {
				t.Errorf("category should be authentication: %v", err)
			}
		})
	}
	if hits.Load() != 0 {
		t.Errorf("server hits = %d, want 0", hits.Load())
	}
}

type stubRefresher struct {
	calls atomic.Int32
	next  *oauth2.Token
	err   error
}

func (r *stubRefresher) Refresh(context.Context, *oauth2.Token) (*oauth2.Token, error) {
	r.calls.Add(1)
	return r.next, r.err
}

func TestRefreshFailureNeverSent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	store := auth.NewStore(&stubRefresher{err: errors.New("provider unreachable")})
	store.Set(&oauth2.Token{AccessToken: "old", RefreshToken: "r", Expiry: time.Now().Add(time.Second)}) //nolint:errcheck

	c := New(srv.URL, store)
	err := c.DeleteTransaction(context.Background(), "1")
	if !IsCode(err, CodeCredentialRefreshFailed) {
		t.Fatalf("err = %v, want CREDENTIAL_REFRESH_FAILED", err)
	}
	if !strings.Contains(err.Error(), "provider unreachable") {
		t.Errorf("err should keep the cause: %v", err)
	}
	if hits.Load() != 0 {
		t.Error("request should not be sent after refresh failure")
	}
}

func TestGatewayRefreshesBeforeSending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer fresh" {
			t.Errorf("Authorization = %q, want Bearer fresh", got)
		}
		io.WriteString(w, `{"content":[],"totalPages":0}`) //nolint:errcheck
	}))
	defer srv.Close()

	ref := &stubRefresher{next: &oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}}
	store := auth.NewStore(ref)
	store.Set(&oauth2.Token{AccessToken: "stale", RefreshToken: "r", Expiry: time.Now().Add(2 * time.Second)}) //nolint:errcheck

	c := New(srv.URL, store)
	for i := 0; i < 3; i++ {
		if _, err := c.ListTransactions(context.Background(), query.DefaultPage()); err != nil {
			t.Fatal(err)
		}
	}
	if got := ref.calls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		body     string
		code     string
		category goerrors.Category
		message  string
	}{
		{http.StatusUnauthorized, `{"error":"not authenticated"}`, CodeUnauthenticated, goerrors.CategoryAuth, "not authenticated"},
		{http.StatusNotFound, ``, CodeNotFound, goerrors.CategoryNotFound, "Not Found"},
		{http.StatusConflict, `{"message":"Transaction with name 'Rent' already exists"}`, CodeDuplicateResource, goerrors.CategoryConflict, "Transaction with name 'Rent' already exists"},
		{http.StatusBadRequest, `{"message":"amount must be positive"}`, CodeValidation, goerrors.CategoryValidation, "amount must be positive"},
		{http.StatusUnprocessableEntity, `plain text`, CodeValidation, goerrors.CategoryValidation, "plain text"},
		{http.StatusInternalServerError, `{"message":"boom","error":"Internal Server Error"}`, CodeAPI, goerrors.CategoryExternal, "boom"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body) //nolint:errcheck
			}))
			defer srv.Close()

			c := New(srv.URL, StaticToken("tok"))
			_, err := c.CreateTransaction(context.Background(), domain.Transaction{Name: "Rent"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := Code(err); got != tt.code {
				t.Errorf("Code = %q, want %q", got, tt.code)
			}
			if !goerrors.IsCategory(err, tt.category) {
				t.Errorf("category mismatch: %v", err)
			}
			if got := Message(err); got != tt.message {
				t.Errorf("Message = %q, want %q", got, tt.message)
			}
			if !IsStatus(err, tt.status) {
				t.Errorf("IsStatus(%d) = false", tt.status)
			}
			if !strings.Contains(err.Error(), "HTTP ") {
				t.Errorf("error = %q, want it to mention the HTTP status", err.Error())
			}
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, StaticToken("tok"))
	_, err := c.GetTransaction(context.Background(), "1")
	if !IsCode(err, CodeNetwork) {
		t.Fatalf("err = %v, want NETWORK_ERROR", err)
	}
	if got := UserMessage(err); !strings.Contains(got, "Network error") {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestCreateAndUpdateTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatal(err)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if _, ok := in["amount"].(float64); !ok {
			t.Errorf("amount should be a JSON number: %#v", in["amount"])
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/transactions":
			if _, ok := in["transactionId"]; ok {
				t.Error("create should not send an id")
			}
			in["transactionId"] = 99
		case r.Method == http.MethodPatch && r.URL.Path == "/transactions/99":
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(in) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	amt, _ := domain.NewAmount("12.75")
	created, err := c.CreateTransaction(context.Background(), domain.Transaction{Name: "Lunch", Amount: amt, TransactionType: domain.TransactionExpense})
	if err != nil {
		t.Fatal(err)
	}
	if created.TransactionID != "99" {
		t.Errorf("TransactionID = %q, want 99", created.TransactionID)
	}

	created.Name = "Dinner"
	updated, err := c.UpdateTransaction(context.Background(), created.TransactionID, *created)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Dinner" {
		t.Errorf("Name = %q, want Dinner", updated.Name)
	}
}

func TestUpdateRecurring(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/recurring-transactions/7" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var got domain.RecurringTransaction
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if got.RecurringTransactionID != "7" || got.IsActive || got.RecurringTransactionName != "Gym" {
			t.Errorf("body = %+v", got)
		}
		json.NewEncoder(w).Encode(got) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	r := domain.RecurringTransaction{RecurringTransactionName: "Gym", Amount: domain.AmountFromFloat(35), Frequency: domain.FrequencyMonthly}
	updated, err := c.Recurring().Update(context.Background(), "7", r)
	if err != nil {
		t.Fatal(err)
	}
	if updated.RecurringTransactionID != "7" || updated.IsActive {
		t.Errorf("updated = %+v", updated)
	}
}

func TestDeleteRecurring(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/recurring-transactions/5" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	if err := c.Recurring().Delete(context.Background(), "5"); err != nil {
		t.Fatal(err)
	}
}

func TestSearchRecurring(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recurring-transactions/search" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("isActive") != "true" || q.Get("frequency") != "MONTHLY" {
			t.Errorf("query = %v", q)
		}
		io.WriteString(w, `{"content":[{"recurringTransactionId":"r-1","recurringTransactionName":"Gym","amount":"30.00","frequency":"MONTHLY","isActive":true}],"totalPages":1}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	page, err := c.Recurring().Search(context.Background(), query.FilterSet{"isActive": true, "frequency": "MONTHLY"}, query.DefaultPage())
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Content) != 1 || page.Content[0].RecurringTransactionID != "r-1" {
		t.Fatalf("content = %+v", page.Content)
	}
	if !page.Content[0].Amount.Equal(domain.AmountFromFloat(30).Decimal) {
		t.Errorf("Amount = %s, want 30", page.Content[0].Amount)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("month") != "2024-05" {
			t.Errorf("month = %q", r.URL.Query().Get("month"))
		}
		switch r.URL.Path {
		case "/dashboard/transaction-summary":
			io.WriteString(w, `{"income":5000,"expenses":3200.5}`) //nolint:errcheck
		case "/chart/expense-summary-by-category":
			io.WriteString(w, `[{"category":"Food","amount":420.1}]`) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	s, err := c.TransactionSummary(context.Background(), "2024-05")
	if err != nil {
		t.Fatal(err)
	}
	if s.Income.String() != "5000" || s.Expenses.String() != "3200.5" {
		t.Errorf("summary = %+v", s)
	}
	if !s.Savings.IsZero() {
		t.Errorf("missing savings should decode as zero, got %s", s.Savings)
	}
	rows, err := c.ExpensesByCategory(context.Background(), "2024-05")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Category != "Food" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestRegisterUser(t *testing.T) {
	var called atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/users" {
			called.Store(true)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := New(srv.URL, StaticToken("tok")).RegisterUser(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !called.Load() {
		t.Error("POST /users not received")
	}
}

func TestReceiptView(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/receipt/view/1":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write(png) //nolint:errcheck
		case "/receipt/view/2":
			w.WriteHeader(http.StatusNotFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	rec, err := c.ViewReceipt(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.ContentType != "image/png" || !rec.IsImage() {
		t.Errorf("ContentType = %q, want sniffed image/png", rec.ContentType)
	}
	if !bytes.Equal(rec.Data, png) {
		t.Error("data mismatch")
	}

	_, err = c.ViewReceipt(context.Background(), "2")
	if !IsCode(err, CodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestReceiptDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="receipt-42.pdf"`)
		io.WriteString(w, "%PDF-1.4") //nolint:errcheck
	}))
	defer srv.Close()

	var buf bytes.Buffer
	name, n, err := New(srv.URL, StaticToken("tok")).DownloadReceipt(context.Background(), "42", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if name != "receipt-42.pdf" || n != 8 || buf.String() != "%PDF-1.4" {
		t.Errorf("got (%q, %d, %q)", name, n, buf.String())
	}
}

func TestReceiptUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/receipt" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		file, hdr, err := r.FormFile("receipt")
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(file)
		if hdr.Filename != "lunch.jpg" || string(data) != "jpegdata" {
			t.Errorf("receipt part = %q %q", hdr.Filename, data)
		}
		metas := r.MultipartForm.File["metadata"]
		if len(metas) != 1 {
			t.Fatalf("metadata parts = %d, want 1", len(metas))
		}
		if ct := metas[0].Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("metadata Content-Type = %q", ct)
		}
		mf, _ := metas[0].Open()
		meta, _ := io.ReadAll(mf)
		if string(meta) != `{"transactionId":42}` {
			t.Errorf("metadata = %s", meta)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := New(srv.URL, StaticToken("tok")).UploadReceipt(context.Background(), "42", "/tmp/lunch.jpg", strings.NewReader("jpegdata"))
	if err != nil {
		t.Fatal(err)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type closeTracker struct {
	io.Reader
	closed atomic.Bool
}

func (c *closeTracker) Close() error {
	c.closed.Store(true)
	return nil
}

func TestUploadReceiptClosesBody(t *testing.T) {
	body := &closeTracker{Reader: strings.NewReader("")}
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusCreated, Body: body, Header: http.Header{}, Request: r}, nil
	})}

	c := New("http://wealthwise.test", StaticToken("tok"), WithHTTPClient(hc))
	if err := c.UploadReceipt(context.Background(), "42", "lunch.jpg", strings.NewReader("jpegdata")); err != nil {
		t.Fatal(err)
	}
	if !body.closed.Load() {
		t.Error("response body left open")
	}
}

func TestWithTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c := New("http://wealthwise.test", StaticToken("tok"), WithHTTPClient(shared), WithTimeout(3*time.Second))

	if shared.Timeout != time.Minute {
		t.Errorf("shared client timeout = %v, want 1m", shared.Timeout)
	}
	if c.httpClient.Timeout != 3*time.Second {
		t.Errorf("client timeout = %v, want 3s", c.httpClient.Timeout)
	}
	if c.httpClient == shared {
		t.Error("client still points at the shared http.Client")
	}
}
