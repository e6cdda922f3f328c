package service

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Gennadiyev/xplit-pay/internal/calculator"
	"github.com/Gennadiyev/xplit-pay/internal/metrics"
	"github.com/Gennadiyev/xplit-pay/internal/middleware"
	"github.com/Gennadiyev/xplit-pay/internal/models"
	"github.com/Gennadiyev/xplit-pay/internal/render"
	"github.com/Gennadiyev/xplit-pay/internal/storage"
	"github.com/Gennadiyev/xplit-pay/internal/xplit"
)

// maxDocumentSize bounds uploaded xplit sources. Real ledgers are a few
// kilobytes; a megabyte is already generous.
const maxDocumentSize = 1 << 20

// DocumentService serves document upload, retrieval and report rendering.
// All of its routes require authentication.
type DocumentService struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewDocumentService creates a new document service. metrics may be nil.
func NewDocumentService(store storage.Store, m *metrics.Metrics, logger *slog.Logger) *DocumentService {
	return &DocumentService{store: store, metrics: m, logger: logger}
}

// Routes registers the service's endpoints on mux.
func (s *DocumentService) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/documents", s.handleCreate)
	mux.HandleFunc("GET /v1/documents", s.handleList)
	mux.HandleFunc("GET /v1/documents/{id}", s.handleGet)
	mux.HandleFunc("GET /v1/documents/{id}/report", s.handleReport)
}

type statsResponse struct {
	Total         float64            `json:"total"`
	TotalPaid     map[string]float64 `json:"total_paid"`
	TotalExpenses map[string]float64 `json:"total_expenses"`
	Balance       map[string]float64 `json:"balance"`
	Settlements   []transferResponse `json:"settlements,omitempty"`
}

type transferResponse struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type entryResponse struct {
	SectionTitle  string             `json:"section_title"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Time          *time.Time         `json:"time,omitempty"`
	PaidBy        string             `json:"paid_by"`
	PaymentMethod string             `json:"payment_method"`
	Expense       float64            `json:"expense"`
	Splits        map[string]float64 `json:"splits"`
}

type extraPaymentResponse struct {
	Payer    string  `json:"payer"`
	Receiver string  `json:"receiver"`
	Amount   float64 `json:"amount"`
}

type documentResponse struct {
	ID            string                 `json:"id"`
	Version       string                 `json:"version"`
	Title         string                 `json:"title"`
	Author        string                 `json:"author"`
	MainCurrency  string                 `json:"main_currency"`
	Description   string                 `json:"description,omitempty"`
	Entries       []entryResponse        `json:"entries,omitempty"`
	ExtraPayments []extraPaymentResponse `json:"extra_payments,omitempty"`
	Stats         *statsResponse         `json:"stats,omitempty"`
	CreatedAt     int64                  `json:"created_at"`
}

func (s *DocumentService) handleCreate(w http.ResponseWriter, r *http.Request) {
	source, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	opts := xplit.Options{
		Support48Hours:        boolQuery(r, "support_48_hours"),
		AlwaysInvolveEveryone: boolQuery(r, "involve_everyone"),
		Logger:                s.logger,
	}
	start := time.Now()
	doc, err := xplit.Parse(string(source), opts)
	s.metrics.ObserveParse(time.Since(start), err)
	if err != nil {
		s.logger.Warn("parse failed", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: err.Error(),
			Kind:  xplit.Kind(err),
		})
		return
	}

	doc.OwnerID = middleware.GetUserID(r.Context())
	if err := s.store.CreateDocument(r.Context(), doc); err != nil {
		s.logger.Error("failed to store document", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	s.logger.Info("document stored",
		"document_id", doc.ID,
		"owner_id", doc.OwnerID,
		"entries", len(doc.Entries),
	)
	writeJSON(w, http.StatusCreated, toDocumentResponse(doc, calculator.Compute(doc)))
}

func (s *DocumentService) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.fetchOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc, calculator.Compute(doc)))
}

func (s *DocumentService) handleReport(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.fetchOwned(w, r)
	if !ok {
		return
	}

	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = "en"
	}
	report, err := render.Markdown(doc, locale)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, report)
}

func (s *DocumentService) handleList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		s.logger.Error("failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	responses := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, toDocumentResponse(doc, nil))
	}
	writeJSON(w, http.StatusOK, map[string][]documentResponse{"documents": responses})
}

// fetchOwned loads the document from the path and enforces that it belongs
// to the authenticated user. A foreign document reads as not found rather
// than forbidden, so IDs cannot be probed.
func (s *DocumentService) fetchOwned(w http.ResponseWriter, r *http.Request) (*models.Document, bool) {
	documentID := r.PathValue("id")
	doc, err := s.store.GetDocument(r.Context(), documentID)
	if err != nil {
		writeError(w, http.StatusNotFound, "document not found")
		return nil, false
	}
	if doc.OwnerID != middleware.GetUserID(r.Context()) {
		writeError(w, http.StatusNotFound, "document not found")
		return nil, false
	}
	return doc, true
}

func toDocumentResponse(doc *models.Document, stats *calculator.Stats) documentResponse {
	resp := documentResponse{
		ID:           doc.ID,
		Version:      doc.Version,
		Title:        doc.Title,
		Author:       doc.Author,
		MainCurrency: doc.MainCurrency,
		Description:  doc.Description,
		CreatedAt:    doc.CreatedAt,
	}
	for _, entry := range doc.Entries {
		resp.Entries = append(resp.Entries, entryResponse{
			SectionTitle:  entry.SectionTitle,
			Title:         entry.Title,
			Description:   entry.Description,
			Time:          entry.Time,
			PaidBy:        entry.PaidBy,
			PaymentMethod: entry.PaymentMethod,
			Expense:       entry.Expense,
			Splits:        entry.Splits,
		})
	}
	for _, payment := range doc.ExtraPayments {
		resp.ExtraPayments = append(resp.ExtraPayments, extraPaymentResponse(payment))
	}
	if stats != nil {
		resp.Stats = &statsResponse{
			Total:         stats.Total,
			TotalPaid:     stats.TotalPaid,
			TotalExpenses: stats.TotalExpenses,
			Balance:       stats.Balance,
		}
		for _, transfer := range calculator.SuggestSettlements(stats) {
			resp.Stats.Settlements = append(resp.Stats.Settlements, transferResponse(transfer))
		}
	}
	return resp
}

func boolQuery(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
