package websocket

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"MotoZonePos/app/models"
	"MotoZonePos/app/services"
)

// RESTHandlers serves the HTTP API the front-end talks to. Every response
// uses the envelope format {"success": bool, "data": ..., "message": ...},
// the same shape the remote backend uses, so UI code handles both sides
// identically.
type RESTHandlers struct {
	server    *Server
	auth      *services.AuthService
	data      *services.DataService
	checkout  *services.CheckoutService
	dashboard *services.DashboardService
	receipts  *services.ReceiptService
	sheets    *services.SheetsExportService
	status    *services.StatusService
}

// NewRESTHandlers creates the REST surface over the application services
func NewRESTHandlers(
	auth *services.AuthService,
	data *services.DataService,
	checkout *services.CheckoutService,
	dashboard *services.DashboardService,
	receipts *services.ReceiptService,
	sheets *services.SheetsExportService,
	status *services.StatusService,
) *RESTHandlers {
	return &RESTHandlers{
		auth:      auth,
		data:      data,
		checkout:  checkout,
		dashboard: dashboard,
		receipts:  receipts,
		sheets:    sheets,
		status:    status,
	}
}

// RegisterRoutes attaches every endpoint to the mux
func (h *RESTHandlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/login", h.HandleLogin)
	mux.HandleFunc("/api/auth/register", h.HandleRegister)
	mux.HandleFunc("/api/auth/logout", h.HandleLogout)
	mux.HandleFunc("/api/auth/profile", h.HandleProfile)
	mux.HandleFunc("/api/status", h.HandleStatus)
	mux.HandleFunc("/api/products", h.HandleProducts)
	mux.HandleFunc("/api/products/", h.HandleProductSubtree)
	mux.HandleFunc("/api/services", h.HandleServices)
	mux.HandleFunc("/api/services/", h.HandleServiceByID)
	mux.HandleFunc("/api/sales", h.HandleSales)
	mux.HandleFunc("/api/sales/", h.HandleSaleSubtree)
	mux.HandleFunc("/api/sale-items", h.HandleSaleItems)
	mux.HandleFunc("/api/checkout", h.HandleCheckout)
	mux.HandleFunc("/api/checkout/items", h.HandleCheckoutItems)
	mux.HandleFunc("/api/checkout/items/", h.HandleCheckoutItemByIndex)
	mux.HandleFunc("/api/checkout/commit", h.HandleCheckoutCommit)
	mux.HandleFunc("/api/dashboard", h.HandleDashboard)
	mux.HandleFunc("/api/reports/sheets-export", h.HandleSheetsExport)
}

// --- Response helpers ---

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// begin applies CORS headers and swallows preflight requests. Returns
// false when the handler should stop.
func begin(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	return true
}

func writeData(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{Success: false, Message: message})
}

// writeServiceError maps service errors onto HTTP status codes
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotAuthenticated), errors.Is(err, models.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInsufficientStock):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("REST API: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// requireSession checks the bearer token against the active session
func (h *RESTHandlers) requireSession(w http.ResponseWriter, r *http.Request) bool {
	if !h.auth.IsAuthenticated() {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return false
	}

	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header || token != h.auth.SessionToken() {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return false
	}
	return true
}

// requireAdmin additionally checks the session user's role server-side
func (h *RESTHandlers) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !h.requireSession(w, r) {
		return false
	}
	if !h.auth.IsAdmin() {
		writeServiceError(w, models.ErrForbidden)
		return false
	}
	return true
}

// --- Auth ---

// HandleLogin authenticates and opens the session
func (h *RESTHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	user, err := h.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.data.FetchAll(r.Context()); err != nil {
		log.Printf("REST API: initial data load after login: %v", err)
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"token":   h.auth.SessionToken(),
		"offline": h.auth.IsOfflineSession(),
	})
}

// HandleRegister creates an account. Admin only.
func (h *RESTHandlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	user, err := h.auth.Register(r.Context(), body.Email, body.Password, body.Name, body.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, user)
}

// HandleLogout ends the session
func (h *RESTHandlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !h.requireSession(w, r) {
		return
	}

	h.auth.Logout()
	writeData(w, http.StatusOK, nil)
}

// HandleProfile returns the session user
func (h *RESTHandlers) HandleProfile(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !h.requireSession(w, r) {
		return
	}
	writeData(w, http.StatusOK, h.auth.CurrentUser())
}

// HandleStatus reports connectivity and per-collection load state
func (h *RESTHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	payload := map[string]interface{}{
		"availability": string(h.status.Status()),
		"last_checked": h.status.LastChecked(),
		"collections":  h.data.CollectionStates(),
	}
	if h.server != nil {
		payload["connected_clients"] = h.server.GetConnectedClients()
	}
	writeData(w, http.StatusOK, payload)
}

// --- Products ---

// HandleProducts routes GET (list) and POST (create) for /api/products
func (h *RESTHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !h.requireSession(w, r) {
			return
		}
		products, err := h.data.FetchProducts(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, products)

	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		var draft models.ProductDraft
		if !decodeBody(w, r, &draft) {
			return
		}
		product, err := h.data.AddProduct(r.Context(), draft)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusCreated, product)

	default:
		methodNotAllowed(w)
	}
}

// HandleProductSubtree routes /api/products/{id}, /api/products/categories
// and /api/products/stats/*.
func (h *RESTHandlers) HandleProductSubtree(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/products/")

	switch {
	case rest == "categories":
		h.handleCategories(w, r)
	case strings.HasPrefix(rest, "categories/"):
		h.handleCategoryByID(w, r, strings.TrimPrefix(rest, "categories/"))
	case rest == "stats/sales":
		h.handleProductStats(w, r)
	case rest == "stats/services":
		h.handleServiceStats(w, r)
	default:
		h.handleProductByID(w, r, rest)
	}
}

func (h *RESTHandlers) handleProductByID(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		if !h.requireAdmin(w, r) {
			return
		}
		var patch models.ProductPatch
		if !decodeBody(w, r, &patch) {
			return
		}
		product, err := h.data.UpdateProduct(r.Context(), id, patch)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, product)

	case http.MethodDelete:
		if !h.requireAdmin(w, r) {
			return
		}
		if err := h.data.DeleteProduct(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, nil)

	default:
		methodNotAllowed(w)
	}
}

func (h *RESTHandlers) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !h.requireSession(w, r) {
			return
		}
		categories, err := h.data.FetchCategories(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, categories)

	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		var draft models.CategoryDraft
		if !decodeBody(w, r, &draft) {
			return
		}
		category, err := h.data.AddCategory(r.Context(), draft)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusCreated, category)

	default:
		methodNotAllowed(w)
	}
}

func (h *RESTHandlers) handleCategoryByID(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		if !h.requireAdmin(w, r) {
			return
		}
		var patch models.CategoryPatch
		if !decodeBody(w, r, &patch) {
			return
		}
		category, err := h.data.UpdateCategory(r.Context(), id, patch)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, category)

	case http.MethodDelete:
		if !h.requireAdmin(w, r) {
			return
		}
		if err := h.data.DeleteCategory(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, nil)

	default:
		methodNotAllowed(w)
	}
}

func (h *RESTHandlers) handleProductStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !h.requireSession(w, r) {
		return
	}
	stats, err := h.data.ProductSalesStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (h *RESTHandlers) handleServiceStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !h.requireSession(w, r) {
		return
	}
	stats, err := h.data.ServiceSalesStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

// --- Services (the repair/maintenance catalog) ---

// HandleServices routes GET (list) and POST (create) for /api/services
func (h *RESTHandlers) HandleServices(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !h.requireSession(w, r) {
			return
		}
		services, err := h.data.FetchServices(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, services)

	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		var draft models.ServiceDraft
		if !decodeBody(w, r, &draft) {
			return
		}
		service, err := h.data.AddService(r.Context(), draft)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusCreated, service)

	default:
		methodNotAllowed(w)
	}
}

// HandleServiceByID routes PUT and DELETE for /api/services/{id}
func (h *RESTHandlers) HandleServiceByID(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/services/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		if !h.requireAdmin(w, r) {
			return
		}
		var patch models.ServicePatch
		if !decodeBody(w, r, &patch) {
			return
		}
		service, err := h.data.UpdateService(r.Context(), id, patch)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, service)

	case http.MethodDelete:
		if !h.requireAdmin(w, r) {
			return
		}
		if err := h.data.DeleteService(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, nil)

	default:
		methodNotAllowed(w)
	}
}

// --- Sales ---

// HandleSales lists sales for /api/sales
func (h *RESTHandlers) HandleSales(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !h.requireSession(w, r) {
		return
	}

	sales, err := h.data.FetchSales(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, sales)
}

// HandleSaleSubtree routes /api/sales/summary, /api/sales/date-range,
// /api/sales/cashier/{id}, /api/sales/{id} and the receipt endpoints.
func (h *RESTHandlers) HandleSaleSubtree(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !h.requireSession(w, r) {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/sales/")

	switch {
	case rest == "summary":
		summary, err := h.data.SalesSummary(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, summary)

	case rest == "date-range":
		start := r.URL.Query().Get("start_date")
		end := r.URL.Query().Get("end_date")
		if start == "" || end == "" {
			writeError(w, http.StatusBadRequest, "start_date and end_date are required")
			return
		}
		sales, err := h.data.SalesByDateRange(r.Context(), start, end)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, sales)

	case strings.HasPrefix(rest, "cashier/"):
		sales, err := h.data.SalesByCashier(r.Context(), strings.TrimPrefix(rest, "cashier/"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, sales)

	case strings.HasSuffix(rest, "/receipt"):
		h.handleReceipt(w, r, strings.TrimSuffix(rest, "/receipt"), false)

	case strings.HasSuffix(rest, "/receipt/qr"):
		h.handleReceipt(w, r, strings.TrimSuffix(rest, "/receipt/qr"), true)

	case rest != "" && !strings.Contains(rest, "/"):
		sale, err := h.data.SaleByID(r.Context(), rest)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, sale)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleReceipt renders a sale as text or as a QR PNG
func (h *RESTHandlers) handleReceipt(w http.ResponseWriter, r *http.Request, saleID string, asQR bool) {
	sale, err := h.data.SaleByID(r.Context(), saleID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if asQR {
		png, err := h.receipts.QRCode(sale)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(h.receipts.RenderText(sale)))
}

// HandleSaleItems returns every sale line flattened with its sale date
func (h *RESTHandlers) HandleSaleItems(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !h.requireSession(w, r) {
		return
	}

	items, err := h.data.SaleItems(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

// --- Checkout ---

// HandleCheckout returns the cart (GET) or clears it (DELETE)
func (h *RESTHandlers) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if !h.requireSession(w, r) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeData(w, http.StatusOK, map[string]interface{}{
			"lines":  h.checkout.Lines(),
			"totals": h.checkout.Totals(),
		})

	case http.MethodDelete:
		h.checkout.Clear()
		writeData(w, http.StatusOK, nil)

	default:
		methodNotAllowed(w)
	}
}

// HandleCheckoutItems adds a catalog item to the cart
func (h *RESTHandlers) HandleCheckoutItems(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !h.requireSession(w, r) {
		return
	}

	var body struct {
		ItemID   string `json:"item_id"`
		ItemType string `json:"item_type"`
		Quantity int    `json:"quantity"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}

	var err error
	switch body.ItemType {
	case models.ItemTypeProduct:
		err = h.checkout.AddProduct(body.ItemID, body.Quantity)
	case models.ItemTypeService:
		err = h.checkout.AddService(body.ItemID, body.Quantity)
	default:
		writeError(w, http.StatusBadRequest, "item_type must be product or service")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"lines":  h.checkout.Lines(),
		"totals": h.checkout.Totals(),
	})
}

// HandleCheckoutItemByIndex updates (PUT) or removes (DELETE) one cart line
func (h *RESTHandlers) HandleCheckoutItemByIndex(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if !h.requireSession(w, r) {
		return
	}

	index, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/checkout/items/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cart line index")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var body struct {
			Quantity *int     `json:"quantity"`
			Discount *float64 `json:"discount"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Quantity != nil {
			if err := h.checkout.SetLineQuantity(index, *body.Quantity); err != nil {
				writeServiceError(w, err)
				return
			}
		}
		if body.Discount != nil {
			if err := h.checkout.SetLineDiscount(index, *body.Discount); err != nil {
				writeServiceError(w, err)
				return
			}
		}
		writeData(w, http.StatusOK, map[string]interface{}{
			"lines":  h.checkout.Lines(),
			"totals": h.checkout.Totals(),
		})

	case http.MethodDelete:
		if err := h.checkout.RemoveLine(index); err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, map[string]interface{}{
			"lines":  h.checkout.Lines(),
			"totals": h.checkout.Totals(),
		})

	default:
		methodNotAllowed(w)
	}
}

// HandleCheckoutCommit turns the cart into a persisted sale
func (h *RESTHandlers) HandleCheckoutCommit(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !h.requireSession(w, r) {
		return
	}

	var body struct {
		PaymentMethod string `json:"payment_method"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	cashierID := ""
	if user := h.auth.CurrentUser(); user != nil {
		cashierID = user.ID
	}

	sale, err := h.checkout.Commit(r.Context(), body.PaymentMethod, cashierID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, sale)
}

// --- Dashboard and reports ---

// HandleDashboard returns the aggregated dashboard payload
func (h *RESTHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !h.requireSession(w, r) {
		return
	}

	dashboard, err := h.dashboard.Load(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, dashboard)
}

// HandleSheetsExport appends one day's sales to the configured spreadsheet.
// Admin only.
func (h *RESTHandlers) HandleSheetsExport(w http.ResponseWriter, r *http.Request) {
	if !begin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}

	var body struct {
		Date string `json:"date"` // 2006-01-02
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	rows, err := h.sheets.ExportDay(r.Context(), body.Date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"exported_rows": rows})
}
