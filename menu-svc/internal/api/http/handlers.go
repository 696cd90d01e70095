package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"qrmenu/menu-svc/internal/domain"
	"qrmenu/menu-svc/internal/service"
	"qrmenu/pkg/httpx"
	"qrmenu/pkg/plan"
)

const maxUploadSize = 10 << 20

type Handler struct {
	Catalog  service.CatalogServiceInterface
	Tables   service.TableServiceInterface
	Profiles service.ProfileServiceInterface
	Menus    service.MenuServiceInterface
}

func NewHandler(catalog service.CatalogServiceInterface, tables service.TableServiceInterface,
	profiles service.ProfileServiceInterface, menus service.MenuServiceInterface) *Handler {
	return &Handler{
		Catalog:  catalog,
		Tables:   tables,
		Profiles: profiles,
		Menus:    menus,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", httpx.Health("menu-svc")).Methods("GET")

	r.HandleFunc("/api/menu/{token}", h.getPublicMenu).Methods("GET")

	r.HandleFunc("/api/categories", h.createCategory).Methods("POST")
	r.HandleFunc("/api/categories", h.getCategories).Methods("GET")
	r.HandleFunc("/api/categories/{id}", h.updateCategory).Methods("PUT")
	r.HandleFunc("/api/categories/{id}", h.deleteCategory).Methods("DELETE")

	r.HandleFunc("/api/products", h.createProduct).Methods("POST")
	r.HandleFunc("/api/products", h.getProducts).Methods("GET")
	r.HandleFunc("/api/products/{id}", h.getProduct).Methods("GET")
	r.HandleFunc("/api/products/{id}", h.updateProduct).Methods("PUT", "PATCH")
	r.HandleFunc("/api/products/{id}", h.deleteProduct).Methods("DELETE")
	r.HandleFunc("/api/products/{id}/image", h.uploadProductImage).Methods("POST")

	r.HandleFunc("/api/tables", h.generateTables).Methods("POST")
	r.HandleFunc("/api/tables", h.getTables).Methods("GET")
	r.HandleFunc("/api/tables/{id}", h.deleteTable).Methods("DELETE")
	r.HandleFunc("/api/tables/{id}/qrcode", h.getTableQRCode).Methods("GET")

	r.HandleFunc("/api/profile", h.getProfile).Methods("GET")
	r.HandleFunc("/api/profile", h.updateProfile).Methods("PUT")
	r.HandleFunc("/api/profile/theme", h.updateTheme).Methods("PUT")
	r.HandleFunc("/api/profile/logo", h.uploadLogo).Methods("POST")
}

// writeError maps service errors onto status codes. Unknown errors are
// logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMenuNotFound):
		httpx.WriteError(w, http.StatusNotFound, "menu not found")
	case errors.Is(err, domain.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidImage):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict, please retry")
	case errors.Is(err, plan.ErrPremiumRequired):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	default:
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := httpx.OwnerID(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// readImage pulls the "image" part of a multipart upload.
func readImage(w http.ResponseWriter, r *http.Request) (service.Image, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "file too large")
		return service.Image{}, nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "error retrieving the file")
		return service.Image{}, nil, false
	}

	img := service.Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	return img, func() { file.Close() }, true
}

func (h *Handler) getPublicMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.Menus.Resolve(r.Context(), mux.Vars(r)["token"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, menu)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var in domain.CategoryInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.Catalog.CreateCategory(r.Context(), ownerID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) getCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	categories, err := h.Catalog.ListCategories(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, categories)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var in domain.CategoryInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.Catalog.UpdateCategory(r.Context(), ownerID, mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteCategory(r.Context(), ownerID, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var in domain.ProductInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.Catalog.CreateProduct(r.Context(), ownerID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) getProducts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	products, err := h.Catalog.ListProducts(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	p, err := h.Catalog.GetProduct(r.Context(), ownerID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var patch domain.ProductPatch
	if !decode(w, r, &patch) {
		return
	}
	p, err := h.Catalog.UpdateProduct(r.Context(), ownerID, mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteProduct(r.Context(), ownerID, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) uploadProductImage(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	img, closeFile, ok := readImage(w, r)
	if !ok {
		return
	}
	defer closeFile()

	url, err := h.Catalog.UploadProductImage(r.Context(), ownerID, mux.Vars(r)["id"], img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message":   "Image uploaded successfully",
		"image_url": url,
	})
}

func (h *Handler) generateTables(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var in domain.GenerateTablesInput
	if !decode(w, r, &in) {
		return
	}
	tables, err := h.Tables.Generate(r.Context(), ownerID, in.Count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tables)
}

func (h *Handler) getTables(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	tables, err := h.Tables.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tables)
}

func (h *Handler) deleteTable(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	if err := h.Tables.Delete(r.Context(), ownerID, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getTableQRCode(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	png, err := h.Tables.QRCode(r.Context(), ownerID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	p, err := h.Profiles.Get(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var in domain.ProfileInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.Profiles.Update(r.Context(), ownerID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) updateTheme(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var in domain.ThemeInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.Profiles.SetTheme(r.Context(), ownerID, in.MenuTheme)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) uploadLogo(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	img, closeFile, ok := readImage(w, r)
	if !ok {
		return
	}
	defer closeFile()

	url, err := h.Profiles.UploadLogo(r.Context(), ownerID, img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"logo_url": url})
}
