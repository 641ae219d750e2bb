package catalog

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgAddFailed    = "Lỗi khi thêm sản phẩm"
	msgUpdateFailed = "Lỗi khi cập nhật sản phẩm"
	msgDeleteFailed = "Lỗi khi xóa sản phẩm"
	msgListFailed   = "Lỗi khi lấy danh sách sản phẩm"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(
	template.New("products.html").
		Funcs(template.FuncMap{
			"formatVND": formatVND,
			"imageSrc":  imageSrc,
		}).
		ParseFS(templateFS, "templates/products.html"),
)

type productRow struct {
	Product
	Ordinal int
}

type productForm struct {
	ID          int
	ProductName string
	Price       string
	Quantity    string
}

type pageData struct {
	Rows    []productRow
	Form    productForm
	Editing bool
	Error   string
}

var emptyForm = productForm{Price: "0", Quantity: "1"}

func (s *Server) adminRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/products", http.StatusFound)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.page)

		r.Group(func(r chi.Router) {
			if s.WriteLimiter != nil {
				r.Use(s.WriteLimiter.Middleware)
			}
			r.Post("/", s.pageCreate)
			r.Post("/{id}", s.pageUpdate)
			r.Post("/{id}/delete", s.pageDelete)
		})
	})
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	data := pageData{Form: emptyForm}

	if id := r.URL.Query().Get("edit"); id != "" {
		p, err := s.Catalog.Get(r.Context(), id)
		if err != nil {
			s.renderError(w, r, err, msgNotFound, data)
			return
		}
		data.Editing = true
		data.Form = formFromProduct(p)
	}

	s.render(w, r, http.StatusOK, data)
}

func (s *Server) pageCreate(w http.ResponseWriter, r *http.Request) {
	patch, err := s.parseForm(w, r)
	if err != nil {
		s.log().Debug("parse product form failed", zap.Error(err))
		s.render(w, r, http.StatusBadRequest, pageData{Form: emptyForm, Error: msgAddFailed})
		return
	}

	var p Product
	patch.apply(&p)
	if _, err := s.Catalog.Create(r.Context(), p); err != nil {
		msg := msgAddFailed
		if errors.Is(err, ErrDuplicateName) {
			msg = msgDuplicateName
		}
		s.renderError(w, r, err, msg, pageData{Form: formFromProduct(p)})
		return
	}

	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (s *Server) pageUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	patch, err := s.parseForm(w, r)
	if err != nil {
		s.log().Debug("parse product form failed", zap.Error(err))
		s.render(w, r, http.StatusBadRequest, pageData{Form: emptyForm, Error: msgUpdateFailed})
		return
	}

	if _, err := s.Catalog.Update(r.Context(), id, patch); err != nil {
		s.renderError(w, r, err, msgUpdateFailed, pageData{Form: emptyForm})
		return
	}

	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (s *Server) pageDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.renderError(w, r, err, msgDeleteFailed, pageData{Form: emptyForm})
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

// parseForm reads the multipart product form. Only fields that were
// submitted end up in the patch; an empty file input keeps the stored image.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) (ProductPatch, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return ProductPatch{}, err
	}

	var patch ProductPatch
	if _, ok := r.Form["productName"]; ok {
		name := r.FormValue("productName")
		patch.ProductName = &name
	}
	if v := strings.TrimSpace(r.FormValue("price")); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ProductPatch{}, err
		}
		patch.Price = &price
	}
	if v := strings.TrimSpace(r.FormValue("quantity")); v != "" {
		qty, err := strconv.Atoi(v)
		if err != nil {
			return ProductPatch{}, err
		}
		patch.Quantity = &qty
	}

	f, _, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return ProductPatch{}, err
	default:
		defer f.Close()
		img, err := imageDataURL(f)
		if err != nil {
			return ProductPatch{}, err
		}
		patch.Image = &img
	}

	return patch, nil
}

// renderError re-renders the page with msg and the status matching err.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error, msg string, data pageData) {
	status, _ := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log().Error("admin page request failed", zap.Error(err), zap.String("path", r.URL.Path))
	}
	data.Error = msg
	s.render(w, r, status, data)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	products, err := s.Catalog.List(r.Context())
	if err != nil {
		s.log().Error("list products failed", zap.Error(err))
		if data.Error == "" {
			data.Error = msgListFailed
		}
		if status < http.StatusInternalServerError {
			status = http.StatusInternalServerError
		}
	}

	data.Rows = make([]productRow, len(products))
	for i, p := range products {
		data.Rows[i] = productRow{Product: p, Ordinal: i + 1}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTmpl.Execute(w, data); err != nil {
		s.log().Error("render products page failed", zap.Error(err))
	}
}

func formFromProduct(p Product) productForm {
	return productForm{
		ID:          p.ID,
		ProductName: p.ProductName,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		Quantity:    strconv.Itoa(p.Quantity),
	}
}
