package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Avinashkumar1307/project-grap/internal/model"
	"github.com/Avinashkumar1307/project-grap/internal/repository"
)

const (
	maxImageBytes   = 5 << 20 // 5 MB per file
	maxGalleryFiles = 5
	imageFolder     = "projects"
	uploadTimeout   = 30 * time.Second
)

var allowedImageExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

func validateImageFile(fh *multipart.FileHeader) string {
	if fh.Size > maxImageBytes {
		return "file exceeds 5MB limit"
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExt[ext] {
		return "unsupported file type"
	}
	return ""
}

// loadOwnProject fetches a project and checks the caller may modify it.
func (h *ProjectHandler) loadOwnProject(c echo.Context, ctx context.Context) (model.Project, int, string) {
	id, err := parseID(c, "id")
	if err != nil {
		return model.Project{}, http.StatusBadRequest, "invalid id"
	}
	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return model.Project{}, http.StatusNotFound, "project not found"
		}
		return model.Project{}, http.StatusInternalServerError, "query failed"
	}
	if p.SellerID == nil || !canModify(c, *p.SellerID) {
		return model.Project{}, http.StatusForbidden, "not your project"
	}
	return p, 0, ""
}

// UploadImage stores a single cover image and sets it on the project.  The
// previous cover object, if any, is removed from the bucket.
func (h *ProjectHandler) UploadImage(c echo.Context) error {
	if h.Store == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "storage not configured"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), uploadTimeout)
	defer cancel()

	p, code, msg := h.loadOwnProject(c, ctx)
	if msg != "" {
		return c.JSON(code, echo.Map{"error": msg})
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file required"})
	}
	if msg := validateImageFile(fh); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "open upload failed"})
	}
	defer f.Close()

	url, err := h.Store.Upload(ctx, imageFolder, fh.Filename, fh.Header.Get("Content-Type"), f, fh.Size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	old := p.Image
	p.Image = &url
	if err := h.Projects.Update(ctx, &p); err != nil {
		_ = h.Store.Delete(ctx, url)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if old != nil {
		_ = h.Store.Delete(ctx, *old)
	}
	return c.JSON(http.StatusOK, echo.Map{"image": url})
}

// UploadImages stores up to five gallery images and appends them to the
// project's image list.
func (h *ProjectHandler) UploadImages(c echo.Context) error {
	if h.Store == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "storage not configured"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), uploadTimeout)
	defer cancel()

	p, code, msg := h.loadOwnProject(c, ctx)
	if msg != "" {
		return c.JSON(code, echo.Map{"error": msg})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart form required"})
	}
	files := form.File["images"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "images required"})
	}
	if len(files) > maxGalleryFiles {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "too many files"})
	}
	for _, fh := range files {
		if msg := validateImageFile(fh); msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
	}

	uploaded := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err == nil {
			url, upErr := h.Store.Upload(ctx, imageFolder, fh.Filename, fh.Header.Get("Content-Type"), f, fh.Size)
			f.Close()
			err = upErr
			if upErr == nil {
				uploaded = append(uploaded, url)
				continue
			}
		}
		// Roll back anything stored so far on the first failure.
		for _, u := range uploaded {
			_ = h.Store.Delete(ctx, u)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	p.Images = append(p.Images, uploaded...)
	if err := h.Projects.Update(ctx, &p); err != nil {
		for _, u := range uploaded {
			_ = h.Store.Delete(ctx, u)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"images": p.Images, "uploaded": uploaded})
}

type deleteImageReq struct {
	URL string `json:"url"`
}

// DeleteImage removes one uploaded object and detaches it from the project.
func (h *ProjectHandler) DeleteImage(c echo.Context) error {
	if h.Store == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "storage not configured"})
	}
	var req deleteImageReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), uploadTimeout)
	defer cancel()

	p, code, msg := h.loadOwnProject(c, ctx)
	if msg != "" {
		return c.JSON(code, echo.Map{"error": msg})
	}

	found := false
	if p.Image != nil && *p.Image == req.URL {
		p.Image = nil
		found = true
	}
	kept := p.Images[:0]
	for _, u := range p.Images {
		if u == req.URL {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	p.Images = kept
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "image not attached to project"})
	}

	if err := h.Projects.Update(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	_ = h.Store.Delete(ctx, req.URL)
	return c.NoContent(http.StatusNoContent)
}
