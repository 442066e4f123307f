// controllers/spec_controller.go
package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"Gin_postgres_redis_fleet_tool/app"
	"Gin_postgres_redis_fleet_tool/models"
	"Gin_postgres_redis_fleet_tool/storage"

	"github.com/gin-gonic/gin"
)

// SpecController 机型技术参数（含说明书、图片附件）
type SpecController struct{ *Srv }

func NewSpecController(s *Srv) *SpecController { return &SpecController{Srv: s} }

// GET /specs?q=
func (sc *SpecController) Search(c *gin.Context) {
	q := c.Query("q")
	specs, err := sc.Repo.SearchSpecs(c.Request.Context(), q)
	if err != nil {
		respondErr(c, err)
		return
	}
	sc.view(c, app.H{"specs": specs, "q": q})
}

// GET /spec/:id
func (sc *SpecController) Detail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	spec, err := sc.Repo.FindSpecByID(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	machines, err := sc.Repo.MachinesUsingSpec(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	sc.view(c, app.H{"spec": spec, "machines": machines})
}

// GET /spec/:id/edit
func (sc *SpecController) EditForm(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	spec, err := sc.Repo.FindSpecByID(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	sc.view(c, app.H{"spec": spec})
}

// POST /specs  新建（multipart 可带附件）
func (sc *SpecController) Create(c *gin.Context) {
	var f specForm
	if ve := bind(c, &f); ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}
	spec := &models.MachineSpecification{}
	f.apply(spec)
	saved, _, ve := sc.storeUploads(c, f, spec)
	if ve.OrNil() != nil {
		sc.discard(saved)
		invalid(c, ve, f)
		return
	}
	if err := sc.Repo.CreateSpec(c.Request.Context(), spec); err != nil {
		sc.discard(saved)
		if errors.Is(err, models.ErrConflict) {
			invalid(c, models.Invalid("model", "A specification for this brand and model already exists."), f)
			return
		}
		respondErr(c, err)
		return
	}
	sc.logActivity(c, fmt.Sprintf("Added spec %s %s", spec.Brand, spec.Model))
	sc.done(c, "Specification added.", fmt.Sprintf("/spec/%d", spec.ID))
}

// POST /spec/:id/edit
func (sc *SpecController) Edit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	spec, err := sc.Repo.FindSpecByID(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	var f specForm
	if ve := bind(c, &f); ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}
	f.apply(spec)
	saved, replaced, ve := sc.storeUploads(c, f, spec)
	if ve.OrNil() != nil {
		sc.discard(saved)
		invalid(c, ve, f)
		return
	}
	if err := sc.Repo.UpdateSpec(ctx, spec); err != nil {
		sc.discard(saved)
		if errors.Is(err, models.ErrConflict) {
			invalid(c, models.Invalid("model", "A specification for this brand and model already exists."), f)
			return
		}
		respondErr(c, err)
		return
	}
	// 新文件已落库，再删旧文件
	sc.discard(replaced)
	sc.logActivity(c, fmt.Sprintf("Edited spec %s %s", spec.Brand, spec.Model))
	sc.done(c, "Specification saved.", fmt.Sprintf("/spec/%d", id))
}

// POST /spec/:id/delete（管理员）引用它的机器置空
func (sc *SpecController) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	spec, err := sc.Repo.DeleteSpec(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	sc.discard([]string{spec.ManualFile, spec.Image})
	sc.logActivity(c, fmt.Sprintf("Deleted spec %s %s", spec.Brand, spec.Model))
	sc.done(c, "Specification deleted.", "/specs")
}

// storeUploads 保存 manual_file / image；返回新存的文件和被替换（或清除）的旧文件
func (sc *SpecController) storeUploads(c *gin.Context, f specForm, spec *models.MachineSpecification) (saved, replaced []string, ve *models.ValidationError) {
	ve = &models.ValidationError{}
	slots := []struct {
		field string
		clear bool
		kind  storage.Kind
		dst   *string
	}{
		{"manual_file", f.ClearManual, storage.ManualKind, &spec.ManualFile},
		{"image", f.ClearImage, storage.ImageKind, &spec.Image},
	}
	for _, s := range slots {
		name, err := sc.saveUpload(c, s.field, s.kind)
		switch {
		case err != nil:
			ve.Add(s.field, uploadMessage(err))
		case name != "":
			saved = append(saved, name)
			replaced = append(replaced, *s.dst)
			*s.dst = name
		case s.clear:
			replaced = append(replaced, *s.dst)
			*s.dst = ""
		}
	}
	return saved, replaced, ve
}

func (sc *SpecController) saveUpload(c *gin.Context, field string, kind storage.Kind) (string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if kind.MaxSize > 0 && fh.Size > kind.MaxSize {
		return "", storage.ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return sc.Blobs.Save(c.Request.Context(), kind, src)
}

func uploadMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return "Unsupported file type."
	case errors.Is(err, storage.ErrTooLarge):
		return "File is too large."
	}
	return "Upload failed."
}

func (sc *SpecController) discard(names []string) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if err := sc.Blobs.Delete(n); err != nil {
			app.Logger().Warn("delete blob", slog.String("name", n), slog.Any("err", err))
		}
	}
}

// GET /media/*path 登录员工下载附件
func (sc *SpecController) Media(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("path"), "/")
	f, err := sc.Blobs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrBadPath) {
			c.JSON(http.StatusNotFound, app.H{"error": "not found"})
			return
		}
		respondErr(c, err)
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
		return
	}
	http.ServeContent(c.Writer, c.Request, path.Base(name), st.ModTime(), f)
}
