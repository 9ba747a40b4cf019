package server

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/survey-xml-converter/internal/converter"
	"github.com/ginjaninja78/survey-xml-converter/internal/csvparser"
	"github.com/ginjaninja78/survey-xml-converter/internal/progress"
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
	"github.com/ginjaninja78/survey-xml-converter/internal/validation"
	"github.com/ginjaninja78/survey-xml-converter/pkg/utils"
)

// modelFileName is the download name of the header template.
const modelFileName = "modelo_enderecos.csv"

// =============================================================================
// CONVERSION
// =============================================================================

func (s *Server) handleConvert(c *gin.Context) {
	mode, err := converter.ParseMode(c.DefaultPostForm("mode", string(converter.ModeCSV)))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Modo inválido. Use csv ou xml", err)
		return
	}

	path, ok := s.receiveUpload(c)
	if !ok {
		return
	}

	opts := converter.Options{
		Mode:        mode,
		Chunked:     c.PostForm("chunked") == "true",
		RemoveInput: true,
	}
	// The run outlives the request.
	run := converter.Start(context.Background(), s.registry, s.cfg, s.log, path, opts)

	c.JSON(http.StatusAccepted, gin.H{"run_id": run.ID()})
}

// receiveUpload validates the "file" form field and stores it in the upload
// directory. On failure the response is already written.
func (s *Server) receiveUpload(c *gin.Context) (string, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, "Nenhum arquivo enviado", err)
		return "", false
	}

	check := validation.ValidateUpload(header.Filename, header.Size, s.cfg.Server.MaxUploadMB*1024*1024)
	if !check.IsValid {
		sendError(c, http.StatusBadRequest, check.Messages(validation.SeverityError)[0], nil)
		return "", false
	}

	path, err := s.saveUpload(header)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Não foi possível salvar o arquivo", err)
		return "", false
	}
	return path, true
}

func (s *Server) saveUpload(header *multipart.FileHeader) (string, error) {
	if err := s.files.EnsureDirectories(); err != nil {
		return "", err
	}
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()
	return s.files.SaveUpload(header.Filename, src)
}

// =============================================================================
// PROGRESS AND RESULTS
// =============================================================================

// handleProgress streams the updates of a run as "progress" events until the
// run ends or the client leaves. Idle streams get a "waiting" event every
// keep-alive interval.
func (s *Server) handleProgress(c *gin.Context) {
	run, ok := s.registry.Get(c.Param("id"))
	if !ok {
		sendError(c, http.StatusNotFound, "Processamento não encontrado", nil)
		return
	}

	updates, cancel := run.Subscribe()
	defer cancel()

	keepAlive := time.NewTicker(s.cfg.Server.KeepAlive)
	defer keepAlive.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for {
		select {
		case u, open := <-updates:
			if !open {
				return
			}
			c.SSEvent("progress", u)
			c.Writer.Flush()
			if u.Status.Terminal() {
				return
			}
		case <-keepAlive.C:
			waiting := run.State()
			waiting.Status = progress.StatusWaiting
			c.SSEvent("progress", waiting)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (s *Server) handleResult(c *gin.Context) {
	res, ok := s.registry.Take(c.Param("id"))
	if !ok {
		sendError(c, http.StatusNotFound, "Resultado não encontrado", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// =============================================================================
// FILES
// =============================================================================

func (s *Server) handleDownload(c *gin.Context) {
	name := c.Param("name")
	path, err := s.files.DownloadPath(name)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Nome de arquivo inválido", err)
		return
	}
	if !utils.FileExists(path) {
		sendError(c, http.StatusNotFound, "Arquivo não encontrado", nil)
		return
	}
	c.FileAttachment(path, name)
}

func (s *Server) handleModel(c *gin.Context) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, modelFileName))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := utils.WriteCSVTo(c.Writer, types.Table{Columns: types.FinalColumns}); err != nil {
		c.Error(err)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// validateResponse is the body of POST /api/validate.
type validateResponse struct {
	Rows        int                         `json:"rows"`
	Encoding    string                      `json:"encoding"`
	Delimiter   string                      `json:"delimiter"`
	Columns     validation.ColumnReport     `json:"columns"`
	Complements validation.ComplementReport `json:"complements"`
}

func (s *Server) handleValidate(c *gin.Context) {
	settings := s.cfg.CSV
	switch sep := c.DefaultPostForm("separator", "auto"); sep {
	case "auto", "|", ";":
		settings.Delimiter = sep
	default:
		sendError(c, http.StatusBadRequest, "Separador inválido. Use | ou ;", nil)
		return
	}

	path, ok := s.receiveUpload(c)
	if !ok {
		return
	}
	defer utils.RemoveIfExists(path)

	data, err := csvparser.Parse(path, settings)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Arquivo CSV inválido ou corrompido", err)
		return
	}

	c.JSON(http.StatusOK, validateResponse{
		Rows:        len(data.Rows),
		Encoding:    data.Encoding,
		Delimiter:   string(data.Delimiter),
		Columns:     validation.ValidateColumns(data.Headers),
		Complements: validation.ValidateComplements(data.Table()),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
