package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gridline/gridline/backend-go/internal/document"
	"github.com/gridline/gridline/backend-go/internal/typeid"
)

const maxUploadSize = 10 << 20 // 10MB

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type exportRequest struct {
	Document *document.Document `json:"document"`
	Width    int                `json:"width,omitempty"`
	Height   int                `json:"height,omitempty"`
	Name     string             `json:"name,omitempty"`
}

// ExportSVG renders a posted document to SVG and streams it back.
func (h *Handler) ExportSVG(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Document == nil {
		http.Error(w, "document is required", http.StatusBadRequest)
		return
	}

	svg, err := RenderSVG(req.Document, Options{Width: req.Width, Height: req.Height})
	if err != nil {
		slog.Error("svg export failed", "error", err)
		http.Error(w, "export failed", http.StatusBadRequest)
		return
	}

	name := req.Name
	if name == "" {
		name = "diagram"
	}
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)

	slog.Info("svg exported", "export", typeid.NewExportID(), "name", name, "bytes", len(svg))

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".svg"))
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}
