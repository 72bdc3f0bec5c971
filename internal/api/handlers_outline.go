package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/extract"
	"github.com/dgallion1/docoutline/internal/heading"
	"github.com/dgallion1/docoutline/internal/parser"
)

// handleOutline extracts one document synchronously and returns its outline.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := s.documentOptions(r.MultipartForm)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	filename, data, status, err := s.readUpload(files[0])
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	res, err := s.orchestrator.Engine().Extract(r.Context(), data, filename, opts)
	if err != nil {
		code := http.StatusUnprocessableEntity
		if errors.Is(err, parser.ErrUnsupported) {
			code = http.StatusUnsupportedMediaType
		}
		s.log.Warn("extraction failed", "filename", filename, "error", err)
		jsonError(w, err.Error(), code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.present(*res))
}

// readUpload reads and size-checks one uploaded file. On failure it returns
// the HTTP status to report.
func (s *Server) readUpload(fh *multipart.FileHeader) (string, []byte, int, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	f, err := fh.Open()
	if err != nil {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, http.StatusInternalServerError, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return filename, data, 0, nil
}

// documentOptions reads per-document overrides from the form. A "rules" field
// holds a YAML rules document; the individual fields override it. A rules
// document that does not parse disables section injection for the document.
func (s *Server) documentOptions(form *multipart.Form) (extract.Options, error) {
	var opts extract.Options
	if doc := formValue(form, "rules"); doc != "" {
		rules, err := config.ParseRules([]byte(doc))
		if err != nil {
			s.log.Warn("malformed rules, section injection disabled", "error", err)
			opts.RequiredSections = []string{}
		} else {
			opts.RequiredSections = rules.RequiredSections
			opts.Strategies = rules.Strategies
			opts.DropTitleEchoes = rules.DropTitleEchoes
		}
	}
	if vals, ok := form.Value["required_sections"]; ok {
		opts.RequiredSections = parseLabels(vals)
	}
	if v := formValue(form, "strategies"); v != "" {
		opts.Strategies = nil
		for _, name := range config.SplitLabels(v) {
			opts.Strategies = append(opts.Strategies, strings.ToLower(name))
		}
	}
	if v := formValue(form, "drop_title_echoes"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("drop_title_echoes: %w", err)
		}
		opts.DropTitleEchoes = &b
	}
	for _, name := range opts.Strategies {
		if _, err := heading.New(name); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// parseLabels accepts comma-separated values or a JSON array. A malformed
// JSON array yields an empty list, which disables injection.
func parseLabels(vals []string) []string {
	var labels []string
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err != nil {
				return []string{}
			}
			labels = append(labels, arr...)
			continue
		}
		labels = append(labels, strings.Split(v, ",")...)
	}
	return config.CleanLabels(labels)
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
