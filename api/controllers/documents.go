package controllers

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/dhruvbhatia/bizdesk-backend/api/responses"
	"github.com/dhruvbhatia/bizdesk-backend/api/validators"
	"github.com/dhruvbhatia/bizdesk-backend/internal/documents"
	pkgerrors "github.com/dhruvbhatia/bizdesk-backend/pkg/errors"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/logger"
)

type documentQueryRequest struct {
	Question string `json:"question" validate:"required,min=1,max=4000"`
	K        int    `json:"k" validate:"omitempty,gte=1,lte=20"`
}

type documentQueryMatch struct {
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	Distance   float64 `json:"distance"`
}

// DocumentUpload ingests a PDF or text file into the caller's index.
func DocumentUpload(svc documents.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document service unavailable"))
			return
		}

		if maxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		}
		if err := r.ParseMultipartForm(importMemoryLimit); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload"))
			return
		}

		doc, err := svc.Ingest(ctx, roleFromRequest(r), filepath.Base(header.Filename), data)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithDocumentID(ctx, doc.ID.String()), "document.ingested")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, doc)
	}
}

// DocumentList returns the caller's uploaded documents, newest first.
func DocumentList(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document service unavailable"))
			return
		}

		docs, err := svc.List(ctx, roleFromRequest(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, docs)
	}
}

// DocumentQuery runs a similarity search over the caller's index without
// invoking the generation model.
func DocumentQuery(svc documents.Service, defaultK int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document service unavailable"))
			return
		}

		var req documentQueryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		k := req.K
		if k <= 0 {
			k = defaultK
		}

		results, err := svc.Query(ctx, roleFromRequest(r), req.Question, k)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		matches := make([]documentQueryMatch, 0, len(results))
		for _, result := range results {
			matches = append(matches, documentQueryMatch{
				DocumentID: result.Chunk.DocumentID.String(),
				Text:       result.Chunk.Text,
				Distance:   float64(result.Distance),
			})
		}
		responses.WriteSuccess(w, matches)
	}
}
