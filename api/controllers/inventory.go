package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dhruvbhatia/bizdesk-backend/api/responses"
	"github.com/dhruvbhatia/bizdesk-backend/api/validators"
	"github.com/dhruvbhatia/bizdesk-backend/internal/chat"
	"github.com/dhruvbhatia/bizdesk-backend/internal/inventory"
	pkgerrors "github.com/dhruvbhatia/bizdesk-backend/pkg/errors"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/logger"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/pagination"
)

const importMemoryLimit = 10 << 20

type inventoryListResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// InventoryCreate adds a single item.
func InventoryCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var input inventory.CreateItemInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// InventoryList returns a filtered, cursor-paginated item page.
func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, nextCursor, err := svc.List(ctx, inventory.ListParams{
			Query:  strings.TrimSpace(r.URL.Query().Get("q")),
			Match:  inventory.MatchMode(strings.TrimSpace(r.URL.Query().Get("match"))),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, inventoryListResponse{Items: items, NextCursor: nextCursor})
	}
}

// InventoryGet fetches a single item by id.
func InventoryGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// InventoryUpdate applies a partial update to an item.
func InventoryUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var input inventory.UpdateItemInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Update(ctx, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// InventoryDelete removes an item.
func InventoryDelete(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": id})
	}
}

// InventoryImport ingests a CSV upload. With replace=true the table is
// cleared first, inside the same transaction as the insert. With
// analyze=true the model describes the file's columns in the response.
func InventoryImport(svc inventory.Service, chatSvc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		replace, err := validators.ParseQueryBool(r, "replace", false)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		analyze, err := validators.ParseQueryBool(r, "analyze", false)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(importMemoryLimit); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required"))
			return
		}
		defer file.Close()

		result, err := svc.ImportCSV(ctx, file, replace)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if analyze && chatSvc != nil {
			analysis, err := chatSvc.AnalyzeSchema(ctx, result.Header, result.Samples)
			if err != nil {
				if logg != nil {
					logg.Warn(ctx, "csv schema analysis failed: "+err.Error())
				}
			} else {
				result.Analysis = analysis
			}
		}

		responses.WriteSuccess(w, result)
	}
}

// InventoryExport streams the full inventory as a CSV attachment.
func InventoryExport(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		data, err := svc.ExportCSV(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filename := "inventory_" + time.Now().UTC().Format("20060102_150405") + ".csv"
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// InventoryAsk answers a natural language question about stock levels.
func InventoryAsk(chatSvc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if chatSvc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		var req askRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		answer, err := chatSvc.AskInventory(ctx, roleFromRequest(r), req.Question)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, answer)
	}
}

// InventoryClear wipes every item. Admin only, wired behind RequireRole.
func InventoryClear(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		removed, err := svc.ClearAll(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"removed": removed})
	}
}

func itemIDParam(r *http.Request) (uint, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "itemId"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "itemId must be a positive integer")
	}
	return uint(id), nil
}
